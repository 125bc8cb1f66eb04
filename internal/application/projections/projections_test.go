package projections

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"smartflex/internal/adapters/storage"
	accountStore "smartflex/internal/adapters/storage/account"
	branchStore "smartflex/internal/adapters/storage/branch"
	"smartflex/internal/application/listutil"
	domainAccount "smartflex/internal/domain/account"
	domainBranch "smartflex/internal/domain/branch"
	"smartflex/internal/domain/role"
)

func seedStores(t *testing.T) (*accountStore.SQLiteStore, *branchStore.SQLiteStore) {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	if err := storage.InitDB(ctx, db); err != nil {
		t.Fatalf("init: %v", err)
	}
	accounts := accountStore.NewSQLiteStore(db)
	branches := branchStore.NewSQLiteStore(db)

	now := time.Now()
	for _, name := range []string{"Andheri", "Bandra"} {
		if err := branches.Save(ctx, domainBranch.Branch{ID: name, Name: name, CreatedAt: now}); err != nil {
			t.Fatalf("seed branch: %v", err)
		}
	}
	add := func(id string, r role.Role, branch string) {
		a := domainAccount.Account{ID: id, Email: id + "@x.in", Name: id, Role: r, Branch: branch, CreatedAt: now}
		if err := accounts.Save(ctx, a); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	for i := 0; i < 25; i++ {
		add(fmt.Sprintf("member%02d", i), role.Member, "Andheri")
	}
	add("trainerA", role.Trainer, "Andheri")
	add("trainerB", role.Trainer, "Bandra")
	add("memberB", role.Member, "Bandra")
	add("adminA", role.Admin, "Andheri")
	return accounts, branches
}

// TestQueryGetBranchUsers_Pagination verifies branch scoping and paging.
func TestQueryGetBranchUsers_Pagination(t *testing.T) {
	accounts, _ := seedStores(t)
	deps := GetBranchUsersDeps{AccountStore: accounts}
	ctx := context.Background()

	res, err := QueryGetBranchUsers(ctx, GetBranchUsersQuery{Branch: "Andheri", Params: listutil.Params{Page: 2, PerPage: 10}}, deps)
	if err != nil {
		t.Fatalf("QueryGetBranchUsers: %v", err)
	}
	if res.Page.Total != 27 || res.Page.TotalPages != 3 || len(res.Users) != 10 {
		t.Errorf("unexpected page: %+v (%d users)", res.Page, len(res.Users))
	}
	for _, u := range res.Users {
		if u.Email == "memberB@x.in" || u.Email == "trainerB@x.in" {
			t.Errorf("user from another branch leaked: %+v", u)
		}
	}

	members, _ := QueryGetBranchUsers(ctx, GetBranchUsersQuery{Branch: "Andheri", Role: role.Trainer, Params: listutil.Params{Page: 1, PerPage: 10}}, deps)
	if len(members.Users) != 1 || members.Users[0].Name != "trainerA" {
		t.Errorf("role filter mismatch: %+v", members.Users)
	}

	none, _ := QueryGetBranchUsers(ctx, GetBranchUsersQuery{Params: listutil.Params{Page: 1, PerPage: 10}}, deps)
	if len(none.Users) != 0 {
		t.Errorf("empty branch returned users: %+v", none.Users)
	}
}

// TestQueryGetTrainers verifies branch scoping.
func TestQueryGetTrainers(t *testing.T) {
	accounts, _ := seedStores(t)
	deps := GetTrainersDeps{AccountStore: accounts}

	res, err := QueryGetTrainers(context.Background(), GetTrainersQuery{Branch: "Bandra"}, deps)
	if err != nil {
		t.Fatalf("QueryGetTrainers: %v", err)
	}
	if len(res.Trainers) != 1 || res.Trainers[0].Name != "trainerB" {
		t.Errorf("unexpected trainers: %+v", res.Trainers)
	}

	all, _ := QueryGetTrainers(context.Background(), GetTrainersQuery{}, deps)
	if len(all.Trainers) != 2 {
		t.Errorf("expected 2 trainers, got %+v", all.Trainers)
	}
}

// TestQueryGetDashboard verifies counts per role scope.
func TestQueryGetDashboard(t *testing.T) {
	accounts, branches := seedStores(t)
	deps := GetDashboardDeps{AccountStore: accounts, BranchStore: branches}
	ctx := context.Background()

	admin, err := QueryGetDashboard(ctx, GetDashboardQuery{Role: role.Admin, Branch: "Andheri"}, deps)
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if !admin.ShowCounts || admin.Members != 25 || admin.Trainers != 1 || admin.Branches != 0 {
		t.Errorf("admin dashboard = %+v", admin)
	}

	super, _ := QueryGetDashboard(ctx, GetDashboardQuery{Role: role.Superadmin}, deps)
	if super.Members != 26 || super.Trainers != 2 || super.Branches != 2 {
		t.Errorf("superadmin dashboard = %+v", super)
	}

	member, _ := QueryGetDashboard(ctx, GetDashboardQuery{Role: role.Member, Branch: "Andheri"}, deps)
	if member.ShowCounts {
		t.Errorf("member should not see counts: %+v", member)
	}
}
