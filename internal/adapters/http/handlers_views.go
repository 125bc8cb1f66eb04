package web

import (
	"errors"
	"net/http"

	branchStore "smartflex/internal/adapters/storage/branch"
	"smartflex/internal/application/listutil"
	"smartflex/internal/application/orchestrators"
	"smartflex/internal/application/policy"
	"smartflex/internal/application/projections"
	"smartflex/internal/domain/audit"
	"smartflex/internal/domain/branch"
	"smartflex/internal/domain/role"
	"smartflex/internal/domain/session"
)

type branchUsersData struct {
	Result projections.GetBranchUsersResult
	Params listutil.Params
}

type manageBranchesData struct {
	Branches []branch.Branch
}

type branchResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type createBranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// viewContent renders a markdown content view inside the shell.
func (s *Server) viewContent(w http.ResponseWriter, r *http.Request, route policy.Route, sess session.Session) {
	s.renderView(w, r, http.StatusOK, s.shell.NewPage(route, sess))
}

func (s *Server) viewDashboard(w http.ResponseWriter, r *http.Request, route policy.Route, sess session.Session) {
	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		Role:   sess.Role,
		Branch: sess.Branch,
	}, projections.GetDashboardDeps{
		AccountStore: s.deps.Stores.AccountStore,
		BranchStore:  s.deps.Stores.BranchStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	page := s.shell.NewPage(route, sess)
	page.Data = result
	s.renderView(w, r, http.StatusOK, page)
}

// viewTrainers lists trainers in the session's branch; superadmins see every branch.
func (s *Server) viewTrainers(w http.ResponseWriter, r *http.Request, route policy.Route, sess session.Session) {
	query := projections.GetTrainersQuery{Branch: sess.Branch}
	if sess.Role == role.Superadmin {
		query.Branch = ""
	}
	result, err := projections.QueryGetTrainers(r.Context(), query, projections.GetTrainersDeps{
		AccountStore: s.deps.Stores.AccountStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	page := s.shell.NewPage(route, sess)
	page.Data = result
	s.renderView(w, r, http.StatusOK, page)
}

func (s *Server) viewBranchUsers(w http.ResponseWriter, r *http.Request, route policy.Route, sess session.Session) {
	params := listutil.Parse(r.URL.Query())
	result, err := projections.QueryGetBranchUsers(r.Context(), projections.GetBranchUsersQuery{
		Branch: sess.Branch,
		Params: params,
	}, projections.GetBranchUsersDeps{
		AccountStore: s.deps.Stores.AccountStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	page := s.shell.NewPage(route, sess)
	page.Data = branchUsersData{Result: result, Params: params}
	s.renderView(w, r, http.StatusOK, page)
}

// viewManageBranches lists branches (GET) and creates one (POST).
func (s *Server) viewManageBranches(w http.ResponseWriter, r *http.Request, route policy.Route, sess session.Session) {
	page := s.shell.NewPage(route, sess)
	status := http.StatusOK

	if r.Method == http.MethodPost {
		var req createBranchRequest
		if err := decodeInput(r, &req, func(r *http.Request) {
			req.Name = r.FormValue("name")
			req.Address = r.FormValue("address")
		}); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		created, err := orchestrators.ExecuteCreateBranch(r.Context(), orchestrators.CreateBranchInput{
			Name:    req.Name,
			Address: req.Address,
		}, orchestrators.CreateBranchDeps{BranchStore: s.deps.Stores.BranchStore})
		switch {
		case err == nil:
			s.recordAudit(r, sessionEvent(audit.CategoryBranch, audit.ActionCreate, sess).WithResource(created.Name))
			if isJSONRequest(r) {
				writeJSON(w, http.StatusCreated, branchResponse{ID: created.ID, Name: created.Name, Address: created.Address})
				return
			}
			http.Redirect(w, r, route.Path, http.StatusSeeOther)
			return
		case errors.Is(err, branch.ErrEmptyName), errors.Is(err, branch.ErrNameTooLong), errors.Is(err, branchStore.ErrDuplicateName):
			if isJSONRequest(r) {
				writeJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			page.Flash = err.Error()
			status = http.StatusBadRequest
		default:
			internalError(w, err)
			return
		}
	}

	branches, err := s.deps.Stores.BranchStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	page.Data = manageBranchesData{Branches: branches}
	s.renderView(w, r, status, page)
}
