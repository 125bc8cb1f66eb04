package listutil

import (
	"net/url"
	"reflect"
	"testing"
)

// TestParse_Defaults verifies defaults when no query values are provided.
func TestParse_Defaults(t *testing.T) {
	p := Parse(url.Values{})
	if p.Page != 1 || p.PerPage != DefaultPerPage || p.Search != "" {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

// TestParse_Values verifies parsing and clamping of page, per_page and q.
func TestParse_Values(t *testing.T) {
	cases := []struct {
		q    url.Values
		want Params
	}{
		{url.Values{"page": {"3"}, "per_page": {"50"}, "q": {" asha "}}, Params{3, 50, "asha"}},
		{url.Values{"page": {"-1"}}, Params{1, DefaultPerPage, ""}},
		{url.Values{"per_page": {"25"}}, Params{1, DefaultPerPage, ""}},
		{url.Values{"page": {"abc"}}, Params{1, DefaultPerPage, ""}},
	}
	for _, tc := range cases {
		if got := Parse(tc.q); got != tc.want {
			t.Errorf("Parse(%v) = %+v, want %+v", tc.q, got, tc.want)
		}
	}
}

// TestNewPageInfo verifies page counts, clamping and row bounds.
func TestNewPageInfo(t *testing.T) {
	p := NewPageInfo(3, 20, 45)
	if p.TotalPages != 3 || p.Offset() != 40 || p.StartRow() != 41 || p.EndRow() != 45 {
		t.Errorf("unexpected page info: %+v", p)
	}
	if !p.HasPrev() || p.HasNext() {
		t.Error("HasPrev/HasNext wrong on last page")
	}

	clamped := NewPageInfo(9, 20, 45)
	if clamped.Page != 3 {
		t.Errorf("page not clamped: %d", clamped.Page)
	}

	empty := NewPageInfo(1, 20, 0)
	if empty.TotalPages != 1 || empty.StartRow() != 0 || empty.EndRow() != 0 {
		t.Errorf("unexpected empty info: %+v", empty)
	}
}

// TestPageNumbers verifies the window of page buttons.
func TestPageNumbers(t *testing.T) {
	cases := []struct {
		page, total int
		want        []int
	}{
		{1, 200, []int{1, 2, 3, 4, 5}},
		{5, 200, []int{3, 4, 5, 6, 7}},
		{10, 200, []int{6, 7, 8, 9, 10}},
		{2, 40, []int{1, 2}},
	}
	for _, tc := range cases {
		got := NewPageInfo(tc.page, 20, tc.total).PageNumbers()
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("page %d of %d: got %v, want %v", tc.page, tc.total, got, tc.want)
		}
	}
}

// TestParams_Query verifies page links keep search and size.
func TestParams_Query(t *testing.T) {
	p := Params{Page: 1, PerPage: 50, Search: "a b"}
	if got := p.Query(2); got != "page=2&per_page=50&q=a+b" {
		t.Errorf("Query = %q", got)
	}
	if got := (Params{PerPage: DefaultPerPage}).Query(1); got != "page=1" {
		t.Errorf("Query = %q", got)
	}
}
