// Package policy holds the static route table that maps each guarded path
// to the roles allowed to reach it. It is the only place role checks live.
package policy

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"smartflex/internal/domain/role"
)

//go:embed routes.yaml
var defaultRoutes []byte

var (
	ErrEmptyTable    = errors.New("route table has no routes")
	ErrInvalidPath   = errors.New("route path must be absolute")
	ErrDuplicatePath = errors.New("duplicate route path")
	ErrEmptyView     = errors.New("route view is required")
	ErrDuplicateView = errors.New("duplicate route view")
	ErrNoRoles       = errors.New("route must allow at least one role")
	ErrUnknownRole   = errors.New("route names an unknown role")
)

// Route is one immutable entry of the table.
type Route struct {
	Path    string
	View    string
	Title   string
	Menu    bool
	Allowed role.Set
}

// Policy is a validated route table. Safe for concurrent use; never mutated
// after Load returns.
type Policy struct {
	routes []Route
	byPath map[string]int
}

type fileRoute struct {
	Path  string   `yaml:"path"`
	View  string   `yaml:"view"`
	Title string   `yaml:"title"`
	Menu  bool     `yaml:"menu"`
	Roles []string `yaml:"roles"`
}

type file struct {
	Routes []fileRoute `yaml:"routes"`
}

// Load parses and validates a YAML route table.
// PRE: data is a YAML document with a top-level routes list
// POST: Returns an immutable Policy or the first validation error
func Load(data []byte) (*Policy, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse route table: %w", err)
	}
	if len(f.Routes) == 0 {
		return nil, ErrEmptyTable
	}

	p := &Policy{
		routes: make([]Route, 0, len(f.Routes)),
		byPath: make(map[string]int, len(f.Routes)),
	}
	views := make(map[string]bool, len(f.Routes))
	for i, fr := range f.Routes {
		path := strings.TrimSpace(fr.Path)
		if !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("route %d %q: %w", i, fr.Path, ErrInvalidPath)
		}
		if _, dup := p.byPath[path]; dup {
			return nil, fmt.Errorf("route %q: %w", path, ErrDuplicatePath)
		}
		if fr.View == "" {
			return nil, fmt.Errorf("route %q: %w", path, ErrEmptyView)
		}
		if views[fr.View] {
			return nil, fmt.Errorf("route %q view %q: %w", path, fr.View, ErrDuplicateView)
		}
		if len(fr.Roles) == 0 {
			return nil, fmt.Errorf("route %q: %w", path, ErrNoRoles)
		}
		roles := make([]role.Role, 0, len(fr.Roles))
		for _, raw := range fr.Roles {
			r, err := role.Parse(raw)
			if err != nil || r.IsAbsent() {
				return nil, fmt.Errorf("route %q role %q: %w", path, raw, ErrUnknownRole)
			}
			roles = append(roles, r)
		}
		title := fr.Title
		if title == "" {
			title = fr.View
		}
		views[fr.View] = true
		p.byPath[path] = len(p.routes)
		p.routes = append(p.routes, Route{
			Path:    path,
			View:    fr.View,
			Title:   title,
			Menu:    fr.Menu,
			Allowed: role.NewSet(roles...),
		})
	}
	return p, nil
}

// Default returns the embedded route table.
func Default() (*Policy, error) {
	return Load(defaultRoutes)
}

// MustDefault is Default for program start-up; it panics on an invalid table.
func MustDefault() *Policy {
	p, err := Default()
	if err != nil {
		panic(err)
	}
	return p
}

// Lookup returns the route for path.
func (p *Policy) Lookup(path string) (Route, bool) {
	i, ok := p.byPath[path]
	if !ok {
		return Route{}, false
	}
	return p.routes[i], true
}

// IsAllowed reports whether r may reach path. Unknown paths and absent roles
// are never allowed.
func (p *Policy) IsAllowed(path string, r role.Role) bool {
	route, ok := p.Lookup(path)
	return ok && route.Allowed.Contains(r)
}

// Menu returns the menu routes r may reach, in table order.
func (p *Policy) Menu(r role.Role) []Route {
	var out []Route
	for _, route := range p.routes {
		if route.Menu && route.Allowed.Contains(r) {
			out = append(out, route)
		}
	}
	return out
}

// Routes returns a copy of every route in table order.
func (p *Policy) Routes() []Route {
	out := make([]Route, len(p.routes))
	copy(out, p.routes)
	return out
}
