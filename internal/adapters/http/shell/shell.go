// Package shell renders the authenticated application frame (sidebar and
// header) around each guarded view, plus the public pages outside it.
package shell

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"smartflex/internal/application/listutil"
	"smartflex/internal/application/policy"
	"smartflex/internal/domain/role"
	"smartflex/internal/domain/session"
)

//go:embed templates
var templateFS embed.FS

//go:embed content/*.md
var contentFS embed.FS

// Public page names accepted by RenderPublic.
const (
	PageLogin    = "login"
	PageRegister = "register"
	PageMessage  = "message"
	PageNotFound = "not_found"
)

var (
	ErrMissingView = errors.New("shell: view has neither a page template nor content")
	ErrUnknownPage = errors.New("shell: unknown page")
)

// mdRenderer converts view content to HTML. Raw HTML in markdown input is
// escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// MenuItem is one sidebar entry.
type MenuItem struct {
	Path   string
	View   string
	Title  string
	Active bool
}

// Header carries the read-only session fields shown in the top bar.
type Header struct {
	DisplayName string
	FirstName   string
	Role        role.Role
	RoleLabel   string
	Branch      string
}

// Page is the data passed to the shell layout.
type Page struct {
	Title     string
	Path      string
	View      string
	Menu      []MenuItem
	Header    Header
	CSRFField template.HTML
	Flash     string
	Body      template.HTML // rendered markdown for content views
	Data      any           // view specific data
}

// PublicPage is the data passed to pages rendered outside the shell.
type PublicPage struct {
	Title     string
	Error     string
	Message   string
	Path      string
	CSRFField template.HTML
	Email     string
	Name      string
	Branch    string
	Branches  any
}

// Renderer holds every template and content body, parsed once.
// INVARIANT: every view in the policy has an entry in views
type Renderer struct {
	policy  *policy.Policy
	views   map[string]*template.Template
	public  map[string]*template.Template
	content map[string]template.HTML
}

var funcMap = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"pageQuery": func(p listutil.Params, n int) template.URL {
		return template.URL(p.Query(n))
	},
}

// New parses the embedded templates and content for every view in p.
// PRE: p is non-nil
// POST: Returns ErrMissingView if some policy view cannot be rendered
func New(p *policy.Policy) (*Renderer, error) {
	r := &Renderer{
		policy:  p,
		views:   make(map[string]*template.Template),
		public:  make(map[string]*template.Template),
		content: make(map[string]template.HTML),
	}

	mdFiles, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return nil, err
	}
	for _, name := range mdFiles {
		src, err := contentFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := mdRenderer.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		r.content[strings.TrimSuffix(path.Base(name), ".md")] = template.HTML(buf.String())
	}

	for _, route := range p.Routes() {
		page := "templates/pages/" + route.View + ".html"
		if _, err := fs.Stat(templateFS, page); err != nil {
			if _, ok := r.content[route.View]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingView, route.View)
			}
			page = "templates/pages/content.html"
		}
		tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", route.View, err)
		}
		r.views[route.View] = tpl
	}

	for _, name := range []string{PageLogin, PageRegister, PageMessage, PageNotFound} {
		tpl, err := template.New("public.html").Funcs(funcMap).ParseFS(templateFS, "templates/public/public.html", "templates/public/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.public[name] = tpl
	}
	return r, nil
}

// Menu returns the sidebar entries for a role, marking the one at current.
// POST: Entries are exactly policy.Menu(role), in table order
func (r *Renderer) Menu(rl role.Role, current string) []MenuItem {
	routes := r.policy.Menu(rl)
	items := make([]MenuItem, 0, len(routes))
	for _, route := range routes {
		items = append(items, MenuItem{
			Path:   route.Path,
			View:   route.View,
			Title:  route.Title,
			Active: route.Path == current,
		})
	}
	return items
}

// NewPage builds the shell data for route as seen by sess.
func (r *Renderer) NewPage(route policy.Route, sess session.Session) Page {
	return Page{
		Title: route.Title,
		Path:  route.Path,
		View:  route.View,
		Menu:  r.Menu(sess.Role, route.Path),
		Header: Header{
			DisplayName: sess.DisplayName,
			FirstName:   sess.FirstName(),
			Role:        sess.Role,
			RoleLabel:   sess.Role.Label(),
			Branch:      sess.Branch,
		},
		Body: r.content[route.View],
	}
}

// RenderView writes page for its view inside the shell layout.
func (r *Renderer) RenderView(w io.Writer, page Page) error {
	tpl, ok := r.views[page.View]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingView, page.View)
	}
	return tpl.Execute(w, page)
}

// RenderPublic writes one of the pages outside the shell.
func (r *Renderer) RenderPublic(w io.Writer, name string, page PublicPage) error {
	tpl, ok := r.public[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	return tpl.Execute(w, page)
}
