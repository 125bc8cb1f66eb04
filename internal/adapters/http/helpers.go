package web

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"smartflex/internal/adapters/http/shell"
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeInput fills v from a JSON body or, for form posts, via fromForm.
func decodeInput(r *http.Request, v any, fromForm func(r *http.Request)) error {
	if isJSONRequest(r) {
		return strictDecode(r, v)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r)
	return nil
}

func publicPage(r *http.Request, title string) shell.PublicPage {
	return shell.PublicPage{
		Title:     title,
		Path:      r.URL.Path,
		CSRFField: csrf.TemplateField(r),
	}
}

func (s *Server) renderPublic(w http.ResponseWriter, r *http.Request, status int, name string, page shell.PublicPage) {
	var buf bytes.Buffer
	if err := s.shell.RenderPublic(&buf, name, page); err != nil {
		internalError(w, err)
		return
	}
	writeHTML(w, r, status, &buf)
}

func (s *Server) renderView(w http.ResponseWriter, r *http.Request, status int, page shell.Page) {
	page.CSRFField = csrf.TemplateField(r)
	var buf bytes.Buffer
	if err := s.shell.RenderView(&buf, page); err != nil {
		internalError(w, err)
		return
	}
	writeHTML(w, r, status, &buf)
}

func writeHTML(w http.ResponseWriter, r *http.Request, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	buf.WriteTo(w)
}
