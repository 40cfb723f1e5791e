package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docstruct/internal/doctree"
	"github.com/dgallion1/docstruct/internal/export"
	"github.com/dgallion1/docstruct/internal/parser"
	"github.com/dgallion1/docstruct/internal/pipeline"
	"github.com/dgallion1/docstruct/internal/rewrite"
)

type structureRequest struct {
	Text   string `json:"text"`
	Lists  bool   `json:"lists"`
	Tables string `json:"tables"`
}

type structureResponse struct {
	Text           string         `json:"text"`
	ListsCollapsed int            `json:"lists_collapsed"`
	Table          *rewrite.Table `json:"table,omitempty"`
	Message        string         `json:"message"`
}

type outlineRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

type locateRequest struct {
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type locatedBlock struct {
	Kind   string `json:"kind"`
	Level  int    `json:"level,omitempty"`
	Offset int    `json:"offset"`
	Value  string `json:"value"`
}

type locateResponse struct {
	Offset     int            `json:"offset"`
	Breadcrumb []string       `json:"breadcrumb"`
	Blocks     []locatedBlock `json:"blocks"`
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	out, ok := s.transform(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, structureResponse{
		Text:           out.Text,
		ListsCollapsed: out.ListsCollapsed,
		Table:          out.Table,
		Message:        out.Message(),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	out, ok := s.transform(w, r)
	if !ok {
		return
	}
	body, err := export.HTML(out.Text)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", export.FormatHTML.ContentType())
	w.Write(body)
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var req outlineRequest
	if !s.decode(w, r, &req) {
		return
	}
	root := parser.New(s.cfg.Conventions.Parser()).Parse(req.Text)
	writeJSON(w, http.StatusOK, doctree.BuildOutline(req.Title, root))
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Line < 1 || req.Column < 1 {
		jsonError(w, "line and column are 1-based", http.StatusBadRequest)
		return
	}

	root := parser.New(s.cfg.Conventions.Parser()).Parse(req.Text)
	offset := parser.OffsetAt(req.Text, req.Line, req.Column)
	path := doctree.Locate(root, offset)

	resp := locateResponse{
		Offset:     offset,
		Breadcrumb: doctree.Breadcrumb(path),
		Blocks:     make([]locatedBlock, 0, len(path)),
	}
	if resp.Breadcrumb == nil {
		resp.Breadcrumb = []string{}
	}
	for _, b := range path {
		resp.Blocks = append(resp.Blocks, locatedBlock{
			Kind:   b.Tag.Kind.String(),
			Level:  b.Tag.Level(),
			Offset: b.Start,
			Value:  b.Value,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// transform decodes a structure request and runs it. It writes the error
// response itself and reports false on failure.
func (s *Server) transform(w http.ResponseWriter, r *http.Request) (pipeline.Outcome, bool) {
	var req structureRequest
	if !s.decode(w, r, &req) {
		return pipeline.Outcome{}, false
	}
	mode, err := pipeline.ParseTableMode(req.Tables)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return pipeline.Outcome{}, false
	}
	opts := pipeline.Options{Lists: req.Lists, Tables: mode, Conventions: s.cfg.Conventions}
	return pipeline.Transform(req.Text, opts), true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
