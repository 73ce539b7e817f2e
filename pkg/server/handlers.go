package server

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/labelpress/pkg/buildinfo"
	lperrors "github.com/matzehuels/labelpress/pkg/errors"
	"github.com/matzehuels/labelpress/pkg/fields"
	"github.com/matzehuels/labelpress/pkg/pipeline"
	"github.com/matzehuels/labelpress/pkg/render"
	"github.com/matzehuels/labelpress/pkg/schema"
	"github.com/matzehuels/labelpress/pkg/store"
)

// Response headers set on PNG responses.
const (
	HeaderInstanceID = "X-Instance-ID"
	HeaderCache      = "X-Cache"
)

type renderRequest struct {
	Schema *schema.Schema `json:"schema"`
	Target render.Target  `json:"target"`
	Data   render.Data    `json:"data"`
}

type fieldsRequest struct {
	Schema *schema.Schema `json:"schema"`
}

type templateRenderRequest struct {
	Data map[string]string `json:"data"`
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Current()})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Schema == nil {
		s.writeError(w, r, lperrors.New(lperrors.ErrCodeInvalidSchema, "schema is required"))
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Schema: *req.Schema,
		Target: req.Target,
		Data:   req.Data,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePNG(w, res)
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	var req fieldsRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Schema == nil {
		s.writeError(w, r, lperrors.New(lperrors.ErrCodeInvalidSchema, "schema is required"))
		return
	}
	writeJSON(w, http.StatusOK, discover(*req.Schema))
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListTemplates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []schema.Template{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.template(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl schema.Template
	if err := s.decodeBody(w, r, &tmpl); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if tmpl.ID != "" && tmpl.ID != id {
		s.writeError(w, r, lperrors.New(lperrors.ErrCodeInvalidInput, "body id %q does not match path id %q", tmpl.ID, id))
		return
	}
	tmpl.ID = id

	if err := s.store.SaveTemplate(r.Context(), &tmpl); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.template(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req templateRenderRequest
	if r.ContentLength != 0 {
		if err := s.decodeBody(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	res, err := s.runner.ExecuteTemplate(r.Context(), *tmpl, req.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(HeaderInstanceID, res.Instance.ID)
	writePNG(w, res)
}

func (s *Server) handleTemplateFields(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.template(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, discover(tmpl.Layout()))
}

func (s *Server) handleTemplateCSV(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.template(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := fields.WriteCSV(&buf, tmpl.Layout()); err != nil {
		s.writeError(w, r, lperrors.Wrap(lperrors.ErrCodeInternal, err, "write csv"))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+tmpl.ID+`_fields.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.template(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.store.ListInstances(r.Context(), tmpl.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Instance{}
	}
	writeJSON(w, http.StatusOK, list)
}

// template loads the template named by the {id} path parameter.
func (s *Server) template(r *http.Request) (*schema.Template, error) {
	id := chi.URLParam(r, "id")
	if err := lperrors.ValidateTemplateID(id); err != nil {
		return nil, err
	}
	return s.store.GetTemplate(r.Context(), id)
}

func discover(sc schema.Schema) []fields.Descriptor {
	out := fields.Discover(sc)
	if out == nil {
		out = []fields.Descriptor{}
	}
	return out
}

func writePNG(w http.ResponseWriter, res *pipeline.Result) {
	w.Header().Set("Content-Type", "image/png")
	if res.CacheInfo.RenderHit {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
	}
	_, _ = w.Write(res.PNG)
}
