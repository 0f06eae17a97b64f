package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sitegrid/pkg/catalog"
	sgerrors "github.com/matzehuels/sitegrid/pkg/errors"
	"github.com/matzehuels/sitegrid/pkg/pipeline"
	"github.com/matzehuels/sitegrid/pkg/plan"
	"github.com/matzehuels/sitegrid/pkg/session"
)

// Response messages.
const (
	MsgSessionNotFound = "Session not found"
	MsgInternal        = "Internal server error"
	MsgInvalidBody     = "Invalid JSON body"
	MsgBodyTooLarge    = "Request body too large"
	MsgCanceled        = "Request canceled"
)

// StatusClientClosedRequest is reported when the client goes away before a
// response is ready. The client never sees it; logs and metrics do.
const StatusClientClosedRequest = 499

type devicesResponse struct {
	Devices           map[string]catalog.DeviceSpec `json:"devices"`
	ProducerIDs       []string                      `json:"producerIds"`
	InfrastructureIDs []string                      `json:"infrastructureIds"`
	CellSizeFt        int                           `json:"cellSizeFt"`
}

type layoutResponse struct {
	Config    plan.Quantities   `json:"config"`
	Colors    map[string]string `json:"colors,omitempty"`
	Totals    plan.Totals       `json:"totals"`
	Layout    []plan.Item       `json:"layout"`
	RowsCount int               `json:"rowsCount"`
}

func newLayoutResponse(res plan.Result, colors map[string]string) layoutResponse {
	items := res.Grid.Items
	if items == nil {
		items = []plan.Item{}
	}
	return layoutResponse{
		Config:    res.Config.Quantities,
		Colors:    colors,
		Totals:    res.Totals,
		Layout:    items,
		RowsCount: res.Grid.Rows,
	}
}

// sessionRequest is the body of POST /session and POST /layout/svg.
type sessionRequest struct {
	Config map[string]any    `json:"config"`
	Colors map[string]string `json:"colors"`
	Scale  int               `json:"scale,omitempty"`
}

type sessionResponse struct {
	Config plan.Quantities   `json:"config"`
	Colors map[string]string `json:"colors"`
}

type listResponse struct {
	Count int                 `json:"count"`
	Items []*session.Document `json:"items"`
}

func (s *Server) catalog() *catalog.Catalog { return s.runner.Engine.Catalog() }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDevices(w http.ResponseWriter, _ *http.Request) {
	cat := s.catalog()
	devices := make(map[string]catalog.DeviceSpec, cat.Len())
	for _, spec := range cat.All() {
		devices[spec.ID] = spec
	}
	writeJSON(w, http.StatusOK, devicesResponse{
		Devices:           devices,
		ProducerIDs:       cat.ProducerIDs(),
		InfrastructureIDs: cat.InfrastructureIDs(),
		CellSizeFt:        cat.CellSize(),
	})
}

func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decodeJSON(r, &raw); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.runner.Run(r.Context(), raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLayoutResponse(res.Result, nil))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	doc, err := s.newDocument(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Calculate(r.Context(), doc.Config)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	svg, err := s.runner.RenderSVG(r.Context(), res.Result, pipeline.RenderOptions{
		Colors: doc.Colors,
		Scale:  req.Scale,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	doc, err := s.newDocument(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.store.Save(r.Context(), doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("saved session", "id", id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// newDocument validates the quantities and colors of req.
func (s *Server) newDocument(ctx context.Context, req sessionRequest) (*session.Document, error) {
	if req.Config == nil {
		req.Config = map[string]any{}
	}
	cleaned, err := s.runner.Validate(ctx, req.Config)
	if err != nil {
		return nil, err
	}
	return session.NewDocument(s.catalog(), cleaned, req.Colors)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if docs == nil {
		docs = []*session.Document{}
	}
	writeJSON(w, http.StatusOK, listResponse{Count: len(docs), Items: docs})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Config: doc.Config, Colors: doc.Colors})
}

func (s *Server) handleSessionLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Calculate(r.Context(), doc.Config)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLayoutResponse(res.Result, doc.Colors))
}

// decodeJSON reads one JSON value from the request body into v. An empty
// body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errBadBody{err}
	}
	return nil
}

type errBadBody struct{ err error }

func (e errBadBody) Error() string { return "decode body: " + e.err.Error() }
func (e errBadBody) Unwrap() error { return e.err }

// fail maps err to a status and JSON body. Unexpected errors are logged and
// hidden behind a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		bad      errBadBody
		tooLarge *http.MaxBytesError
	)
	if ve, ok := sgerrors.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": ve.Message,
			"errors":  ve.Fields,
		})
		return
	}
	switch {
	case errors.As(err, &bad):
		writeMessage(w, http.StatusBadRequest, MsgInvalidBody)
	case errors.As(err, &tooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
	case errors.Is(err, session.ErrNotFound):
		writeMessage(w, http.StatusNotFound, MsgSessionNotFound)
	case errors.Is(err, context.Canceled):
		s.logger.Debug("request canceled", "path", r.URL.Path)
		writeMessage(w, StatusClientClosedRequest, MsgCanceled)
	default:
		s.logger.Error("request error", "method", r.Method, "path", r.URL.Path, "err", err)
		writeMessage(w, http.StatusInternalServerError, MsgInternal)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
