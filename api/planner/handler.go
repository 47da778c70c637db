// Package planner exposes planning sessions over HTTP.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kilianp07/sessionplanner/core/logger"
	"github.com/kilianp07/sessionplanner/core/normalize"
	"github.com/kilianp07/sessionplanner/core/selection"
	"github.com/kilianp07/sessionplanner/core/session"
)

// CityLister provides the selectable address cities.
type CityLister interface {
	Cities(ctx context.Context) []string
}

// Handler serves the session endpoints.
type Handler struct {
	sessions  *session.MemoryStore
	submitter *session.Submitter
	cities    CityLister
	log       logger.Logger
}

// NewHandler creates a Handler. A nil cities lister serves an empty list.
func NewHandler(sessions *session.MemoryStore, submitter *session.Submitter, cities CityLister, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop{}
	}
	return &Handler{sessions: sessions, submitter: submitter, cities: cities, log: log}
}

// Register mounts the routes on r under /api/v1.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	api.HandleFunc("/cities", h.listCities).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.createSession).Methods(http.MethodPost)

	s := api.PathPrefix("/sessions/{id}").Subrouter()
	s.HandleFunc("", h.getSession).Methods(http.MethodGet)
	s.HandleFunc("", h.deleteSession).Methods(http.MethodDelete)
	s.HandleFunc("/submit", h.submit).Methods(http.MethodPost)
	s.HandleFunc("/selection", h.selectOption).Methods(http.MethodPut)
	s.HandleFunc("/inspect", h.inspect).Methods(http.MethodPost)
	s.HandleFunc("/detail", h.openDetail).Methods(http.MethodPost)
	s.HandleFunc("/detail", h.closeDetail).Methods(http.MethodDelete)
	s.HandleFunc("/edit", h.edit).Methods(http.MethodPost)
	s.HandleFunc("/schedule", h.showSchedule).Methods(http.MethodPost)
	s.HandleFunc("/calendar", h.calendar).Methods(http.MethodGet)
}

// Router returns a router with the planner routes and request logging.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	r.Use(RequestLogger(h.log))
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	success(w, http.StatusOK, map[string]any{"status": "ok", "sessions": h.sessions.Len()})
}

type citiesResponse struct {
	Cities      []string `json:"cities"`
	DefaultCity string   `json:"default_city"`
}

func (h *Handler) cityList(ctx context.Context) citiesResponse {
	out := citiesResponse{Cities: []string{}}
	if h.cities != nil {
		out.Cities = h.cities.Cities(ctx)
	}
	if len(out.Cities) > 0 {
		out.DefaultCity = out.Cities[0]
	}
	return out
}

func (h *Handler) listCities(w http.ResponseWriter, r *http.Request) {
	success(w, http.StatusOK, h.cityList(r.Context()))
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create(normalize.DefaultForm(h.cityList(r.Context()).DefaultCity))
	h.log.Infof("session %s created", sess.ID())
	success(w, http.StatusCreated, sess.View())
}

// lookup resolves the {id} path variable, writing a 404 when it is unknown.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, nil)
		return nil, false
	}
	return sess, true
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.lookup(w, r); ok {
		success(w, http.StatusOK, sess.View())
	}
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(mux.Vars(r)["id"]) {
		h.writeError(w, session.ErrNotFound, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var form normalize.FormInput
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		failure(w, http.StatusBadRequest, "Invalid request body", err.Error(), nil)
		return
	}
	view, err := h.submitter.Submit(r.Context(), sess, form)
	if err != nil {
		h.writeError(w, err, view)
		return
	}
	success(w, http.StatusOK, view)
}

type indexRequest struct {
	Index *int `json:"index"`
}

func decodeIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		failure(w, http.StatusBadRequest, "Invalid request body", "index is required", nil)
		return 0, false
	}
	return *req.Index, true
}

func (h *Handler) selectOption(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	i, ok := decodeIndex(w, r)
	if !ok {
		return
	}
	h.respond(w, sess, sess.Select(i))
}

func (h *Handler) inspect(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	i, ok := decodeIndex(w, r)
	if !ok {
		return
	}
	h.respond(w, sess, sess.Inspect(i))
}

func (h *Handler) openDetail(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.lookup(w, r); ok {
		h.respond(w, sess, sess.OpenDetail())
	}
}

func (h *Handler) closeDetail(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.lookup(w, r); ok {
		h.respond(w, sess, sess.CloseDetail())
	}
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.lookup(w, r); ok {
		sess.EditPreferences()
		success(w, http.StatusOK, sess.View())
	}
}

func (h *Handler) showSchedule(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.lookup(w, r); ok {
		h.respond(w, sess, sess.ShowSchedule())
	}
}

func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	days, err := sess.Calendar()
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	success(w, http.StatusOK, days)
}

func (h *Handler) respond(w http.ResponseWriter, sess *session.Session, err error) {
	if err != nil {
		h.writeError(w, err, sess.View())
		return
	}
	success(w, http.StatusOK, sess.View())
}

// writeError maps package errors to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error, data any) {
	var verr *normalize.ValidationError
	switch {
	case errors.As(err, &verr):
		failure(w, http.StatusBadRequest, "Validation failed", verr.Fields, data)
	case errors.Is(err, session.ErrNotFound):
		failure(w, http.StatusNotFound, "Session not found", nil, nil)
	case errors.Is(err, session.ErrNoSchedule):
		failure(w, http.StatusConflict, "No schedule to show yet", nil, data)
	case errors.Is(err, selection.ErrOutOfRange):
		failure(w, http.StatusBadRequest, "Option index out of range", err.Error(), data)
	case errors.Is(err, context.Canceled):
		failure(w, http.StatusServiceUnavailable, "Request canceled", nil, data)
	default:
		// optimizer failures: the form is kept on the session
		h.log.Errorf("request failed: %v", err)
		failure(w, http.StatusBadGateway, "Failed to generate schedule. Please try again.", err.Error(), data)
	}
}
