package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultBulletinsLimit = 20
	maxBulletinsLimit     = 500
)

var errNoHistory = errors.New("history store is disabled")

// statusHandler returns server and poll loop status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.cfg.Version,
		"time":    time.Now().UTC(),
		"history": s.history != nil,
	}
	if s.status != nil {
		status["poll"] = s.status.Status()
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// bulletinsHandler returns recent delivered bulletins, GET /api/v1/bulletins?limit=N
func (s *Server) bulletinsHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		RenderError(w, r, errNoHistory, http.StatusNotFound)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	recs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] failed to get bulletins: %v", err)
		RenderError(w, r, errors.New("can't get bulletins"), http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, recs)
}

// eventHandler returns all bulletins of an earthquake event, GET /api/v1/events/{id}
func (s *Server) eventHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		RenderError(w, r, errNoHistory, http.StatusNotFound)
		return
	}

	eventID := r.PathValue("id")
	recs, err := s.history.ByEvent(r.Context(), eventID)
	if err != nil {
		log.Printf("[ERROR] failed to get bulletins of event %s: %v", eventID, err)
		RenderError(w, r, errors.New("can't get bulletins"), http.StatusInternalServerError)
		return
	}
	if len(recs) == 0 {
		RenderError(w, r, errors.New("event not found"), http.StatusNotFound)
		return
	}
	RenderJSON(w, r, http.StatusOK, recs)
}

// parseLimit returns default for empty value and caps large ones
func parseLimit(v string) (int, error) {
	if v == "" {
		return defaultBulletinsLimit, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 1 {
		return 0, errors.New("limit must be a positive number")
	}
	return min(limit, maxBulletinsLimit), nil
}
