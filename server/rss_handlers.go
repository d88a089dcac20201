package server

import (
	"log"
	"net/http"

	"github.com/umputun/quakewatch/pkg/feed"
)

const defaultRSSLimit = 50

// rssHandler serves delivered bulletins as RSS, ?limit=N overrides the default size
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, errNoHistory.Error(), http.StatusNotFound)
		return
	}

	limit := defaultRSSLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		l, err := parseLimit(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		limit = l
	}

	recs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] failed to get bulletins for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	rss, err := feed.NewGenerator(s.cfg.BaseURL).GenerateRSS(recs)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}
