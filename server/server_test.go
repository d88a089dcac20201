package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/quakewatch/pkg/domain"
	"github.com/umputun/quakewatch/pkg/scheduler"
	"github.com/umputun/quakewatch/server/mocks"
)

func testRecords() []domain.Record {
	ts := time.Date(2024, 1, 1, 7, 10, 0, 0, time.UTC)
	return []domain.Record{
		{EntryID: "e2", EventID: "20240101161010", Kind: "intensity", Title: "震度速報",
			Link: "https://example.com/e2.xml", ReportTime: ts.Add(time.Minute), Text: "震度速報\n石川県 震度7", Escalated: true},
		{EntryID: "e1", EventID: "20240101161010", Kind: "hypocenter", Title: "震源に関する情報",
			Link: "https://example.com/e1.xml", ReportTime: ts, Text: "震源に関する情報"},
	}
}

func newTestServer(t *testing.T, params Params) *Server {
	t.Helper()
	return New(Config{Listen: "127.0.0.1:0", BaseURL: "http://quake.example.com", Version: "test"}, params)
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestServer_Ping(t *testing.T) {
	s := newTestServer(t, Params{})
	w := serve(s, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "quakewatch", w.Header().Get("App-Name"))
	assert.Equal(t, "test", w.Header().Get("App-Version"))
}

func TestServer_Status(t *testing.T) {
	started := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	statusMock := &mocks.StatusProviderMock{StatusFunc: func() scheduler.Status {
		return scheduler.Status{Phase: scheduler.PhaseIdle, StartedAt: started, Polls: 3, Seen: 42,
			LastModified: "Mon, 01 Jan 2024 07:12:00 GMT", Dispatched: 2, Interval: "30s"}
	}}
	s := newTestServer(t, Params{Status: statusMock})

	w := serve(s, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Status  string           `json:"status"`
		Version string           `json:"version"`
		History bool             `json:"history"`
		Poll    scheduler.Status `json:"poll"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.False(t, resp.History)
	assert.Equal(t, scheduler.PhaseIdle, resp.Poll.Phase)
	assert.Equal(t, 42, resp.Poll.Seen)
	assert.Equal(t, 2, resp.Poll.Dispatched)
	assert.True(t, resp.Poll.StartedAt.Equal(started))
	assert.Len(t, statusMock.StatusCalls(), 1)
}

func TestServer_StatusWithoutLoop(t *testing.T) {
	s := newTestServer(t, Params{})
	w := serve(s, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"poll"`)
}

func TestServer_Bulletins(t *testing.T) {
	histMock := &mocks.HistoryMock{RecentFunc: func(_ context.Context, limit int) ([]domain.Record, error) {
		return testRecords(), nil
	}}
	s := newTestServer(t, Params{History: histMock})

	tests := []struct {
		name      string
		target    string
		code      int
		wantLimit int
	}{
		{name: "default limit", target: "/api/v1/bulletins", code: http.StatusOK, wantLimit: 20},
		{name: "custom limit", target: "/api/v1/bulletins?limit=5", code: http.StatusOK, wantLimit: 5},
		{name: "capped limit", target: "/api/v1/bulletins?limit=100000", code: http.StatusOK, wantLimit: 500},
		{name: "bad limit", target: "/api/v1/bulletins?limit=abc", code: http.StatusBadRequest},
		{name: "zero limit", target: "/api/v1/bulletins?limit=0", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(histMock.RecentCalls())
			w := serve(s, http.MethodGet, tt.target)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				assert.Len(t, histMock.RecentCalls(), before)
				assert.Contains(t, w.Body.String(), "limit must be a positive number")
				return
			}
			calls := histMock.RecentCalls()
			require.Len(t, calls, before+1)
			assert.Equal(t, tt.wantLimit, calls[len(calls)-1].Limit)

			var recs []domain.Record
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
			require.Len(t, recs, 2)
			assert.Equal(t, "e2", recs[0].EntryID)
			assert.True(t, recs[0].Escalated)
		})
	}
}

func TestServer_BulletinsError(t *testing.T) {
	histMock := &mocks.HistoryMock{RecentFunc: func(context.Context, int) ([]domain.Record, error) {
		return nil, errors.New("database is locked")
	}}
	s := newTestServer(t, Params{History: histMock})

	w := serve(s, http.MethodGet, "/api/v1/bulletins")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "can't get bulletins")
	assert.NotContains(t, w.Body.String(), "database is locked")
}

func TestServer_NoHistory(t *testing.T) {
	s := newTestServer(t, Params{})
	for _, target := range []string{"/api/v1/bulletins", "/api/v1/events/20240101161010", "/rss"} {
		t.Run(target, func(t *testing.T) {
			w := serve(s, http.MethodGet, target)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Body.String(), "history store is disabled")
		})
	}
}

func TestServer_Event(t *testing.T) {
	histMock := &mocks.HistoryMock{ByEventFunc: func(_ context.Context, eventID string) ([]domain.Record, error) {
		if eventID == "20240101161010" {
			return testRecords(), nil
		}
		return nil, nil
	}}
	s := newTestServer(t, Params{History: histMock})

	t.Run("found", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/api/v1/events/20240101161010")
		require.Equal(t, http.StatusOK, w.Code)
		var recs []domain.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
		assert.Len(t, recs, 2)
	})

	t.Run("not found", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/api/v1/events/unknown")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "event not found")
	})

	calls := histMock.ByEventCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "20240101161010", calls[0].EventID)
	assert.Equal(t, "unknown", calls[1].EventID)
}

func TestServer_RSS(t *testing.T) {
	histMock := &mocks.HistoryMock{RecentFunc: func(context.Context, int) ([]domain.Record, error) {
		return testRecords(), nil
	}}
	s := newTestServer(t, Params{History: histMock})

	w := serve(s, http.MethodGet, "/rss")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, "<title>震度速報</title>")
	assert.Contains(t, body, "http://quake.example.com/rss")
	assert.Contains(t, body, "https://example.com/e1.xml")
	assert.Equal(t, 50, histMock.RecentCalls()[0].Limit)

	w = serve(s, http.MethodGet, "/rss?limit=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, histMock.RecentCalls()[1].Limit)

	w = serve(s, http.MethodGet, "/rss?limit=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_RSSError(t *testing.T) {
	histMock := &mocks.HistoryMock{RecentFunc: func(context.Context, int) ([]domain.Record, error) {
		return nil, errors.New("closed")
	}}
	s := newTestServer(t, Params{History: histMock})
	w := serve(s, http.MethodGet, "/rss")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "quakewatch_test_total", Help: "test counter"})
	reg.MustRegister(c)
	c.Add(3)

	s := newTestServer(t, Params{Gatherer: reg})
	w := serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quakewatch_test_total 3")

	s = newTestServer(t, Params{})
	w = serve(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RunShutdown(t *testing.T) {
	s := newTestServer(t, Params{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server didn't stop")
	}
}

func TestServer_RunBadAddress(t *testing.T) {
	s := New(Config{Listen: "bad-address:-1"}, Params{})
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server error")
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "", want: 20},
		{in: "1", want: 1},
		{in: "500", want: 500},
		{in: "501", want: 500},
		{in: "0", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLimit(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
