package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/quakewatch/pkg/dispatch"
	"github.com/umputun/quakewatch/pkg/domain"
	"github.com/umputun/quakewatch/pkg/feed"
)

// eqvolServer serves an atom feed and answers 304 when If-Modified-Since matches
type eqvolServer struct {
	mu           sync.Mutex
	entries      [][2]string // id, title
	lastModified string
}

func (e *eqvolServer) publish(id, title, lastModified string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append([][2]string{{id, title}}, e.entries...)
	e.lastModified = lastModified
}

func (e *eqvolServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ims := r.Header.Get("If-Modified-Since"); ims != "" && ims == e.lastModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?><feed xmlns="http://www.w3.org/2005/Atom">` +
		`<title>高頻度（地震火山）</title><id>urn:uuid:eqvol</id><updated>2024-01-01T16:20:00+09:00</updated>`)
	for _, en := range e.entries {
		fmt.Fprintf(&sb, `<entry><title>%s</title><id>%s</id><updated>2024-01-01T07:18:00Z</updated>`+
			`<author><name>気象庁</name></author><link type="application/xml" href="https://example.com/%s.xml"/>`+
			`<content type="text">content</content></entry>`, en[1], en[0], en[0])
	}
	sb.WriteString(`</feed>`)
	w.Header().Set("Last-Modified", e.lastModified)
	w.Header().Set("Content-Type", "application/atom+xml")
	_, _ = w.Write([]byte(sb.String()))
}

type handledLog struct {
	mu  sync.Mutex
	ids []string
}

func (h *handledLog) handler(_ context.Context, e domain.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = append(h.ids, e.ID)
	return nil
}

func (h *handledLog) get() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.ids...)
}

func TestScheduler_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := &eqvolServer{}
	srv.publish("old-1", domain.TitleCombined, "Mon, 01 Jan 2024 07:00:00 GMT")
	srv.publish("old-2", domain.TitleIntensity, "Mon, 01 Jan 2024 07:01:00 GMT")
	ts := httptest.NewServer(srv)
	defer ts.Close()

	handled := &handledLog{}
	d := dispatch.New(dispatch.Config{
		Handlers: dispatch.Handlers{Hypocenter: handled.handler, Intensity: handled.handler, Combined: handled.handler},
		Logger:   lgr.NoOp,
	})
	poller := feed.NewPoller(feed.Config{URL: ts.URL, Logger: lgr.NoOp})
	clock := clockwork.NewFakeClock()
	s := NewScheduler(Params{Poller: poller, Dispatcher: d, Interval: 30 * time.Second, SkipFirst: true,
		Clock: clock, Logger: lgr.NoOp})

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- s.Run(runCtx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	st := s.Status()
	assert.Equal(t, 2, st.Seen)
	assert.Equal(t, "Mon, 01 Jan 2024 07:01:00 GMT", st.LastModified)

	// not modified, nothing new
	clock.Advance(30 * time.Second)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	require.Eventually(t, func() bool { return s.Status().Polls == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, handled.get())

	// new bulletins published, unknown title is seen but not handled
	srv.publish("new-1", domain.TitleHypocenter, "Mon, 01 Jan 2024 07:10:00 GMT")
	srv.publish("new-2", "噴火速報", "Mon, 01 Jan 2024 07:11:00 GMT")
	clock.Advance(30 * time.Second)
	require.Eventually(t, func() bool { return s.Status().Polls == 2 }, time.Second, time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	// republished feed with same entries yields nothing new
	srv.publish("new-1", domain.TitleHypocenter, "Mon, 01 Jan 2024 07:12:00 GMT")
	clock.Advance(30 * time.Second)
	require.Eventually(t, func() bool { return s.Status().Polls == 3 }, time.Second, time.Millisecond)

	stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run didn't stop")
	}

	assert.Equal(t, []string{"new-1"}, handled.get())
	st = s.Status()
	assert.Equal(t, 4, st.Seen)
	assert.Equal(t, 1, st.Dispatched)
	assert.Equal(t, "Mon, 01 Jan 2024 07:12:00 GMT", st.LastModified)
	assert.Equal(t, PhaseStopped, st.Phase)
}
