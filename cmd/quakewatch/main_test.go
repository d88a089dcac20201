package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/quakewatch/pkg/config"
	"github.com/umputun/quakewatch/pkg/domain"
	"github.com/umputun/quakewatch/pkg/notify"
)

// jmaServer serves an atom feed and bulletin documents from jmaxml testdata
type jmaServer struct {
	mu      sync.Mutex
	entries [][2]string // id, title
	fail    bool
	url     string
}

// publish adds entries on top of the feed at once, pairs of id and title
func (j *jmaServer) publish(entries ...[2]string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range entries {
		j.entries = append([][2]string{e}, j.entries...)
	}
}

func (j *jmaServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/data/") {
		data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "jmaxml", "testdata", strings.TrimPrefix(r.URL.Path, "/data/")))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write(data)
		return
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?><feed xmlns="http://www.w3.org/2005/Atom">` +
		`<title>高頻度（地震火山）</title><id>urn:uuid:eqvol</id><updated>2024-01-01T16:20:00+09:00</updated>`)
	for _, en := range j.entries {
		fmt.Fprintf(&sb, `<entry><title>%s</title><id>%s</id><updated>2024-01-01T07:18:00Z</updated>`+
			`<author><name>気象庁</name></author><link type="application/xml" href="%s/data/%s.xml"/>`+
			`<content type="text">content</content></entry>`, en[1], en[0], j.url, en[0])
	}
	sb.WriteString(`</feed>`)
	w.Header().Set("Content-Type", "application/atom+xml")
	_, _ = w.Write([]byte(sb.String()))
}

func startJMA(t *testing.T) *jmaServer {
	t.Helper()
	j := &jmaServer{}
	ts := httptest.NewServer(j)
	t.Cleanup(ts.Close)
	j.url = ts.URL
	t.Setenv("FEED_URL", ts.URL+"/eqvol.xml")
	t.Setenv("DB_PATH", t.TempDir())
	return j
}

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "invalid-config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("invalid: yaml: content: ["), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: cfgPath})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_FeedUnavailable(t *testing.T) {
	j := startJMA(t)
	j.mu.Lock()
	j.fail = true
	j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "testdata/test_config.yml", Listen: "127.0.0.1:18766"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize feed state")
}

func TestRun_ServerStartStop(t *testing.T) {
	j := startJMA(t)
	j.publish([2]string{"combined_cancel", domain.TitleCombined}) // present at startup, never dispatched

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- run(ctx, Opts{Config: "testdata/test_config.yml"}) }()

	base := "http://127.0.0.1:18765"
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/ping")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "pong"
	}, 5*time.Second, 50*time.Millisecond, "server didn't start")

	j.publish([2]string{"combined", domain.TitleCombined}, [2]string{"unrelated", "津波警報・注意報・予報a"})

	var recs []domain.Record
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/v1/bulletins")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		recs = nil
		if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
			return false
		}
		return len(recs) == 1
	}, 10*time.Second, 100*time.Millisecond, "bulletin not delivered")

	assert.Equal(t, "combined", recs[0].EntryID)
	assert.Equal(t, "20240101161010", recs[0].EventID)
	assert.True(t, recs[0].Escalated, "bulletin mentions 石川県")

	resp, err := http.Get(base + "/api/v1/status")
	require.NoError(t, err)
	var status struct {
		Poll struct {
			Seen       int `json:"seen"`
			Dispatched int `json:"dispatched"`
		} `json:"poll"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, 3, status.Poll.Seen)
	assert.Equal(t, 1, status.Poll.Dispatched)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `quakewatch_dispatched_total{kind="combined"} 1`)

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("shutdown timeout")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Poll.SkipFirst = true

	applyOverrides(cfg, Opts{})
	assert.Equal(t, 30*time.Second, cfg.Poll.Interval)
	assert.True(t, cfg.Poll.SkipFirst)
	assert.Empty(t, cfg.Server.Listen)

	applyOverrides(cfg, Opts{Listen: ":9000", Interval: time.Minute, NotSkipFirst: true})
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, time.Minute, cfg.Poll.Interval)
	assert.False(t, cfg.Poll.SkipFirst)
}

func TestBuildTargets(t *testing.T) {
	names := func(targets []notify.Target) []string {
		res := make([]string, 0, len(targets))
		for _, tg := range targets {
			res = append(res, tg.Name())
		}
		return res
	}

	t.Run("no targets falls back to log", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.SetDefaults()
		general, emergency := buildTargets(cfg, lgr.NoOp)
		assert.Equal(t, []string{"log"}, names(general))
		assert.Empty(t, emergency)
	})

	t.Run("all kinds", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.SetDefaults()
		cfg.Notify.Log = true
		cfg.Notify.Discord.General = []string{"https://discord.com/api/webhooks/1/a", "https://discord.com/api/webhooks/2/b"}
		cfg.Notify.Discord.Emergency = []string{"https://discord.com/api/webhooks/3/c"}
		cfg.Notify.LINE.General = []string{"tok1"}
		cfg.Notify.LINE.Emergency = []string{"tok2"}

		general, emergency := buildTargets(cfg, lgr.NoOp)
		assert.Equal(t, []string{"log", "discord-general-1", "discord-general-2", "line-general-1"}, names(general))
		assert.Equal(t, []string{"discord-emergency-1", "line-emergency-1"}, names(emergency))
	})

	t.Run("emergency only", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.SetDefaults()
		cfg.Notify.LINE.Emergency = []string{"tok"}
		general, emergency := buildTargets(cfg, lgr.NoOp)
		assert.Empty(t, general)
		assert.Equal(t, []string{"line-emergency-1"}, names(emergency))
	})
}

func TestSetupLog(t *testing.T) {
	t.Run("debug mode enabled", func(t *testing.T) {
		SetupLog(true)
	})

	t.Run("debug mode disabled", func(t *testing.T) {
		SetupLog(false)
	})

	t.Run("with secrets", func(t *testing.T) {
		SetupLog(true, "secret1", "secret2")
	})
}
