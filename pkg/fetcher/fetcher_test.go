package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchWithRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "qw-test", r.Header.Get("User-Agent"))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<Report/>"))
	}))
	defer ts.Close()

	c := New(Config{Attempts: 3, Delay: time.Millisecond, Timeout: time.Second, UserAgent: "qw-test", Logger: lgr.NoOp})
	body, err := c.FetchWithRetry(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "<Report/>", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_FetchWithRetry_Exhausted(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := New(Config{Attempts: 4, Delay: time.Millisecond, Timeout: time.Second, Logger: lgr.NoOp})
	_, err := c.FetchWithRetry(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, ts.URL, fe.URL)
	assert.Equal(t, 4, fe.Attempts)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestClient_FetchWithRetry_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	c := New(Config{Attempts: 2, Delay: time.Millisecond, Timeout: 20 * time.Millisecond, Logger: lgr.NoOp})
	start := time.Now()
	_, err := c.FetchWithRetry(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClient_FetchWithRetry_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := New(Config{Attempts: 2, Delay: time.Millisecond, Timeout: time.Second, Logger: lgr.NoOp})
	_, err := c.FetchWithRetry(context.Background(), url)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, 3, c.attempts)
	assert.Equal(t, time.Second, c.delay)
	assert.Equal(t, 10*time.Second, c.timeout)
	assert.Equal(t, "quakewatch", c.userAgent)
	assert.NotNil(t, c.client)
	assert.NotNil(t, c.logger)
}
