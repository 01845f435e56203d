package links

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHTTPProberHeadRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewHTTPProber(ProbeConfig{Timeout: 2 * time.Second}, nil, zaptest.NewLogger(t))
	status, err := p.Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPProberFollowsRedirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusMovedPermanently)
	}))
	defer srv.Close()

	p := NewHTTPProber(ProbeConfig{Timeout: 2 * time.Second}, nil, zaptest.NewLogger(t))
	status, err := p.Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
}

func TestHTTPProberStatusPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProber(ProbeConfig{Timeout: 2 * time.Second}, nil, zaptest.NewLogger(t))
	status, err := p.Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 404, status)
}

func TestHTTPProberTransportError(t *testing.T) {
	p := NewHTTPProber(ProbeConfig{Timeout: 500 * time.Millisecond}, nil, zaptest.NewLogger(t))
	// Port 1 is never listening.
	_, err := p.Probe(context.Background(), "http://127.0.0.1:1/")
	assert.Error(t, err)
}

func TestHTTPProberCachesStatus(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewHTTPProber(ProbeConfig{Timeout: 2 * time.Second}, cache, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		status, err := p.Probe(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, 200, status)
	}

	// Second and third probes come from the cache.
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
