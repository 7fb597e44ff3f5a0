package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaennil/guide_helper/backend/seeder/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	var gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAgent = r.UserAgent()
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(Config{}, logger.NewNoOp())

	err := f.Fetch(context.Background(), server.URL+"/geoserver/wms", "LAYERS=a&BBOX=-45,45,0,90&WIDTH=256&HEIGHT=256")
	require.NoError(t, err)
	assert.Equal(t, "LAYERS=a&BBOX=-45,45,0,90&WIDTH=256&HEIGHT=256", gotQuery)
	assert.Equal(t, defaultUserAgent, gotAgent)
}

func TestHTTPFetcher_Fetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewHTTPFetcher(Config{}, logger.NewNoOp())

	err := f.Fetch(context.Background(), server.URL, "BBOX=0,0,1,1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode())
	assert.Equal(t, "endpoint returned status 502 Bad Gateway", err.Error())
}

func TestHTTPFetcher_Fetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f := NewHTTPFetcher(Config{Timeout: time.Second}, logger.NewNoOp())
	err := f.Fetch(context.Background(), url, "BBOX=0,0,1,1")
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestHTTPFetcher_Fetch_UsesGivenEndpoint(t *testing.T) {
	var hitsA, hitsB atomic.Int64
	serverA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hitsA.Add(1) }))
	defer serverA.Close()
	serverB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hitsB.Add(1) }))
	defer serverB.Close()

	f := NewHTTPFetcher(Config{}, logger.NewNoOp())
	require.NoError(t, f.Fetch(context.Background(), serverA.URL, "BBOX=0,0,1,1"))
	require.NoError(t, f.Fetch(context.Background(), serverB.URL, "BBOX=0,0,1,1"))
	require.NoError(t, f.Fetch(context.Background(), serverB.URL, "BBOX=1,1,2,2"))

	assert.Equal(t, int64(1), hitsA.Load())
	assert.Equal(t, int64(2), hitsB.Load())

	assert.ErrorIs(t, f.Fetch(context.Background(), "", "BBOX=0,0,1,1"), ErrNoEndpoint)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "http://cache:3128/geoserver/wms?BBOX=1,2,3,4", URL("http://cache:3128/geoserver/wms", "BBOX=1,2,3,4"))
	assert.Equal(t, "http://cache/wms?map=ocean&BBOX=1,2,3,4", URL("http://cache/wms?map=ocean", "BBOX=1,2,3,4"))
	assert.Equal(t, "http://cache/wms?BBOX=1,2,3,4", URL("http://cache/wms?", "BBOX=1,2,3,4"))
}
