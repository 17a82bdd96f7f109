package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"token-pulse/internal/worker/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveEmpty(t *testing.T) {
	r := NewResolver(config.MetadataConfig{}, zap.NewNop())
	assert.Nil(t, r.Resolve(context.Background(), ""))
	assert.Nil(t, r.Resolve(context.Background(), "   "))
}

func TestGatewayURL(t *testing.T) {
	r := NewResolver(config.MetadataConfig{}, zap.NewNop())
	assert.Equal(t, "https://ipfs.io/ipfs/abc", r.GatewayURL("ipfs://abc"))
	assert.Equal(t, "https://arweave.net/xyz", r.GatewayURL("ar://xyz"))
	assert.Equal(t, "https://example.com/a.json", r.GatewayURL("https://example.com/a.json"))
}

func TestResolveIPFS(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Dog","symbol":"DOGE","image":"https://img/doge.png","twitter":"https://x.com/doge","createdOn":"https://pump.fun"}`))
	}))
	defer srv.Close()

	r := NewResolver(config.MetadataConfig{IPFSGateway: srv.URL + "/ipfs/", Timeout: time.Second}, zap.NewNop())
	meta := r.Resolve(context.Background(), "ipfs://abc")
	require.NotNil(t, meta)
	assert.Equal(t, "/ipfs/abc", gotPath.Load())
	assert.Equal(t, "https://img/doge.png", meta.Image)
	assert.Equal(t, "DOGE", meta.Symbol)
	assert.Equal(t, "https://x.com/doge", meta.Twitter)
	assert.Equal(t, "https://pump.fun", meta.CreatedOn)
}

func TestResolveFailuresReturnNil(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/garbage":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`<html>not json</html>`))
		}
	}))

	r := NewResolver(config.MetadataConfig{Timeout: time.Second}, zap.NewNop())
	assert.Nil(t, r.Resolve(context.Background(), srv.URL+"/missing"))
	assert.Nil(t, r.Resolve(context.Background(), srv.URL+"/garbage"))
	assert.Equal(t, int32(2), calls.Load())

	srv.Close()
	assert.Nil(t, r.Resolve(context.Background(), srv.URL+"/gone"))
}
