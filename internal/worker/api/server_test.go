package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/model"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	tokens map[string][]*model.DiscoveryToken
	err    error
	keys   []string
}

func (s *fakeStore) Load(_ context.Context, category, cacheKey string) ([]*model.DiscoveryToken, error) {
	s.keys = append(s.keys, cacheKey)
	if s.err != nil {
		return nil, s.err
	}
	return s.tokens[category], nil
}

type fakeLaunches struct {
	tokens []*model.LaunchToken
	err    error
}

func (f *fakeLaunches) FetchAlmostBonded(context.Context) ([]*model.LaunchToken, error) {
	return f.tokens, f.err
}

func (f *fakeLaunches) FetchMigrated(context.Context) ([]*model.LaunchToken, error) {
	return f.tokens, f.err
}

func (f *fakeLaunches) FetchNewlyCreated(context.Context) ([]*model.LaunchToken, error) {
	return f.tokens, f.err
}

func newTestServer(store TokenLoader, launches LaunchFetcher, hub *Hub) *httptest.Server {
	s := NewServer(config.APIConfig{}, store, launches, hub, zap.NewNop())
	return httptest.NewServer(s.Router())
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.NoError(t, sonic.UnmarshalString(buf.String(), out))
	return resp.StatusCode
}

func TestCategoryRoutes(t *testing.T) {
	store := &fakeStore{tokens: map[string][]*model.DiscoveryToken{
		model.CategoryTrending: {{Mint: "A"}, {Mint: "B"}},
	}}
	srv := newTestServer(store, &fakeLaunches{}, nil)
	defer srv.Close()

	var body struct {
		Count  int                     `json:"count"`
		Tokens []*model.DiscoveryToken `json:"tokens"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/trending-tokens", &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "B", body.Tokens[1].Mint)

	// 空快照返回空数组而不是 null
	var raw map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ai-tokens", &raw))
	assert.Equal(t, float64(0), raw["count"])
	assert.Equal(t, []interface{}{}, raw["tokens"])

	for _, path := range []string{"/bluechip-memes", "/xstock-tokens", "/lsts-tokens", "/popular-tokens"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
	assert.Contains(t, store.keys, "bluechip-memes")
	assert.Contains(t, store.keys, "lsts-tokens")
}

func TestCategoryRouteFailure(t *testing.T) {
	srv := newTestServer(&fakeStore{err: errors.New("redis and db down")}, &fakeLaunches{}, nil)
	defer srv.Close()

	var body errorResponse
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, srv.URL+"/lsts-tokens", &body))
	assert.Equal(t, "Failed to fetch LSTs tokens", body.Error)
}

func TestLaunchRoutes(t *testing.T) {
	name := "Fresh"
	launches := &fakeLaunches{tokens: []*model.LaunchToken{{Mint: "M1", Name: &name}}}
	srv := newTestServer(&fakeStore{}, launches, nil)
	defer srv.Close()

	// almost-bonded 返回裸数组
	var arr []map[string]interface{}
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/almost-bonded-tokens", &arr))
	require.Len(t, arr, 1)
	assert.Equal(t, "M1", arr[0]["mint"])

	for _, path := range []string{"/migrated-tokens", "/newly-created-tokens"} {
		var body map[string]interface{}
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+path, &body))
		assert.Equal(t, float64(1), body["count"], path)
	}

	launches.err = errors.New("upstream 429")
	var body errorResponse
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, srv.URL+"/newly-created-tokens", &body))
	assert.Equal(t, "Failed to fetch newly created tokens", body.Error)
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, srv.URL+"/almost-bonded-tokens", &body))
	assert.Equal(t, "Failed to fetch almost bonded tokens", body.Error)
}

func TestHealth(t *testing.T) {
	s := NewServer(config.APIConfig{}, &fakeStore{}, &fakeLaunches{}, nil, zap.NewNop())
	healthy := true
	s.AddHealthCheck("postgres", func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("connection refused")
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])

	healthy = false
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/healthz", &body))
	assert.Equal(t, "postgres unavailable", body["error"])
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newTestServer(&fakeStore{}, &fakeLaunches{}, hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 5*time.Millisecond)

	ev := model.LiveEvent{Type: model.EventTokenTransfer, Payload: &model.TradeEvent{WalletAddress: "w1", Username: "alice"}}
	require.NoError(t, hub.Publish(context.Background(), ev))

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var got struct {
			Type    string           `json:"type"`
			Payload model.TradeEvent `json:"payload"`
		}
		require.NoError(t, sonic.Unmarshal(raw, &got))
		assert.Equal(t, model.EventTokenTransfer, got.Type)
		assert.Equal(t, "alice", got.Payload.Username)
	}

	second.Close()
	assert.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHubDropsForSlowClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	// 不启动写协程，缓冲写满后应丢弃而不是阻塞
	c := &hubClient{send: make(chan []byte, 1)}
	hub.register(c)

	ev := model.LiveEvent{Type: model.EventNewTokenCreated, Payload: &model.TokenCreatedEvent{Mint: "m"}}
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			_ = hub.Publish(context.Background(), ev)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow client")
	}
	assert.Len(t, c.send, 1)

	hub.unregister(c)
	assert.Zero(t, hub.Len())
}
