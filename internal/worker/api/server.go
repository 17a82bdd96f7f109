package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/model"
	"token-pulse/pkg/logger"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const tracerName = "token-pulse/api"

// TokenLoader 读取类目快照
type TokenLoader interface {
	Load(ctx context.Context, category, cacheKey string) ([]*model.DiscoveryToken, error)
}

// LaunchFetcher 按需拉取的发射相关类目
type LaunchFetcher interface {
	FetchAlmostBonded(ctx context.Context) ([]*model.LaunchToken, error)
	FetchMigrated(ctx context.Context) ([]*model.LaunchToken, error)
	FetchNewlyCreated(ctx context.Context) ([]*model.LaunchToken, error)
}

type HealthCheck func(ctx context.Context) error

type Server struct {
	cfg      config.APIConfig
	store    TokenLoader
	launches LaunchFetcher
	hub      *Hub
	checks   map[string]HealthCheck
	server   *http.Server
	tl       *zap.Logger
}

func NewServer(cfg config.APIConfig, store TokenLoader, launches LaunchFetcher, hub *Hub, logger *zap.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		launches: launches,
		hub:      hub,
		checks:   make(map[string]HealthCheck),
		tl:       logger,
	}
	if cfg.Enable && cfg.Addr != "" {
		s.server = &http.Server{
			Addr:              cfg.Addr,
			Handler:           s.Router(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		}
	}
	return s
}

// AddHealthCheck 在 Run 之前调用
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.traceMiddleware)

	r.HandleFunc("/healthz", s.HandleHealth).Methods(http.MethodGet)
	for _, route := range categoryRoutes {
		r.HandleFunc(route.path(), s.handleCategory(route)).Methods(http.MethodGet)
	}
	r.HandleFunc("/almost-bonded-tokens", s.HandleAlmostBonded).Methods(http.MethodGet)
	r.HandleFunc("/migrated-tokens", s.HandleMigrated).Methods(http.MethodGet)
	r.HandleFunc("/newly-created-tokens", s.HandleNewlyCreated).Methods(http.MethodGet)
	if s.hub != nil {
		r.HandleFunc("/ws", s.hub.ServeWS)
	}
	return r
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := logger.StartSpanWithRequest(r, tracerName, r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) Run() {
	if s.server == nil {
		return
	}

	go func() {
		s.tl.Info("API server listening", zap.String("addr", s.cfg.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.tl.Error("API server stopped", zap.Error(err))
		}
	}()
}

// Stop 先断开 WebSocket 客户端，再优雅关闭 HTTP 服务
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if s.hub != nil {
		s.hub.Close()
	}

	s.server.SetKeepAlivesEnabled(false)
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
