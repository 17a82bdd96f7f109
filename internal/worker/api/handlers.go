package api

import (
	"context"
	"net/http"

	"token-pulse/internal/worker/model"
	"token-pulse/pkg/logger"
	"token-pulse/pkg/utils"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

type categoryRoute struct {
	category string
	label    string
}

func (r categoryRoute) path() string {
	return "/" + utils.CategoryCacheKey(r.category)
}

var categoryRoutes = []categoryRoute{
	{category: model.CategoryBluechipMeme, label: "BlueChip Meme tokens"},
	{category: model.CategoryXStock, label: "xStock tokens"},
	{category: model.CategoryLsts, label: "LSTs tokens"},
	{category: model.CategoryAI, label: "AI tokens"},
	{category: model.CategoryTrending, label: "trending tokens"},
	{category: model.CategoryPopular, label: "popular tokens"},
}

type listResponse[T any] struct {
	Count  int `json:"count"`
	Tokens []T `json:"tokens"`
}

func newListResponse[T any](tokens []T) listResponse[T] {
	if tokens == nil {
		tokens = []T{}
	}
	return listResponse[T]{Count: len(tokens), Tokens: tokens}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func (s *Server) fail(ctx context.Context, w http.ResponseWriter, label string, err error) {
	logger.WithTrace(ctx, s.tl).Error("Request failed", zap.String("target", label), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch " + label})
}

func (s *Server) handleCategory(route categoryRoute) http.HandlerFunc {
	cacheKey := utils.CategoryCacheKey(route.category)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tokens, err := s.store.Load(ctx, route.category, cacheKey)
		if err != nil {
			s.fail(ctx, w, route.label, err)
			return
		}
		writeJSON(w, http.StatusOK, newListResponse(tokens))
	}
}

// HandleAlmostBonded 返回裸数组
func (s *Server) HandleAlmostBonded(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokens, err := s.launches.FetchAlmostBonded(ctx)
	if err != nil {
		s.fail(ctx, w, "almost bonded tokens", err)
		return
	}
	if tokens == nil {
		tokens = []*model.LaunchToken{}
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (s *Server) HandleMigrated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokens, err := s.launches.FetchMigrated(ctx)
	if err != nil {
		s.fail(ctx, w, "migrated tokens", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(tokens))
}

func (s *Server) HandleNewlyCreated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokens, err := s.launches.FetchNewlyCreated(ctx)
	if err != nil {
		s.fail(ctx, w, "newly created tokens", err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(tokens))
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.tl.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "errored", "error": name + " unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
