package discovery

import (
	"context"
	"sync"

	"token-pulse/internal/worker/model"
	"token-pulse/pkg/bitquery"
	"token-pulse/pkg/metadata"

	"github.com/bytedance/sonic"
)

const (
	mintUSDC   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	mintBonk   = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	mintWif    = "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm"
	mintPopcat = "7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr"
	mintJup    = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"
	mintMSol   = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
	mintWSol   = "So11111111111111111111111111111111111111112"
)

// fakeQuerier 按 query 文本返回预置的 data JSON
type fakeQuerier struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
	vars      map[string][]map[string]interface{}
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		responses: make(map[string]string),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
		vars:      make(map[string][]map[string]interface{}),
	}
}

func (q *fakeQuerier) on(query, data string) *fakeQuerier {
	q.responses[query] = data
	return q
}

func (q *fakeQuerier) fail(query string, err error) *fakeQuerier {
	q.errs[query] = err
	return q
}

func (q *fakeQuerier) Query(_ context.Context, query string, variables map[string]interface{}, out interface{}) error {
	q.mu.Lock()
	q.calls[query]++
	q.vars[query] = append(q.vars[query], variables)
	resp, ok := q.responses[query]
	err := q.errs[query]
	q.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok {
		return bitquery.ErrEmptyData
	}
	return sonic.UnmarshalString(resp, out)
}

func (q *fakeQuerier) callCount(query string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls[query]
}

type fakeResolver struct {
	mu    sync.Mutex
	metas map[string]*metadata.Metadata
	calls int
}

func (r *fakeResolver) Resolve(_ context.Context, uri string) *metadata.Metadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.metas[uri]
}

type savedSnapshot struct {
	category string
	cacheKey string
	tokens   []*model.DiscoveryToken
}

type fakeStore struct {
	saved []savedSnapshot
	err   error
}

func (s *fakeStore) Save(_ context.Context, tokens []*model.DiscoveryToken, category, cacheKey string) error {
	s.saved = append(s.saved, savedSnapshot{category: category, cacheKey: cacheKey, tokens: tokens})
	return s.err
}

func strPtr(s string) *string {
	return &s
}

func launchMints(tokens []*model.LaunchToken) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Mint)
	}
	return out
}
