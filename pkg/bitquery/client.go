package bitquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"token-pulse/internal/worker/config"
	"token-pulse/pkg/httpclient"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const (
	DefaultURL   = "https://streaming.bitquery.io/eap"
	DefaultWSURL = "wss://streaming.bitquery.io/eap"
)

var ErrEmptyData = errors.New("bitquery: empty data")

// GraphQLError 上游返回的 GraphQL 错误
type GraphQLError struct {
	Message string `json:"message"`
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

type Client struct {
	url        string
	wsURL      string
	token      string
	httpClient *httpclient.HTTPClient
	logger     *zap.Logger
}

func NewClient(cfg config.BitqueryConfig, logger *zap.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.WSURL == "" {
		cfg.WSURL = DefaultWSURL
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := httpclient.NewHTTPClient(httpclient.HTTPClientConfig{
		Timeout:     timeout,
		RateLimit:   cfg.RateLimit,
		MaxRetries:  cfg.MaxRetries,
		BearerToken: cfg.AuthToken,
	}, logger)

	return &Client{
		url:        cfg.URL,
		wsURL:      cfg.WSURL,
		token:      cfg.AuthToken,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Query 执行一次 GraphQL 查询，把 data 字段解析到 out
func (c *Client) Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	var resp graphQLResponse
	req := graphQLRequest{Query: query, Variables: variables}
	if err := c.httpClient.PostJSON(ctx, c.url, req, nil, &resp); err != nil {
		return fmt.Errorf("bitquery request: %w", err)
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		if len(resp.Errors) > 0 {
			return fmt.Errorf("bitquery: %s", joinMessages(resp.Errors))
		}
		return ErrEmptyData
	}
	if len(resp.Errors) > 0 {
		// 部分成功时 data 仍然可用
		c.logger.Warn("bitquery returned partial errors", zap.String("errors", joinMessages(resp.Errors)))
	}

	if err := sonic.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode bitquery data: %w", err)
	}
	return nil
}

// StreamURL 订阅地址，token 通过 query 参数传递
func (c *Client) StreamURL() string {
	if c.token == "" {
		return c.wsURL
	}
	sep := "?"
	if strings.Contains(c.wsURL, "?") {
		sep = "&"
	}
	return c.wsURL + sep + "token=" + url.QueryEscape(c.token)
}

func joinMessages(errs []GraphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
