package metadata

import (
	"context"
	"strings"
	"time"

	"token-pulse/internal/worker/config"
	"token-pulse/pkg/httpclient"

	"go.uber.org/zap"
)

const (
	DefaultIPFSGateway    = "https://ipfs.io/ipfs/"
	DefaultArweaveGateway = "https://arweave.net/"
)

// Metadata 链下 token 元数据中我们关心的字段
type Metadata struct {
	Image     string `json:"image"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	CreatedOn string `json:"createdOn"`
	Twitter   string `json:"twitter"`
	Telegram  string `json:"telegram"`
	Website   string `json:"website"`
}

type Resolver struct {
	ipfsGateway    string
	arweaveGateway string
	httpClient     *httpclient.HTTPClient
	logger         *zap.Logger
}

func NewResolver(cfg config.MetadataConfig, logger *zap.Logger) *Resolver {
	if cfg.IPFSGateway == "" {
		cfg.IPFSGateway = DefaultIPFSGateway
	}
	if cfg.ArweaveGateway == "" {
		cfg.ArweaveGateway = DefaultArweaveGateway
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Resolver{
		ipfsGateway:    cfg.IPFSGateway,
		arweaveGateway: cfg.ArweaveGateway,
		// 每次只发一次 GET，失败即视为无元数据
		httpClient: httpclient.NewHTTPClient(httpclient.HTTPClientConfig{
			Timeout:    cfg.Timeout,
			MaxRetries: 0,
		}, logger),
		logger: logger,
	}
}

// GatewayURL 把 ipfs:// 和 ar:// 改写成公共网关地址
func (r *Resolver) GatewayURL(uri string) string {
	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		return r.ipfsGateway + strings.TrimPrefix(uri, "ipfs://")
	case strings.HasPrefix(uri, "ar://"):
		return r.arweaveGateway + strings.TrimPrefix(uri, "ar://")
	default:
		return uri
	}
}

// Resolve 拉取并解析元数据，任何失败都返回 nil
func (r *Resolver) Resolve(ctx context.Context, uri string) *Metadata {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}

	url := r.GatewayURL(uri)
	var meta Metadata
	if err := r.httpClient.Get(ctx, url, nil, &meta); err != nil {
		r.logger.Debug("resolve metadata failed", zap.String("uri", uri), zap.Error(err))
		return nil
	}
	return &meta
}
