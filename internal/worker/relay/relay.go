package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"token-pulse/internal/worker/config"
	"token-pulse/internal/worker/dao"
	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/monitor"
	"token-pulse/pkg/bitquery"
	"token-pulse/pkg/metadata"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	DefaultReconnectDelay = 5 * time.Second
	defaultDialTimeout    = 15 * time.Second
	writeTimeout          = 10 * time.Second
)

type State int32

const (
	Disconnected State = iota
	Connecting
	Subscribed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Subscribed:
		return "subscribed"
	}
	return "disconnected"
}

// Sink 下游事件接收方，Publish 不应长时间阻塞
type Sink interface {
	Name() string
	Publish(ctx context.Context, ev model.LiveEvent) error
}

type MetadataResolver interface {
	Resolve(ctx context.Context, uri string) *metadata.Metadata
}

type AnalyticsFetcher interface {
	Get(ctx context.Context, mint string) model.AnalyticsResult
}

// Relay 订阅 Bitquery 实时交易和新币事件并转发给所有 Sink
//
// 连接断开后固定延迟重连，重连沿用启动时加载的钱包列表。
// 断线期间的事件不会补发。
type Relay struct {
	url            string
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
	wallets        dao.WalletDAO
	resolver       MetadataResolver
	analytics      AnalyticsFetcher
	sinks          []Sink
	tl             *zap.Logger

	mu    sync.Mutex
	state State
	conn  *websocket.Conn

	walletMap map[string]*model.WatchedWallet
	addresses []string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRelay(streamURL string, cfg config.RelayConfig, wallets dao.WalletDAO, resolver MetadataResolver, analytics AnalyticsFetcher, sinks []Sink, logger *zap.Logger) *Relay {
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	return &Relay{
		url: streamURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: dialTimeout,
			Subprotocols:     []string{subprotocol},
		},
		reconnectDelay: delay,
		wallets:        wallets,
		resolver:       resolver,
		analytics:      analytics,
		sinks:          sinks,
		tl:             logger,
		walletMap:      make(map[string]*model.WatchedWallet),
	}
}

func (r *Relay) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Relay) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Start 加载关注钱包后在后台维持订阅，ctx 取消或 Stop 时退出
func (r *Relay) Start(ctx context.Context) error {
	if r.wallets != nil {
		wallets, err := r.wallets.ListWatched(ctx)
		if err != nil {
			return fmt.Errorf("load watched wallets: %w", err)
		}
		for _, w := range wallets {
			r.walletMap[w.Address] = w
			r.addresses = append(r.addresses, w.Address)
		}
	}
	r.tl.Info("Relay starting", zap.Int("wallets", len(r.addresses)))

	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	r.wg.Add(1)
	go r.run(runCtx)
	return nil
}

func (r *Relay) Stop(ctx context.Context) {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		r.tl.Info("Relay stopped")
	case <-ctx.Done():
		r.tl.Warn("Relay stop timeout")
	}
}

func (r *Relay) run(ctx context.Context) {
	defer r.wg.Done()
	for {
		err := r.session(ctx)
		r.setState(Disconnected)
		if ctx.Err() != nil {
			return
		}
		r.tl.Warn("Relay connection closed, reconnecting", zap.Duration("delay", r.reconnectDelay), zap.Error(err))

		timer := time.NewTimer(r.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		monitor.RelayReconnects.Inc()
	}
}

// session 维持一条连接直到关闭，返回关闭原因
func (r *Relay) session(ctx context.Context) error {
	r.setState(Connecting)
	conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	done := make(chan struct{})
	defer func() {
		close(done)
		r.mu.Lock()
		r.conn = nil
		r.mu.Unlock()
		_ = conn.Close()
	}()
	// ctx 取消时关闭连接以打断阻塞的读
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	if err := r.send(conn, "", msgConnectionInit, nil); err != nil {
		return err
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var msg operationMessage
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			r.tl.Warn("Relay received malformed frame", zap.Error(err))
			continue
		}
		if err := r.handleMessage(ctx, conn, msg); err != nil {
			return err
		}
	}
}

func (r *Relay) handleMessage(ctx context.Context, conn *websocket.Conn, msg operationMessage) error {
	switch msg.Type {
	case msgConnectionAck:
		if err := r.subscribe(conn); err != nil {
			return err
		}
		r.setState(Subscribed)
		r.tl.Info("Relay subscribed", zap.Int("wallets", len(r.addresses)))
	case msgData:
		var payload dataPayload
		if err := sonic.Unmarshal(msg.Payload, &payload); err != nil {
			r.tl.Warn("Relay data payload decode failed", zap.String("id", msg.ID), zap.Error(err))
			return nil
		}
		if len(payload.Errors) > 0 {
			r.tl.Warn("Relay data carries errors", zap.String("id", msg.ID), zap.String("error", payload.Errors[0].Message))
		}
		r.dispatch(ctx, msg.ID, payload.Data)
	case msgError:
		r.tl.Error("Relay subscription error", zap.String("id", msg.ID), zap.ByteString("payload", msg.Payload))
	case msgConnectionError:
		return errors.New("connection_error: " + string(msg.Payload))
	case msgComplete:
		r.tl.Warn("Relay subscription completed by upstream", zap.String("id", msg.ID))
	case msgKeepAlive:
	default:
		r.tl.Debug("Relay ignored frame", zap.String("type", msg.Type))
	}
	return nil
}

func (r *Relay) subscribe(conn *websocket.Conn) error {
	trades := startPayload{
		Query:     bitquery.WalletTradesSubscription,
		Variables: map[string]interface{}{"walletAddresses": r.walletAddresses()},
	}
	if err := r.send(conn, SubWalletTrades, msgStart, trades); err != nil {
		return err
	}
	return r.send(conn, SubNewTokens, msgStart, startPayload{Query: bitquery.NewTokensSubscription})
}

func (r *Relay) walletAddresses() []string {
	if r.addresses == nil {
		return []string{}
	}
	return r.addresses
}

// send 只在 session 所在 goroutine 调用，无并发写
func (r *Relay) send(conn *websocket.Conn, id, typ string, payload interface{}) error {
	b, err := encodeMessage(id, typ, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", typ, err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("write %s: %w", typ, err)
	}
	return nil
}

func (r *Relay) dispatch(ctx context.Context, id string, data []byte) {
	switch id {
	case SubWalletTrades:
		var trades bitquery.WalletTradesData
		if err := sonic.Unmarshal(data, &trades); err != nil {
			r.tl.Warn("Decode wallet trades failed", zap.Error(err))
			return
		}
		for _, ev := range r.tradeEvents(trades) {
			r.publish(ctx, model.LiveEvent{Type: model.EventTokenTransfer, Payload: ev})
		}
	case SubNewTokens:
		var created bitquery.InstructionsData
		if err := sonic.Unmarshal(data, &created); err != nil {
			r.tl.Warn("Decode new tokens failed", zap.Error(err))
			return
		}
		for _, inst := range created.Solana.Instructions {
			ev := r.tokenCreatedEvent(ctx, inst)
			if ev == nil {
				continue
			}
			r.publish(ctx, model.LiveEvent{Type: model.EventNewTokenCreated, Payload: ev})
		}
	default:
		r.tl.Debug("Relay data for unknown subscription", zap.String("id", id))
	}
}

// publish 逐个 Sink 发送，单个失败只记录
func (r *Relay) publish(ctx context.Context, ev model.LiveEvent) {
	for _, s := range r.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			r.tl.Warn("Publish live event failed", zap.String("sink", s.Name()), zap.String("type", ev.Type), zap.Error(err))
			continue
		}
		monitor.RelayEventsPublished.WithLabelValues(ev.Type, s.Name()).Inc()
	}
}
