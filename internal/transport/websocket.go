package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/NCrashed/mutinynet-indexer/internal/model"
	"github.com/NCrashed/mutinynet-indexer/internal/pubsub"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// sendBacklog bounds queued outgoing frames per client; a client that stops
// reading past it is disconnected.
const sendBacklog = 256

const writeTimeout = 10 * time.Second

type (
	// Repository is the query surface backing the API methods.
	Repository interface {
		RangeHistoryAll(ctx context.Context, network model.Network, start, end *uint32) ([]model.VaultEvent, error)
		VaultHistory(ctx context.Context, network model.Network, vaultID chainhash.Hash, start, end *uint32) ([]model.VaultEvent, error)
		ActionHistory(ctx context.Context, network model.Network, action model.VaultAction, bucketSeconds uint32) ([]model.ActionVolume, error)
		OverallVolume(ctx context.Context, network model.Network) (model.OverallVolume, error)
	}

	// Metrics observes connections and request handling.
	Metrics interface {
		ConnectionOpened()
		ConnectionClosed()
		ObserveRequest(method string, err error, started time.Time)
		ObserveDroppedSubscriber()
	}
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server is the WebSocket endpoint: request/response queries plus pushed
// NewTranscation frames from the notification bus.
type Server struct {
	addr    string
	network model.Network
	repo    Repository
	bus     *pubsub.Bus[model.VaultEvent]
	metrics Metrics
	logger  *zap.Logger
}

// NewServer builds a Server bound to addr.
func NewServer(
	addr string,
	network model.Network,
	repo Repository,
	bus *pubsub.Bus[model.VaultEvent],
	metrics Metrics,
	logger *zap.Logger,
) (*Server, error) {
	if metrics == nil {
		return nil, errors.New("websocket metrics is required")
	}
	return &Server{
		addr:    addr,
		network: network,
		repo:    repo,
		bus:     bus,
		metrics: metrics,
		logger:  logger.Named("websocket"),
	}, nil
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           cors.Default().Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("failed to shutdown websocket server", zap.Error(err))
		}
	}()

	s.logger.Info("websocket server listening", zap.String("addr", s.addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket server: %w", err)
	}
	return nil
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	s.handleConn(r.Context(), conn, r.RemoteAddr)
}

// handleConn owns one client: a writer goroutine draining the send queue, a
// notifier goroutine forwarding bus events, and the request read loop.
func (s *Server) handleConn(ctx context.Context, conn *websocket.Conn, addr string) {
	s.metrics.ConnectionOpened()
	logger := s.logger.With(zap.String("client", addr))
	logger.Debug("client connected")

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		_ = conn.Close()
		s.metrics.ConnectionClosed()
		logger.Debug("client disconnected")
	}()

	send := make(chan []byte, sendBacklog)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case frame, ok := <-send:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					logger.Debug("write failed", zap.Error(err))
					cancel()
					return
				}
			}
		}
	}()

	sub := s.bus.Subscribe()
	defer sub.Cancel()
	go func() {
		for event := range sub.C {
			frame, err := json.Marshal(notification{NewTranscation: newVaultTxInfo(event)})
			if err != nil {
				logger.Error("failed to encode notification", zap.Error(err))
				continue
			}
			select {
			case send <- frame:
			default:
				// The client stopped reading; cut it loose rather than
				// stall the feed.
				logger.Warn("dropping slow client")
				s.metrics.ObserveDroppedSubscriber()
				cancel()
				return
			}
		}
	}()

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read failed", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			s.reply(ctx, send, errorResponse{Error: "expected JSON text frame"})
			return
		}

		response := s.handleRequest(ctx, payload, logger)
		s.reply(ctx, send, response)
	}
}

func (s *Server) reply(ctx context.Context, send chan<- []byte, response interface{}) {
	frame, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		return
	}
	select {
	case <-ctx.Done():
	case send <- frame:
	}
}

// handleRequest dispatches one client frame; malformed requests produce an
// error frame and leave the connection open.
func (s *Server) handleRequest(ctx context.Context, payload []byte, logger *zap.Logger) interface{} {
	started := time.Now()
	var envelope request
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.metrics.ObserveRequest("invalid", err, started)
		return errorResponse{Error: fmt.Sprintf("decode request: %v", err)}
	}

	response, err := s.dispatch(ctx, envelope.Method, payload)
	s.metrics.ObserveRequest(envelope.Method, err, started)
	if err != nil {
		logger.Warn("request failed",
			zap.String("method", envelope.Method), zap.Error(err))
		return errorResponse{Error: err.Error()}
	}
	return response
}

func (s *Server) dispatch(ctx context.Context, method string, payload []byte) (interface{}, error) {
	switch method {
	case "range_history_all":
		var req rangeHistoryRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode range_history_all: %w", err)
		}
		events, err := s.repo.RangeHistoryAll(ctx, s.network, req.TimestampStart, req.TimestampEnd)
		if err != nil {
			return nil, err
		}
		return allHistoryResponse{AllHistory: newVaultTxInfos(events)}, nil

	case "vault_history_tx":
		var req vaultHistoryRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode vault_history_tx: %w", err)
		}
		vaultID, err := chainhash.NewHashFromStr(req.VaultOpenTxid)
		if err != nil {
			return nil, fmt.Errorf("invalid vault_open_txid %q: %w", req.VaultOpenTxid, err)
		}
		events, err := s.repo.VaultHistory(ctx, s.network, *vaultID, req.TimestampStart, req.TimestampEnd)
		if err != nil {
			return nil, err
		}
		return vaultHistoryResponse{VaultHistory: newVaultTxInfos(events)}, nil

	case "action_history":
		var req actionHistoryRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode action_history: %w", err)
		}
		action, err := model.ParseVaultAction(req.Action)
		if err != nil {
			return nil, err
		}
		span := model.SpanDay
		if req.Timespan != nil {
			span = model.TimeSpan(*req.Timespan)
		}
		width, err := span.Seconds()
		if err != nil {
			return nil, err
		}
		buckets, err := s.repo.ActionHistory(ctx, s.network, action, width)
		if err != nil {
			return nil, err
		}
		return actionHistoryResponse{ActionHistory: buckets}, nil

	case "overall_volume":
		volume, err := s.repo.OverallVolume(ctx, s.network)
		if err != nil {
			return nil, err
		}
		return overallVolumeResponse{OveallVolume: volume}, nil

	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}
