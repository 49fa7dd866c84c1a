package p2p

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"go.uber.org/zap"
)

// protocolVersion is what we announce; 70016 covers everything we use.
const protocolVersion = 70016

const (
	defaultDialTimeout = 30 * time.Second
	defaultReadTimeout = 5 * time.Minute
	defaultPingEvery   = 2 * time.Minute
	// eventBacklog bounds unprocessed events; header batches during initial
	// sync are the largest producer.
	eventBacklog = 1024
)

// ErrReadTimeout terminates a session whose peer went silent.
var ErrReadTimeout = errors.New("peer read timeout")

// Metrics observes session traffic. Implementations must be nil-safe per
// method receiver; a nil Metrics disables observation.
type Metrics interface {
	ObserveMessage(direction, command string)
	ObserveDisconnect(reason string)
}

// Config parameterizes a session.
type Config struct {
	// Address is the peer in host:port form.
	Address string
	// Magic is the network message-start value frames are tagged with.
	Magic wire.BitcoinNet
	// UserAgent is appended to the announced agent list.
	UserAgent string
	// StartHeight is our best height announced in the version message.
	StartHeight int32
	// Services we claim; the indexer claims none.
	Services wire.ServiceFlag

	DialTimeout time.Duration
	ReadTimeout time.Duration
	PingEvery   time.Duration

	Logger  *zap.Logger
	Metrics Metrics
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.DialTimeout == 0 {
		out.DialTimeout = defaultDialTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaultReadTimeout
	}
	if out.PingEvery == 0 {
		out.PingEvery = defaultPingEvery
	}
	if out.UserAgent == "" {
		out.UserAgent = "mutinynet-indexer"
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return out
}

// Session is one live peer connection. Create with Dial or NewSession; the
// session terminates on Close, on protocol violation or on peer loss, always
// emitting a final DisconnectedEvent.
type Session struct {
	cfg    Config
	conn   net.Conn
	logger *zap.Logger

	events chan Event

	writeMu sync.Mutex

	remoteVersion uint32
	remoteHeight  int32

	closeOnce sync.Once
	closed    chan struct{}
	// reason is set once inside closeOnce, read by the read loop after the
	// closed channel is observed.
	reason error
}

// Dial connects to the configured peer and performs the handshake before
// returning. The returned session is already emitting events.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	dialer := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Address, err)
	}
	return NewSession(conn, cfg)
}

// NewSession runs the protocol over an established connection. It blocks
// until the handshake finishes and fails if the peer misbehaves during it.
func NewSession(conn net.Conn, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:    cfg,
		conn:   conn,
		logger: cfg.Logger.Named("p2p"),
		events: make(chan Event, eventBacklog),
		closed: make(chan struct{}),
	}

	if err := s.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s.emit(ReadyEvent{
		RemoteHeight:  s.remoteHeight,
		RemoteVersion: s.remoteVersion,
	})

	go s.readLoop()
	go s.pingLoop()
	return s, nil
}

// Events is the session's output stream. It is closed after the final
// DisconnectedEvent.
func (s *Session) Events() <-chan Event {
	return s.events
}

// RemoteHeight is the peer's announced best height at handshake time.
func (s *Session) RemoteHeight() int32 {
	return s.remoteHeight
}

// Close tears the connection down; pending events are still delivered.
func (s *Session) Close() {
	s.shutdown(nil)
}

// RequestHeaders asks the peer for headers after the locator; the peer
// responds with up to 2000 headers following the first locator hash it
// knows.
func (s *Session) RequestHeaders(locator []*chainhash.Hash, stop chainhash.Hash) error {
	msg := wire.NewMsgGetHeaders()
	msg.ProtocolVersion = protocolVersion
	msg.HashStop = stop
	for _, hash := range locator {
		if err := msg.AddBlockLocatorHash(hash); err != nil {
			return fmt.Errorf("build locator: %w", err)
		}
	}
	return s.send(msg)
}

// RequestBlocks asks for full blocks by hash; replies arrive as BlockEvents
// in request order. The caller owns windowing and backpressure.
func (s *Session) RequestBlocks(hashes []chainhash.Hash) error {
	msg := wire.NewMsgGetData()
	for i := range hashes {
		if err := msg.AddInvVect(wire.NewInvVect(wire.InvTypeBlock, &hashes[i])); err != nil {
			return fmt.Errorf("build getdata: %w", err)
		}
	}
	return s.send(msg)
}

// handshake speaks the version/verack exchange synchronously.
func (s *Session) handshake() error {
	local := &wire.NetAddress{}
	remote := &wire.NetAddress{}
	if addr, ok := s.conn.RemoteAddr().(*net.TCPAddr); ok {
		remote = wire.NewNetAddress(addr, 0)
	}
	version := wire.NewMsgVersion(local, remote, rand.Uint64(), s.cfg.StartHeight)
	version.ProtocolVersion = protocolVersion
	version.Services = s.cfg.Services
	if err := version.AddUserAgent(s.cfg.UserAgent, "0.1.0"); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}
	if err := s.send(version); err != nil {
		return fmt.Errorf("send version: %w", err)
	}

	gotVersion, gotVerAck := false, false
	for !gotVersion || !gotVerAck {
		msg, err := s.read()
		if err != nil {
			return fmt.Errorf("handshake read: %w", err)
		}
		switch m := msg.(type) {
		case *wire.MsgVersion:
			if gotVersion {
				return errors.New("duplicate version message")
			}
			gotVersion = true
			s.remoteVersion = uint32(m.ProtocolVersion)
			s.remoteHeight = m.LastBlock
			if err := s.send(wire.NewMsgVerAck()); err != nil {
				return fmt.Errorf("send verack: %w", err)
			}
		case *wire.MsgVerAck:
			gotVerAck = true
		default:
			return fmt.Errorf("unexpected %s during handshake", msg.Command())
		}
	}

	s.logger.Info("handshake complete",
		zap.String("peer", s.conn.RemoteAddr().String()),
		zap.Uint32("remote_version", s.remoteVersion),
		zap.Int32("remote_height", s.remoteHeight))
	return nil
}

// readLoop owns the read half until the session dies. Recoverable decode
// failures (bad checksum, unknown command) drop the frame and continue; I/O
// failures and protocol violations end the session. The read loop is the
// only sender on the events channel after the handshake and is the one that
// closes it.
func (s *Session) readLoop() {
	defer s.finish()
	for {
		msg, err := s.read()
		if err != nil {
			var msgErr *wire.MessageError
			if errors.As(err, &msgErr) {
				s.logger.Warn("dropping malformed frame", zap.Error(err))
				continue
			}
			if isTimeout(err) {
				err = ErrReadTimeout
			}
			s.shutdown(err)
			return
		}

		switch m := msg.(type) {
		case *wire.MsgPing:
			if err := s.send(wire.NewMsgPong(m.Nonce)); err != nil {
				s.shutdown(fmt.Errorf("send pong: %w", err))
				return
			}
		case *wire.MsgPong:
			// Keepalive answered; the read deadline reset is enough.
		case *wire.MsgHeaders:
			s.emit(HeadersEvent{Headers: m.Headers})
		case *wire.MsgBlock:
			s.emit(BlockEvent{Block: m})
		case *wire.MsgInv, *wire.MsgAddr, *wire.MsgAddrV2:
			// Unsolicited announcements; the indexer pulls explicitly.
		default:
			s.logger.Debug("ignoring message", zap.String("command", msg.Command()))
		}
	}
}

// finish delivers the terminal event and closes the stream.
func (s *Session) finish() {
	<-s.closed
	if s.reason != nil {
		s.logger.Warn("session terminated", zap.Error(s.reason))
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ObserveDisconnect(disconnectReason(s.reason))
	}
	s.events <- DisconnectedEvent{Reason: s.reason}
	close(s.events)
}

// pingLoop keeps idle connections alive.
func (s *Session) pingLoop() {
	ticker := time.NewTicker(s.cfg.PingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
			if err := s.send(wire.NewMsgPing(rand.Uint64())); err != nil {
				s.shutdown(fmt.Errorf("send ping: %w", err))
				return
			}
		}
	}
}

func (s *Session) read() (wire.Message, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
		return nil, err
	}
	msg, _, err := wire.ReadMessage(s.conn, protocolVersion, s.cfg.Magic)
	if err != nil {
		return nil, err
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ObserveMessage("in", msg.Command())
	}
	return msg, nil
}

func (s *Session) send(msg wire.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := wire.WriteMessage(s.conn, msg, protocolVersion, s.cfg.Magic); err != nil {
		return err
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ObserveMessage("out", msg.Command())
	}
	return nil
}

func (s *Session) emit(event Event) {
	s.events <- event
}

// shutdown records the first termination reason and closes the socket; the
// read loop then fails its blocking read and finishes the stream. A close
// requested via Close keeps a nil reason even though the read loop sees a
// closed-connection error.
func (s *Session) shutdown(reason error) {
	s.closeOnce.Do(func() {
		if reason != nil && !errors.Is(reason, net.ErrClosed) {
			s.reason = reason
		}
		close(s.closed)
		_ = s.conn.Close()
	})
}

func disconnectReason(err error) string {
	switch {
	case err == nil:
		return "closed"
	case errors.Is(err, ErrReadTimeout):
		return "timeout"
	default:
		return "error"
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
