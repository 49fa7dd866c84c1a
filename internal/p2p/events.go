// Package p2p owns the TCP connection to a single peer and speaks the
// Bitcoin wire protocol: handshake, header sync, block download and
// keepalive. The session is the sole owner of the socket; everything it
// learns is emitted as typed events on a bounded channel.
package p2p

import (
	"github.com/btcsuite/btcd/wire"
)

// Event is a typed message from the session to the orchestrator.
type Event interface {
	sessionEvent()
}

// ReadyEvent fires exactly once, after version and verack are exchanged.
type ReadyEvent struct {
	RemoteHeight  int32
	RemoteVersion uint32
	UserAgent     string
	Services      wire.ServiceFlag
}

// HeadersEvent carries one getheaders response batch, up to 2000 headers.
type HeadersEvent struct {
	Headers []*wire.BlockHeader
}

// BlockEvent carries one downloaded block.
type BlockEvent struct {
	Block *wire.MsgBlock
}

// DisconnectedEvent is the terminal event; Reason is nil on requested close.
type DisconnectedEvent struct {
	Reason error
}

func (ReadyEvent) sessionEvent()        {}
func (HeadersEvent) sessionEvent()      {}
func (BlockEvent) sessionEvent()        {}
func (DisconnectedEvent) sessionEvent() {}
