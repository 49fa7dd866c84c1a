package model

// HeaderRecord is the persisted form of one block header. Hashes are hex
// encoded the way explorers display them; Raw is the 80-byte wire encoding.
type HeaderRecord struct {
	Network       Network
	BlockHash     string
	Height        uint32
	PrevBlockHash string
	Raw           []byte
	InLongest     bool
}
