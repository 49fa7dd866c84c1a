// Package headers maintains the in-memory index of block headers, tracks all
// known forks and selects the main chain by accumulated proof of work.
package headers

import (
	"math/big"
	"sync"
	"time"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"go.uber.org/zap"
)

// InsertStatus classifies the outcome of a header insert.
type InsertStatus int

const (
	// StatusConnected means the header extended a known chain.
	StatusConnected InsertStatus = iota
	// StatusOrphan means the predecessor is unknown; the header is buffered.
	StatusOrphan
	// StatusDuplicate means the header is already indexed.
	StatusDuplicate
	// StatusInvalidPoW means the header hash does not meet its own target.
	StatusInvalidPoW
	// StatusInvalidLink means the predecessor is known but the header
	// violates elementary chain rules against it.
	StatusInvalidLink
)

func (s InsertStatus) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusOrphan:
		return "orphan"
	case StatusDuplicate:
		return "duplicate"
	case StatusInvalidPoW:
		return "invalid_pow"
	case StatusInvalidLink:
		return "invalid_link"
	default:
		return "unknown"
	}
}

// Reorg describes a main chain switch. Removed lists the old main chain
// hashes above the common ancestor in ascending height order, Added the new
// ones.
type Reorg struct {
	CommonAncestor chainhash.Hash
	CommonHeight   uint32
	Removed        []chainhash.Hash
	Added          []chainhash.Hash
}

// Depth is the number of blocks abandoned by the switch.
func (r *Reorg) Depth() uint32 {
	return uint32(len(r.Removed))
}

// InsertResult reports what an Insert did. Height and IsNewBestTip are only
// meaningful for StatusConnected. Reorg is non-nil when the insert moved the
// best tip onto another fork.
type InsertResult struct {
	Status       InsertStatus
	Hash         chainhash.Hash
	Height       uint32
	IsNewBestTip bool
	Reorg        *Reorg
}

// node is one arena entry. Parent and children are arena references, the
// hash chain guarantees the graph is acyclic.
type node struct {
	header   wire.BlockHeader
	hash     chainhash.Hash
	height   uint32
	work     *big.Int
	parent   *node
	children []*node
}

// maxTimestampRewind is how far back a child header's timestamp may go
// relative to its parent before the link is rejected.
const maxTimestampRewind = 2 * time.Hour

// defaultMaxOrphans bounds the orphan buffer; the oldest entries are evicted
// first on overflow.
const defaultMaxOrphans = 4096

// Cache is the header arena. All methods are safe for concurrent use;
// mutations are short and never perform I/O.
type Cache struct {
	mu     sync.RWMutex
	logger *zap.Logger

	powLimit *big.Int

	nodes map[chainhash.Hash]*node
	root  *node
	best  *node

	orphans        map[chainhash.Hash]wire.BlockHeader
	orphansByPrev  map[chainhash.Hash][]chainhash.Hash
	orphanArrivals []chainhash.Hash
	maxOrphans     int
}

// New builds a cache rooted at the given header (genesis or a trusted
// checkpoint). The root is the only header with no predecessor.
func New(root wire.BlockHeader, rootHeight uint32, powLimit *big.Int, logger *zap.Logger) *Cache {
	rootNode := &node{
		header: root,
		hash:   root.BlockHash(),
		height: rootHeight,
		work:   blockchain.CalcWork(root.Bits),
	}
	c := &Cache{
		logger:        logger.Named("headers"),
		powLimit:      powLimit,
		nodes:         map[chainhash.Hash]*node{rootNode.hash: rootNode},
		root:          rootNode,
		best:          rootNode,
		orphans:       make(map[chainhash.Hash]wire.BlockHeader),
		orphansByPrev: make(map[chainhash.Hash][]chainhash.Hash),
		maxOrphans:    defaultMaxOrphans,
	}
	return c
}

// Insert adds one header to the arena. Orphans are buffered and retried when
// their predecessor arrives; invalid headers are dropped and never poison
// the arena.
func (c *Cache) Insert(header wire.BlockHeader) InsertResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insert(header)
}

func (c *Cache) insert(header wire.BlockHeader) InsertResult {
	hash := header.BlockHash()
	if _, ok := c.nodes[hash]; ok {
		return InsertResult{Status: StatusDuplicate, Hash: hash}
	}

	if !c.checkProofOfWork(&header, hash) {
		c.logger.Warn("header fails its own proof of work",
			zap.Stringer("hash", &hash))
		return InsertResult{Status: StatusInvalidPoW, Hash: hash}
	}

	parent, ok := c.nodes[header.PrevBlock]
	if !ok {
		c.bufferOrphan(hash, header)
		return InsertResult{Status: StatusOrphan, Hash: hash}
	}

	if !checkLink(&parent.header, &header) {
		c.logger.Warn("header violates link rules against its parent",
			zap.Stringer("hash", &hash),
			zap.Stringer("parent", &parent.hash))
		return InsertResult{Status: StatusInvalidLink, Hash: hash}
	}

	n := &node{
		header: header,
		hash:   hash,
		height: parent.height + 1,
		work:   new(big.Int).Add(parent.work, blockchain.CalcWork(header.Bits)),
		parent: parent,
	}
	parent.children = append(parent.children, n)
	c.nodes[hash] = n

	res := InsertResult{Status: StatusConnected, Hash: hash, Height: n.height}

	// Strictly greater work moves the tip; on a tie the first observed tip
	// stays.
	if n.work.Cmp(c.best.work) > 0 {
		res.IsNewBestTip = true
		if n.parent != c.best {
			res.Reorg = c.computeReorg(c.best, n)
		}
		c.best = n
	}

	c.connectOrphans(n, &res)
	return res
}

// connectOrphans retries buffered orphans whose predecessor just appeared.
// A reorg triggered by a connected orphan is surfaced on the original
// result.
func (c *Cache) connectOrphans(parent *node, res *InsertResult) {
	pending := c.orphansByPrev[parent.hash]
	if len(pending) == 0 {
		return
	}
	delete(c.orphansByPrev, parent.hash)
	for _, hash := range pending {
		header, ok := c.orphans[hash]
		if !ok {
			continue
		}
		delete(c.orphans, hash)
		sub := c.insert(header)
		if sub.IsNewBestTip {
			res.IsNewBestTip = true
			if sub.Reorg != nil {
				res.Reorg = sub.Reorg
			}
		}
	}
}

func (c *Cache) bufferOrphan(hash chainhash.Hash, header wire.BlockHeader) {
	if _, ok := c.orphans[hash]; ok {
		return
	}
	for len(c.orphanArrivals) >= c.maxOrphans {
		oldest := c.orphanArrivals[0]
		c.orphanArrivals = c.orphanArrivals[1:]
		if old, ok := c.orphans[oldest]; ok {
			delete(c.orphans, oldest)
			c.removeOrphanRef(old.PrevBlock, oldest)
		}
	}
	c.orphans[hash] = header
	c.orphansByPrev[header.PrevBlock] = append(c.orphansByPrev[header.PrevBlock], hash)
	c.orphanArrivals = append(c.orphanArrivals, hash)
}

func (c *Cache) removeOrphanRef(prev, hash chainhash.Hash) {
	refs := c.orphansByPrev[prev]
	for i, h := range refs {
		if h == hash {
			c.orphansByPrev[prev] = append(refs[:i], refs[i+1:]...)
			break
		}
	}
	if len(c.orphansByPrev[prev]) == 0 {
		delete(c.orphansByPrev, prev)
	}
}

// checkProofOfWork verifies the header hash against its own compact target.
// Signet block acceptance differs only above the header level; the header
// check is the standard one.
func (c *Cache) checkProofOfWork(header *wire.BlockHeader, hash chainhash.Hash) bool {
	target := blockchain.CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		return false
	}
	if c.powLimit != nil && target.Cmp(c.powLimit) > 0 {
		return false
	}
	return blockchain.HashToBig(&hash).Cmp(target) <= 0
}

// checkLink applies elementary rules between a parent and child header.
func checkLink(parent, child *wire.BlockHeader) bool {
	return !child.Timestamp.Before(parent.Timestamp.Add(-maxTimestampRewind))
}

// BestTip returns the hash, height and cumulative work of the main chain tip.
func (c *Cache) BestTip() (chainhash.Hash, uint32, *big.Int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.best.hash, c.best.height, new(big.Int).Set(c.best.work)
}

// Height returns the main chain tip height.
func (c *Cache) Height() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.best.height
}

// Header looks up a header and its height by hash.
func (c *Cache) Header(hash chainhash.Hash) (wire.BlockHeader, uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[hash]
	if !ok {
		return wire.BlockHeader{}, 0, false
	}
	return n.header, n.height, true
}

// HeaderAt returns the hash at the given height along the current main
// chain only.
func (c *Cache) HeaderAt(height uint32) (chainhash.Hash, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := c.mainChainNodeAt(height)
	if n == nil {
		return chainhash.Hash{}, false
	}
	return n.hash, true
}

func (c *Cache) mainChainNodeAt(height uint32) *node {
	if height > c.best.height || height < c.root.height {
		return nil
	}
	n := c.best
	for n.height > height {
		n = n.parent
	}
	return n
}

// MainChainHashes returns main chain hashes for heights [from, to]
// inclusive, in ascending order. Heights outside the chain are clamped.
func (c *Cache) MainChainHashes(from, to uint32) []chainhash.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if to > c.best.height {
		to = c.best.height
	}
	if from < c.root.height {
		from = c.root.height
	}
	if from > to {
		return nil
	}
	out := make([]chainhash.Hash, to-from+1)
	n := c.mainChainNodeAt(to)
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = n.hash
		n = n.parent
	}
	return out
}

// Locator builds a getheaders block locator: dense near the tip, then
// exponentially sparser, always ending at the root.
func (c *Cache) Locator() []*chainhash.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var locator []*chainhash.Hash
	step := uint32(1)
	n := c.best
	for n != nil {
		hash := n.hash
		locator = append(locator, &hash)
		if n == c.root {
			return locator
		}
		if len(locator) > 10 {
			step *= 2
		}
		for i := uint32(0); i < step && n.parent != nil; i++ {
			n = n.parent
		}
	}
	rootHash := c.root.hash
	return append(locator, &rootHash)
}

// CommonAncestor finds the lowest common ancestor of the given header and
// the current best tip. The reorg depth of a fork is
// best_height - ancestor_height.
func (c *Cache) CommonAncestor(hash chainhash.Hash) (chainhash.Hash, uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[hash]
	if !ok {
		return chainhash.Hash{}, 0, false
	}
	ancestor := commonAncestor(n, c.best)
	if ancestor == nil {
		return chainhash.Hash{}, 0, false
	}
	return ancestor.hash, ancestor.height, true
}

// computeReorg walks the old and new tips down to their common ancestor.
// Caller holds the write lock.
func (c *Cache) computeReorg(oldTip, newTip *node) *Reorg {
	ancestor := commonAncestor(oldTip, newTip)
	if ancestor == nil {
		return nil
	}
	reorg := &Reorg{CommonAncestor: ancestor.hash, CommonHeight: ancestor.height}
	for n := oldTip; n != ancestor; n = n.parent {
		reorg.Removed = append(reorg.Removed, n.hash)
	}
	for n := newTip; n != ancestor; n = n.parent {
		reorg.Added = append(reorg.Added, n.hash)
	}
	reverse(reorg.Removed)
	reverse(reorg.Added)
	return reorg
}

func commonAncestor(a, b *node) *node {
	for a != nil && a.height > b.height {
		a = a.parent
	}
	for b != nil && a != nil && b.height > a.height {
		b = b.parent
	}
	for a != b {
		if a == nil || b == nil {
			return nil
		}
		a = a.parent
		b = b.parent
	}
	return a
}

func reverse(hashes []chainhash.Hash) {
	for i, j := 0, len(hashes)-1; i < j; i, j = i+1, j-1 {
		hashes[i], hashes[j] = hashes[j], hashes[i]
	}
}

// OrphanCount reports how many headers wait for their predecessor.
func (c *Cache) OrphanCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orphans)
}
