// Package world models the pieces of game state the relay keeps in memory:
// creature identity allocation, the zone grid, a character's merged
// snapshot, and the registry of items lying on the ground.
package world

import (
	"sync"

	"github.com/cubeworld/relay/internal/protocol"
)

// IDPool hands out CreatureIDs, reusing ids freed by disconnects instead of
// growing without bound. Zero is reserved and never allocated.
type IDPool struct {
	mu     sync.Mutex
	next   int64
	freed  []protocol.CreatureID
}

// NewIDPool returns a pool starting allocation at 1.
func NewIDPool() *IDPool {
	return &IDPool{next: 1}
}

// Claim returns an unused CreatureID, preferring the most recently freed
// one over growing the counter.
func (p *IDPool) Claim() protocol.CreatureID {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.freed); n > 0 {
		id := p.freed[n-1]
		p.freed = p.freed[:n-1]
		return id
	}
	id := protocol.CreatureID(p.next)
	p.next++
	return id
}

// Free returns id to the pool for reuse. Freeing the reserved zero id is
// silently ignored; any other id is added to the free list without
// checking that it was ever claimed.
func (p *IDPool) Free(id protocol.CreatureID) {
	if id == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freed = append(p.freed, id)
}
