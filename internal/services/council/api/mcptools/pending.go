package mcptools

import (
	"sync"

	"github.com/louisbranch/arcane-codex/internal/services/council/domain/council"
)

// DefaultPendingLimit bounds how many unapplied councils are held.
const DefaultPendingLimit = 1024

// Pending holds convened councils awaiting council_apply. The oldest entry
// is dropped once the limit is reached.
type Pending struct {
	mu    sync.Mutex
	limit int
	byID  map[string]council.Council
	order []string
}

// NewPending returns a registry holding at most limit councils.
func NewPending(limit int) *Pending {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	return &Pending{limit: limit, byID: make(map[string]council.Council)}
}

// Put stores c under its id.
func (p *Pending) Put(c council.Council) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byID[c.ID]; !ok {
		p.order = append(p.order, c.ID)
	}
	p.byID[c.ID] = c
	for len(p.order) > p.limit {
		oldest := p.order[0]
		p.order = p.order[1:]
		delete(p.byID, oldest)
	}
}

// Get returns the council with id without removing it.
func (p *Pending) Get(id string) (council.Council, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.byID[id]
	return c, ok
}

// Remove drops id from the registry.
func (p *Pending) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byID[id]; !ok {
		return
	}
	delete(p.byID, id)
	for i, v := range p.order {
		if v == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Len reports how many councils are pending.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byID)
}
