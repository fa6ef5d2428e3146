package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PresenceRepository tracks which peer identities are currently attached to
// the push transport, timestamped at connection time.
type PresenceRepository interface {
	Add(peerID uuid.UUID, connectedAt time.Time)
	Remove(peerID uuid.UUID)

	ConnectedAt(peerID uuid.UUID) (time.Time, bool)
	Count() int
}

type presenceRepository struct {
	peers map[uuid.UUID]time.Time
	mu    sync.RWMutex
}

func NewPresenceRepository() PresenceRepository {
	return &presenceRepository{
		peers: make(map[uuid.UUID]time.Time),
	}
}

func (p *presenceRepository) Add(peerID uuid.UUID, connectedAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.peers[peerID] = connectedAt
}

func (p *presenceRepository) Remove(peerID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.peers, peerID)
}

func (p *presenceRepository) ConnectedAt(peerID uuid.UUID) (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	at, ok := p.peers[peerID]
	return at, ok
}

func (p *presenceRepository) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.peers)
}
