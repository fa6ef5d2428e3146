package memory

import (
	"sync"

	"github.com/screenlink/screenlink/internal/domain/models"
)

// ControlStateRepository хранит состояние разрешения на управление по комнатам.
type ControlStateRepository interface {
	// Get returns the current state, models.ControlNone when unset.
	Get(roomCode string) models.ControlState

	// Transition atomically moves the room to the target state if the
	// current state is one of from. Returns the state observed and whether
	// the transition applied.
	Transition(roomCode string, to models.ControlState, from ...models.ControlState) (models.ControlState, bool)

	// Reset clears the state for a destroyed or re-paired room.
	Reset(roomCode string)
}

type controlStateRepository struct {
	states map[string]models.ControlState
	mu     sync.Mutex
}

func NewControlStateRepository() ControlStateRepository {
	return &controlStateRepository{
		states: make(map[string]models.ControlState),
	}
}

func (r *controlStateRepository) Get(roomCode string) models.ControlState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current(roomCode)
}

func (r *controlStateRepository) Transition(roomCode string, to models.ControlState, from ...models.ControlState) (models.ControlState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.current(roomCode)

	for _, allowed := range from {
		if current == allowed {
			r.states[roomCode] = to
			return current, true
		}
	}

	return current, false
}

func (r *controlStateRepository) Reset(roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, roomCode)
}

// current reads the state without locking; caller must hold r.mu.
func (r *controlStateRepository) current(roomCode string) models.ControlState {
	if state, ok := r.states[roomCode]; ok {
		return state
	}

	return models.ControlNone
}
