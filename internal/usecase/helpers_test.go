package usecase

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/screenlink/screenlink/internal/domain/events"
)

// fakeConnRepo records every event written per peer instead of touching a
// real websocket.
type fakeConnRepo struct {
	mu     sync.Mutex
	writes map[uuid.UUID][]events.Message
}

func newFakeConnRepo() *fakeConnRepo {
	return &fakeConnRepo{writes: make(map[uuid.UUID][]events.Message)}
}

func (f *fakeConnRepo) Add(uuid.UUID, *websocket.Conn) {}

func (f *fakeConnRepo) Remove(uuid.UUID) {}

func (f *fakeConnRepo) Write(peerID uuid.UUID, payload any) {
	msg, ok := payload.(events.Message)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes[peerID] = append(f.writes[peerID], msg)
}

func (f *fakeConnRepo) GetAllConnected() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	peers := make([]uuid.UUID, 0, len(f.writes))
	for peerID := range f.writes {
		peers = append(peers, peerID)
	}

	return peers
}

func (f *fakeConnRepo) messages(peerID uuid.UUID) []events.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]events.Message(nil), f.writes[peerID]...)
}

// lastOfType returns the most recent event of the given type written to the
// peer, failing the test when none exists.
func (f *fakeConnRepo) lastOfType(t *testing.T, peerID uuid.UUID, eventType string) events.Message {
	t.Helper()

	msgs := f.messages(peerID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == eventType {
			return msgs[i]
		}
	}

	t.Fatalf("peer %s never received a %q event (got %d events)", peerID, eventType, len(msgs))
	return events.Message{}
}

func (f *fakeConnRepo) countOfType(peerID uuid.UUID, eventType string) int {
	count := 0
	for _, msg := range f.messages(peerID) {
		if msg.Type == eventType {
			count++
		}
	}

	return count
}

// decode unmarshals an event payload into target.
func decode(t *testing.T, msg events.Message, target any) {
	t.Helper()

	if err := json.Unmarshal(msg.Data, target); err != nil {
		t.Fatalf("unmarshal %s payload: %v", msg.Type, err)
	}
}
