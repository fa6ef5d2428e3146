package memory

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/screenlink/screenlink/internal/application/constant"
	"github.com/screenlink/screenlink/internal/application/metric"
)

// WebsocketConnectionRepository интерфейс для работы с активными сессиями в памяти
type WebsocketConnectionRepository interface {
	Add(uuid.UUID, *websocket.Conn)
	Remove(uuid.UUID)

	Write(uuid.UUID, any)
	GetAllConnected() []uuid.UUID
}

type safeWS struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type wsConnectionRepository struct {
	// wsConns хранит map[peer_id]*ws.conn
	wsConns map[uuid.UUID]*safeWS

	mu sync.RWMutex
}

func NewWSConnectionRepository() WebsocketConnectionRepository {
	return &wsConnectionRepository{
		wsConns: make(map[uuid.UUID]*safeWS, 10),
	}
}

func (w *wsConnectionRepository) Add(peerID uuid.UUID, conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.wsConns[peerID] = &safeWS{conn: conn}

	metric.IncrementWSActiveConnections()
}

func (w *wsConnectionRepository) Remove(peerID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.wsConns[peerID]; exists {
		delete(w.wsConns, peerID)

		metric.DecrementWSActiveConnections()
	}
}

// Write serializes the payload to the peer's connection. A missing connection
// is a silent no-op: transient absence is expected during reconnect races.
func (w *wsConnectionRepository) Write(peerID uuid.UUID, payload any) {
	safews, ok := w.getSafeWS(peerID)
	if !ok {
		return
	}

	safews.mu.Lock()
	defer safews.mu.Unlock()

	err := safews.conn.WriteJSON(payload)
	if err != nil {
		slog.Error(
			"write to websocket",
			slog.Any(constant.Error, err),
			slog.Any(constant.PeerID, peerID),
		)
		return
	}
}

func (w *wsConnectionRepository) getSafeWS(peerID uuid.UUID) (*safeWS, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conn, ok := w.wsConns[peerID]
	return conn, ok
}

func (w *wsConnectionRepository) GetAllConnected() []uuid.UUID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	peerIDs := make([]uuid.UUID, 0, len(w.wsConns))

	for peerID := range w.wsConns {
		peerIDs = append(peerIDs, peerID)
	}

	return peerIDs
}
