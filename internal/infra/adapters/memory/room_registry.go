package memory

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/screenlink/screenlink/internal/application/metric"
	"github.com/screenlink/screenlink/internal/domain/models"
)

const (
	roomCodeLength   = 6
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RoomRegistry хранит активные комнаты по коду.
type RoomRegistry interface {
	// Create registers a new waiting room owned by hostID.
	Create(hostID uuid.UUID) *models.Room

	// Join attaches guestID to the room. Returns models.ErrRoomNotFound or
	// models.ErrRoomFull; the guest-slot check and set are atomic.
	Join(code string, guestID uuid.UUID) (*models.Room, error)

	// Get returns a snapshot of the room.
	Get(code string) (*models.Room, bool)

	// FindByPeer returns the room the peer participates in, if any.
	FindByPeer(peerID uuid.UUID) (*models.Room, bool)

	// Leave detaches the peer from its room. A leaving host deletes the
	// room; a leaving guest reverts it to waiting. Returns the affected
	// room snapshot (state after the change) and whether anything changed.
	Leave(peerID uuid.UUID) (*models.Room, bool)

	// Sweep evicts rooms that never got paired and are older than maxAge.
	// Returns the number of evicted rooms.
	Sweep(maxAge time.Duration) int
}

type roomRegistry struct {
	rooms map[string]*models.Room
	mu    sync.RWMutex
}

func NewRoomRegistry() RoomRegistry {
	return &roomRegistry{
		rooms: make(map[string]*models.Room),
	}
}

func (r *roomRegistry) Create(hostID uuid.UUID) *models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for {
		code = generateRoomCode()
		if _, taken := r.rooms[code]; !taken {
			break
		}
	}

	room := models.NewRoom(code, hostID)
	r.rooms[code] = room

	metric.IncrementActiveRooms()

	return snapshot(room)
}

func (r *roomRegistry) Join(code string, guestID uuid.UUID) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, models.ErrRoomNotFound
	}

	if room.HasGuest() {
		return nil, models.ErrRoomFull
	}

	room.GuestID = guestID
	room.Status = models.RoomStatusPaired

	return snapshot(room), nil
}

func (r *roomRegistry) Get(code string) (*models.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, false
	}

	return snapshot(room), true
}

func (r *roomRegistry) FindByPeer(peerID uuid.UUID) (*models.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.HostID == peerID || (room.HasGuest() && room.GuestID == peerID) {
			return snapshot(room), true
		}
	}

	return nil, false
}

func (r *roomRegistry) Leave(peerID uuid.UUID) (*models.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for code, room := range r.rooms {
		switch peerID {
		case room.HostID:
			delete(r.rooms, code)
			metric.DecrementActiveRooms()

			return snapshot(room), true

		case room.GuestID:
			if !room.HasGuest() {
				continue
			}

			room.GuestID = uuid.Nil
			room.Status = models.RoomStatusWaiting

			return snapshot(room), true
		}
	}

	return nil, false
}

func (r *roomRegistry) Sweep(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	evicted := 0

	for code, room := range r.rooms {
		if room.Status == models.RoomStatusWaiting && room.CreatedAt.Before(cutoff) {
			delete(r.rooms, code)
			metric.DecrementActiveRooms()
			evicted++
		}
	}

	return evicted
}

// snapshot copies the room so callers never share the registry-owned struct.
func snapshot(room *models.Room) *models.Room {
	copied := *room
	return &copied
}

func generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(err)
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}

	return string(code)
}
