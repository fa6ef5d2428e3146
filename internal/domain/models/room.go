package models

import (
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting"
	RoomStatusPaired  RoomStatus = "paired"
)

// Room - единица сопряжения host/guest, идентифицируется коротким кодом.
type Room struct {
	Code      string
	HostID    uuid.UUID
	GuestID   uuid.UUID // uuid.Nil пока гость не присоединился
	CreatedAt time.Time
	Status    RoomStatus
}

func NewRoom(code string, hostID uuid.UUID) *Room {
	return &Room{
		Code:      code,
		HostID:    hostID,
		CreatedAt: time.Now(),
		Status:    RoomStatusWaiting,
	}
}

func (r *Room) HasGuest() bool {
	return r.GuestID != uuid.Nil
}

// Counterpart returns the other participant for a given peer, or uuid.Nil
// when the peer is alone in the room.
func (r *Room) Counterpart(peerID uuid.UUID) uuid.UUID {
	switch peerID {
	case r.HostID:
		return r.GuestID
	case r.GuestID:
		return r.HostID
	default:
		return uuid.Nil
	}
}
