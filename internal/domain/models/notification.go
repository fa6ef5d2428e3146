package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationControlRequest  NotificationType = "control_request"
	NotificationControlAccepted NotificationType = "control_accepted"
	NotificationControlRejected NotificationType = "control_rejected"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationControlRequest, NotificationControlAccepted, NotificationControlRejected:
		return true
	default:
		return false
	}
}

// Notification is an inbox record for poll-only clients. Never mutated after
// creation; dropped once older than the retention window.
type Notification struct {
	ID        uuid.UUID
	RoomID    string
	Type      NotificationType
	Message   string
	Sender    string
	Timestamp time.Time
}
