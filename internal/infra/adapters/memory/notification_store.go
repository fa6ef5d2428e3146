package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/screenlink/screenlink/internal/application/metric"
	"github.com/screenlink/screenlink/internal/domain/models"
)

// NotificationStore - polled inbox с ограниченным временем хранения.
type NotificationStore interface {
	// Publish appends a record with a fresh id and the current timestamp.
	// Retention pruning runs opportunistically as a side effect.
	Publish(roomID string, notifType models.NotificationType, message, sender string) models.Notification

	// FetchSince returns unexpired notifications for the room with
	// Timestamp strictly after since, in insertion order. A zero since
	// returns the full unexpired backlog.
	FetchSince(roomID string, since time.Time) []models.Notification

	// Count returns (total unexpired, unexpired for room).
	Count(roomID string) (int, int)
}

type notificationStore struct {
	notifications []models.Notification
	retention     time.Duration
	mu            sync.Mutex
}

func NewNotificationStore(retention time.Duration) NotificationStore {
	return &notificationStore{retention: retention}
}

func (s *notificationStore) Publish(roomID string, notifType models.NotificationType, message, sender string) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()

	notification := models.Notification{
		ID:      uuid.New(),
		RoomID:  roomID,
		Type:    notifType,
		Message: message,
		Sender:  sender,
		// Millisecond granularity matches the lastCheck wire cursor, so
		// "fetch since my own timestamp" excludes the record itself.
		Timestamp: time.Now().Truncate(time.Millisecond),
	}

	s.notifications = append(s.notifications, notification)

	metric.RecordNotificationPublished()

	return notification
}

func (s *notificationStore) FetchSince(roomID string, since time.Time) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()

	result := make([]models.Notification, 0)
	for _, n := range s.notifications {
		if n.RoomID == roomID && n.Timestamp.After(since) {
			result = append(result, n)
		}
	}

	return result
}

func (s *notificationStore) Count(roomID string) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()

	inRoom := 0
	for _, n := range s.notifications {
		if n.RoomID == roomID {
			inRoom++
		}
	}

	return len(s.notifications), inRoom
}

// prune drops expired records. Caller must hold s.mu. Records are appended in
// timestamp order, so the slice is scanned for the first live entry.
func (s *notificationStore) prune() {
	cutoff := time.Now().Add(-s.retention)

	firstLive := len(s.notifications)
	for i, n := range s.notifications {
		if n.Timestamp.After(cutoff) {
			firstLive = i
			break
		}
	}

	if firstLive == 0 {
		return
	}

	metric.RecordNotificationsPruned(firstLive)

	s.notifications = append([]models.Notification(nil), s.notifications[firstLive:]...)
}
