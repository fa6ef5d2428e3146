package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/screenlink/screenlink/internal/domain/models"
	"github.com/screenlink/screenlink/internal/infra/adapters/memory"
)

// NotificationUsecase is the polled-inbox side of the dual transport. Publish
// routes control notifications through the permission negotiator so the state
// machine sees identical transitions regardless of transport.
type NotificationUsecase interface {
	Publish(ctx context.Context, roomCode string, notifType models.NotificationType, message, sender string) (*models.Notification, error)

	// FetchSince returns the unexpired backlog for the room after the
	// cursor, plus total / per-room counts.
	FetchSince(ctx context.Context, roomCode string, since time.Time) ([]models.Notification, int, int)
}

type notificationUsecase struct {
	store   memory.NotificationStore
	control ControlUsecase
}

func NewNotificationUsecase(store memory.NotificationStore, control ControlUsecase) NotificationUsecase {
	return &notificationUsecase{
		store:   store,
		control: control,
	}
}

func (u *notificationUsecase) Publish(ctx context.Context, roomCode string, notifType models.NotificationType, message, sender string) (*models.Notification, error) {
	switch notifType {
	case models.NotificationControlRequest:
		return u.control.Request(ctx, roomCode, sender, message)
	case models.NotificationControlAccepted:
		return u.control.Respond(ctx, roomCode, sender, true, message)
	case models.NotificationControlRejected:
		return u.control.Respond(ctx, roomCode, sender, false, message)
	default:
		return nil, fmt.Errorf("unknown notification type %q", notifType)
	}
}

func (u *notificationUsecase) FetchSince(ctx context.Context, roomCode string, since time.Time) ([]models.Notification, int, int) {
	notifications := u.store.FetchSince(roomCode, since)
	total, inRoom := u.store.Count(roomCode)

	return notifications, total, inRoom
}
