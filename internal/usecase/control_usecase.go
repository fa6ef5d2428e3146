package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/screenlink/screenlink/internal/application/constant"
	"github.com/screenlink/screenlink/internal/domain/events"
	"github.com/screenlink/screenlink/internal/domain/models"
	"github.com/screenlink/screenlink/internal/infra/adapters/memory"
)

// ControlUsecase is the permission negotiator: a small state machine gating
// the remote-input channel behind an explicit request/response exchange. The
// same transitions apply whether the triggering message arrived over the push
// channel or the polled inbox, so both the websocket handler and the
// notification HTTP handler call into it.
type ControlUsecase interface {
	// Request moves none/rejected -> requested and fans the request out to
	// the rest of the room over both transports. A request made while
	// already accepted or pending is an idempotent no-op returning a nil
	// notification.
	Request(ctx context.Context, roomCode, sender, message string) (*models.Notification, error)

	// Respond moves requested -> accepted/rejected and fans the decision
	// out. Any other current state yields models.ErrControlNotRequested.
	Respond(ctx context.Context, roomCode, sender string, accepted bool, message string) (*models.Notification, error)

	// State reports the room's current permission state.
	State(roomCode string) models.ControlState
}

type controlUsecase struct {
	registry    memory.RoomRegistry
	controlRepo memory.ControlStateRepository
	wsRepo      memory.WebsocketConnectionRepository
	store       memory.NotificationStore
}

func NewControlUsecase(
	registry memory.RoomRegistry,
	controlRepo memory.ControlStateRepository,
	wsRepo memory.WebsocketConnectionRepository,
	store memory.NotificationStore,
) ControlUsecase {
	return &controlUsecase{
		registry:    registry,
		controlRepo: controlRepo,
		wsRepo:      wsRepo,
		store:       store,
	}
}

func (u *controlUsecase) Request(ctx context.Context, roomCode, sender, message string) (*models.Notification, error) {
	room, ok := u.registry.Get(roomCode)
	if !ok {
		return nil, models.ErrRoomNotFound
	}

	observed, applied := u.controlRepo.Transition(
		roomCode,
		models.ControlRequested,
		models.ControlNone, models.ControlRejected,
	)
	if !applied {
		// Re-requesting while accepted or still pending must not
		// re-prompt the other side.
		slog.Debug(
			"redundant control request ignored",
			slog.String(constant.Room, roomCode),
			slog.String("state", string(observed)),
		)
		return nil, nil
	}

	notification := u.store.Publish(roomCode, models.NotificationControlRequest, message, sender)

	u.broadcast(room, sender, events.NewMessage(events.TypeControlRequest, events.ControlRequestEvent{
		RoomID:         roomCode,
		Message:        message,
		FromID:         sender,
		NotificationID: notification.ID.String(),
	}))

	return &notification, nil
}

func (u *controlUsecase) Respond(ctx context.Context, roomCode, sender string, accepted bool, message string) (*models.Notification, error) {
	room, ok := u.registry.Get(roomCode)
	if !ok {
		return nil, models.ErrRoomNotFound
	}

	target := models.ControlAccepted
	notifType := models.NotificationControlAccepted
	if !accepted {
		target = models.ControlRejected
		notifType = models.NotificationControlRejected
	}

	if _, applied := u.controlRepo.Transition(roomCode, target, models.ControlRequested); !applied {
		return nil, models.ErrControlNotRequested
	}

	notification := u.store.Publish(roomCode, notifType, message, sender)

	u.broadcast(room, sender, events.NewMessage(events.TypeControlResponse, events.ControlResponseEvent{
		RoomID:         roomCode,
		Accepted:       accepted,
		Message:        message,
		FromID:         sender,
		NotificationID: notification.ID.String(),
	}))

	return &notification, nil
}

func (u *controlUsecase) State(roomCode string) models.ControlState {
	return u.controlRepo.Get(roomCode)
}

// broadcast pushes the event to every room participant except the sender.
// Peers without an attached push connection simply miss the push copy and
// pick the event up from the polled inbox instead.
func (u *controlUsecase) broadcast(room *models.Room, sender string, msg events.Message) {
	for _, peerID := range []uuid.UUID{room.HostID, room.GuestID} {
		if peerID == uuid.Nil || peerID.String() == sender {
			continue
		}

		u.wsRepo.Write(peerID, msg)
	}
}
