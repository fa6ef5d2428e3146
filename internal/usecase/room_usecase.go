package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/screenlink/screenlink/internal/application/config"
	"github.com/screenlink/screenlink/internal/application/constant"
	"github.com/screenlink/screenlink/internal/domain/events"
	"github.com/screenlink/screenlink/internal/domain/models"
	"github.com/screenlink/screenlink/internal/infra/adapters/memory"
)

type RoomUsecase interface {
	HandleCreateRoom(ctx context.Context, peerID uuid.UUID)
	HandleJoinRoom(ctx context.Context, peerID uuid.UUID, join events.JoinRoomEvent)

	// HandleDisconnect tears down the peer's room membership: a host
	// disconnect destroys the room, a guest disconnect reverts it to
	// waiting. The counterpart, if any, gets a user-disconnected event.
	HandleDisconnect(ctx context.Context, peerID uuid.UUID)

	// RunSweeper periodically evicts abandoned waiting rooms until ctx is
	// cancelled.
	RunSweeper(ctx context.Context)
}

type roomUsecase struct {
	cfg *config.Config

	registry    memory.RoomRegistry
	controlRepo memory.ControlStateRepository
	wsRepo      memory.WebsocketConnectionRepository
}

func NewRoomUsecase(
	cfg *config.Config,
	registry memory.RoomRegistry,
	controlRepo memory.ControlStateRepository,
	wsRepo memory.WebsocketConnectionRepository,
) RoomUsecase {
	return &roomUsecase{
		cfg:         cfg,
		registry:    registry,
		controlRepo: controlRepo,
		wsRepo:      wsRepo,
	}
}

func (u *roomUsecase) HandleCreateRoom(ctx context.Context, peerID uuid.UUID) {
	room := u.registry.Create(peerID)

	slog.Info(
		"room created",
		slog.String(constant.Room, room.Code),
		slog.Any(constant.PeerID, peerID),
	)

	u.wsRepo.Write(peerID, events.NewMessage(events.TypeRoomCreated, events.RoomCreatedEvent{
		Code:   room.Code,
		HostID: room.HostID.String(),
	}))
}

func (u *roomUsecase) HandleJoinRoom(ctx context.Context, peerID uuid.UUID, join events.JoinRoomEvent) {
	if join.Code == "" {
		u.writeRoomError(peerID, "code is required")
		return
	}

	room, err := u.registry.Join(join.Code, peerID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRoomNotFound):
			u.writeRoomError(peerID, "room not found")
		case errors.Is(err, models.ErrRoomFull):
			u.writeRoomError(peerID, "room is full")
		default:
			u.writeRoomError(peerID, "join failed")
		}
		return
	}

	// A fresh pairing starts from a clean permission slate.
	u.controlRepo.Reset(room.Code)

	slog.Info(
		"guest joined room",
		slog.String(constant.Room, room.Code),
		slog.Any(constant.PeerID, peerID),
	)

	u.wsRepo.Write(peerID, events.NewMessage(events.TypeRoomJoined, events.RoomJoinedEvent{
		Code:   room.Code,
		HostID: room.HostID.String(),
	}))

	u.wsRepo.Write(room.HostID, events.NewMessage(events.TypeGuestJoined, events.GuestJoinedEvent{
		GuestID: peerID.String(),
	}))
}

func (u *roomUsecase) HandleDisconnect(ctx context.Context, peerID uuid.UUID) {
	room, ok := u.registry.Leave(peerID)
	if !ok {
		return
	}

	u.controlRepo.Reset(room.Code)

	// The snapshot reflects the state after the change: a leaving guest is
	// already cleared from it, so the counterpart is resolved explicitly.
	counterpart := room.GuestID
	if peerID != room.HostID {
		counterpart = room.HostID
	}

	if counterpart == uuid.Nil {
		return
	}

	slog.Info(
		"peer left room",
		slog.String(constant.Room, room.Code),
		slog.Any(constant.PeerID, peerID),
	)

	u.wsRepo.Write(counterpart, events.NewMessage(events.TypeUserDisconnected, events.UserDisconnectedEvent{
		UserID: peerID.String(),
	}))
}

func (u *roomUsecase) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(u.cfg.Room.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := u.registry.Sweep(u.cfg.Room.TTL); evicted > 0 {
				slog.Info("swept abandoned rooms", slog.Int("evicted", evicted))
			}
		}
	}
}

func (u *roomUsecase) writeRoomError(peerID uuid.UUID, message string) {
	u.wsRepo.Write(peerID, events.NewMessage(events.TypeRoomError, events.RoomErrorEvent{
		Message: message,
	}))
}
