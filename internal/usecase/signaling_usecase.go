package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/screenlink/screenlink/internal/application/constant"
	"github.com/screenlink/screenlink/internal/application/metric"
	"github.com/screenlink/screenlink/internal/domain/events"
	"github.com/screenlink/screenlink/internal/infra/adapters/memory"
)

// SignalingUsecase ferries handshake payloads between the two peers of a
// room. Payloads stay opaque raw JSON: the relay never parses SDP or
// candidate internals.
type SignalingUsecase interface {
	HandleOffer(ctx context.Context, fromID uuid.UUID, signal events.SignalEvent)
	HandleAnswer(ctx context.Context, fromID uuid.UUID, signal events.SignalEvent)
	HandleCandidate(ctx context.Context, fromID uuid.UUID, signal events.SignalEvent)

	HandleChat(ctx context.Context, fromID uuid.UUID, chat events.ChatEvent)
}

type signalingUsecase struct {
	registry memory.RoomRegistry
	wsRepo   memory.WebsocketConnectionRepository
}

func NewSignalingUsecase(registry memory.RoomRegistry, wsRepo memory.WebsocketConnectionRepository) SignalingUsecase {
	return &signalingUsecase{
		registry: registry,
		wsRepo:   wsRepo,
	}
}

func (s *signalingUsecase) HandleOffer(ctx context.Context, fromID uuid.UUID, signal events.SignalEvent) {
	s.relay(fromID, signal.TargetID, events.TypeOffer, events.NewMessage(
		events.TypeReceiveOffer,
		events.ReceiveOfferEvent{Offer: signal.Offer, FromID: fromID.String()},
	))
}

func (s *signalingUsecase) HandleAnswer(ctx context.Context, fromID uuid.UUID, signal events.SignalEvent) {
	s.relay(fromID, signal.TargetID, events.TypeAnswer, events.NewMessage(
		events.TypeReceiveAnswer,
		events.ReceiveAnswerEvent{Answer: signal.Answer, FromID: fromID.String()},
	))
}

func (s *signalingUsecase) HandleCandidate(ctx context.Context, fromID uuid.UUID, signal events.SignalEvent) {
	s.relay(fromID, signal.TargetID, events.TypeICECandidate, events.NewMessage(
		events.TypeReceiveICECandidate,
		events.ReceiveICECandidateEvent{Candidate: signal.Candidate, FromID: fromID.String()},
	))
}

func (s *signalingUsecase) HandleChat(ctx context.Context, fromID uuid.UUID, chat events.ChatEvent) {
	s.relay(fromID, "", events.TypeChat, events.NewMessage(
		events.TypeReceiveChat,
		events.ReceiveChatEvent{
			Message:   chat.Message,
			FromID:    fromID.String(),
			Timestamp: time.Now().UnixMilli(),
		},
	))
}

// relay forwards the prepared message to the explicit target, or to the
// sender's room counterpart when no target is given. An unresolvable
// destination is a logged no-op, never an error back to the sender.
func (s *signalingUsecase) relay(fromID uuid.UUID, targetID, eventType string, msg events.Message) {
	target := s.resolveTarget(fromID, targetID)
	if target == uuid.Nil {
		metric.RecordSignalDropped()
		slog.Warn(
			"signal dropped: no resolvable destination",
			slog.String(constant.Event, eventType),
			slog.Any(constant.PeerID, fromID),
		)
		return
	}

	s.wsRepo.Write(target, msg)

	metric.RecordSignalRelayed(eventType)
}

func (s *signalingUsecase) resolveTarget(fromID uuid.UUID, targetID string) uuid.UUID {
	if targetID != "" {
		target, err := uuid.Parse(targetID)
		if err == nil && target != uuid.Nil {
			return target
		}
	}

	room, ok := s.registry.FindByPeer(fromID)
	if !ok {
		return uuid.Nil
	}

	return room.Counterpart(fromID)
}
