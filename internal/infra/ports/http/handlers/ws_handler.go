package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/screenlink/screenlink/internal/application/config"
	"github.com/screenlink/screenlink/internal/application/constant"
	"github.com/screenlink/screenlink/internal/domain/events"
	"github.com/screenlink/screenlink/internal/domain/models"
	"github.com/screenlink/screenlink/internal/infra/adapters/memory"
	"github.com/screenlink/screenlink/internal/usecase"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// Enough for WebRTC SDP payloads.
	maxMessageSize = 64 * 1024
)

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	roomUsecase      usecase.RoomUsecase
	signalingUsecase usecase.SignalingUsecase
	controlUsecase   usecase.ControlUsecase

	wsConnRepo   memory.WebsocketConnectionRepository
	presenceRepo memory.PresenceRepository
}

func NewWebSocketHandler(
	cfg *config.Config,
	roomUsecase usecase.RoomUsecase,
	signalingUsecase usecase.SignalingUsecase,
	controlUsecase usecase.ControlUsecase,
	wsConnRepo memory.WebsocketConnectionRepository,
	presenceRepo memory.PresenceRepository,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		roomUsecase:      roomUsecase,
		signalingUsecase: signalingUsecase,
		controlUsecase:   controlUsecase,
		wsConnRepo:       wsConnRepo,
		presenceRepo:     presenceRepo,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	// Identity lives only as long as this connection.
	peerID := uuid.New()

	h.wsConnRepo.Add(peerID, ws)
	h.presenceRepo.Add(peerID, time.Now())

	defer func() {
		h.roomUsecase.HandleDisconnect(c.Request().Context(), peerID)
		h.presenceRepo.Remove(peerID)
		h.wsConnRepo.Remove(peerID)
	}()

	h.wsConnRepo.Write(peerID, events.NewMessage(events.TypeConnected, events.ConnectedEvent{
		PeerID: peerID.String(),
	}))

	ws.SetReadLimit(maxMessageSize)

	if err = ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			h.handleWebsocketError(peerID, err)
			return nil
		}

		message := new(events.Message)

		if err = json.Unmarshal(msg, message); err != nil {
			slog.Error(
				"unmarshal websocket message",
				slog.Any(constant.Error, err),
				slog.Any(constant.PeerID, peerID),
			)
			continue
		}

		if err = h.handleMessage(c.Request().Context(), peerID, message); err != nil {
			slog.Error(
				"handle message",
				slog.Any(constant.Error, err),
				slog.String(constant.Event, message.Type),
				slog.Any(constant.PeerID, peerID),
			)
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, peerID uuid.UUID, msg *events.Message) error {
	switch msg.Type {
	case events.TypeCreateRoom:
		h.roomUsecase.HandleCreateRoom(ctx, peerID)

	case events.TypeJoinRoom:
		var join events.JoinRoomEvent

		if err := json.Unmarshal(msg.Data, &join); err != nil {
			return fmt.Errorf("unmarshal join event: %w", err)
		}

		h.roomUsecase.HandleJoinRoom(ctx, peerID, join)

	case events.TypeOffer:
		var signal events.SignalEvent

		if err := json.Unmarshal(msg.Data, &signal); err != nil {
			return fmt.Errorf("unmarshal offer: %w", err)
		}

		h.signalingUsecase.HandleOffer(ctx, peerID, signal)

	case events.TypeAnswer:
		var signal events.SignalEvent

		if err := json.Unmarshal(msg.Data, &signal); err != nil {
			return fmt.Errorf("unmarshal answer: %w", err)
		}

		h.signalingUsecase.HandleAnswer(ctx, peerID, signal)

	case events.TypeICECandidate:
		var signal events.SignalEvent

		if err := json.Unmarshal(msg.Data, &signal); err != nil {
			return fmt.Errorf("unmarshal ice candidate: %w", err)
		}

		h.signalingUsecase.HandleCandidate(ctx, peerID, signal)

	case events.TypeControlRequest:
		var request events.ControlRequestEvent

		if err := json.Unmarshal(msg.Data, &request); err != nil {
			return fmt.Errorf("unmarshal control request: %w", err)
		}

		if _, err := h.controlUsecase.Request(ctx, request.RoomID, peerID.String(), request.Message); err != nil {
			h.writeControlError(peerID, err)
		}

	case events.TypeControlResponse:
		var response events.ControlResponseEvent

		if err := json.Unmarshal(msg.Data, &response); err != nil {
			return fmt.Errorf("unmarshal control response: %w", err)
		}

		if _, err := h.controlUsecase.Respond(ctx, response.RoomID, peerID.String(), response.Accepted, response.Message); err != nil {
			h.writeControlError(peerID, err)
		}

	case events.TypeChat:
		var chat events.ChatEvent

		if err := json.Unmarshal(msg.Data, &chat); err != nil {
			return fmt.Errorf("unmarshal chat: %w", err)
		}

		h.signalingUsecase.HandleChat(ctx, peerID, chat)

	default:
		return errors.New("unknown message type")
	}

	return nil
}

func (h *WebSocketHandler) writeControlError(peerID uuid.UUID, err error) {
	message := "control negotiation failed"

	switch {
	case errors.Is(err, models.ErrRoomNotFound):
		message = "room not found"
	case errors.Is(err, models.ErrControlNotRequested):
		message = "no pending control request"
	}

	h.wsConnRepo.Write(peerID, events.NewMessage(events.TypeRoomError, events.RoomErrorEvent{
		Message: message,
	}))
}

func (h *WebSocketHandler) handleWebsocketError(peerID uuid.UUID, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("peer disconnected from websocket", slog.Any(constant.PeerID, peerID))
			return
		}
	}

	slog.Warn(
		"websocket read error",
		slog.Any(constant.Error, err),
		slog.Any(constant.PeerID, peerID),
	)
}
