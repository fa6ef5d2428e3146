package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/screenlink/screenlink/internal/domain/models"
	"github.com/screenlink/screenlink/internal/usecase"
)

// NotificationHandler is the HTTP face of the polled inbox: the fallback
// transport for environments where the websocket cannot be kept open.
type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{notificationUsecase: notificationUsecase}
}

type publishRequest struct {
	RoomID  string `json:"roomId"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

type notificationResponse struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

type publishResponse struct {
	Notification *notificationResponse `json:"notification"`
}

type fetchResponse struct {
	Notifications      []notificationResponse `json:"notifications"`
	TotalNotifications int                    `json:"totalNotifications"`
	RoomNotifications  int                    `json:"roomNotifications"`
}

func (h *NotificationHandler) Publish(c echo.Context) error {
	var req publishRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.RoomID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "roomId is required")
	}

	notifType := models.NotificationType(req.Type)
	if !notifType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown notification type")
	}

	notification, err := h.notificationUsecase.Publish(c.Request().Context(), req.RoomID, notifType, req.Message, req.Sender)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRoomNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "room not found")
		case errors.Is(err, models.ErrControlNotRequested):
			return echo.NewHTTPError(http.StatusConflict, "no pending control request")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "publish failed")
		}
	}

	// A nil notification means the negotiator treated the publish as a
	// redundant no-op (e.g. re-request while already accepted).
	resp := publishResponse{}
	if notification != nil {
		dto := toNotificationResponse(*notification)
		resp.Notification = &dto
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) Fetch(c echo.Context) error {
	roomID := c.QueryParam("roomId")
	if roomID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "roomId is required")
	}

	// lastCheck is a millisecond epoch cursor; absent means the full
	// unexpired backlog.
	var since time.Time
	if lastCheck := c.QueryParam("lastCheck"); lastCheck != "" {
		ms, err := strconv.ParseInt(lastCheck, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "lastCheck must be a millisecond timestamp")
		}
		since = time.UnixMilli(ms)
	}

	notifications, total, inRoom := h.notificationUsecase.FetchSince(c.Request().Context(), roomID, since)

	resp := fetchResponse{
		Notifications:      make([]notificationResponse, 0, len(notifications)),
		TotalNotifications: total,
		RoomNotifications:  inRoom,
	}
	for _, n := range notifications {
		resp.Notifications = append(resp.Notifications, toNotificationResponse(n))
	}

	return c.JSON(http.StatusOK, resp)
}

func toNotificationResponse(n models.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID.String(),
		RoomID:    n.RoomID,
		Type:      string(n.Type),
		Message:   n.Message,
		Sender:    n.Sender,
		Timestamp: n.Timestamp.UnixMilli(),
	}
}
