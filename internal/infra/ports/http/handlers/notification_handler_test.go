package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/screenlink/screenlink/internal/infra/adapters/memory"
	"github.com/screenlink/screenlink/internal/usecase"
)

type handlerFixture struct {
	handler  *NotificationHandler
	registry memory.RoomRegistry
	roomCode string
	hostID   uuid.UUID
	guestID  uuid.UUID
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	registry := memory.NewRoomRegistry()
	controlRepo := memory.NewControlStateRepository()
	store := memory.NewNotificationStore(time.Hour)
	wsConnRepo := memory.NewWSConnectionRepository()

	control := usecase.NewControlUsecase(registry, controlRepo, wsConnRepo, store)
	notifications := usecase.NewNotificationUsecase(store, control)

	hostID := uuid.New()
	guestID := uuid.New()

	room := registry.Create(hostID)
	if _, err := registry.Join(room.Code, guestID); err != nil {
		t.Fatalf("join: %v", err)
	}

	return &handlerFixture{
		handler:  NewNotificationHandler(notifications),
		registry: registry,
		roomCode: room.Code,
		hostID:   hostID,
		guestID:  guestID,
	}
}

func (f *handlerFixture) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := f.handler.Publish(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	return rec
}

func (f *handlerFixture) get(t *testing.T, query string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := f.handler.Fetch(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	return rec
}

func TestPublishAndFetch(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, fmt.Sprintf(
		`{"roomId":%q,"type":"control_request","message":"may I drive?","sender":%q}`,
		f.roomCode, f.guestID,
	))
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d, body %s", rec.Code, rec.Body)
	}

	var published publishResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &published); err != nil {
		t.Fatalf("decode publish response: %v", err)
	}
	if published.Notification == nil {
		t.Fatal("publish response missing notification")
	}
	if published.Notification.Type != "control_request" {
		t.Fatalf("published type = %s", published.Notification.Type)
	}

	rec = f.get(t, "roomId="+f.roomCode)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch status = %d", rec.Code)
	}

	var fetched fetchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode fetch response: %v", err)
	}
	if len(fetched.Notifications) != 1 {
		t.Fatalf("fetched %d notifications, want 1", len(fetched.Notifications))
	}
	if fetched.Notifications[0].ID != published.Notification.ID {
		t.Fatal("fetched a different notification than was published")
	}
	if fetched.TotalNotifications != 1 || fetched.RoomNotifications != 1 {
		t.Fatalf("counts = (%d, %d), want (1, 1)", fetched.TotalNotifications, fetched.RoomNotifications)
	}
}

func TestFetchHonorsLastCheckCursor(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, fmt.Sprintf(
		`{"roomId":%q,"type":"control_request","message":"ping","sender":%q}`,
		f.roomCode, f.guestID,
	))

	var published publishResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &published); err != nil {
		t.Fatalf("decode publish response: %v", err)
	}

	cursor := published.Notification.Timestamp

	rec = f.get(t, fmt.Sprintf("roomId=%s&lastCheck=%d", f.roomCode, cursor))

	var fetched fetchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode fetch response: %v", err)
	}
	if len(fetched.Notifications) != 0 {
		t.Fatalf("fetched %d notifications past the cursor, want 0", len(fetched.Notifications))
	}
}

func TestPublishValidation(t *testing.T) {
	f := newHandlerFixture(t)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "missing roomId",
			body:   `{"type":"control_request","message":"x","sender":"s"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown type",
			body:   fmt.Sprintf(`{"roomId":%q,"type":"room_gossip","message":"x","sender":"s"}`, f.roomCode),
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown room",
			body:   `{"roomId":"ZZZZZZ","type":"control_request","message":"x","sender":"s"}`,
			status: http.StatusNotFound,
		},
		{
			name:   "response without request",
			body:   fmt.Sprintf(`{"roomId":%q,"type":"control_accepted","message":"x","sender":"s"}`, f.roomCode),
			status: http.StatusConflict,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.post(t, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.status, rec.Body)
			}
		})
	}
}

func TestFetchRequiresRoomID(t *testing.T) {
	f := newHandlerFixture(t)

	if rec := f.get(t, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if rec := f.get(t, "roomId=X&lastCheck=notanumber"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
