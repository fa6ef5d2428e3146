package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/screenlink/screenlink/internal/domain/events"
	"github.com/screenlink/screenlink/internal/domain/models"
	"github.com/screenlink/screenlink/internal/infra/adapters/memory"
)

type controlFixture struct {
	registry memory.RoomRegistry
	control  ControlUsecase
	store    memory.NotificationStore
	conns    *fakeConnRepo

	roomCode string
	hostID   uuid.UUID
	guestID  uuid.UUID
}

func newControlFixture(t *testing.T) *controlFixture {
	t.Helper()

	registry := memory.NewRoomRegistry()
	controlRepo := memory.NewControlStateRepository()
	store := memory.NewNotificationStore(time.Hour)
	conns := newFakeConnRepo()

	hostID := uuid.New()
	guestID := uuid.New()

	room := registry.Create(hostID)
	if _, err := registry.Join(room.Code, guestID); err != nil {
		t.Fatalf("join: %v", err)
	}

	return &controlFixture{
		registry: registry,
		control:  NewControlUsecase(registry, controlRepo, conns, store),
		store:    store,
		conns:    conns,
		roomCode: room.Code,
		hostID:   hostID,
		guestID:  guestID,
	}
}

func TestControlRequestMovesToRequested(t *testing.T) {
	f := newControlFixture(t)

	notification, err := f.control.Request(context.Background(), f.roomCode, f.guestID.String(), "requesting control")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if notification == nil {
		t.Fatal("request must publish a notification")
	}
	if notification.Type != models.NotificationControlRequest {
		t.Fatalf("notification type = %s", notification.Type)
	}

	if state := f.control.State(f.roomCode); state != models.ControlRequested {
		t.Fatalf("state = %s, want requested", state)
	}

	// The counterpart gets the push copy; the sender does not.
	var request events.ControlRequestEvent
	decode(t, f.conns.lastOfType(t, f.hostID, events.TypeControlRequest), &request)
	if request.RoomID != f.roomCode || request.Message != "requesting control" {
		t.Fatalf("pushed request = %+v", request)
	}
	if got := f.conns.countOfType(f.guestID, events.TypeControlRequest); got != 0 {
		t.Fatal("request echoed back to sender")
	}
}

// Both transport copies of a control event must share the inbox record id,
// otherwise a client receiving push and poll cannot collapse them.
func TestControlPushCarriesNotificationID(t *testing.T) {
	f := newControlFixture(t)

	requested, err := f.control.Request(context.Background(), f.roomCode, f.guestID.String(), "may I?")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	var request events.ControlRequestEvent
	decode(t, f.conns.lastOfType(t, f.hostID, events.TypeControlRequest), &request)
	if request.NotificationID != requested.ID.String() {
		t.Fatalf("pushed request id = %q, want inbox record id %s", request.NotificationID, requested.ID)
	}

	responded, err := f.control.Respond(context.Background(), f.roomCode, f.hostID.String(), true, "sure")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}

	var response events.ControlResponseEvent
	decode(t, f.conns.lastOfType(t, f.guestID, events.TypeControlResponse), &response)
	if response.NotificationID != responded.ID.String() {
		t.Fatalf("pushed response id = %q, want inbox record id %s", response.NotificationID, responded.ID)
	}
}

func TestControlRequestUnknownRoom(t *testing.T) {
	f := newControlFixture(t)

	_, err := f.control.Request(context.Background(), "ZZZZZZ", f.guestID.String(), "hello?")
	if !errors.Is(err, models.ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestControlAcceptFlow(t *testing.T) {
	f := newControlFixture(t)

	if _, err := f.control.Request(context.Background(), f.roomCode, f.guestID.String(), "may I?"); err != nil {
		t.Fatalf("request: %v", err)
	}

	notification, err := f.control.Respond(context.Background(), f.roomCode, f.hostID.String(), true, "go ahead")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if notification.Type != models.NotificationControlAccepted {
		t.Fatalf("notification type = %s, want control_accepted", notification.Type)
	}

	if state := f.control.State(f.roomCode); state != models.ControlAccepted {
		t.Fatalf("state = %s, want accepted", state)
	}

	var response events.ControlResponseEvent
	decode(t, f.conns.lastOfType(t, f.guestID, events.TypeControlResponse), &response)
	if !response.Accepted {
		t.Fatal("pushed response must carry accepted=true")
	}

	// The decision is also retrievable through the polled inbox.
	backlog := f.store.FetchSince(f.roomCode, time.Time{})
	if len(backlog) != 2 {
		t.Fatalf("backlog holds %d records, want 2", len(backlog))
	}
	if backlog[1].Type != models.NotificationControlAccepted {
		t.Fatalf("backlog tail = %s, want control_accepted", backlog[1].Type)
	}
}

func TestControlRejectThenRetry(t *testing.T) {
	f := newControlFixture(t)

	if _, err := f.control.Request(context.Background(), f.roomCode, f.guestID.String(), "first try"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.control.Respond(context.Background(), f.roomCode, f.hostID.String(), false, "not now"); err != nil {
		t.Fatalf("respond: %v", err)
	}

	if state := f.control.State(f.roomCode); state != models.ControlRejected {
		t.Fatalf("state = %s, want rejected", state)
	}

	// A mistaken decline can be retried.
	notification, err := f.control.Request(context.Background(), f.roomCode, f.guestID.String(), "second try")
	if err != nil {
		t.Fatalf("re-request after reject: %v", err)
	}
	if notification == nil {
		t.Fatal("re-request after reject must publish")
	}
	if state := f.control.State(f.roomCode); state != models.ControlRequested {
		t.Fatalf("state = %s, want requested", state)
	}
}

// A request while already accepted must not re-prompt the other side.
func TestControlRequestWhileAcceptedIsIdempotent(t *testing.T) {
	f := newControlFixture(t)

	if _, err := f.control.Request(context.Background(), f.roomCode, f.guestID.String(), "may I?"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.control.Respond(context.Background(), f.roomCode, f.hostID.String(), true, "yes"); err != nil {
		t.Fatalf("respond: %v", err)
	}

	promptsBefore := f.conns.countOfType(f.hostID, events.TypeControlRequest)
	recordsBefore := len(f.store.FetchSince(f.roomCode, time.Time{}))

	notification, err := f.control.Request(context.Background(), f.roomCode, f.guestID.String(), "again?")
	if err != nil {
		t.Fatalf("redundant request: %v", err)
	}
	if notification != nil {
		t.Fatal("redundant request must not publish")
	}

	if state := f.control.State(f.roomCode); state != models.ControlAccepted {
		t.Fatalf("state = %s, want accepted unchanged", state)
	}
	if got := f.conns.countOfType(f.hostID, events.TypeControlRequest); got != promptsBefore {
		t.Fatal("redundant request re-prompted the counterpart")
	}
	if got := len(f.store.FetchSince(f.roomCode, time.Time{})); got != recordsBefore {
		t.Fatal("redundant request grew the inbox")
	}
}

func TestControlRespondWithoutRequest(t *testing.T) {
	f := newControlFixture(t)

	_, err := f.control.Respond(context.Background(), f.roomCode, f.hostID.String(), true, "yes to nothing")
	if !errors.Is(err, models.ErrControlNotRequested) {
		t.Fatalf("err = %v, want ErrControlNotRequested", err)
	}
}

// End-to-end negotiation: create, join, request, accept, and the decision is
// retrievable from the inbox backlog.
func TestControlScenario(t *testing.T) {
	registry := memory.NewRoomRegistry()
	controlRepo := memory.NewControlStateRepository()
	store := memory.NewNotificationStore(time.Hour)
	conns := newFakeConnRepo()
	control := NewControlUsecase(registry, controlRepo, conns, store)

	hostID := uuid.New()
	room := registry.Create(hostID)

	guestID := uuid.New()
	joined, err := registry.Join(room.Code, guestID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.HostID != hostID {
		t.Fatalf("join returned host %s, want %s", joined.HostID, hostID)
	}

	if _, err := control.Request(context.Background(), room.Code, hostID.String(), "let me help"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if state := control.State(room.Code); state != models.ControlRequested {
		t.Fatalf("pending state = %s, want requested", state)
	}

	if _, err := control.Respond(context.Background(), room.Code, guestID.String(), true, "ok"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if state := control.State(room.Code); state != models.ControlAccepted {
		t.Fatalf("state = %s, want accepted", state)
	}

	backlog := store.FetchSince(room.Code, time.UnixMilli(0))
	found := false
	for _, n := range backlog {
		if n.Type == models.NotificationControlAccepted {
			found = true
		}
	}
	if !found {
		t.Fatal("control_accepted notification not retrievable from the inbox")
	}
}
