package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/screenlink/screenlink/internal/application/constant"
	"github.com/screenlink/screenlink/internal/domain/events"
	"github.com/screenlink/screenlink/internal/domain/models"
)

const (
	backoffBase = 1 * time.Second
	backoffCap  = 30 * time.Second

	// Connect gives up after the initial dial plus this many retries.
	maxRetries = 4
)

// Handler consumes the raw payload of a single event type.
type Handler func(data json.RawMessage)

// Supervisor owns the push-transport lifecycle for one client: dialing with
// bounded exponential backoff, dispatching inbound events to listeners, and
// degrading to a warning no-op once the transport is gone. It carries no
// business payload logic.
type Supervisor struct {
	url    string
	dialer *websocket.Dialer

	backoffBase time.Duration
	backoffCap  time.Duration
	maxRetries  uint64

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	handlersMu sync.RWMutex
	handlers   map[string][]Handler
}

func NewSupervisor(url string) *Supervisor {
	return &Supervisor{
		url:         url,
		dialer:      websocket.DefaultDialer,
		backoffBase: backoffBase,
		backoffCap:  backoffCap,
		maxRetries:  maxRetries,
		handlers:    make(map[string][]Handler),
	}
}

// Connect dials the push transport, retrying with exponential backoff from
// 1s up to a 30s ceiling. When the attempt budget is exhausted it returns
// models.ErrReconnectExhausted; the caller is expected to fall back to the
// polled inbox.
func (s *Supervisor) Connect(ctx context.Context) error {
	backoff := retry.WithMaxRetries(s.maxRetries, retry.WithCappedDuration(s.backoffCap, retry.NewExponential(s.backoffBase)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			slog.Warn("push transport dial failed", slog.Any(constant.Error, err))
			return retry.RetryableError(err)
		}

		s.mu.Lock()
		s.conn = conn
		s.connected = true
		s.mu.Unlock()

		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("%w: %w", models.ErrReconnectExhausted, err)
	}

	go s.readPump()

	s.dispatch(events.Message{Type: events.TypeConnected})

	return nil
}

// On registers a listener for an event type. Listeners run on the read-pump
// goroutine and must not block.
func (s *Supervisor) On(eventType string, handler Handler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()

	s.handlers[eventType] = append(s.handlers[eventType], handler)
}

// Emit sends an event over the push transport. When the transport is down it
// warns and reports models.ErrTransportUnavailable instead of failing hard;
// anything that must not be lost already travels the polled inbox too.
func (s *Supervisor) Emit(eventType string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		slog.Warn("emit skipped: push transport not connected", slog.String(constant.Event, eventType))
		return models.ErrTransportUnavailable
	}

	if err := s.conn.WriteJSON(events.NewMessage(eventType, payload)); err != nil {
		return fmt.Errorf("write %s event: %w", eventType, err)
	}

	return nil
}

// Close tears the transport down deterministically.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	s.connected = false

	return s.conn.Close()
}

// Connected reports whether the push transport is currently up.
func (s *Supervisor) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connected
}

func (s *Supervisor) readPump() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	for {
		var msg events.Message
		if err := conn.ReadJSON(&msg); err != nil {
			s.mu.Lock()
			wasConnected := s.connected
			s.connected = false
			s.mu.Unlock()

			if wasConnected {
				slog.Warn("push transport lost", slog.Any(constant.Error, err))
				s.dispatch(events.Message{Type: events.TypeDisconnected})
			}

			return
		}

		s.dispatch(msg)
	}
}

func (s *Supervisor) dispatch(msg events.Message) {
	s.handlersMu.RLock()
	handlers := s.handlers[msg.Type]
	s.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(msg.Data)
	}
}
