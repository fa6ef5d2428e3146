package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/screenlink/screenlink/internal/application/constant"
)

const defaultPollInterval = 3 * time.Second

// Notification mirrors the polled-inbox wire shape. Timestamp is a
// millisecond epoch, matching the lastCheck cursor.
type Notification struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}

type fetchResponse struct {
	Notifications      []Notification `json:"notifications"`
	TotalNotifications int            `json:"totalNotifications"`
	RoomNotifications  int            `json:"roomNotifications"`
}

type publishResponse struct {
	Notification *Notification `json:"notification"`
}

// Inbox is the dedup boundary of the dual transport. Polls and pushed events
// both funnel through Seen, so a consumer processes each logical event
// exactly once no matter which transport surfaced it first, or whether both
// did.
type Inbox struct {
	baseURL  string
	roomID   string
	interval time.Duration
	client   *http.Client

	mu        sync.Mutex
	seen      map[string]struct{}
	lastCheck int64

	onNotification func(Notification)
}

// NewInbox creates a poller for roomID against baseURL (the server root,
// e.g. "http://localhost:3000"). interval <= 0 selects the default cadence.
func NewInbox(baseURL, roomID string, interval time.Duration, onNotification func(Notification)) *Inbox {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return &Inbox{
		baseURL:        baseURL,
		roomID:         roomID,
		interval:       interval,
		client:         &http.Client{Timeout: 10 * time.Second},
		seen:           make(map[string]struct{}),
		onNotification: onNotification,
	}
}

// Run polls until ctx is cancelled. The ticker stops deterministically on
// teardown; no timer leaks across room lifetimes.
func (i *Inbox) Run(ctx context.Context) {
	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := i.Poll(ctx); err != nil {
				slog.Warn("inbox poll failed", slog.Any(constant.Error, err))
			}
		}
	}
}

// Poll fetches once and delivers every not-yet-seen notification in order.
func (i *Inbox) Poll(ctx context.Context) error {
	i.mu.Lock()
	lastCheck := i.lastCheck
	i.mu.Unlock()

	endpoint := fmt.Sprintf("%s/api/v1/notifications?%s", i.baseURL, url.Values{
		"roomId":    {i.roomID},
		"lastCheck": {strconv.FormatInt(lastCheck, 10)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch notifications: unexpected status %d", resp.StatusCode)
	}

	var fetched fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		return fmt.Errorf("decode notifications: %w", err)
	}

	for _, n := range fetched.Notifications {
		i.deliver(n)
	}

	return nil
}

// Seen records the id and reports whether it was new. The push-transport
// listener calls this before acting on a control event so a duplicate copy
// (one per transport) collapses to a single effect.
func (i *Inbox) Seen(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.seen[id]; ok {
		return false
	}

	i.seen[id] = struct{}{}

	return true
}

// Publish appends a notification through the HTTP surface. This is the
// fallback path for anything Emit could not deliver.
func (i *Inbox) Publish(ctx context.Context, notifType, message, sender string) (*Notification, error) {
	body, err := json.Marshal(map[string]string{
		"roomId":  i.roomID,
		"type":    notifType,
		"message": message,
		"sender":  sender,
	})
	if err != nil {
		return nil, err
	}

	endpoint := i.baseURL + "/api/v1/notifications"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("publish notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("publish notification: unexpected status %d", resp.StatusCode)
	}

	var published publishResponse
	if err := json.NewDecoder(resp.Body).Decode(&published); err != nil {
		return nil, fmt.Errorf("decode publish response: %w", err)
	}

	if published.Notification != nil {
		// The publisher has obviously seen its own notification.
		i.Seen(published.Notification.ID)
	}

	return published.Notification, nil
}

func (i *Inbox) deliver(n Notification) {
	i.mu.Lock()
	// The fetch is strictly-after with millisecond timestamps, so the
	// cursor stops one millisecond short of the newest record. A record
	// published in that same millisecond after the fetch is then still
	// returned next poll; the seen set absorbs the re-returned copies.
	if cursor := n.Timestamp - 1; cursor > i.lastCheck {
		i.lastCheck = cursor
	}
	i.mu.Unlock()

	if !i.Seen(n.ID) {
		return
	}

	if i.onNotification != nil {
		i.onNotification(n)
	}
}
