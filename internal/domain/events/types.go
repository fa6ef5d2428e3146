package events

import "encoding/json"

// Message - общее событие
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound event types (client -> server).
const (
	TypeCreateRoom      = "create-room"
	TypeJoinRoom        = "join-room"
	TypeOffer           = "offer"
	TypeAnswer          = "answer"
	TypeICECandidate    = "ice-candidate"
	TypeControlRequest  = "control-request"
	TypeControlResponse = "control-response"
	TypeChat            = "chat"
)

// Outbound event types (server -> client).
const (
	TypeConnected           = "connected"
	TypeRoomCreated         = "room-created"
	TypeRoomJoined          = "room-joined"
	TypeRoomError           = "room-error"
	TypeGuestJoined         = "guest-joined"
	TypeUserDisconnected    = "user-disconnected"
	TypeReceiveOffer        = "receive-offer"
	TypeReceiveAnswer       = "receive-answer"
	TypeReceiveICECandidate = "receive-ice-candidate"
	TypeReceiveChat         = "receive-chat"

	// TypeDisconnected is synthesized client-side when the push transport
	// drops; it never travels the wire.
	TypeDisconnected = "disconnected"
)

// NewMessage marshals payload into the generic event envelope. Marshal errors
// cannot happen for the event structs below, so they are swallowed.
func NewMessage(eventType string, payload any) Message {
	data, _ := json.Marshal(payload)
	return Message{Type: eventType, Data: data}
}

// ConnectedEvent - сервер сообщает клиенту его transport-assigned идентификатор.
type ConnectedEvent struct {
	PeerID string `json:"peerId"`
}

type RoomCreatedEvent struct {
	Code   string `json:"code"`
	HostID string `json:"hostId"`
}

type JoinRoomEvent struct {
	Code string `json:"code"`
}

type RoomJoinedEvent struct {
	Code   string `json:"code"`
	HostID string `json:"hostId"`
}

type RoomErrorEvent struct {
	Message string `json:"message"`
}

type GuestJoinedEvent struct {
	GuestID string `json:"guestId"`
}

type UserDisconnectedEvent struct {
	UserID string `json:"userId"`
}

// SignalEvent - события связанные с рукопожатием (offer, answer, ice-candidate).
// Payload остается сырым JSON: ядро не разбирает SDP и кандидатов.
type SignalEvent struct {
	TargetID  string          `json:"targetId,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type ReceiveOfferEvent struct {
	Offer  json.RawMessage `json:"offer"`
	FromID string          `json:"fromId"`
}

type ReceiveAnswerEvent struct {
	Answer json.RawMessage `json:"answer"`
	FromID string          `json:"fromId"`
}

type ReceiveICECandidateEvent struct {
	Candidate json.RawMessage `json:"candidate"`
	FromID    string          `json:"fromId"`
}

// NotificationID carries the inbox record id of the same event, so a client
// receiving a pushed copy and a polled copy can collapse them by id.
type ControlRequestEvent struct {
	RoomID         string `json:"roomId"`
	Message        string `json:"message"`
	FromID         string `json:"fromId,omitempty"`
	NotificationID string `json:"notificationId,omitempty"`
}

type ControlResponseEvent struct {
	RoomID         string `json:"roomId"`
	Accepted       bool   `json:"accepted"`
	Message        string `json:"message"`
	FromID         string `json:"fromId,omitempty"`
	NotificationID string `json:"notificationId,omitempty"`
}

type ChatEvent struct {
	Message string `json:"message"`
}

type ReceiveChatEvent struct {
	Message   string `json:"message"`
	FromID    string `json:"fromId"`
	Timestamp int64  `json:"timestamp"`
}
