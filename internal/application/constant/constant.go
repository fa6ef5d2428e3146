package constant

// Общие ключи атрибутов для structured-логов.
const (
	Error  = "error"
	PeerID = "peer_id"
	Room   = "room_code"
	Event  = "event_type"
)
