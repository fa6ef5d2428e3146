package models

// ControlState - состояние разрешения на удаленное управление для комнаты.
type ControlState string

const (
	ControlNone      ControlState = "none"
	ControlRequested ControlState = "requested"
	ControlAccepted  ControlState = "accepted"
	ControlRejected  ControlState = "rejected"
)
