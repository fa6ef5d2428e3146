package models

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")

	ErrControlNotRequested = errors.New("no pending control request")

	ErrTransportUnavailable = errors.New("push transport unavailable")
	ErrReconnectExhausted   = errors.New("reconnect attempts exhausted")
)
