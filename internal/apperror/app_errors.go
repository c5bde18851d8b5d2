package apperror

import "errors"

var (
	ErrRoomFull            = errors.New("room is full")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomDisposed        = errors.New("room is disposed")
	ErrPlayerNotSeated     = errors.New("no seated player for session")
	ErrNoAvailableJoinCode = errors.New("no available join code")
)
