package domain

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrAdmissionClosed   = errors.New("admission is closed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeRoomFull          = "ROOM_FULL"
	CodeAdmissionClosed   = "ADMISSION_CLOSED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorCode maps an error to the stable code reported to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrRoomFull):
		return CodeRoomFull
	case errors.Is(err, ErrAdmissionClosed):
		return CodeAdmissionClosed
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
