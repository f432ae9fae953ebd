package store

import "errors"

var (
	// ErrSlotUnavailable is returned when the requested interval conflicts
	// with a blocked period or a non-terminal appointment at claim time.
	ErrSlotUnavailable = errors.New("slot unavailable")

	ErrServiceNotFound     = errors.New("service not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotFound            = errors.New("not found")

	// ErrInvalidTransition is returned when a lifecycle move is attempted
	// from a state that does not permit it.
	ErrInvalidTransition = errors.New("invalid status transition")
)
