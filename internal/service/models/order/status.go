package order

import (
	"database/sql/driver"
	"errors"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
)

var ErrInvalidStatus = errors.New("invalid status")

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// Terminal reports whether no further worker-driven transition exists.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// CanAdvanceTo reports whether next is the immediate successor of s.
// Statuses only ever move forward, one step at a time.
func (s Status) CanAdvanceTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusPending.String():
		return StatusPending, nil
	case StatusProcessing.String():
		return StatusProcessing, nil
	case StatusCompleted.String():
		return StatusCompleted, nil
	default:
		return "", ErrInvalidStatus
	}
}
