package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReply indicates no reply received from peer in time.
	ErrNoReply = errors.New("no reply")
	// ErrEventQueueFull indicates an event was dropped.
	ErrEventQueueFull = errors.New("event queue full")
	// ErrMalformed is matched by every *MalformedError.
	ErrMalformed = errors.New("malformed frame")
)

// MalformedError describes a frame which decodes to nothing.
type MalformedError struct {
	Tag    byte
	Length int
	Reason string
}

// Error implements error.
func (e *MalformedError) Error() string {
	if e.Length == 0 {
		return "malformed frame: " + e.Reason
	}
	return fmt.Sprintf("malformed frame %q (%d bytes): %s", e.Tag, e.Length, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformed).
func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

func malformed(frame []byte, reason string) error {
	err := &MalformedError{Length: len(frame), Reason: reason}
	if len(frame) > 0 {
		err.Tag = frame[0]
	}
	return err
}
