package display

import (
	"fmt"

	"github.com/robotalks/tagpad/pkg/hal"
)

// Slot holds at most one pending frame. A newer frame replaces an
// unconsumed one. Slot does no locking; callers hold the resource that
// guards it.
type Slot struct {
	frame hal.Frame
	full  bool
}

// Set stores data, which must be exactly hal.FrameSize bytes.
func (s *Slot) Set(data []byte) {
	if len(data) != hal.FrameSize {
		panic(fmt.Sprintf("display slot: frame of %d bytes, want %d", len(data), hal.FrameSize))
	}
	copy(s.frame[:], data)
	s.full = true
}

// SetFrame stores a copy of f.
func (s *Slot) SetFrame(f *hal.Frame) {
	s.frame, s.full = *f, true
}

// Take removes and returns the pending frame.
func (s *Slot) Take() (f hal.Frame, ok bool) {
	if !s.full {
		return
	}
	s.full = false
	return s.frame, true
}

// IsEmpty reports whether nothing is pending.
func (s *Slot) IsEmpty() bool {
	return !s.full
}
