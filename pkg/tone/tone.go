// Package tone plays queued notes on a PWM output, one heartbeat tick
// at a time.
package tone

import "github.com/robotalks/tagpad/pkg/hal"

// QueueCapacity is the maximum number of pending notes.
const QueueCapacity = 256

// Note is a tone or a rest.
type Note struct {
	// Freq in Hz, 0 is silence.
	Freq uint16
	// Len in note units; 0 plays nothing.
	Len uint8
	// Volume as a fraction of 256 of the maximum duty.
	Volume uint8
}

// TimerParams converts a frequency into prescaler and reload values of a
// 16-bit counter clocked at clock Hz. freq must not be zero.
func TimerParams(clock uint32, freq uint16) (prescaler, reload uint16) {
	ticks := clock / uint32(freq)
	psc := ticks >> 16
	if psc > 0xffff {
		psc = 0xffff
	}
	arr := ticks / (psc + 1)
	if arr > 0xffff {
		arr = 0xffff
	}
	if arr == 0 {
		// freq above the counter clock, run as fast as it goes
		arr = 1
	}
	return uint16(psc), uint16(arr)
}

// Sequencer turns a queue of notes into tone and silence over ticks.
// It is not safe for concurrent use.
type Sequencer struct {
	out          hal.ToneOutput
	clock        uint32
	ticksPerUnit int

	notes     [QueueCapacity]Note
	head, n   int
	remaining int
}

// NewSequencer creates a silent Sequencer. Each note unit lasts
// ticksPerUnit calls to Tick; values below 1 mean 1.
func NewSequencer(out hal.ToneOutput, clock uint32, ticksPerUnit int) *Sequencer {
	if ticksPerUnit < 1 {
		ticksPerUnit = 1
	}
	out.Disable()
	return &Sequencer{out: out, clock: clock, ticksPerUnit: ticksPerUnit}
}

// Play enqueues a note. It returns false and drops the note when the
// queue is full.
func (s *Sequencer) Play(note Note) bool {
	if s.n == QueueCapacity {
		return false
	}
	s.notes[(s.head+s.n)%QueueCapacity] = note
	s.n++
	return true
}

// Stop discards all pending notes and ends the current one.
// The output goes silent on the next Tick.
func (s *Sequencer) Stop() {
	s.head, s.n = 0, 0
	s.remaining = 0
}

// Pending returns the number of queued notes.
func (s *Sequencer) Pending() int {
	return s.n
}

// Remaining returns the ticks left for the current note.
func (s *Sequencer) Remaining() int {
	return s.remaining
}

// Tick advances playback by one tick.
func (s *Sequencer) Tick() {
	if s.remaining > 0 {
		s.remaining--
		return
	}
	for s.n > 0 {
		note := s.notes[s.head]
		s.head = (s.head + 1) % QueueCapacity
		s.n--
		if note.Len == 0 {
			continue
		}
		if note.Freq == 0 {
			s.out.Disable()
		} else {
			s.out.Configure(TimerParams(s.clock, note.Freq))
			s.out.SetDuty(uint16(uint32(note.Volume) * uint32(s.out.MaxDuty()) / 256))
			s.out.Enable()
		}
		s.remaining = int(note.Len)*s.ticksPerUnit - 1
		return
	}
	s.out.Disable()
}
