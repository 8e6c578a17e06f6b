package comm

import "github.com/robotalks/tagpad/pkg/hal"

// Event tags.
const (
	TagPong   byte = 'p'
	TagButton byte = 'b'
	TagRfid   byte = 'r'
)

// maxEventLen bounds an encoded event: tag, fully escaped UID, delimiter.
const maxEventLen = 1 + 2*hal.MaxUIDLen + 1

// Event is reported to the host in a reply.
type Event interface {
	Tag() byte
}

// Pong means no event was pending.
type Pong struct{}

// Button reports a debounced edge.
type Button struct {
	Pressed bool
}

// Rfid reports a tag read.
type Rfid struct {
	UID hal.UID
}

// Tag implements Event.
func (Pong) Tag() byte { return TagPong }

// Tag implements Event.
func (Button) Tag() byte { return TagButton }

// Tag implements Event.
func (Rfid) Tag() byte { return TagRfid }

// AppendEvent appends the escaped, delimited frame of ev to dst.
func AppendEvent(dst []byte, ev Event) []byte {
	dst = append(dst, ev.Tag())
	switch e := ev.(type) {
	case Button:
		if e.Pressed {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	case Rfid:
		dst = AppendEscaped(dst, e.UID.Bytes())
	}
	return append(dst, Delimiter)
}

// DecodeEvent decodes an unescaped reply frame.
func DecodeEvent(frame []byte) (Event, error) {
	if len(frame) == 0 {
		return nil, malformed(frame, "empty")
	}
	payload := frame[1:]
	switch frame[0] {
	case TagPong:
		if len(payload) == 0 {
			return Pong{}, nil
		}
	case TagButton:
		if len(payload) == 1 {
			return Button{Pressed: payload[0] != 0}, nil
		}
	case TagRfid:
		if uid, err := hal.NewUID(payload); err == nil {
			return Rfid{UID: uid}, nil
		}
	default:
		return nil, malformed(frame, "unknown tag")
	}
	return nil, malformed(frame, "bad length")
}

// EventQueueCapacity is the number of events held for the host.
const EventQueueCapacity = 4

// EventQueue is a bounded FIFO of events.
type EventQueue struct {
	items [EventQueueCapacity]Event
	head  int
	n     int
}

// Push appends ev, or returns false and drops it when full.
func (q *EventQueue) Push(ev Event) bool {
	if q.n == EventQueueCapacity {
		return false
	}
	q.items[(q.head+q.n)%EventQueueCapacity] = ev
	q.n++
	return true
}

// Pop removes the oldest event.
func (q *EventQueue) Pop() (Event, bool) {
	if q.n == 0 {
		return nil, false
	}
	ev := q.items[q.head]
	q.items[q.head] = nil
	q.head = (q.head + 1) % EventQueueCapacity
	q.n--
	return ev, true
}

// Clear drops all events.
func (q *EventQueue) Clear() {
	*q = EventQueue{}
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return q.n
}
