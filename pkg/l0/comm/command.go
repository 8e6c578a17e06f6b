package comm

import (
	"encoding/binary"

	"github.com/robotalks/tagpad/pkg/hal"
	"github.com/robotalks/tagpad/pkg/tone"
)

// Command tags.
const (
	TagPing    byte = 'P'
	TagReset   byte = 'R'
	TagDisplay byte = 'D'
	TagLed     byte = 'L'
	TagBeep    byte = 'B'
)

// NoteSize is the encoded size of one note record.
const NoteSize = 4

// Command is a decoded host command.
type Command interface {
	Tag() byte
}

// Ping asks for a reply only.
type Ping struct{}

// Reset clears pending events, turns the LED off and stops any beep.
type Reset struct{}

// Display carries a full bitmap. Data aliases the receive buffer when
// decoded by an Engine.
type Display struct {
	Data []byte
}

// Led switches the LED.
type Led struct {
	On bool
}

// Beep replaces the playing sequence with Notes.
type Beep struct {
	Notes Notes
}

// Tag implements Command.
func (Ping) Tag() byte { return TagPing }

// Tag implements Command.
func (Reset) Tag() byte { return TagReset }

// Tag implements Command.
func (Display) Tag() byte { return TagDisplay }

// Tag implements Command.
func (Led) Tag() byte { return TagLed }

// Tag implements Command.
func (Beep) Tag() byte { return TagBeep }

// Notes is a packed sequence of note records: u16 LE frequency, u8
// length, u8 volume. A trailing partial record is ignored.
type Notes []byte

// PackNotes encodes notes.
func PackNotes(notes ...tone.Note) Notes {
	b := make([]byte, len(notes)*NoteSize)
	for i, n := range notes {
		rec := b[i*NoteSize:]
		binary.LittleEndian.PutUint16(rec, n.Freq)
		rec[2], rec[3] = n.Len, n.Volume
	}
	return b
}

// Len returns the number of complete records.
func (n Notes) Len() int {
	return len(n) / NoteSize
}

// At decodes record i.
func (n Notes) At(i int) tone.Note {
	rec := n[i*NoteSize : (i+1)*NoteSize]
	return tone.Note{
		Freq:   binary.LittleEndian.Uint16(rec),
		Len:    rec[2],
		Volume: rec[3],
	}
}

// Each calls fn for every complete record in order.
func (n Notes) Each(fn func(tone.Note)) {
	for i, l := 0, n.Len(); i < l; i++ {
		fn(n.At(i))
	}
}

// DecodeCommand decodes an unescaped frame. Errors are *MalformedError.
func DecodeCommand(frame []byte) (Command, error) {
	if len(frame) == 0 {
		return nil, malformed(frame, "empty")
	}
	payload := frame[1:]
	switch frame[0] {
	case TagPing:
		if len(payload) == 0 {
			return Ping{}, nil
		}
	case TagReset:
		if len(payload) == 0 {
			return Reset{}, nil
		}
	case TagDisplay:
		if len(payload) == hal.FrameSize {
			return Display{Data: payload}, nil
		}
	case TagLed:
		if len(payload) == 1 {
			return Led{On: payload[0] != 0}, nil
		}
	case TagBeep:
		return Beep{Notes: Notes(payload)}, nil
	default:
		return nil, malformed(frame, "unknown tag")
	}
	return nil, malformed(frame, "bad length")
}

// AppendCommand appends the escaped, delimited frame of cmd to dst.
func AppendCommand(dst []byte, cmd Command) []byte {
	dst = append(dst, cmd.Tag())
	switch c := cmd.(type) {
	case Display:
		dst = AppendEscaped(dst, c.Data)
	case Led:
		if c.On {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	case Beep:
		dst = AppendEscaped(dst, c.Notes)
	}
	return append(dst, Delimiter)
}
