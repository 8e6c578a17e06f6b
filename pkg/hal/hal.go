// Package hal declares the hardware capabilities consumed by the
// coordination core. Concrete drivers (board bring-up, display pixel
// protocol, RFID anti-collision, timer registers) live outside the core
// and are plugged in through these interfaces.
package hal

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// FrameSize is the size of one full display bitmap in bytes.
const FrameSize = 1024

// UID length bounds of an RFID tag.
const (
	MinUIDLen = 4
	MaxUIDLen = 10
)

var (
	// ErrWouldBlock is returned by non-blocking reads when no data is pending.
	ErrWouldBlock = errors.New("would block")
	// ErrNoTag indicates no tag answered presence detection.
	ErrNoTag = errors.New("no tag")
)

// Frame is one full display bitmap.
type Frame [FrameSize]byte

// Token is the answer of a tag to presence detection, needed to select it.
type Token [2]byte

// UID is the unique identifier read from a selected tag.
// It stores 4 to 10 bytes inline.
type UID struct {
	data [MaxUIDLen]byte
	n    uint8
}

// NewUID copies b into a UID.
func NewUID(b []byte) (UID, error) {
	var u UID
	if len(b) < MinUIDLen || len(b) > MaxUIDLen {
		return u, fmt.Errorf("invalid UID length %d", len(b))
	}
	u.n = uint8(copy(u.data[:], b))
	return u, nil
}

// MustUID is NewUID which panics on invalid length.
func MustUID(b ...byte) UID {
	u, err := NewUID(b)
	if err != nil {
		panic(err)
	}
	return u
}

// ParseUID parses a hex string.
func ParseUID(s string) (UID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return UID{}, err
	}
	return NewUID(b)
}

// Bytes returns the UID bytes.
func (u UID) Bytes() []byte {
	return u.data[:u.n]
}

// Len returns the number of UID bytes.
func (u UID) Len() int {
	return int(u.n)
}

// String implements fmt.Stringer.
func (u UID) String() string {
	return hex.EncodeToString(u.Bytes())
}

// Display is a monochrome bitmap display.
type Display interface {
	Init() error
	Clear() error
	Draw(*Frame) error
}

// RfidReader detects and selects RFID tags.
type RfidReader interface {
	// DetectPresence returns ErrNoTag when the field is empty.
	DetectPresence() (Token, error)
	Select(Token) (UID, error)
}

// DigitalInput is a readable pin.
type DigitalInput interface {
	ReadLevel() bool
}

// DigitalOutput is a writable pin.
type DigitalOutput interface {
	SetHigh()
	SetLow()
}

// ToneOutput is a PWM channel driven by a fixed-rate counter.
type ToneOutput interface {
	Configure(prescaler, reload uint16)
	SetDuty(uint16)
	MaxDuty() uint16
	Enable()
	Disable()
}

// SerialPort is a byte-oriented serial link.
type SerialPort interface {
	// ReadByte polls one received byte, ErrWouldBlock if none is pending.
	ReadByte() (byte, error)
	// WriteByte blocks until the byte is accepted by the transmitter.
	WriteByte(byte) error
	// Flush blocks until all written bytes are on the wire.
	Flush() error
}

// RxInterrupt raises one signal per received serial byte.
type RxInterrupt interface {
	RxReady() <-chan struct{}
}
