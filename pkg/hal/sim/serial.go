// Package sim provides in-memory peripherals for host-side runs and tests.
package sim

import (
	"io"
	"sync"

	"github.com/robotalks/tagpad/pkg/hal"
)

const serialBufferSize = 8192

// Serial is a simulated serial link. The device end implements
// hal.SerialPort and hal.RxInterrupt; Host returns the other end as an
// io.ReadWriteCloser.
type Serial struct {
	rx    chan byte
	ready chan struct{}
	tx    chan byte

	closeOnce sync.Once
	closed    chan struct{}
}

// NewSerial creates a Serial.
func NewSerial() *Serial {
	return &Serial{
		rx:     make(chan byte, serialBufferSize),
		ready:  make(chan struct{}, serialBufferSize),
		tx:     make(chan byte, serialBufferSize),
		closed: make(chan struct{}),
	}
}

// ReadByte implements hal.SerialPort.
func (s *Serial) ReadByte() (byte, error) {
	select {
	case b := <-s.rx:
		return b, nil
	default:
		return 0, hal.ErrWouldBlock
	}
}

// WriteByte implements hal.SerialPort.
func (s *Serial) WriteByte(b byte) error {
	select {
	case s.tx <- b:
		return nil
	case <-s.closed:
		return io.ErrClosedPipe
	}
}

// Flush implements hal.SerialPort.
func (s *Serial) Flush() error {
	return nil
}

// RxReady implements hal.RxInterrupt.
func (s *Serial) RxReady() <-chan struct{} {
	return s.ready
}

// Inject delivers bytes to the device end as if received on the wire.
func (s *Serial) Inject(p ...byte) {
	for _, b := range p {
		s.rx <- b
		s.ready <- struct{}{}
	}
}

// Transmitted drains and returns everything the device has written.
func (s *Serial) Transmitted() []byte {
	var out []byte
	for {
		select {
		case b := <-s.tx:
			out = append(out, b)
		default:
			return out
		}
	}
}

// Host returns the host end of the link.
func (s *Serial) Host() io.ReadWriteCloser {
	return (*hostEnd)(s)
}

// Close unblocks both ends.
func (s *Serial) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

type hostEnd Serial

func (h *hostEnd) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	select {
	case b := <-h.tx:
		p[0] = b
	case <-h.closed:
		return 0, io.EOF
	}
	n := 1
	for n < len(p) {
		select {
		case b := <-h.tx:
			p[n] = b
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

func (h *hostEnd) Write(p []byte) (int, error) {
	select {
	case <-h.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	(*Serial)(h).Inject(p...)
	return len(p), nil
}

func (h *hostEnd) Close() error {
	return (*Serial)(h).Close()
}
