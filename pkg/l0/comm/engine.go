package comm

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tagpad/pkg/hal"
)

// Stats counts engine activity.
type Stats struct {
	Frames        int
	Malformed     int
	Replies       int
	DroppedEvents int
	DroppedBytes  int
	WriteErrors   int
}

// Engine is the device end of the protocol. It decodes commands one
// received byte at a time and answers every frame with exactly one
// event. It does no locking; the caller guards it as a shared resource.
type Engine struct {
	port     hal.SerialPort
	txEnable hal.DigitalOutput

	// Guard is the quiet time before driving the line, letting the host
	// release it.
	Guard time.Duration
	// Spin waits for d without yielding. Defaults to a busy loop.
	Spin func(d time.Duration)

	dec    Decoder
	events EventQueue
	tx     [maxEventLen]byte
	stats  Stats
}

// GuardFor returns two bit periods at baud, rounded up.
func GuardFor(baud int) time.Duration {
	if baud <= 0 {
		return 0
	}
	return (2*time.Second + time.Duration(baud) - 1) / time.Duration(baud)
}

// NewEngine creates an Engine on port. txEnable is asserted while
// transmitting.
func NewEngine(port hal.SerialPort, txEnable hal.DigitalOutput, baud int) *Engine {
	txEnable.SetLow()
	return &Engine{
		port:     port,
		txEnable: txEnable,
		Guard:    GuardFor(baud),
		Spin:     busyWait,
	}
}

// HandleRx consumes one received byte. It returns a command when the
// byte completes a valid frame; the caller applies it and must then call
// Respond. A complete but malformed frame is answered here and yields nil.
// The returned command may alias the receive buffer and is valid until
// the next HandleRx.
func (e *Engine) HandleRx() Command {
	b, err := e.port.ReadByte()
	if err != nil {
		return nil
	}
	frame, ok := e.dec.Feed(b)
	if !ok {
		return nil
	}
	e.stats.Frames++
	cmd, err := DecodeCommand(frame)
	if err != nil {
		e.stats.Malformed++
		if glog.V(2) {
			glog.Infof("comm: %v", err)
		}
		if err = e.Respond(); err != nil {
			glog.Errorf("comm: reply error: %v", err)
		}
		return nil
	}
	return cmd
}

// Respond sends the oldest pending event, or Pong when none is pending.
// It runs the whole half-duplex turnaround synchronously.
func (e *Engine) Respond() error {
	ev, ok := e.events.Pop()
	if !ok {
		ev = Pong{}
	}
	reply := AppendEvent(e.tx[:0], ev)

	if e.Guard > 0 {
		e.Spin(e.Guard)
	}
	e.txEnable.SetHigh()
	defer e.txEnable.SetLow()

	var werr error
	for _, b := range reply {
		if err := e.port.WriteByte(b); err != nil && werr == nil {
			werr = err
		}
	}
	if err := e.port.Flush(); err != nil && werr == nil {
		werr = err
	}
	// drain a byte which may have arrived during turnaround
	e.port.ReadByte()

	e.stats.Replies++
	if werr != nil {
		e.stats.WriteErrors++
	}
	return werr
}

// Send queues an event for the next reply. When the queue is full the
// event is dropped and ErrEventQueueFull returned.
func (e *Engine) Send(ev Event) error {
	if !e.events.Push(ev) {
		e.stats.DroppedEvents++
		return ErrEventQueueFull
	}
	return nil
}

// ClearEvents drops all pending events.
func (e *Engine) ClearEvents() {
	e.events.Clear()
}

// PendingEvents returns the number of queued events.
func (e *Engine) PendingEvents() int {
	return e.events.Len()
}

// Stats returns the counters.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.DroppedBytes = e.dec.Dropped()
	return s
}

func busyWait(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}
