// Package serialport connects the coordination core to a host serial
// adapter through go.bug.st/serial.
package serialport

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	fx "github.com/robotalks/tagpad/pkg/framework"
	"github.com/robotalks/tagpad/pkg/hal"
)

const (
	rxBufferSize = 4096
	readTimeout  = 50 * time.Millisecond
)

// Mode returns 8N1 at baud.
func Mode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Port is the device end of a serial link. A background reader moves
// received bytes into a buffer and raises RxReady once per byte, so
// ReadByte never blocks.
type Port struct {
	Path string

	port  serial.Port
	rx    chan byte
	ready chan struct{}
}

// Open opens the adapter at path.
func Open(path string, baud int) (*Port, error) {
	port, err := serial.Open(path, Mode(baud))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err = port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout %s: %w", path, err)
	}
	port.ResetInputBuffer()
	return &Port{
		Path:  path,
		port:  port,
		rx:    make(chan byte, rxBufferSize),
		ready: make(chan struct{}, rxBufferSize),
	}, nil
}

// Name implements Named.
func (p *Port) Name() string {
	return "serial:" + p.Path
}

// Run reads from the adapter until ctx is done. The port is closed
// when Run returns.
func (p *Port) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, p.port, p.readLoop)
}

func (p *Port) readLoop() error {
	var buf [256]byte
	for {
		n, err := p.port.Read(buf[:])
		if err != nil {
			return err
		}
		if n == 0 {
			// read timeout
			continue
		}
		for _, b := range buf[:n] {
			select {
			case p.rx <- b:
				select {
				case p.ready <- struct{}{}:
				default:
				}
			default:
				glog.Warningf("%s: receive overrun, byte dropped", p.Path)
			}
		}
	}
}

// ReadByte implements hal.SerialPort.
func (p *Port) ReadByte() (byte, error) {
	select {
	case b := <-p.rx:
		return b, nil
	default:
		return 0, hal.ErrWouldBlock
	}
}

// WriteByte implements hal.SerialPort.
func (p *Port) WriteByte(b byte) error {
	buf := [1]byte{b}
	_, err := p.port.Write(buf[:])
	return err
}

// Flush implements hal.SerialPort, waiting until the output is sent.
func (p *Port) Flush() error {
	return p.port.Drain()
}

// RxReady implements hal.RxInterrupt.
func (p *Port) RxReady() <-chan struct{} {
	return p.ready
}

// TxEnable returns the RTS line as the transmit-enable output of an
// RS-485 transceiver.
func (p *Port) TxEnable() hal.DigitalOutput {
	return &rtsLine{port: p.port, path: p.Path}
}

// Close closes the adapter.
func (p *Port) Close() error {
	return p.port.Close()
}

type rtsLine struct {
	port serial.Port
	path string
}

func (l *rtsLine) SetHigh() { l.set(true) }
func (l *rtsLine) SetLow()  { l.set(false) }

func (l *rtsLine) set(level bool) {
	if err := l.port.SetRTS(level); err != nil {
		glog.Errorf("%s: set RTS: %v", l.path, err)
	}
}

// OpenHost opens the adapter at path for the host controller end of
// the link, as a plain stream.
func OpenHost(path string, baud int) (io.ReadWriteCloser, error) {
	port, err := serial.Open(path, Mode(baud))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return port, nil
}
