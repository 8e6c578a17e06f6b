package comm

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/tagpad/pkg/framework"
)

// DefaultTimeout is the default time to wait for a reply.
const DefaultTimeout = 100 * time.Millisecond

// Result is the reply to a command using Do.
type Result struct {
	Event Event
	Err   error
}

// Client is the host end of the protocol. Every command frame is
// answered by exactly one event frame, so commands are strictly
// serialized.
type Client struct {
	ReadWriter io.ReadWriter
	Timeout    time.Duration

	replyCh chan Result
	lock    sync.Mutex
}

// NewClient creates a Client. Run must be running for Do to get replies.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{
		ReadWriter: rw,
		Timeout:    DefaultTimeout,
		replyCh:    make(chan Result, 1),
	}
}

// Name implements Named.
func (c *Client) Name() string {
	return "l0-client"
}

// Do sends cmd and waits for its reply.
func (c *Client) Do(ctx context.Context, cmd Command) (Event, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	// a late reply to an earlier timed-out command is stale now
	select {
	case <-c.replyCh:
	default:
	}

	if _, err := c.ReadWriter.Write(AppendCommand(nil, cmd)); err != nil {
		return nil, err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-c.replyCh:
		return r.Event, r.Err
	case <-timer.C:
		return nil, ErrNoReply
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run reads and decodes replies until ctx is done or the stream fails.
func (c *Client) Run(ctx context.Context) error {
	if closer, ok := c.ReadWriter.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, c.readLoop)
	}
	return c.readLoop()
}

func (c *Client) readLoop() error {
	var dec Decoder
	r := bufio.NewReader(c.ReadWriter)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		frame, ok := dec.Feed(b)
		if !ok {
			continue
		}
		ev, err := DecodeEvent(frame)
		if glog.V(4) {
			glog.Infof("l0: reply %q: %v %v", frame, ev, err)
		}
		select {
		case c.replyCh <- Result{Event: ev, Err: err}:
		default:
			glog.Warningf("l0: unsolicited reply %q dropped", frame)
		}
	}
}
