// Package bridge relays a device on the serial link to MQTT and
// websocket clients. Device events are published as JSON; commands
// arrive on MQTT topics.
package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tagpad/pkg/l0/comm"
)

// Device sends a command and returns the reply event.
type Device interface {
	Do(ctx context.Context, cmd comm.Command) (comm.Event, error)
}

const commandBacklog = 16

// DefaultPollInterval is the default interval between pings when no
// command is pending.
const DefaultPollInterval = 50 * time.Millisecond

// Bridge polls a device and relays its events.
type Bridge struct {
	ID           string
	Device       Device
	PubSub       PubSub
	Hub          *Hub
	PollInterval time.Duration
	// Format is the payload format of published events, FormatJSON or
	// FormatProto. Websocket clients always get JSON.
	Format string

	cmdCh chan comm.Command
	now   func() time.Time
}

// New creates a Bridge. pubsub and hub are optional.
func New(id string, dev Device, pubsub PubSub, hub *Hub) *Bridge {
	return &Bridge{
		ID:           id,
		Device:       dev,
		PubSub:       pubsub,
		Hub:          hub,
		PollInterval: DefaultPollInterval,
		Format:       FormatJSON,
		cmdCh:        make(chan comm.Command, commandBacklog),
		now:          time.Now,
	}
}

// Name implements Named.
func (b *Bridge) Name() string {
	return "bridge"
}

// Submit queues a command for the device.
func (b *Bridge) Submit(cmd comm.Command) bool {
	select {
	case b.cmdCh <- cmd:
		return true
	default:
		return false
	}
}

// Run subscribes to the command topics and relays until ctx is done.
// Each ping also keeps the device watchdog from expiring.
func (b *Bridge) Run(ctx context.Context) error {
	if b.PubSub != nil {
		if err := b.PubSub.Sub(b.ID+"/cmd/+", b.onCommand); err != nil {
			return err
		}
	}
	interval := b.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		var cmd comm.Command = comm.Ping{}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd = <-b.cmdCh:
		case <-ticker.C:
		}
		b.exchange(ctx, cmd)
	}
}

func (b *Bridge) exchange(ctx context.Context, cmd comm.Command) {
	ev, err := b.Device.Do(ctx, cmd)
	if err != nil {
		if ctx.Err() == nil {
			glog.Warningf("bridge: command %c: %v", cmd.Tag(), err)
		}
		return
	}
	b.relay(ev)
}

func (b *Bridge) relay(ev comm.Event) {
	topic, msg := eventMsg(b.ID, ev, b.now())
	if msg == nil {
		return
	}
	glog.V(2).Infof("bridge: %s %+v", topic, ev)
	if b.PubSub != nil {
		payload, err := encodeEvent(b.Format, msg, ev)
		if err != nil {
			glog.Errorf("bridge: encode event: %v", err)
		} else if err = b.PubSub.Pub(b.ID+"/"+topic, payload); err != nil {
			glog.Errorf("bridge: publish %s: %v", topic, err)
		}
	}
	if b.Hub != nil {
		payload, err := json.Marshal(msg)
		if err != nil {
			glog.Errorf("bridge: encode event: %v", err)
			return
		}
		b.Hub.Broadcast(payload)
	}
}

func (b *Bridge) onCommand(topic string, payload []byte) {
	prefix := b.ID + "/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return
	}
	cmd, err := decodeCommand(topic[len(prefix):], payload)
	if err != nil {
		glog.Warningf("bridge: %s: %v", topic, err)
		return
	}
	if !b.Submit(cmd) {
		glog.Warningf("bridge: %s: command backlog full", topic)
	}
}
