// Package bus arbitrates the single physical bus shared by the display
// and the RFID reader.
//
// Ownership is single-owner by construction: exactly one task priority
// may claim the bus and a claim is never contended. Any other access is
// a wiring defect and panics instead of waiting.
package bus

import (
	"sync/atomic"

	fx "github.com/robotalks/tagpad/pkg/framework"
	"github.com/robotalks/tagpad/pkg/hal"
)

// Bus owns the devices attached to the shared bus.
type Bus struct {
	owner   fx.Priority
	claimed int32
	display hal.Display
	rfid    hal.RfidReader
}

// New creates a Bus owned by tasks at priority owner.
func New(owner fx.Priority, display hal.Display, rfid hal.RfidReader) *Bus {
	return &Bus{owner: owner, display: display, rfid: rfid}
}

// Owner returns the owning priority.
func (b *Bus) Owner() fx.Priority {
	return b.owner
}

// Claim takes the ownership token for task t.
func (b *Bus) Claim(t *fx.Task) *Claim {
	if t.Priority() != b.owner {
		fx.Violate("bus claimed by %q at %v, owner is %v", t.Name(), t.Priority(), b.owner)
	}
	if !atomic.CompareAndSwapInt32(&b.claimed, 0, 1) {
		fx.Violate("bus claimed by %q while already claimed", t.Name())
	}
	return &Claim{bus: b}
}

// Claim is a held ownership token. The display and RFID reader are only
// reachable through it.
type Claim struct {
	bus      *Bus
	released int32
}

// Release returns the token.
func (c *Claim) Release() {
	if !atomic.CompareAndSwapInt32(&c.released, 0, 1) {
		fx.Violate("bus claim released twice")
	}
	atomic.StoreInt32(&c.bus.claimed, 0)
}

func (c *Claim) check() {
	if atomic.LoadInt32(&c.released) != 0 {
		fx.Violate("bus accessed through a released claim")
	}
}

// Init implements hal.Display.
func (c *Claim) Init() error {
	c.check()
	return c.bus.display.Init()
}

// Clear implements hal.Display.
func (c *Claim) Clear() error {
	c.check()
	return c.bus.display.Clear()
}

// Draw implements hal.Display.
func (c *Claim) Draw(f *hal.Frame) error {
	c.check()
	return c.bus.display.Draw(f)
}

// DetectPresence implements hal.RfidReader.
func (c *Claim) DetectPresence() (hal.Token, error) {
	c.check()
	return c.bus.rfid.DetectPresence()
}

// Select implements hal.RfidReader.
func (c *Claim) Select(tok hal.Token) (hal.UID, error) {
	c.check()
	return c.bus.rfid.Select(tok)
}
