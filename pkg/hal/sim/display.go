package sim

import (
	"sync"

	"github.com/robotalks/tagpad/pkg/hal"
)

// Display records everything drawn on it.
type Display struct {
	// OnDraw is called after each successful Draw.
	OnDraw func(*hal.Frame)

	mu     sync.Mutex
	inits  int
	clears int
	frames []hal.Frame
}

// Init implements hal.Display.
func (d *Display) Init() error {
	d.mu.Lock()
	d.inits++
	d.mu.Unlock()
	return nil
}

// Clear implements hal.Display.
func (d *Display) Clear() error {
	d.mu.Lock()
	d.clears++
	d.mu.Unlock()
	return nil
}

// Draw implements hal.Display.
func (d *Display) Draw(f *hal.Frame) error {
	d.mu.Lock()
	d.frames = append(d.frames, *f)
	fn := d.OnDraw
	d.mu.Unlock()
	if fn != nil {
		fn(f)
	}
	return nil
}

// Frames returns all frames drawn so far.
func (d *Display) Frames() []hal.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]hal.Frame(nil), d.frames...)
}

// Counts returns the number of Init and Clear calls.
func (d *Display) Counts() (inits, clears int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inits, d.clears
}
