// Package button debounces a mechanical push button.
package button

import "github.com/robotalks/tagpad/pkg/hal"

// Debouncer turns a noisy input into clean press/release edges. A press
// is reported on the first active sample; a release only after Depth
// consecutive inactive samples.
type Debouncer struct {
	pin       hal.DigitalInput
	depth     int
	activeLow bool

	pressed bool
	count   int
}

// NewDebouncer creates a Debouncer sampling pin. With activeLow the button
// pulls the line low when pressed.
func NewDebouncer(pin hal.DigitalInput, depth int, activeLow bool) *Debouncer {
	return &Debouncer{pin: pin, depth: depth, activeLow: activeLow}
}

// Pressed returns the debounced state.
func (d *Debouncer) Pressed() bool {
	return d.pressed
}

// Poll samples the input once. ok is true when an edge happened, and
// pressed tells which one.
func (d *Debouncer) Poll() (pressed, ok bool) {
	if d.pin.ReadLevel() != d.activeLow {
		d.count = d.depth
		if !d.pressed {
			d.pressed = true
			return true, true
		}
		return
	}
	if d.pressed && d.count > 0 {
		d.count--
		if d.count == 0 {
			d.pressed = false
			return false, true
		}
	}
	return
}
