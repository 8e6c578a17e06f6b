package sim

import (
	"sync"
	"sync/atomic"
)

// Pin is a simulated digital pin usable as input and output.
type Pin struct {
	level   int32
	changes int32
}

// NewPin creates a Pin with an initial level.
func NewPin(high bool) *Pin {
	p := &Pin{}
	p.Set(high)
	return p
}

// Set drives the pin level from outside (e.g. a button).
func (p *Pin) Set(high bool) {
	var v int32
	if high {
		v = 1
	}
	if atomic.SwapInt32(&p.level, v) != v {
		atomic.AddInt32(&p.changes, 1)
	}
}

// ReadLevel implements hal.DigitalInput.
func (p *Pin) ReadLevel() bool {
	return atomic.LoadInt32(&p.level) != 0
}

// SetHigh implements hal.DigitalOutput.
func (p *Pin) SetHigh() { p.Set(true) }

// SetLow implements hal.DigitalOutput.
func (p *Pin) SetLow() { p.Set(false) }

// Changes returns the number of level transitions so far.
func (p *Pin) Changes() int {
	return int(atomic.LoadInt32(&p.changes))
}

// ToneState is a snapshot of a Tone output.
type ToneState struct {
	Prescaler uint16
	Reload    uint16
	Duty      uint16
	Enabled   bool
}

// Tone is a simulated PWM output.
type Tone struct {
	Max uint16

	mu    sync.Mutex
	state ToneState
}

// NewTone creates a Tone with the given maximum duty.
func NewTone(max uint16) *Tone {
	return &Tone{Max: max}
}

// Configure implements hal.ToneOutput.
func (t *Tone) Configure(prescaler, reload uint16) {
	t.mu.Lock()
	t.state.Prescaler, t.state.Reload = prescaler, reload
	t.mu.Unlock()
}

// SetDuty implements hal.ToneOutput.
func (t *Tone) SetDuty(duty uint16) {
	t.mu.Lock()
	t.state.Duty = duty
	t.mu.Unlock()
}

// MaxDuty implements hal.ToneOutput.
func (t *Tone) MaxDuty() uint16 {
	return t.Max
}

// Enable implements hal.ToneOutput.
func (t *Tone) Enable() {
	t.mu.Lock()
	t.state.Enabled = true
	t.mu.Unlock()
}

// Disable implements hal.ToneOutput.
func (t *Tone) Disable() {
	t.mu.Lock()
	t.state.Enabled = false
	t.mu.Unlock()
}

// State returns the current output state.
func (t *Tone) State() ToneState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
