// Package tagpad wires the coordination core of the appliance: the
// receive handler, the heartbeat and the bus task, and the resources
// they share.
package tagpad

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/tagpad/pkg/bus"
	"github.com/robotalks/tagpad/pkg/button"
	"github.com/robotalks/tagpad/pkg/display"
	fx "github.com/robotalks/tagpad/pkg/framework"
	"github.com/robotalks/tagpad/pkg/hal"
	"github.com/robotalks/tagpad/pkg/l0/comm"
	"github.com/robotalks/tagpad/pkg/tone"
)

// Task priorities.
const (
	PrioBus       fx.Priority = 1
	PrioHeartbeat fx.Priority = 2
	PrioReceive   fx.Priority = 3
)

// Hardware is the set of peripherals the core drives.
type Hardware struct {
	Serial   hal.SerialPort
	RxLine   hal.RxInterrupt
	TxEnable hal.DigitalOutput
	Button   hal.DigitalInput
	Led      hal.DigitalOutput
	Tone     hal.ToneOutput
	Display  hal.Display
	Rfid     hal.RfidReader
}

// BusRequest is work for the bus task.
type BusRequest int

// Bus requests.
const (
	FlushDisplay BusRequest = iota
	PollRfid
)

func (r BusRequest) String() string {
	switch r {
	case FlushDisplay:
		return "flush-display"
	case PollRfid:
		return "poll-rfid"
	}
	return fmt.Sprintf("bus-request(%d)", int(r))
}

// App is the coordination core.
type App struct {
	conf  *Config
	sched *fx.Scheduler
	bus   *bus.Bus
	busQ  *fx.QueuedTask

	engine  *comm.Engine
	commRes *fx.Resource

	seq     *tone.Sequencer
	toneRes *fx.Resource

	slot    display.Slot
	slotRes *fx.Resource

	watchdog *Watchdog
	wdRes    *fx.Resource

	led    hal.DigitalOutput
	ledRes *fx.Resource

	// owned by the heartbeat
	button    *button.Debouncer
	rfidCount int
}

// NewApp creates the core and registers its tasks. conf must be valid.
func NewApp(conf *Config, hw Hardware) *App {
	a := &App{
		conf:     conf,
		sched:    fx.NewScheduler(),
		bus:      bus.New(PrioBus, hw.Display, hw.Rfid),
		engine:   comm.NewEngine(hw.Serial, hw.TxEnable, conf.Baud),
		commRes:  fx.NewResource("comm", PrioReceive, PrioHeartbeat, PrioBus),
		seq:      tone.NewSequencer(hw.Tone, uint32(conf.TimerClock), conf.TicksPerNoteUnit()),
		toneRes:  fx.NewResource("tone", PrioReceive, PrioHeartbeat),
		slotRes:  fx.NewResource("display-slot", PrioReceive, PrioHeartbeat, PrioBus),
		watchdog: NewWatchdog(conf.WatchdogThreshold),
		wdRes:    fx.NewResource("watchdog", PrioReceive, PrioHeartbeat),
		led:      hw.Led,
		ledRes:   fx.NewResource("led", PrioReceive),
		button:   button.NewDebouncer(hw.Button, conf.DebounceDepth, conf.ButtonActiveLow),
	}
	a.led.SetLow()
	a.sched.Interrupt("receive", PrioReceive, hw.RxLine.RxReady(), a.OnReceive)
	a.sched.Periodic("heartbeat", PrioHeartbeat, conf.Heartbeat, a.Heartbeat)
	a.busQ = a.sched.Queued("bus", PrioBus, conf.BusQueue, a.ServiceBus)
	return a
}

// Name implements Named.
func (a *App) Name() string {
	return "tagpad"
}

// Add adds auxiliary Runnables started with the tasks.
func (a *App) Add(runnables ...fx.Runnable) *App {
	a.sched.Add(runnables...)
	return a
}

// Run initializes the display and runs all tasks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.boot(ctx); err != nil {
		return err
	}
	glog.Infof("tagpad: running, heartbeat %v", a.conf.Heartbeat)
	err := a.sched.Run(ctx)
	stats := a.engine.Stats()
	glog.Infof("tagpad: stopped, frames %d, malformed %d, replies %d, dropped events %d, dropped bytes %d",
		stats.Frames, stats.Malformed, stats.Replies, stats.DroppedEvents, stats.DroppedBytes)
	return err
}

func (a *App) boot(ctx context.Context) error {
	claim := a.bus.Claim(fx.NewTask(ctx, "boot", PrioBus))
	defer claim.Release()
	if err := claim.Init(); err != nil {
		return fmt.Errorf("display init: %w", err)
	}
	if err := claim.Clear(); err != nil {
		return fmt.Errorf("display clear: %w", err)
	}
	return nil
}

// OnReceive handles one received byte.
func (a *App) OnReceive(t *fx.Task) {
	var valid bool
	a.commRes.Lock(t, func() {
		cmd := a.engine.HandleRx()
		if cmd == nil {
			return
		}
		a.apply(t, cmd)
		if err := a.engine.Respond(); err != nil {
			glog.Errorf("tagpad: reply: %v", err)
		}
		valid = true
	})
	if valid {
		a.wdRes.Lock(t, a.watchdog.Clear)
	}
}

// apply runs with comm locked.
func (a *App) apply(t *fx.Task, cmd comm.Command) {
	if glog.V(2) {
		glog.Infof("tagpad: command %c", cmd.Tag())
	}
	switch c := cmd.(type) {
	case comm.Reset:
		a.engine.ClearEvents()
		a.ledRes.Lock(t, a.led.SetLow)
		a.toneRes.Lock(t, a.seq.Stop)
	case comm.Led:
		a.ledRes.Lock(t, func() {
			if c.On {
				a.led.SetHigh()
			} else {
				a.led.SetLow()
			}
		})
	case comm.Beep:
		a.toneRes.Lock(t, func() {
			a.seq.Stop()
			c.Notes.Each(func(n tone.Note) {
				if !a.seq.Play(n) {
					glog.V(2).Infof("tagpad: tone queue full, note dropped")
				}
			})
		})
	case comm.Display:
		a.slotRes.Lock(t, func() { a.slot.Set(c.Data) })
		a.request(FlushDisplay)
	}
}

// Heartbeat runs once per period.
func (a *App) Heartbeat(t *fx.Task) {
	a.toneRes.Lock(t, a.seq.Tick)

	if pressed, ok := a.button.Poll(); ok {
		a.send(t, comm.Button{Pressed: pressed})
	}

	if a.rfidCount == 0 {
		a.request(PollRfid)
		a.rfidCount = a.conf.RfidPollEvery
	}
	a.rfidCount--

	var expired bool
	a.wdRes.Lock(t, func() { expired = a.watchdog.Tick() })
	if expired {
		a.slotRes.Lock(t, func() { a.slot.SetFrame(display.CommErrorImage()) })
		a.request(FlushDisplay)
	}
}

// ServiceBus runs one bus request. It is the only code touching the bus.
func (a *App) ServiceBus(t *fx.Task, msg interface{}) {
	claim := a.bus.Claim(t)
	defer claim.Release()
	switch req := msg.(BusRequest); req {
	case FlushDisplay:
		var frame hal.Frame
		var ok bool
		a.slotRes.Lock(t, func() { frame, ok = a.slot.Take() })
		if !ok {
			return
		}
		if err := claim.Draw(&frame); err != nil {
			glog.Errorf("tagpad: display draw: %v", err)
		}
	case PollRfid:
		tok, err := claim.DetectPresence()
		if err != nil {
			if err != hal.ErrNoTag {
				glog.Errorf("tagpad: RFID detect: %v", err)
			}
			return
		}
		uid, err := claim.Select(tok)
		if err != nil {
			glog.Errorf("tagpad: RFID select: %v", err)
			return
		}
		if glog.V(2) {
			glog.Infof("tagpad: tag %s", uid)
		}
		a.send(t, comm.Rfid{UID: uid})
	default:
		fx.Violate("unknown bus request %v", req)
	}
}

func (a *App) send(t *fx.Task, ev comm.Event) {
	var err error
	a.commRes.Lock(t, func() { err = a.engine.Send(ev) })
	if err != nil {
		glog.V(2).Infof("tagpad: event %c dropped: %v", ev.Tag(), err)
	}
}

func (a *App) request(req BusRequest) {
	if err := a.busQ.Spawn(req); err != nil {
		glog.V(2).Infof("tagpad: bus request %v dropped: %v", req, err)
	}
}
