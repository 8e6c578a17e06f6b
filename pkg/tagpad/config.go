package tagpad

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/tagpad/pkg/hal"
)

// Config defines the timing and wiring constants of the appliance. They
// are fixed for the lifetime of the process.
type Config struct {
	Heartbeat         time.Duration
	RfidPollEvery     int
	WatchdogThreshold int
	DebounceDepth     int
	ButtonActiveLow   bool
	TimerClock        uint
	Baud              int
	BusQueue          int
	// NoteUnit is the duration of one note length unit. It must be a
	// multiple of Heartbeat.
	NoteUnit time.Duration

	// SerialPath is the serial device; empty runs simulated.
	SerialPath string
	// SimTags is a comma separated list of hex UIDs presented in turn to
	// the simulated RFID reader.
	SimTags string
}

var defaultConfig = Config{
	Heartbeat:         5 * time.Millisecond,
	RfidPollEvery:     20,
	WatchdogThreshold: 400,
	DebounceDepth:     10,
	ButtonActiveLow:   true,
	TimerClock:        8000000,
	Baud:              115200,
	BusQueue:          10,
	NoteUnit:          5 * time.Millisecond,
}

func init() {
	if val := os.Getenv("TAGPAD_SERIAL"); val != "" {
		defaultConfig.SerialPath = val
	}
	if val := os.Getenv("TAGPAD_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.Heartbeat, "heartbeat", defaultConfig.Heartbeat, "Heartbeat period")
	flag.IntVar(&defaultConfig.RfidPollEvery, "rfid-every", defaultConfig.RfidPollEvery, "Poll RFID every N heartbeats")
	flag.IntVar(&defaultConfig.WatchdogThreshold, "watchdog", defaultConfig.WatchdogThreshold, "Heartbeats without a command before showing the link error")
	flag.IntVar(&defaultConfig.DebounceDepth, "debounce", defaultConfig.DebounceDepth, "Heartbeats of quiet input to confirm a release")
	flag.BoolVar(&defaultConfig.ButtonActiveLow, "button-active-low", defaultConfig.ButtonActiveLow, "Button pulls the input low when pressed")
	flag.UintVar(&defaultConfig.TimerClock, "timer-clock", defaultConfig.TimerClock, "Tone timer counter clock in Hz")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate")
	flag.IntVar(&defaultConfig.BusQueue, "bus-queue", defaultConfig.BusQueue, "Capacity of the bus request queue")
	flag.DurationVar(&defaultConfig.NoteUnit, "note-unit", defaultConfig.NoteUnit, "Duration of one note length unit")
	flag.StringVar(&defaultConfig.SerialPath, "serial", defaultConfig.SerialPath, "Serial device, simulated if empty")
	flag.StringVar(&defaultConfig.SimTags, "sim-tags", defaultConfig.SimTags, "Comma separated hex UIDs for the simulated RFID reader")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the config.
func (c *Config) Validate() error {
	switch {
	case c.Heartbeat <= 0:
		return fmt.Errorf("invalid heartbeat period %v", c.Heartbeat)
	case c.RfidPollEvery <= 0:
		return fmt.Errorf("invalid RFID poll divider %d", c.RfidPollEvery)
	case c.WatchdogThreshold <= 0:
		return fmt.Errorf("invalid watchdog threshold %d", c.WatchdogThreshold)
	case c.DebounceDepth <= 0:
		return fmt.Errorf("invalid debounce depth %d", c.DebounceDepth)
	case c.TimerClock == 0 || c.TimerClock > 0xffffffff:
		return fmt.Errorf("invalid timer clock %d", c.TimerClock)
	case c.Baud <= 0:
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	case c.BusQueue <= 0:
		return fmt.Errorf("invalid bus queue capacity %d", c.BusQueue)
	case c.NoteUnit < c.Heartbeat || c.NoteUnit%c.Heartbeat != 0:
		return fmt.Errorf("note unit %v is not a multiple of heartbeat %v", c.NoteUnit, c.Heartbeat)
	}
	if _, err := c.Tags(); err != nil {
		return err
	}
	return nil
}

// TicksPerNoteUnit returns the number of heartbeats per note length unit.
func (c *Config) TicksPerNoteUnit() int {
	return int(c.NoteUnit / c.Heartbeat)
}

// Tags parses SimTags.
func (c *Config) Tags() ([]hal.UID, error) {
	var uids []hal.UID
	for _, s := range strings.Split(c.SimTags, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		uid, err := hal.ParseUID(s)
		if err != nil {
			return nil, fmt.Errorf("invalid tag %q: %w", s, err)
		}
		uids = append(uids, uid)
	}
	return uids, nil
}
