// Package device adds appliance commands to the shell.
package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/tagpad/pkg/cli/sh"
	"github.com/robotalks/tagpad/pkg/display"
	"github.com/robotalks/tagpad/pkg/l0/comm"
	"github.com/robotalks/tagpad/pkg/tone"
)

var (
	// ResetCmd clears pending events, the LED and the tone.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, comm.Reset{})
		}),
	}

	// LedCmd switches the LED.
	LedCmd = ishell.Cmd{
		Name: "led",
		Help: "on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("on or off expected"))
				return
			}
			on, err := ParseSwitch(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, comm.Led{On: on})
		}),
	}

	// BeepCmd plays notes.
	BeepCmd = ishell.Cmd{
		Name: "beep",
		Help: "FREQ:LEN[:VOLUME] ...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			notes, err := ParseNotes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, comm.Beep{Notes: comm.PackNotes(notes...)})
		}),
	}

	// DisplayCmd shows text lines on the display.
	DisplayCmd = ishell.Cmd{
		Name:    "display",
		Aliases: []string{"show"},
		Help:    "TEXT-LINE ...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			frame := display.RenderText(c.Args...)
			sh.DoCommand(c, comm.Display{Data: frame[:]})
		}),
	}

	// PollCmd pings repeatedly and prints every event.
	PollCmd = ishell.Cmd{
		Name: "poll",
		Help: "[DURATION]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			dur := 10 * time.Second
			if len(c.Args) > 0 {
				d, err := time.ParseDuration(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				dur = d
			}
			s := sh.ShellFrom(c)
			deadline := time.Now().Add(dur)
			for time.Now().Before(deadline) {
				ev, err := s.Link.Client.Do(s.Link.Ctx, comm.Ping{})
				if err != nil {
					c.Err(err)
					return
				}
				if _, ok := ev.(comm.Pong); !ok {
					s.PrintEvent(c, ev)
				}
				time.Sleep(50 * time.Millisecond)
			}
		}),
	}
)

// ParseSwitch parses on/off.
func ParseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch %q", s)
}

// ParseNotes parses FREQ:LEN[:VOLUME] arguments. Volume defaults to 128.
func ParseNotes(args []string) ([]tone.Note, error) {
	notes := make([]tone.Note, 0, len(args))
	for _, arg := range args {
		fields := strings.Split(arg, ":")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("invalid note %q", arg)
		}
		freq, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency in %q: %w", arg, err)
		}
		length, err := strconv.ParseUint(fields[1], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid length in %q: %w", arg, err)
		}
		note := tone.Note{Freq: uint16(freq), Len: uint8(length), Volume: 128}
		if len(fields) == 3 {
			vol, err := strconv.ParseUint(fields[2], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid volume in %q: %w", arg, err)
			}
			note.Volume = uint8(vol)
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func init() {
	sh.AddCmds(
		&ResetCmd,
		&LedCmd,
		&BeepCmd,
		&DisplayCmd,
		&PollCmd,
	)
}
