package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/tagpad/pkg/framework"
	"github.com/robotalks/tagpad/pkg/hal/serialport"
	"github.com/robotalks/tagpad/pkg/l0/comm"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *Config
	Link   *Link
}

// Link is a connected device.
type Link struct {
	Path   string
	Ctx    context.Context
	Cancel func()
	Client *comm.Client
}

// Config provides the link options.
type Config struct {
	SerialPath string
	Baud       int
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	defaultConfig = Config{Baud: 115200}

	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&PingCmd,
	}
)

func init() {
	if val := os.Getenv("TAGPAD_SERIAL"); val != "" {
		defaultConfig.SerialPath = val
	}
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.SerialPath, "serial", defaultConfig.SerialPath, "Serial device to connect")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Link == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatEvent prints an event into friendly string for display.
func FormatEvent(ev comm.Event) string {
	switch e := ev.(type) {
	case comm.Pong:
		return "OK"
	case comm.Button:
		if e.Pressed {
			return "Button pressed"
		}
		return "Button released"
	case comm.Rfid:
		return "Rfid " + e.UID.String()
	}
	return fmt.Sprintf("%v", ev)
}

type eventJSON struct {
	Type    string `json:"type"`
	Pressed *bool  `json:"pressed,omitempty"`
	UID     string `json:"uid,omitempty"`
}

// EventJSON encodes an event for -json output.
func EventJSON(ev comm.Event) ([]byte, error) {
	var out eventJSON
	switch e := ev.(type) {
	case comm.Pong:
		out.Type = "pong"
	case comm.Button:
		pressed := e.Pressed
		out.Type, out.Pressed = "button", &pressed
	case comm.Rfid:
		out.Type, out.UID = "rfid", e.UID.String()
	default:
		return nil, fmt.Errorf("unknown event %v", ev)
	}
	return json.Marshal(&out)
}

// DoCommand sends a command and prints the reply.
func DoCommand(c *ishell.Context, cmd comm.Command) (ev comm.Event, err error) {
	s := ShellFrom(c)
	if s.Link == nil {
		err = fmt.Errorf("not connected")
		c.Err(err)
		return
	}
	if ev, err = s.Link.Client.Do(s.Link.Ctx, cmd); err != nil {
		c.Err(err)
		return
	}
	s.PrintEvent(c, ev)
	return
}

// PrintEvent prints ev in the configured format.
func (s *Shell) PrintEvent(c *ishell.Context, ev comm.Event) {
	if !s.OutputJSON {
		c.Println(FormatEvent(ev))
		return
	}
	out, err := EventJSON(ev)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens the serial device at path.
func (s *Shell) Connect(path string) error {
	port, err := serialport.OpenHost(path, s.Config.Baud)
	if err != nil {
		return err
	}
	s.Attach(path, port)
	return nil
}

// Attach uses rw as the device link.
func (s *Shell) Attach(name string, rw io.ReadWriter) {
	link := &Link{Path: name, Client: comm.NewClient(rw)}
	link.Ctx, link.Cancel = context.WithCancel(context.Background())
	s.Disconnect()
	s.Link = link
	go fx.NewRunnerWith(link.Ctx).Go(link.Client).Wait()
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", name))
}

// Disconnect disconnects current device.
func (s *Shell) Disconnect() {
	if s.Link != nil {
		s.Link.Cancel()
		s.Link = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.SerialPath != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.SerialPath)
		}
		if err := s.Connect(s.Config.SerialPath); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.SerialPath, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// ConnectCmd connects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "SERIAL-DEVICE",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			path := s.Config.SerialPath
			if len(c.Args) > 0 {
				path = c.Args[0]
			}
			if path == "" {
				c.Err(fmt.Errorf("serial device expected"))
				return
			}
			if err := s.Connect(path); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// PingCmd sends a ping and prints the event it fetches.
	PingCmd = ishell.Cmd{
		Name:    "ping",
		Aliases: []string{"p"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			DoCommand(c, comm.Ping{})
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
