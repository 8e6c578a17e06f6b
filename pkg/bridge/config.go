package bridge

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
)

// Config defines the bridge options.
type Config struct {
	ID string
	// MQTTBrokerURL e.g. mqtt://host:port/topic-prefix/, empty disables MQTT.
	MQTTBrokerURL string
	// Listen is the address of the websocket endpoint, empty disables it.
	Listen       string
	PollInterval time.Duration
	Timeout      time.Duration
	// Format of MQTT event payloads: json or proto.
	Format string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/tagpad/",
	Listen:        ":8080",
	PollInterval:  DefaultPollInterval,
	Timeout:       100 * time.Millisecond,
	Format:        FormatJSON,
}

func init() {
	if val := os.Getenv("TAGPAD_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("TAGPAD_ID"); val != "" {
		defaultConfig.ID = val
	} else {
		defaultConfig.ID = MachineID()
	}
}

// MachineID returns an ID derived from the machine, or "tagpad" when
// the machine has none.
func MachineID() string {
	id, err := machineid.ProtectedID("tagpad")
	if err != nil {
		return "tagpad"
	}
	return id[:12]
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Device ID used in topics")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Websocket listen address, empty to disable")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Device poll interval")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Device reply timeout")
	flag.StringVar(&defaultConfig.Format, "format", defaultConfig.Format, "MQTT event payload format: json or proto")
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
	if c.ID == "" {
		return fmt.Errorf("device ID must be specified")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval %v", c.PollInterval)
	}
	if c.Format != FormatJSON && c.Format != FormatProto {
		return fmt.Errorf("unknown payload format %q", c.Format)
	}
	return nil
}
