// Package config loads the description of a unit: its role, the pins it
// uses, serial and radio settings and where events go.
package config

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/rfdoor/pkg/radio"
	"github.com/robotalks/rfdoor/pkg/serial"
)

// Unit roles.
const (
	RoleReceiver    = "receiver"
	RoleTransmitter = "transmitter"
)

// Config is the unit file.
type Config struct {
	Unit   UnitConfig   `yaml:"unit"`
	Pins   PinsConfig   `yaml:"pins"`
	Serial SerialConfig `yaml:"serial"`
	Radio  RadioConfig  `yaml:"radio"`
	Door   DoorConfig   `yaml:"door"`
	Events EventsConfig `yaml:"events"`
}

// UnitConfig names the unit.
type UnitConfig struct {
	ID          string `yaml:"id"`
	Role        string `yaml:"role"`
	Description string `yaml:"description,omitempty"`
}

// PinsConfig maps functions to board pin names.
type PinsConfig struct {
	SerialTX string          `yaml:"serial_tx"`
	SerialRX string          `yaml:"serial_rx"`
	Radio    radio.LineNames `yaml:"radio"`
	// Actuator is the door relay on a receiver, the LED on a handheld.
	Actuator          string `yaml:"actuator"`
	ActuatorActiveLow bool   `yaml:"actuator_active_low"`
	Button            string `yaml:"button"`
	ButtonActiveHigh  bool   `yaml:"button_active_high"`
}

// SerialConfig sets the bit timing. Baud wins over BitPeriod.
type SerialConfig struct {
	Baud      int           `yaml:"baud,omitempty"`
	BitPeriod time.Duration `yaml:"bit_period,omitempty"`
	HalfBit   time.Duration `yaml:"half_bit,omitempty"`
}

// RadioConfig holds the radio parameters the unit file may change.
type RadioConfig struct {
	PayloadWidth int `yaml:"payload_width"`
	Channel      int `yaml:"channel"`
	// Power is one of -20dBm, -10dBm, -5dBm, 0dBm.
	Power string `yaml:"power"`
	// Address is the node address in hex, 1 to 5 bytes.
	Address string `yaml:"address"`
	// DataRate is 250k or 1M.
	DataRate string `yaml:"data_rate"`
	// CrystalMHz is 4, 8, 12, 16 or 20.
	CrystalMHz int `yaml:"crystal_mhz"`
	// CRCBits is 0, 8 or 16.
	CRCBits int `yaml:"crc_bits"`
}

// DoorConfig tunes the door logic.
type DoorConfig struct {
	OpenThreshold    int           `yaml:"open_threshold"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	DataReadyTimeout time.Duration `yaml:"data_ready_timeout"`
	SendInterval     time.Duration `yaml:"send_interval"`
	Debounce         int           `yaml:"debounce"`
}

// EventsConfig says where events are reported. Empty values disable.
type EventsConfig struct {
	// MQTTURL is like mqtt://host:port/topic-prefix.
	MQTTURL string `yaml:"mqtt"`
	Redis   string `yaml:"redis"`
	// Capture is a file events are appended to as framed packets.
	Capture string `yaml:"capture"`
}

var defaultConfig = Config{
	Unit: UnitConfig{Role: RoleReceiver},
	Pins: PinsConfig{
		SerialTX: "TX",
		SerialRX: "RX",
		Radio:    radio.DefaultLineNames,
		Actuator: "RELAY",
		Button:   "BTN",
	},
	Serial: SerialConfig{
		BitPeriod: serial.DefaultTiming.BitPeriod,
		HalfBit:   serial.DefaultTiming.HalfBit,
	},
	Radio: RadioConfig{
		PayloadWidth: 6,
		Channel:      64,
		Power:        "0dBm",
		Address:      "4242",
		DataRate:     "1M",
		CrystalMHz:   16,
		CRCBits:      16,
	},
	Door: DoorConfig{
		OpenThreshold:    24,
		PollInterval:     10 * time.Millisecond,
		DataReadyTimeout: 10 * time.Millisecond,
		SendInterval:     50 * time.Millisecond,
		Debounce:         3,
	},
	Events: EventsConfig{
		MQTTURL: "mqtt://localhost:1883/rfdoor/",
	},
}

var configPath string

func init() {
	if val := os.Getenv("RFDOOR_MQTT_URL"); val != "" {
		defaultConfig.Events.MQTTURL = val
	}
	if val := os.Getenv("RFDOOR_REDIS"); val != "" {
		defaultConfig.Events.Redis = val
	}
	if val := os.Getenv("RFDOOR_UNIT"); val != "" {
		defaultConfig.Unit.ID = val
	}
	configPath = os.Getenv("RFDOOR_CONFIG")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configPath, "config", configPath, "Unit config file (YAML), overrides the flags below")
	flag.StringVar(&defaultConfig.Unit.ID, "id", defaultConfig.Unit.ID, "Unit ID, defaults to role and machine ID")
	flag.StringVar(&defaultConfig.Events.MQTTURL, "mqtt", defaultConfig.Events.MQTTURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.Events.Redis, "redis", defaultConfig.Events.Redis, "Redis address for unit status")
	flag.StringVar(&defaultConfig.Events.Capture, "capture", defaultConfig.Events.Capture, "Append events to this file")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// SetRole should be called in init by binaries dedicated to one role.
func SetRole(role string) {
	defaultConfig.Unit.Role = role
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Parse reads YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	conf := NewConfig()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Load parses the file at path.
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

// MustLoad loads the file given by -config or RFDOOR_CONFIG, or the
// defaults without one, and fails on error.
func MustLoad() *Config {
	var (
		conf *Config
		err  error
	)
	if configPath != "" {
		conf, err = Load(configPath)
	} else {
		conf = NewConfig()
		err = conf.Validate()
	}
	if err != nil {
		log.Fatalln(err)
	}
	return conf
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
