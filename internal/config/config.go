// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"airdarwin-gcs/internal/link"
	"airdarwin-gcs/internal/station"
	"airdarwin-gcs/internal/telemetry"

	"gopkg.in/yaml.v3"
)

// LinkConfig selects the serial device and pipeline timing.
type LinkConfig struct {
	Device           string        `yaml:"device"`
	BaudRate         int           `yaml:"baud_rate"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	LivenessInterval time.Duration `yaml:"liveness_interval"`
	DataTimeout      time.Duration `yaml:"data_timeout"`
}

// AircraftConfig feeds derived physics.
type AircraftConfig struct {
	MassKG           float64 `yaml:"mass_kg"`
	WindDirectionDeg float64 `yaml:"wind_direction_deg"`
	WindSpeedKMH     float64 `yaml:"wind_speed_kmh"`
}

// AssistantConfig points at an Ollama-compatible generate endpoint. An empty
// endpoint keeps the assistant on its knowledge table.
type AssistantConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

type GreptimeConfig struct {
	Endpoint string `yaml:"endpoint"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

type MQTTConfig struct {
	BrokerURL   string `yaml:"broker_url"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// SinksConfig enables optional event sinks. Empty values disable a sink.
type SinksConfig struct {
	LogFile  string         `yaml:"log_file"`
	Greptime GreptimeConfig `yaml:"greptime"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

type AdminConfig struct {
	Listen string `yaml:"listen"`
}

// Config is the root monitor configuration.
type Config struct {
	Link      LinkConfig      `yaml:"link"`
	Aircraft  AircraftConfig  `yaml:"aircraft"`
	Assistant AssistantConfig `yaml:"assistant"`
	Sinks     SinksConfig     `yaml:"sinks"`
	Admin     AdminConfig     `yaml:"admin"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	env := telemetry.DefaultEnvironment()
	return Config{
		Link: LinkConfig{
			BaudRate:         link.DefaultBaudRate,
			PollInterval:     station.DefaultPollInterval,
			LivenessInterval: station.DefaultLivenessInterval,
			DataTimeout:      link.DefaultDataTimeout,
		},
		Aircraft: AircraftConfig{
			MassKG:           env.MassKG,
			WindDirectionDeg: env.WindDirectionDeg,
			WindSpeedKMH:     env.WindSpeedKMH,
		},
		Assistant: AssistantConfig{
			Model:   "llama3.2",
			Timeout: 30 * time.Second,
		},
		Sinks: SinksConfig{
			Greptime: GreptimeConfig{Port: 4001, Database: "public"},
			MQTT:     MQTTConfig{TopicPrefix: "airdarwin"},
		},
	}
}

// Load reads configPath over the defaults, validating it against the CUE
// schema at cueSchemaPath first when one is given. An empty configPath
// yields the defaults. Environment overrides are applied last.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		if cueSchemaPath != "" {
			if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
				return nil, err
			}
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", configPath, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides sink endpoints from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		c.Sinks.Greptime.Endpoint = v
	}
	if v := getenv("GREPTIMEDB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Sinks.Greptime.Port = p
		}
	}
	if v := getenv("GREPTIMEDB_DATABASE"); v != "" {
		c.Sinks.Greptime.Database = v
	}
	if v := getenv("MQTT_BROKER_URL"); v != "" {
		c.Sinks.MQTT.BrokerURL = v
	}
}

// Validate checks values the schema cannot see, such as decoded durations.
func (c *Config) Validate() error {
	switch {
	case c.Link.BaudRate <= 0:
		return fmt.Errorf("link.baud_rate must be positive, got %d", c.Link.BaudRate)
	case c.Link.PollInterval <= 0:
		return fmt.Errorf("link.poll_interval must be positive")
	case c.Link.LivenessInterval <= 0:
		return fmt.Errorf("link.liveness_interval must be positive")
	case c.Link.DataTimeout <= 0:
		return fmt.Errorf("link.data_timeout must be positive")
	case c.Aircraft.MassKG <= 0:
		return fmt.Errorf("aircraft.mass_kg must be positive, got %v", c.Aircraft.MassKG)
	}
	return nil
}

// Environment returns the aircraft parameters for the flight state.
func (c *Config) Environment() telemetry.Environment {
	return telemetry.Environment{
		MassKG:           c.Aircraft.MassKG,
		WindDirectionDeg: c.Aircraft.WindDirectionDeg,
		WindSpeedKMH:     c.Aircraft.WindSpeedKMH,
	}
}
