package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are the process-level knobs shared by the binaries.
type Settings struct {
	SystemFile  string `env:"OMNIVOX_SYSTEM_FILE"`
	BodiesDB    string `env:"OMNIVOX_BODIES_DB"`
	MetricsAddr string `env:"OMNIVOX_METRICS_ADDR" envDefault:":9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`

	Tracing TracingSettings `envPrefix:"OMNIVOX_TRACING_"`
}

// TracingSettings configure span export for the simulator.
type TracingSettings struct {
	Enabled     bool    `env:"ENABLED"`
	ServiceName string  `env:"SERVICE_NAME" envDefault:"omnivox-simulator"`
	Exporter    string  `env:"EXPORTER" envDefault:"stdout"` // stdout | otlp
	Endpoint    string  `env:"OTLP_ENDPOINT"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	return s, s.validate()
}

func (s Settings) validate() error {
	if r := s.Tracing.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("parse env: tracing sample ratio %v outside [0, 1]", r)
	}
	return nil
}
