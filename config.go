package adsgo

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/larskjeldsen/adsgo/internal/ams"
)

// FileConfig is the YAML-serializable counterpart to the functional Options,
// for deployments that keep connection parameters in a config file rather
// than compiled into the program.
type FileConfig struct {
	Address    string `yaml:"address"`
	TargetNet  string `yaml:"target_net_id"`
	TargetPort uint16 `yaml:"target_port"`
	SourceNet  string `yaml:"source_net_id,omitempty"`
	SourcePort uint16 `yaml:"source_port,omitempty"`

	TimeoutSeconds      float64 `yaml:"timeout_seconds,omitempty"`
	StateMonitorSeconds float64 `yaml:"state_monitor_seconds,omitempty"`
}

// LoadConfig reads and parses a YAML file into a FileConfig.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("adsgo: read config %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("adsgo: parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Options converts the parsed file into functional Options suitable for New.
func (f *FileConfig) Options() ([]Option, error) {
	if f.Address == "" {
		return nil, fmt.Errorf("adsgo: config missing address")
	}

	opts := []Option{WithTarget(f.Address)}

	if f.TargetNet != "" {
		netID, err := ams.ParseNetID(f.TargetNet)
		if err != nil {
			return nil, fmt.Errorf("adsgo: config target_net_id: %w", err)
		}
		opts = append(opts, WithAMSNetID(netID))
	}
	if f.TargetPort != 0 {
		opts = append(opts, WithAMSPort(ams.Port(f.TargetPort)))
	}
	if f.SourceNet != "" {
		netID, err := ams.ParseNetID(f.SourceNet)
		if err != nil {
			return nil, fmt.Errorf("adsgo: config source_net_id: %w", err)
		}
		opts = append(opts, WithSourceNetID(netID))
	}
	if f.SourcePort != 0 {
		opts = append(opts, WithSourcePort(ams.Port(f.SourcePort)))
	}
	if f.TimeoutSeconds > 0 {
		opts = append(opts, WithTimeout(time.Duration(f.TimeoutSeconds*float64(time.Second))))
	}
	if f.StateMonitorSeconds > 0 {
		opts = append(opts, WithStateMonitor(time.Duration(f.StateMonitorSeconds*float64(time.Second))))
	}

	return opts, nil
}

// NewFromConfig loads path as YAML and dials using its settings.
func NewFromConfig(path string) (*Client, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(opts...)
}

// SaveExample writes an example configuration file (plain YAML, without
// comments) to path, useful
// for bootstrapping a deployment's config directory.
func SaveExample(path string) error {
	example := FileConfig{
		Address:             "10.10.0.3:48898",
		TargetNet:           "10.10.0.3.1.1",
		TargetPort:          851,
		TimeoutSeconds:      5,
		StateMonitorSeconds: 10,
	}
	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("adsgo: marshal example config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
