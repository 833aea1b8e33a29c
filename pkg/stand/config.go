// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

// Package stand implements the test-article side of the GINA test stand:
// the calibrated valve bank, the time-bounded ignition sequencer, the
// telemetry sampler, and the station control loop tying them to the link.
package stand

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ValveConfig is one valve's fixed calibration: the actuator positions
// for its three symbolic states. Loaded once, never mutated at runtime.
type ValveConfig struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Open    int    `yaml:"open"`
	Close   int    `yaml:"close"`
	Neutral int    `yaml:"neutral"`
}

// LinkConfig carries the link timing knobs, in milliseconds.
type LinkConfig struct {
	RetransmitIntervalMillis int `yaml:"retransmit_interval_ms"`
	PingIntervalMillis       int `yaml:"ping_interval_ms"`
	AckRepeat                int `yaml:"ack_repeat"`
	AckSpacingMillis         int `yaml:"ack_spacing_ms"`
	WatchdogTimeoutMillis    int `yaml:"watchdog_timeout_ms"`
}

// RetransmitInterval returns the command retransmission cadence.
func (l LinkConfig) RetransmitInterval() time.Duration {
	return time.Duration(l.RetransmitIntervalMillis) * time.Millisecond
}

// PingInterval returns the idle keep-alive cadence.
func (l LinkConfig) PingInterval() time.Duration {
	return time.Duration(l.PingIntervalMillis) * time.Millisecond
}

// AckSpacing returns the pause between redundant acknowledgments.
func (l LinkConfig) AckSpacing() time.Duration {
	return time.Duration(l.AckSpacingMillis) * time.Millisecond
}

// WatchdogTimeout returns the link-silence threshold.
func (l LinkConfig) WatchdogTimeout() time.Duration {
	return time.Duration(l.WatchdogTimeoutMillis) * time.Millisecond
}

// IgnitionConfig names the propellant valves the sequencer drives and the
// hard bound on firing duration.
type IgnitionConfig struct {
	FuelValve      int `yaml:"fuel_valve"`
	OxValve        int `yaml:"ox_valve"`
	DurationMillis int `yaml:"duration_ms"`
}

// Duration returns the hard ignition cutoff.
func (i IgnitionConfig) Duration() time.Duration {
	return time.Duration(i.DurationMillis) * time.Millisecond
}

// Config is a full stand deployment description.
type Config struct {
	Valves []ValveConfig `yaml:"valves"`

	// OpenSequence and CloseSequence fix the order OPEN_ALL/CLOSE_ALL
	// walk the valves. The order is physical sequencing safety (close
	// fuel before oxidizer) and differs per plumbing, so it lives here
	// rather than in code.
	OpenSequence  []int `yaml:"open_sequence"`
	CloseSequence []int `yaml:"close_sequence"`

	Link     LinkConfig     `yaml:"link"`
	Ignition IgnitionConfig `yaml:"ignition"`

	TelemetryIntervalMillis int `yaml:"telemetry_interval_ms"`
}

// TelemetryInterval returns the telemetry emit cadence.
func (c Config) TelemetryInterval() time.Duration {
	return time.Duration(c.TelemetryIntervalMillis) * time.Millisecond
}

// DefaultConfig returns the stock four-valve stand configuration.
func DefaultConfig() Config {
	return Config{
		Valves: []ValveConfig{
			{ID: 1, Name: "fuel-pressurization", Open: 95, Close: 150, Neutral: 120},
			{ID: 2, Name: "fuel-depressurization", Open: 82, Close: 172, Neutral: 130},
			{ID: 3, Name: "fuel-release", Open: 85, Close: 170, Neutral: 130},
			{ID: 4, Name: "ox-release", Open: 73, Close: 150, Neutral: 110},
		},
		OpenSequence:  []int{1, 2, 3, 4},
		CloseSequence: []int{1, 2, 3, 4},
		Link: LinkConfig{
			RetransmitIntervalMillis: 500,
			PingIntervalMillis:       1000,
			AckRepeat:                3,
			AckSpacingMillis:         200,
			WatchdogTimeoutMillis:    4000,
		},
		Ignition: IgnitionConfig{
			FuelValve:      3,
			OxValve:        4,
			DurationMillis: 5000,
		},
		TelemetryIntervalMillis: 300,
	}
}

// LoadConfig reads a YAML deployment file over the defaults. An empty
// path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks internal consistency: unique valve ids, sequences and
// ignition referring only to configured valves, sane timing.
func (c Config) Validate() error {
	if len(c.Valves) == 0 {
		return fmt.Errorf("config: no valves defined")
	}
	ids := make(map[int]bool, len(c.Valves))
	for _, v := range c.Valves {
		if v.ID <= 0 {
			return fmt.Errorf("config: valve id %d out of range", v.ID)
		}
		if ids[v.ID] {
			return fmt.Errorf("config: duplicate valve id %d", v.ID)
		}
		ids[v.ID] = true
	}
	for _, seq := range [][]int{c.OpenSequence, c.CloseSequence} {
		for _, id := range seq {
			if !ids[id] {
				return fmt.Errorf("config: sequence references unknown valve %d", id)
			}
		}
	}
	if !ids[c.Ignition.FuelValve] || !ids[c.Ignition.OxValve] {
		return fmt.Errorf("config: ignition valves %d/%d not configured",
			c.Ignition.FuelValve, c.Ignition.OxValve)
	}
	if c.Ignition.DurationMillis <= 0 {
		return fmt.Errorf("config: ignition duration must be positive")
	}
	if c.Link.WatchdogTimeoutMillis <= 0 {
		return fmt.Errorf("config: watchdog timeout must be positive")
	}
	return nil
}
