// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 GINA Propulsion

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsNoSSLVerify bool

	// Deployment configuration
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "standlink",
	Short: "GINA test stand command and telemetry link",
	Long: `Standlink - the three-node command/telemetry link for the GINA
propellant test stand.

One binary serves every node role:
  console     ground operator console (reliable command sender)
  controller  valve/ignition controller on the test article
  relay       radio relay bridging the ground and stand links
  monitor     passive frame log and statistics
  sim         loopback bench: console against a simulated stand

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path

Valve calibration, sequencing order, and link timing come from a YAML
deployment file (--config); without one the stock four-valve stand
configuration is used.`,
	Version: "1.2.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Deployment configuration
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Deployment YAML file")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
