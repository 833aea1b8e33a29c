// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 GINA Propulsion

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gina-propulsion/standlink/pkg/ginalink"
	"github.com/gina-propulsion/standlink/pkg/stand"
	"github.com/spf13/cobra"
)

var simSeed int64

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Loopback bench: console against a simulated stand",
	Long: `Run the operator console against a simulated stand controller
over an in-memory channel - no radio, no serial ports.

The simulated stand logs every valve and igniter actuation and emits
randomized telemetry, so the full command/ack/watchdog/ignition path can
be exercised on a desk. Commands are read from stdin in line mode.`,
	RunE: runSim,
}

func init() {
	simCmd.Flags().Int64Var(&simSeed, "seed", 0, "Telemetry random seed (0 = time-based)")
	rootCmd.AddCommand(simCmd)
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg, err := stand.LoadConfig(configPath)
	if err != nil {
		return err
	}

	seed := simSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	groundEnd, standEnd := ginalink.Pipe()
	station := stand.NewStation(cfg, standEnd,
		stand.LogActuator{}, stand.LogIgniter{}, stand.NewSimSource(seed), nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go station.Run(ctx, controllerTickInterval)

	fmt.Printf("Standlink - Loopback Bench (seed %d)\n", seed)
	fmt.Printf("Type commands (V1:OPEN, OPEN_ALL, IGN, ...), Ctrl+C to exit\n\n")

	return runLineConsole(ctx, groundEnd, cfg)
}
