// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 GINA Propulsion

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gina-propulsion/standlink/pkg/ginalink"
	"github.com/gina-propulsion/standlink/pkg/stand"
	"github.com/spf13/cobra"
)

var controllerSimTelemetry bool

// controllerTickInterval paces the station control loop. Short enough
// that ack spacing and ignition cutoff land close to their nominal times.
const controllerTickInterval = 20 * time.Millisecond

var controllerCmd = &cobra.Command{
	Use:   "controller",
	Short: "Valve/ignition controller on the test article",
	Long: `Run the valve and ignition controller.

The controller executes received commands against the valve bank and the
ignition sequencer, acknowledges each command with a redundant burst, and
watches the link: if nothing valid arrives within the watchdog timeout it
closes every valve and de-energizes the igniter, once per silence
episode. Ignition is hard-bounded by the configured fire duration whether
or not further commands arrive.

Servo and relay drivers are attached per deployment; without them this
command logs every actuation. --sim-telemetry attaches a randomized
telemetry source for bench runs.`,
	RunE: runController,
}

func init() {
	controllerCmd.Flags().BoolVar(&controllerSimTelemetry, "sim-telemetry", false, "Emit randomized telemetry")
	rootCmd.AddCommand(controllerCmd)
}

func runController(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	cfg, err := stand.LoadConfig(configPath)
	if err != nil {
		return err
	}

	var source stand.Source
	if controllerSimTelemetry {
		source = stand.NewSimSource(time.Now().UnixNano())
	}

	ch := ginalink.NewStreamChannel(conn)
	station := stand.NewStation(cfg, ch, stand.LogActuator{}, stand.LogIgniter{}, source, nil)

	fmt.Printf("Standlink - Stand Controller\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Valves: %v, watchdog %v, fire duration %v\n\n",
		station.Valves.IDs(), cfg.Link.WatchdogTimeout(), cfg.Ignition.Duration())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = station.Run(ctx, controllerTickInterval)

	// Leave the stand safe on the way out, whatever stopped the loop.
	station.Ignition.Stop()
	station.Valves.CloseAll()

	fmt.Printf("\n%s\n", station.Stats().Summary())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
