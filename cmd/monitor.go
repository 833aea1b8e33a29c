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
	"github.com/spf13/cobra"
)

const monitorTickInterval = 10 * time.Millisecond

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display the frame log in human-readable format",
	Long: `Continuously decode and display link frames as they arrive.

Each frame is shown with timestamp and classified kind. Malformed frames
are reported, not hidden: a rising malformed count is usually the first
sign of radio trouble. A statistics summary prints on exit.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Standlink - Frame Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ch := ginalink.NewStreamChannel(conn)
	stats := ginalink.NewStatistics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(monitorTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\n%s\n", stats.Summary())
			return nil
		case <-ticker.C:
			for {
				frame, ok := ch.TryReceive()
				if !ok {
					break
				}
				msg, err := ginalink.Decode(frame)
				stats.Update(msg, err)
				stamp := time.Now().Format("15:04:05.000")
				if err != nil {
					fmt.Printf("[%s] ERROR %v\n", stamp, err)
					continue
				}
				fmt.Printf("[%s] %s\n", stamp, msg)
			}
		}
	}
}
