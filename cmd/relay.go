// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 GINA Propulsion

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gina-propulsion/standlink/pkg/ginalink"
	"github.com/spf13/cobra"
)

var (
	relayWiredPort string
	relayWiredBaud int
)

const relayTickInterval = 5 * time.Millisecond

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Bridge the radio link and the wired stand link",
	Long: `Forward frames between the radio-side connection (--port/--url)
and the wired serial link to the stand controller (--wired-port).

Only frames carrying the protocol header are forwarded; foreign radio
traffic is dropped and counted. The relay does not interpret commands or
acknowledgments - reliability lives at the endpoints.`,
	RunE: runRelay,
}

func init() {
	relayCmd.Flags().StringVar(&relayWiredPort, "wired-port", "", "Wired serial port to the stand controller")
	relayCmd.Flags().IntVar(&relayWiredBaud, "wired-baud", 115200, "Wired serial baud rate")
	relayCmd.MarkFlagRequired("wired-port")
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) error {
	radioConn, radioInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer radioConn.Close()

	wiredConn, err := OpenSerialConnection(relayWiredPort, relayWiredBaud)
	if err != nil {
		return err
	}
	defer wiredConn.Close()

	fmt.Printf("Standlink - Relay\n")
	fmt.Printf("Radio: %s\n", radioInfo)
	fmt.Printf("Wired: %s @ %d baud\n\n", relayWiredPort, relayWiredBaud)

	radio := ginalink.NewStreamChannel(radioConn)
	wired := ginalink.NewStreamChannel(wiredConn)
	stats := ginalink.NewStatistics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(relayTickInterval)
	defer ticker.Stop()

	header := []byte(ginalink.Header)
	forward := func(from, to ginalink.Channel, direction string) {
		for {
			frame, ok := from.TryReceive()
			if !ok {
				return
			}
			if !bytes.HasPrefix(frame, header) {
				stats.Update(nil, ginalink.ErrMalformedFrame)
				log.Printf("relay: dropping foreign frame (%d bytes, %s)", len(frame), direction)
				continue
			}
			msg, err := ginalink.Decode(frame)
			stats.Update(msg, err)
			if err := to.Send(frame); err != nil {
				stats.RecordTransportError()
				log.Printf("relay: forward %s failed: %v", direction, err)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\n%s\n", stats.Summary())
			return nil
		case <-ticker.C:
			forward(radio, wired, "radio->wired")
			forward(wired, radio, "wired->radio")
		}
	}
}
