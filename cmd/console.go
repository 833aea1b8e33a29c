// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 GINA Propulsion

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gina-propulsion/standlink/pkg/ginalink"
	"github.com/gina-propulsion/standlink/pkg/stand"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var consoleNoTUI bool

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Ground operator console",
	Long: `Run the ground operator console.

Commands typed at the console are sent over the link with
acknowledgment-based reliability: each command is retransmitted on a
fixed cadence until the controller acknowledges its sequence number, or
until a newer command supersedes it. While no command is pending the
console emits keep-alive pings so the stand's watchdog keeps seeing
traffic.

Command vocabulary:
  V<id>:OPEN | V<id>:CLOSE | V<id>:NEUTRAL   single valve
  OPEN_ALL | CLOSE_ALL                        composite sequences
  IGN | STOP                                  ignition start / stop

With a terminal attached the console runs a full-screen TUI; use
--no-tui (or pipe stdout) for plain line mode.`,
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().BoolVar(&consoleNoTUI, "no-tui", false, "Plain line mode instead of the TUI")
	rootCmd.AddCommand(consoleCmd)
}

// Console-side heartbeat: how often "last heard" is reported in line mode.
const heartbeatInterval = 5 * time.Second

// consoleTickInterval paces the console control loop.
const consoleTickInterval = 50 * time.Millisecond

// console event stream, consumed by either the line printer or the TUI.
type logEvent struct {
	line string
}

type telemetryEvent struct {
	sample stand.Sample
	raw    string
}

type ackEvent struct {
	done ginalink.Pending
}

type heartbeatEvent struct {
	sinceLast time.Duration
}

// console is the ground-side control loop: one reliable sender plus
// display plumbing. All state is owned by the goroutine calling poll.
type console struct {
	ch     ginalink.Channel
	sender *ginalink.Sender
	stats  *ginalink.Statistics

	lastHeard       time.Time
	lastHeartbeatAt time.Time

	emit func(ev interface{})
}

// newConsole builds a console over ch, reporting through emit.
func newConsole(ch ginalink.Channel, cfg stand.Config, emit func(interface{})) *console {
	c := &console{
		ch:              ch,
		sender:          ginalink.NewSender(ch, nil),
		stats:           ginalink.NewStatistics(),
		lastHeard:       time.Now(),
		lastHeartbeatAt: time.Now(),
		emit:            emit,
	}
	c.sender.SetIntervals(cfg.Link.RetransmitInterval(), cfg.Link.PingInterval())
	c.sender.OnAck = func(done ginalink.Pending) {
		c.emit(ackEvent{done: done})
	}
	return c
}

// submit hands an operator command to the reliable sender.
func (c *console) submit(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if pending, ok := c.sender.PendingCommand(); ok {
		c.emit(logEvent{line: fmt.Sprintf("superseding %q #%d", pending.Text, pending.Seq)})
	}
	if err := c.sender.Submit(text); err != nil {
		c.emit(logEvent{line: fmt.Sprintf("rejected %q: %v", text, err)})
		return
	}
	c.emit(logEvent{line: fmt.Sprintf("sending %q #%d", text, c.sender.Sequence())})
}

// poll runs one console loop iteration: drain inbound frames, advance the
// sender's retransmit/ping timers, report the heartbeat.
func (c *console) poll(now time.Time) {
	for {
		raw, ok := c.ch.TryReceive()
		if !ok {
			break
		}
		msg, err := ginalink.Decode(raw)
		c.stats.Update(msg, err)
		if err != nil {
			c.emit(logEvent{line: fmt.Sprintf("dropped frame: %v", err)})
			continue
		}
		c.lastHeard = now

		switch msg.Kind {
		case ginalink.KindAck:
			c.sender.Observe(msg)
		case ginalink.KindTelemetry:
			sample, err := stand.DecodeSample(msg.Payload)
			if err != nil {
				c.emit(logEvent{line: fmt.Sprintf("bad telemetry %q: %v", msg.Payload, err)})
				continue
			}
			c.emit(telemetryEvent{sample: sample, raw: msg.Payload})
		case ginalink.KindPing:
			// Contact only.
		default:
			c.emit(logEvent{line: msg.String()})
		}
	}

	c.sender.Poll(now)

	if now.Sub(c.lastHeartbeatAt) >= heartbeatInterval {
		c.emit(heartbeatEvent{sinceLast: now.Sub(c.lastHeard)})
		c.lastHeartbeatAt = now
	}
}

func runConsole(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	cfg, err := stand.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ch := ginalink.NewStreamChannel(conn)

	if !consoleNoTUI && term.IsTerminal(int(os.Stdout.Fd())) {
		return runConsoleTUI(ch, cfg, connInfo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Standlink - Operator Console (line mode)\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Type commands (V1:OPEN, OPEN_ALL, IGN, ...), Ctrl+C to exit\n\n")

	return runLineConsole(ctx, ch, cfg)
}

// runLineConsole drives a console from stdin lines to stdout log lines.
// Also used by the sim bench against an in-memory channel.
func runLineConsole(ctx context.Context, ch ginalink.Channel, cfg stand.Config) error {
	c := newConsole(ch, cfg, func(ev interface{}) {
		switch ev := ev.(type) {
		case logEvent:
			log.Printf("%s", ev.line)
		case ackEvent:
			log.Printf("acknowledged %q #%d", ev.done.Text, ev.done.Seq)
		case telemetryEvent:
			log.Printf("TLM %s", ev.raw)
		case heartbeatEvent:
			log.Printf("HBT: last heard %ds ago", int(ev.sinceLast.Seconds()))
		}
	})

	commands := make(chan string)
	go func() {
		defer close(commands)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			commands <- scanner.Text()
		}
	}()

	ticker := time.NewTicker(consoleTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\n%s\n", c.stats.Summary())
			return nil
		case line, ok := <-commands:
			if !ok {
				fmt.Printf("\n%s\n", c.stats.Summary())
				return nil
			}
			c.submit(line)
		case <-ticker.C:
			c.poll(time.Now())
		}
	}
}
