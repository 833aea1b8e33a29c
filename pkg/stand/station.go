// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package stand

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gina-propulsion/standlink/pkg/ginalink"
)

// Station is the test-article control loop. One Poll services, in order:
// inbound frames (commands, keep-alives), the pending acknowledgment
// burst, the ignition duration bound, the link watchdog, and the
// telemetry cadence. All state is owned by the goroutine calling Poll.
type Station struct {
	ch    ginalink.Channel
	clock ginalink.Clock

	responder *ginalink.Responder
	watchdog  *ginalink.Watchdog

	Valves   *ValveBank
	Ignition *Sequencer

	source          Source
	telemetryEvery  time.Duration
	lastTelemetryAt time.Time

	stats *ginalink.Statistics
}

// NewStation assembles a station from a validated configuration and the
// hardware collaborators. A nil clock means time.Now; a nil source
// disables telemetry.
func NewStation(cfg Config, ch ginalink.Channel, act Actuator, ign Igniter, src Source, clock ginalink.Clock) *Station {
	if clock == nil {
		clock = time.Now
	}
	st := &Station{
		ch:              ch,
		clock:           clock,
		source:          src,
		telemetryEvery:  cfg.TelemetryInterval(),
		lastTelemetryAt: clock(),
		stats:           ginalink.NewStatistics(),
	}
	st.Valves = NewValveBank(cfg, act)
	st.Ignition = NewSequencer(st.Valves, ign, cfg.Ignition)

	st.responder = ginalink.NewResponder(ch, st)
	st.responder.SetBurst(cfg.Link.AckRepeat, cfg.Link.AckSpacing())

	st.watchdog = ginalink.NewWatchdog(cfg.Link.WatchdogTimeout(), clock, st.failSafe)
	return st
}

// failSafe drives the stand to its safe physical state: igniter off,
// every valve closed. It runs locally, never over the radio path.
func (st *Station) failSafe() {
	log.Printf("station: fail-safe: closing all valves, igniter off")
	st.Ignition.Stop()
	st.Valves.CloseAll()
}

// Execute dispatches one command exactly as written. Commands must stay
// idempotent: the link delivers at least once, and duplicates from sender
// retransmission are executed again, not deduplicated.
//
// Vocabulary: IGN, STOP, OPEN_ALL, CLOSE_ALL, V<id>:<keyword>.
func (st *Station) Execute(command string, now time.Time) error {
	command = strings.TrimSpace(command)
	// Tolerate an un-stripped prefix from older console builds.
	command = strings.TrimPrefix(command, ginalink.PrefixCommand)

	switch {
	case strings.HasPrefix(command, "IGN"):
		st.Ignition.Start(now)
		return nil
	case strings.HasPrefix(command, "STOP"):
		st.Ignition.Stop()
		return nil
	case strings.HasPrefix(command, "OPEN_ALL"):
		st.Valves.OpenAll()
		return nil
	case strings.HasPrefix(command, "CLOSE_ALL"):
		st.Valves.CloseAll()
		return nil
	case strings.HasPrefix(command, "V"):
		return st.executeValve(command)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// executeValve parses "V<id>:<keyword>" and applies it.
func (st *Station) executeValve(command string) error {
	colon := strings.IndexByte(command, ':')
	if colon < 0 || colon+1 >= len(command) {
		return fmt.Errorf("%w: %q (use V<id>:<keyword>)", ErrInvalidKeyword, command)
	}
	id, err := strconv.Atoi(command[1:colon])
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidValve, command)
	}
	return st.Valves.Apply(id, command[colon+1:])
}

// Poll runs one control-loop iteration at the given instant.
func (st *Station) Poll(now time.Time) {
	for {
		raw, ok := st.ch.TryReceive()
		if !ok {
			break
		}
		msg, err := ginalink.Decode(raw)
		st.stats.Update(msg, err)
		if err != nil {
			log.Printf("station: dropping frame: %v", err)
			continue
		}

		// Any valid frame counts as contact, pings included.
		st.watchdog.Touch(now)

		switch msg.Kind {
		case ginalink.KindCommand:
			st.responder.HandleCommand(msg, now)
		case ginalink.KindPing:
			// Keep-alive only.
		default:
			log.Printf("station: ignoring %s", msg)
		}
	}

	st.responder.Poll(now)
	st.Ignition.Poll(now)
	st.watchdog.Poll(now)
	st.pollTelemetry(now)
}

// pollTelemetry emits a TLM frame on the configured cadence.
func (st *Station) pollTelemetry(now time.Time) {
	if st.source == nil || st.telemetryEvery <= 0 {
		return
	}
	if now.Sub(st.lastTelemetryAt) < st.telemetryEvery {
		return
	}
	st.lastTelemetryAt = now

	sample, ok := st.source.Sample()
	if !ok {
		return
	}
	body, err := sample.Encode()
	if err != nil {
		log.Printf("station: %v", err)
		return
	}
	frame, err := ginalink.EncodeTelemetry(body)
	if err != nil {
		log.Printf("station: telemetry frame: %v", err)
		return
	}
	if err := st.ch.Send(frame); err != nil {
		st.stats.RecordTransportError()
		log.Printf("station: telemetry send failed: %v", err)
	}
}

// Run polls at the given tick until the context ends.
func (st *Station) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			st.Poll(st.clock())
		}
	}
}

// Stats exposes the station's link statistics.
func (st *Station) Stats() *ginalink.Statistics {
	return st.stats
}

// Watchdog exposes the link watchdog, read-only for status display.
func (st *Station) Watchdog() *ginalink.Watchdog {
	return st.watchdog
}
