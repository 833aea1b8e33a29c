// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package ginalink

import (
	"log"
	"time"
)

// Watchdog is the link dead-man's switch. Loss of contact with the ground
// console is the default-unsafe condition: once the link has been silent
// past the timeout, the fail-safe action runs, exactly once per silence
// episode. Any valid reception re-arms it.
type Watchdog struct {
	lastReception time.Time
	silenced      bool
	timeout       time.Duration
	onSilence     func()
}

// NewWatchdog creates a watchdog armed as of clock(). onSilence is the
// fail-safe action; it must drive the system to valves-closed,
// igniter-off without touching the radio path.
func NewWatchdog(timeout time.Duration, clock Clock, onSilence func()) *Watchdog {
	if clock == nil {
		clock = time.Now
	}
	if timeout <= 0 {
		timeout = DefaultWatchdogTimeout
	}
	return &Watchdog{
		lastReception: clock(),
		timeout:       timeout,
		onSilence:     onSilence,
	}
}

// Touch records a valid reception of any frame kind and re-arms the
// watchdog for a fresh silence episode.
func (w *Watchdog) Touch(now time.Time) {
	w.lastReception = now
	w.silenced = false
}

// Poll checks elapsed silence and fires the fail-safe once per episode.
// The silenced latch keeps it from re-running every loop iteration.
func (w *Watchdog) Poll(now time.Time) {
	if w.silenced {
		return
	}
	if now.Sub(w.lastReception) >= w.timeout {
		log.Printf("watchdog: link silent for %v, running fail-safe", now.Sub(w.lastReception))
		w.silenced = true
		if w.onSilence != nil {
			w.onSilence()
		}
	}
}

// Silenced reports whether the current silence episode already triggered
// the fail-safe.
func (w *Watchdog) Silenced() bool {
	return w.silenced
}

// SinceLast returns the elapsed time since the last valid reception.
func (w *Watchdog) SinceLast(now time.Time) time.Duration {
	return now.Sub(w.lastReception)
}
