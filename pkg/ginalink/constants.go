// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

// Package ginalink provides a reference Go implementation of the GINA
// test-stand link protocol.
//
// The link carries operator commands from a ground console to the valve
// and ignition controller on the test article, and telemetry back, over a
// lossy radio hop. This package provides frame encoding/decoding, the
// acknowledgment-based reliable sender, the redundant acknowledgment
// responder, and the link-silence watchdog.
package ginalink

import "time"

// Protocol framing
const (
	// Header is the packet id every frame begins with. Frames without it
	// belong to somebody else's radio traffic and are discarded.
	Header = "DC="

	// Terminator bounds every frame. The radio delivers a frame whole or
	// not at all, so a missing terminator means a corrupt frame, never a
	// partial one.
	Terminator = '\n'

	// MaxFrameSize is the radio channel's hard packet limit in bytes.
	MaxFrameSize = 256
)

// Payload prefixes
const (
	PrefixCommand   = "CMD:"
	PrefixAck       = "ACK:"
	PrefixTelemetry = "TLM:"
	PingBody        = "PING"
)

// SeqSeparator binds a command to its acknowledgment: "CMD:<text>#<seq>".
const SeqSeparator = '#'

// Timing defaults. Deployments override these through stand configuration.
const (
	// DefaultRetransmitInterval is the cadence at which an unacknowledged
	// command frame is re-sent.
	DefaultRetransmitInterval = 500 * time.Millisecond

	// DefaultPingInterval is the keep-alive cadence while no command is
	// pending, so the far side's watchdog keeps seeing traffic.
	DefaultPingInterval = 1000 * time.Millisecond

	// DefaultAckRepeat and DefaultAckSpacing shape the redundant
	// acknowledgment burst on the return hop.
	DefaultAckRepeat  = 3
	DefaultAckSpacing = 200 * time.Millisecond

	// DefaultWatchdogTimeout is how long the link may be silent before
	// the fail-safe action runs.
	DefaultWatchdogTimeout = 4000 * time.Millisecond
)

// Clock supplies the current time to the link state machines. Production
// code passes nil to constructors and gets time.Now; tests substitute a
// manual clock.
type Clock func() time.Time
