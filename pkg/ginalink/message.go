// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package ginalink

import "fmt"

// Kind classifies a decoded frame by its payload prefix.
type Kind int

// Message kinds
const (
	KindCommand Kind = iota
	KindAck
	KindTelemetry
	KindPing
	KindUnknown
)

// String returns the kind's wire-facing name.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "CMD"
	case KindAck:
		return "ACK"
	case KindTelemetry:
		return "TLM"
	case KindPing:
		return "PING"
	default:
		return "UNKNOWN"
	}
}

// Message is one decoded frame.
//
// Payload is the command text for KindCommand, the telemetry body for
// KindTelemetry, and the raw body for KindUnknown. Seq is meaningful only
// for KindCommand and KindAck.
type Message struct {
	Kind    Kind
	Payload string
	Seq     int
}

// String renders the message for log output.
func (m *Message) String() string {
	switch m.Kind {
	case KindCommand:
		return fmt.Sprintf("CMD %q #%d", m.Payload, m.Seq)
	case KindAck:
		return fmt.Sprintf("ACK #%d", m.Seq)
	case KindTelemetry:
		return fmt.Sprintf("TLM %s", m.Payload)
	case KindPing:
		return "PING"
	default:
		return fmt.Sprintf("UNKNOWN %q", m.Payload)
	}
}
