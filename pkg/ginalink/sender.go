// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package ginalink

import (
	"log"
	"time"
)

// SenderState is the reliable sender's state machine position.
type SenderState int

// Sender states
const (
	SenderIdle SenderState = iota
	SenderAwaitingAck
)

// Pending is the sender's sole unit of in-flight work: one operator
// command awaiting acknowledgment. At most one exists at a time.
type Pending struct {
	Text       string
	Seq        int
	LastSentAt time.Time

	// frame caches the encoded bytes so every retransmission is
	// byte-identical to the first send.
	frame []byte
}

// Sender turns one pending operator command into a stream of identical
// retransmissions until the matching acknowledgment arrives or a newer
// command supersedes it. While idle it emits keep-alive pings so the far
// side's watchdog keeps seeing channel activity.
//
// There is no retry limit: under intermittent connectivity the command
// keeps going out until acknowledged or superseded.
type Sender struct {
	ch    Channel
	clock Clock

	seq     int
	pending *Pending

	retransmitEvery time.Duration
	pingEvery       time.Duration
	lastPingAt      time.Time

	// OnAck, when set, is called once per completed command with the
	// acknowledged pending entry.
	OnAck func(Pending)
}

// NewSender creates a sender over ch. A nil clock means time.Now.
func NewSender(ch Channel, clock Clock) *Sender {
	if clock == nil {
		clock = time.Now
	}
	return &Sender{
		ch:              ch,
		clock:           clock,
		retransmitEvery: DefaultRetransmitInterval,
		pingEvery:       DefaultPingInterval,
		lastPingAt:      clock(),
	}
}

// SetIntervals overrides the retransmit and keep-alive cadences.
func (s *Sender) SetIntervals(retransmit, ping time.Duration) {
	if retransmit > 0 {
		s.retransmitEvery = retransmit
	}
	if ping > 0 {
		s.pingEvery = ping
	}
}

// State reports Idle or AwaitingAck.
func (s *Sender) State() SenderState {
	if s.pending != nil {
		return SenderAwaitingAck
	}
	return SenderIdle
}

// Sequence returns the current sequence counter. It advances only when a
// command completes, so a superseding command reuses the same number.
func (s *Sender) Sequence() int {
	return s.seq
}

// PendingCommand returns a copy of the in-flight command, if any.
func (s *Sender) PendingCommand() (Pending, bool) {
	if s.pending == nil {
		return Pending{}, false
	}
	return *s.pending, true
}

// Submit adopts a new operator command. A command still awaiting its
// acknowledgment is abandoned silently; the new one starts a fresh cycle
// at the same, not yet incremented, sequence number. The first
// transmission happens immediately.
func (s *Sender) Submit(text string) error {
	frame, err := EncodeCommand(text, s.seq)
	if err != nil {
		return err
	}
	if s.pending != nil {
		log.Printf("sender: command %q #%d superseded by %q", s.pending.Text, s.pending.Seq, text)
	}
	now := s.clock()
	s.pending = &Pending{Text: text, Seq: s.seq, LastSentAt: now, frame: frame}
	if err := s.ch.Send(frame); err != nil {
		// Transport errors never stall the retransmission cycle; the
		// next poll tries again.
		log.Printf("sender: send failed: %v", err)
	}
	return nil
}

// Poll advances the sender's timers: retransmits the pending command at
// the fixed cadence, or pings while idle. Loop iterations may arrive late
// (blocking transmits); elapsed-time checks make that harmless.
func (s *Sender) Poll(now time.Time) {
	if s.pending != nil {
		if now.Sub(s.pending.LastSentAt) >= s.retransmitEvery {
			if err := s.ch.Send(s.pending.frame); err != nil {
				log.Printf("sender: retransmit failed: %v", err)
			}
			s.pending.LastSentAt = now
		}
		return
	}

	if now.Sub(s.lastPingAt) >= s.pingEvery {
		frame, err := EncodePing()
		if err == nil {
			if err := s.ch.Send(frame); err != nil {
				log.Printf("sender: ping failed: %v", err)
			}
		}
		s.lastPingAt = now
	}
}

// Observe feeds a decoded inbound message to the sender. An acknowledgment
// matching the pending command's sequence completes it: the pending entry
// is destroyed, the counter advances exactly once, and OnAck fires.
// Returns true when a command completed.
func (s *Sender) Observe(msg *Message) bool {
	if msg == nil || msg.Kind != KindAck || s.pending == nil {
		return false
	}
	if msg.Seq != s.pending.Seq {
		return false
	}
	done := *s.pending
	s.pending = nil
	s.seq++
	s.lastPingAt = s.clock()
	if s.OnAck != nil {
		s.OnAck(done)
	}
	return true
}
