// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package ginalink

import (
	"log"
	"time"
)

// Executor runs a received command against the actuators. Execution must
// stay idempotent: the sender retransmits until its acknowledgment
// arrives, so duplicates of the same command frame will be executed again
// (at-least-once, never deduplicated here).
type Executor interface {
	Execute(command string, now time.Time) error
}

// scheduledAck is one queued acknowledgment transmission.
type scheduledAck struct {
	frame []byte
	dueAt time.Time
}

// Responder executes received commands and answers each with a redundant
// acknowledgment burst carrying the command's sequence number. Redundancy
// covers loss on the return hop only; it does not change execution
// semantics.
//
// The burst is spaced out through the poll loop rather than by blocking
// sleeps, so watchdog and ignition timing keep running between the
// acknowledgment transmissions.
type Responder struct {
	ch   Channel
	exec Executor

	repeat  int
	spacing time.Duration
	queue   []scheduledAck
}

// NewResponder creates a responder that executes through exec and
// transmits acknowledgments on ch.
func NewResponder(ch Channel, exec Executor) *Responder {
	return &Responder{
		ch:      ch,
		exec:    exec,
		repeat:  DefaultAckRepeat,
		spacing: DefaultAckSpacing,
	}
}

// SetBurst overrides the acknowledgment repeat count and spacing.
func (r *Responder) SetBurst(repeat int, spacing time.Duration) {
	if repeat > 0 {
		r.repeat = repeat
	}
	if spacing > 0 {
		r.spacing = spacing
	}
}

// HandleCommand executes the command exactly as written and schedules the
// acknowledgment burst. Execution failures are logged; the acknowledgment
// still goes out, because the frame was received and acted on as far as
// the link is concerned.
func (r *Responder) HandleCommand(msg *Message, now time.Time) {
	if msg == nil || msg.Kind != KindCommand {
		return
	}
	if err := r.exec.Execute(msg.Payload, now); err != nil {
		log.Printf("responder: command %q: %v", msg.Payload, err)
	}

	frame, err := EncodeAck(msg.Seq)
	if err != nil {
		log.Printf("responder: encode ack #%d: %v", msg.Seq, err)
		return
	}
	for i := 0; i < r.repeat; i++ {
		r.queue = append(r.queue, scheduledAck{
			frame: frame,
			dueAt: now.Add(time.Duration(i) * r.spacing),
		})
	}
}

// Poll transmits every acknowledgment whose time has come.
func (r *Responder) Poll(now time.Time) {
	remaining := r.queue[:0]
	for _, a := range r.queue {
		if now.Before(a.dueAt) {
			remaining = append(remaining, a)
			continue
		}
		if err := r.ch.Send(a.frame); err != nil {
			log.Printf("responder: ack send failed: %v", err)
		}
	}
	r.queue = remaining
}

// PendingAcks reports how many acknowledgment transmissions are queued.
func (r *Responder) PendingAcks() int {
	return len(r.queue)
}
