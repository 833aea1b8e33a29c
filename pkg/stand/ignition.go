// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package stand

import (
	"context"
	"log"
	"time"

	"github.com/looplab/fsm"
)

// Sequencer states and events.
const (
	igniterIdle   = "idle"
	igniterFiring = "firing"

	eventIgnite = "ignite"
	eventCutoff = "cutoff"
)

// Igniter energizes and de-energizes the ignition relay. The electrical
// driver is out of scope; only the two transitions matter here.
type Igniter interface {
	Energize() error
	DeEnergize() error
}

// LogIgniter is an Igniter that only logs, for bench runs.
type LogIgniter struct{}

// Energize logs the relay-on transition.
func (LogIgniter) Energize() error {
	log.Printf("igniter: relay energized")
	return nil
}

// DeEnergize logs the relay-off transition.
func (LogIgniter) DeEnergize() error {
	log.Printf("igniter: relay de-energized")
	return nil
}

// Sequencer is the ignition state machine: idle -> firing -> idle, with
// firing bounded by a hard duration no matter what else happens on the
// link. The cutoff sequence is identical for a timeout and a commanded
// stop, and runs through a single code path.
type Sequencer struct {
	machine *fsm.FSM
	valves  *ValveBank
	igniter Igniter

	fuelValve int
	oxValve   int
	duration  time.Duration
	startedAt time.Time
}

// NewSequencer wires the sequencer to the valve bank and igniter relay.
func NewSequencer(valves *ValveBank, igniter Igniter, cfg IgnitionConfig) *Sequencer {
	s := &Sequencer{
		valves:    valves,
		igniter:   igniter,
		fuelValve: cfg.FuelValve,
		oxValve:   cfg.OxValve,
		duration:  cfg.Duration(),
	}
	s.machine = fsm.NewFSM(
		igniterIdle,
		fsm.Events{
			{Name: eventIgnite, Src: []string{igniterIdle}, Dst: igniterFiring},
			{Name: eventCutoff, Src: []string{igniterFiring}, Dst: igniterIdle},
		},
		fsm.Callbacks{
			"enter_" + igniterFiring: func(_ context.Context, _ *fsm.Event) { s.energize() },
			"enter_" + igniterIdle:   func(_ context.Context, _ *fsm.Event) { s.safe() },
		},
	)
	return s
}

// energize runs the firing entry sequence: relay on, then propellant
// valves open.
func (s *Sequencer) energize() {
	if err := s.igniter.Energize(); err != nil {
		log.Printf("ignition: energize failed: %v", err)
	}
	s.valves.Apply(s.fuelValve, KeywordOpen)
	s.valves.Apply(s.oxValve, KeywordOpen)
}

// safe runs the cutoff sequence: propellant valves closed, then relay
// off. Valves first, so fuel stops flowing before anything else.
func (s *Sequencer) safe() {
	s.valves.Apply(s.fuelValve, KeywordClose)
	s.valves.Apply(s.oxValve, KeywordClose)
	if err := s.igniter.DeEnergize(); err != nil {
		log.Printf("ignition: de-energize failed: %v", err)
	}
}

// Start begins a firing session. A duplicate start while already firing
// is a no-op: retransmitted IGN commands must not restart the timer or
// re-trigger the relay.
func (s *Sequencer) Start(now time.Time) {
	if s.machine.Is(igniterFiring) {
		log.Printf("ignition: already firing, start ignored")
		return
	}
	s.startedAt = now
	if err := s.machine.Event(context.Background(), eventIgnite); err != nil {
		log.Printf("ignition: start rejected: %v", err)
		return
	}
	log.Printf("ignition: firing for %v", s.duration)
}

// Poll enforces the hard duration bound while firing.
func (s *Sequencer) Poll(now time.Time) {
	if s.machine.Is(igniterFiring) && now.Sub(s.startedAt) >= s.duration {
		log.Printf("ignition: duration reached, cutting off")
		s.Stop()
	}
}

// Stop ends the firing session. Calling it while idle is a safe no-op.
func (s *Sequencer) Stop() {
	if s.machine.Is(igniterIdle) {
		return
	}
	if err := s.machine.Event(context.Background(), eventCutoff); err != nil {
		log.Printf("ignition: stop rejected: %v", err)
	}
}

// Firing reports whether a session is in progress.
func (s *Sequencer) Firing() bool {
	return s.machine.Is(igniterFiring)
}

// StartedAt returns the current session's start time; zero while idle.
func (s *Sequencer) StartedAt() time.Time {
	if !s.Firing() {
		return time.Time{}
	}
	return s.startedAt
}
