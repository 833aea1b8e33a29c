// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package stand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingIgniter tracks relay transitions.
type countingIgniter struct {
	energized   int
	deEnergized int
}

func (i *countingIgniter) Energize() error   { i.energized++; return nil }
func (i *countingIgniter) DeEnergize() error { i.deEnergized++; return nil }

func newTestSequencer(t *testing.T) (*Sequencer, *recordActuator, *countingIgniter) {
	t.Helper()
	cfg := DefaultConfig()
	act := &recordActuator{}
	ign := &countingIgniter{}
	bank := NewValveBank(cfg, act)
	return NewSequencer(bank, ign, cfg.Ignition), act, ign
}

func TestSequencer_StartOpensPropellantValves(t *testing.T) {
	seq, act, ign := newTestSequencer(t)
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	seq.Start(start)

	require.True(t, seq.Firing())
	assert.Equal(t, start, seq.StartedAt())
	assert.Equal(t, 1, ign.energized)
	// Fuel valve 3 then ox valve 4, both to their open positions.
	require.Equal(t, []valveWrite{{3, 85}, {4, 73}}, act.writes)
}

func TestSequencer_DuplicateStartIsNoOp(t *testing.T) {
	seq, act, ign := newTestSequencer(t)
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	seq.Start(start)
	writesAfterFirst := len(act.writes)

	// A retransmitted IGN must not restart the timer or re-fire the relay.
	seq.Start(start.Add(2 * time.Second))

	assert.Equal(t, 1, ign.energized)
	assert.Len(t, act.writes, writesAfterFirst)
	assert.Equal(t, start, seq.StartedAt(), "duplicate start must not reset the clock")
}

func TestSequencer_DurationBoundCutsOff(t *testing.T) {
	seq, act, ign := newTestSequencer(t)
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	seq.Start(start)

	seq.Poll(start.Add(4999 * time.Millisecond))
	require.True(t, seq.Firing(), "cutoff fired early")

	seq.Poll(start.Add(5000 * time.Millisecond))
	require.False(t, seq.Firing())
	assert.Equal(t, 1, ign.deEnergized)
	// Cutoff closes fuel then ox after the two open writes.
	require.Equal(t, []valveWrite{{3, 85}, {4, 73}, {3, 170}, {4, 150}}, act.writes)
}

func TestSequencer_CommandedStopMatchesTimeoutPath(t *testing.T) {
	timeoutSeq, timeoutAct, _ := newTestSequencer(t)
	stopSeq, stopAct, _ := newTestSequencer(t)
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	timeoutSeq.Start(start)
	timeoutSeq.Poll(start.Add(6 * time.Second))

	stopSeq.Start(start)
	stopSeq.Stop()

	// Same cutoff sequence whether the bound expires or an operator stops.
	assert.Equal(t, timeoutAct.writes, stopAct.writes)
}

func TestSequencer_StopWhileIdleIsSafe(t *testing.T) {
	seq, act, ign := newTestSequencer(t)

	seq.Stop()

	assert.False(t, seq.Firing())
	assert.Empty(t, act.writes)
	assert.Zero(t, ign.deEnergized)
}

func TestSequencer_RestartAfterCutoff(t *testing.T) {
	seq, _, ign := newTestSequencer(t)
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	seq.Start(start)
	seq.Stop()
	seq.Start(start.Add(10 * time.Second))

	require.True(t, seq.Firing())
	assert.Equal(t, 2, ign.energized)
	assert.Equal(t, start.Add(10*time.Second), seq.StartedAt())
}

func TestSequencer_StartedAtZeroWhileIdle(t *testing.T) {
	seq, _, _ := newTestSequencer(t)
	assert.True(t, seq.StartedAt().IsZero())
}
