// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package stand

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gina-propulsion/standlink/pkg/ginalink"
)

// testClock drives the station's poll-time manually.
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

// fixedSource reports the same sample every cycle.
type fixedSource struct {
	sample Sample
}

func (s fixedSource) Sample() (Sample, bool) { return s.sample, true }

type stationRig struct {
	station *Station
	ground  *ginalink.PipeEnd
	clock   *testClock
	act     *recordActuator
	ign     *countingIgniter
}

func newStationRig(t *testing.T, src Source) *stationRig {
	t.Helper()
	ground, standEnd := ginalink.Pipe()
	clock := newTestClock()
	act := &recordActuator{}
	ign := &countingIgniter{}
	return &stationRig{
		station: NewStation(DefaultConfig(), standEnd, act, ign, src, clock.Now),
		ground:  ground,
		clock:   clock,
		act:     act,
		ign:     ign,
	}
}

// sendCommand puts a command frame on the ground side of the link.
func (r *stationRig) sendCommand(t *testing.T, text string, seq int) {
	t.Helper()
	frame, err := ginalink.EncodeCommand(text, seq)
	require.NoError(t, err)
	require.NoError(t, r.ground.Send(frame))
}

// drainGround collects every frame currently queued toward the console.
func (r *stationRig) drainGround() []string {
	var frames []string
	for {
		frame, ok := r.ground.TryReceive()
		if !ok {
			return frames
		}
		frames = append(frames, string(frame))
	}
}

func TestStation_CommandExecutedAndAckedThreeTimes(t *testing.T) {
	rig := newStationRig(t, nil)

	rig.sendCommand(t, "OPEN_ALL", 7)
	rig.station.Poll(rig.clock.Now())

	// All four valves driven open in the configured order.
	require.Equal(t, []valveWrite{{1, 95}, {2, 82}, {3, 85}, {4, 73}}, rig.act.writes)

	// First ack immediately, the redundant two at the spacing interval.
	assert.Equal(t, []string{"DC=ACK:#7\n"}, rig.drainGround())
	rig.station.Poll(rig.clock.Advance(200 * time.Millisecond))
	rig.station.Poll(rig.clock.Advance(200 * time.Millisecond))
	assert.Equal(t, []string{"DC=ACK:#7\n", "DC=ACK:#7\n"}, rig.drainGround())
}

func TestStation_ValveCommand(t *testing.T) {
	rig := newStationRig(t, nil)

	rig.sendCommand(t, "V2:CLOSE", 1)
	rig.station.Poll(rig.clock.Now())

	require.Equal(t, []valveWrite{{2, 172}}, rig.act.writes)
}

func TestStation_InvalidCommandStillAcked(t *testing.T) {
	rig := newStationRig(t, nil)

	rig.sendCommand(t, "FROBNICATE", 3)
	rig.station.Poll(rig.clock.Now())

	// Execution fails but the loop survives and the ack goes out: the
	// console's retransmission must stop even for a rejected command.
	assert.Empty(t, rig.act.writes)
	assert.Equal(t, []string{"DC=ACK:#3\n"}, rig.drainGround())
}

func TestStation_IgnitionTimeBounded(t *testing.T) {
	rig := newStationRig(t, nil)

	rig.sendCommand(t, "IGN", 0)
	rig.station.Poll(rig.clock.Now())
	require.True(t, rig.station.Ignition.Firing())

	// Pings keep the watchdog quiet while the burn runs.
	for i := 0; i < 4; i++ {
		ping, err := ginalink.EncodePing()
		require.NoError(t, err)
		require.NoError(t, rig.ground.Send(ping))
		rig.station.Poll(rig.clock.Advance(time.Second))
	}

	rig.station.Poll(rig.clock.Advance(time.Second))
	assert.False(t, rig.station.Ignition.Firing(), "burn must cut off at the duration bound")
	assert.Equal(t, 1, rig.ign.deEnergized)
}

func TestStation_StopCommandCutsBurnShort(t *testing.T) {
	rig := newStationRig(t, nil)

	rig.sendCommand(t, "IGN", 0)
	rig.station.Poll(rig.clock.Now())
	require.True(t, rig.station.Ignition.Firing())

	rig.sendCommand(t, "STOP", 1)
	rig.station.Poll(rig.clock.Advance(time.Second))
	assert.False(t, rig.station.Ignition.Firing())
}

func TestStation_WatchdogFailSafe(t *testing.T) {
	rig := newStationRig(t, nil)

	// Total silence past the timeout: igniter off, all valves closed.
	rig.station.Poll(rig.clock.Advance(4 * time.Second))
	require.Equal(t, []valveWrite{{1, 150}, {2, 172}, {3, 170}, {4, 150}}, rig.act.writes)
	assert.True(t, rig.station.Watchdog().Silenced())

	// Continued silence does not hammer the servos every poll.
	rig.station.Poll(rig.clock.Advance(time.Second))
	rig.station.Poll(rig.clock.Advance(time.Second))
	assert.Len(t, rig.act.writes, 4)
}

func TestStation_WatchdogRearmsOnContact(t *testing.T) {
	rig := newStationRig(t, nil)

	rig.station.Poll(rig.clock.Advance(4 * time.Second))
	require.Len(t, rig.act.writes, 4)

	// Contact returns; a fresh silence episode fires the fail-safe again.
	ping, err := ginalink.EncodePing()
	require.NoError(t, err)
	require.NoError(t, rig.ground.Send(ping))
	rig.station.Poll(rig.clock.Advance(time.Second))
	assert.False(t, rig.station.Watchdog().Silenced())

	rig.station.Poll(rig.clock.Advance(4 * time.Second))
	assert.Len(t, rig.act.writes, 8)
}

func TestStation_WatchdogAbortsBurn(t *testing.T) {
	rig := newStationRig(t, nil)

	rig.sendCommand(t, "IGN", 0)
	rig.station.Poll(rig.clock.Now())
	rig.drainGround()
	require.True(t, rig.station.Ignition.Firing())

	// Link dies mid-burn: the fail-safe must stop the sequencer too.
	rig.station.Poll(rig.clock.Advance(4 * time.Second))
	assert.False(t, rig.station.Ignition.Firing())
	assert.Equal(t, 1, rig.ign.deEnergized)
}

func TestStation_TelemetryCadence(t *testing.T) {
	load := int64(1234)
	rig := newStationRig(t, fixedSource{Sample{PsiFuel: 10, PsiOx: 20, Load: &load}})

	// Below the interval: nothing.
	rig.station.Poll(rig.clock.Advance(100 * time.Millisecond))
	assert.Empty(t, rig.drainGround())

	rig.station.Poll(rig.clock.Advance(200 * time.Millisecond))
	frames := rig.drainGround()
	require.Len(t, frames, 1)
	assert.Equal(t, "DC=TLM:{\"psi_fuel\":10,\"psi_ox\":20,\"load\":1234}\n", frames[0])

	// And again a full interval later.
	rig.station.Poll(rig.clock.Advance(300 * time.Millisecond))
	assert.Len(t, rig.drainGround(), 1)
}

func TestStation_MalformedFrameDoesNotFeedWatchdog(t *testing.T) {
	rig := newStationRig(t, nil)

	// Garbage keeps arriving but carries no proof the console is alive.
	for i := 0; i < 4; i++ {
		require.NoError(t, rig.ground.Send([]byte("noise\n")))
		rig.station.Poll(rig.clock.Advance(time.Second))
	}
	assert.True(t, rig.station.Watchdog().Silenced())
	assert.Len(t, rig.act.writes, 4)
	assert.Equal(t, uint64(4), rig.station.Stats().MalformedFrames)
}

func TestStation_DuplicateCommandReExecuted(t *testing.T) {
	rig := newStationRig(t, nil)

	for i := 0; i < 2; i++ {
		rig.sendCommand(t, "CLOSE_ALL", 5)
		rig.station.Poll(rig.clock.Advance(500 * time.Millisecond))
	}

	// At-least-once delivery: the duplicate runs again, harmlessly.
	assert.Len(t, rig.act.writes, 8)
}

func TestStation_ExecuteToleratesCommandPrefix(t *testing.T) {
	rig := newStationRig(t, nil)

	err := rig.station.Execute("CMD:OPEN_ALL", rig.clock.Now())
	require.NoError(t, err)
	assert.Len(t, rig.act.writes, 4)
}

func TestStation_ExecuteRejectsMalformedValve(t *testing.T) {
	rig := newStationRig(t, nil)

	for _, cmd := range []string{"V:OPEN", "Vx:OPEN", "V1", "V1:"} {
		err := rig.station.Execute(cmd, rig.clock.Now())
		assert.Error(t, err, fmt.Sprintf("command %q", cmd))
	}
	assert.Empty(t, rig.act.writes)
}

func TestStation_StatsCountTraffic(t *testing.T) {
	rig := newStationRig(t, nil)

	rig.sendCommand(t, "CLOSE_ALL", 0)
	ping, err := ginalink.EncodePing()
	require.NoError(t, err)
	require.NoError(t, rig.ground.Send(ping))
	rig.station.Poll(rig.clock.Now())

	stats := rig.station.Stats()
	assert.Equal(t, uint64(2), stats.TotalFrames)
	assert.Equal(t, uint64(1), stats.Commands)
	assert.Equal(t, uint64(1), stats.Pings)
	assert.True(t, strings.Contains(stats.Summary(), "commands: 1"))
}
