// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package ginalink

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame counts and error rates on a link.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames     uint64
	ValidFrames     uint64
	Commands        uint64
	Acks            uint64
	Telemetry       uint64
	Pings           uint64
	Unknown         uint64
	MalformedFrames uint64
	TransportErrors uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one decode result.
func (s *Statistics) Update(msg *Message, decodeErr error) {
	s.TotalFrames++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		if errors.Is(decodeErr, ErrMalformedFrame) {
			s.MalformedFrames++
		} else {
			s.TransportErrors++
		}
		return
	}

	s.ValidFrames++
	switch msg.Kind {
	case KindCommand:
		s.Commands++
	case KindAck:
		s.Acks++
	case KindTelemetry:
		s.Telemetry++
	case KindPing:
		s.Pings++
	default:
		s.Unknown++
	}
}

// RecordTransportError counts a send/receive failure at the channel layer.
func (s *Statistics) RecordTransportError() {
	s.TransportErrors++
	s.LastUpdateTime = time.Now()
}

// CalculateRates recomputes the frame and error rates since start.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed <= 0 {
		return
	}
	s.FrameRate = float64(s.TotalFrames) / elapsed
	s.ErrorRate = float64(s.MalformedFrames+s.TransportErrors) / elapsed
}

// Summary renders a one-screen statistics report.
func (s *Statistics) Summary() string {
	s.CalculateRates()
	return fmt.Sprintf(
		"frames: %d total, %d valid (%.1f/s)\n"+
			"  commands: %d  acks: %d  telemetry: %d  pings: %d  unknown: %d\n"+
			"errors: %d malformed, %d transport (%.2f/s)",
		s.TotalFrames, s.ValidFrames, s.FrameRate,
		s.Commands, s.Acks, s.Telemetry, s.Pings, s.Unknown,
		s.MalformedFrames, s.TransportErrors, s.ErrorRate,
	)
}
