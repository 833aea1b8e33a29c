// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package stand

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
)

// Sample is one telemetry report: tank pressures in PSI and, when the
// load cell is ready, thrust in grams. It serializes to the JSON body of
// a TLM frame.
type Sample struct {
	PsiFuel float64 `json:"psi_fuel"`
	PsiOx   float64 `json:"psi_ox"`
	Load    *int64  `json:"load,omitempty"`
}

// Encode renders the sample as a TLM frame body.
func (s Sample) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode telemetry: %w", err)
	}
	return string(b), nil
}

// DecodeSample parses a TLM frame body, for console-side display.
func DecodeSample(body string) (Sample, error) {
	var s Sample
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return Sample{}, fmt.Errorf("decode telemetry: %w", err)
	}
	return s, nil
}

// Source produces telemetry samples on demand. Sample returns false when
// there is nothing to report this cycle.
type Source interface {
	Sample() (Sample, bool)
}

// AveragingSource accumulates raw pressure readings between telemetry
// sends and reports their mean, the way the stand controller smooths
// transducer noise. Load is attached when the load cell delivered a
// reading this window.
type AveragingSource struct {
	count   int
	fuelSum float64
	oxSum   float64
	load    *int64
}

// Add accumulates one pressure reading pair.
func (a *AveragingSource) Add(psiFuel, psiOx float64) {
	a.count++
	a.fuelSum += psiFuel
	a.oxSum += psiOx
}

// SetLoad attaches a load-cell reading to the next sample.
func (a *AveragingSource) SetLoad(grams int64) {
	a.load = &grams
}

// Sample averages the window, rounds to two decimals, and resets the
// accumulators. Returns false when no readings arrived.
func (a *AveragingSource) Sample() (Sample, bool) {
	if a.count == 0 {
		return Sample{}, false
	}
	s := Sample{
		PsiFuel: math.Round(a.fuelSum/float64(a.count)*100) / 100,
		PsiOx:   math.Round(a.oxSum/float64(a.count)*100) / 100,
		Load:    a.load,
	}
	a.count = 0
	a.fuelSum = 0
	a.oxSum = 0
	a.load = nil
	return s, true
}

// SimSource generates randomized telemetry for bench runs: pressures in
// 0-1000 PSI, a load reading on roughly every other sample.
type SimSource struct {
	rng *rand.Rand
}

// NewSimSource seeds a sim source. The same seed replays the same run.
func NewSimSource(seed int64) *SimSource {
	return &SimSource{rng: rand.New(rand.NewSource(seed))}
}

// Sample returns one randomized report.
func (s *SimSource) Sample() (Sample, bool) {
	sample := Sample{
		PsiFuel: float64(s.rng.Intn(1000)),
		PsiOx:   float64(s.rng.Intn(1000)),
	}
	if s.rng.Intn(2) == 1 {
		load := int64(s.rng.Intn(100000))
		sample.Load = &load
	}
	return sample, true
}
