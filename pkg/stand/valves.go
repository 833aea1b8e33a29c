// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package stand

import (
	"errors"
	"fmt"
	"log"
	"sort"
)

// Position keywords from the command vocabulary.
const (
	KeywordOpen    = "OPEN"
	KeywordClose   = "CLOSE"
	KeywordNeutral = "NEUTRAL"
)

// Stand-layer error taxonomy.
var (
	// ErrInvalidValve marks a command addressed to an unconfigured valve id.
	ErrInvalidValve = errors.New("invalid valve")

	// ErrInvalidKeyword marks a valve command with no position keyword at
	// all, e.g. "V1:". An unrecognized non-empty keyword is not an error;
	// it resolves to the valve's Neutral rest position.
	ErrInvalidKeyword = errors.New("invalid position keyword")
)

// Calibration maps a valve's symbolic positions to actuator values.
type Calibration struct {
	Open    int
	Close   int
	Neutral int
}

// Actuator applies a resolved position to the physical valve. The servo
// driver clamps out-of-range values; this layer never rejects a numeric
// position.
type Actuator interface {
	SetValve(id int, position int) error
}

// LogActuator is an Actuator that only logs, for bench runs without
// hardware attached.
type LogActuator struct{}

// SetValve logs the write and succeeds.
func (LogActuator) SetValve(id int, position int) error {
	log.Printf("actuator: valve %d -> %d", id, position)
	return nil
}

// ValveBank resolves symbolic valve commands against fixed calibration
// and drives the actuator. Valves are independent; only the composite
// operations impose an order, and that order comes from configuration.
type ValveBank struct {
	cal      map[int]Calibration
	names    map[int]string
	openSeq  []int
	closeSeq []int
	act      Actuator
}

// NewValveBank builds a bank from a validated configuration.
func NewValveBank(cfg Config, act Actuator) *ValveBank {
	b := &ValveBank{
		cal:   make(map[int]Calibration, len(cfg.Valves)),
		names: make(map[int]string, len(cfg.Valves)),
		act:   act,
	}
	for _, v := range cfg.Valves {
		b.cal[v.ID] = Calibration{Open: v.Open, Close: v.Close, Neutral: v.Neutral}
		b.names[v.ID] = v.Name
	}
	b.openSeq = sequenceOrDefault(cfg.OpenSequence, b.cal)
	b.closeSeq = sequenceOrDefault(cfg.CloseSequence, b.cal)
	return b
}

// sequenceOrDefault falls back to ascending valve id when a deployment
// does not spell an order out.
func sequenceOrDefault(seq []int, cal map[int]Calibration) []int {
	if len(seq) > 0 {
		return append([]int(nil), seq...)
	}
	ids := make([]int, 0, len(cal))
	for id := range cal {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Resolve maps a valve id and position keyword to the calibrated actuator
// position. Unknown keywords resolve to Neutral: the safety bias is
// toward the defined rest position, not an error.
func (b *ValveBank) Resolve(id int, keyword string) (int, error) {
	cal, ok := b.cal[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidValve, id)
	}
	switch keyword {
	case KeywordOpen:
		return cal.Open, nil
	case KeywordClose:
		return cal.Close, nil
	case "":
		return 0, fmt.Errorf("%w: valve %d", ErrInvalidKeyword, id)
	default:
		return cal.Neutral, nil
	}
}

// Set applies an actuator position to a valve and logs the action. Driver
// failures are logged, not raised: a stuck servo must not take the
// control loop down with it.
func (b *ValveBank) Set(id int, position int) {
	if err := b.act.SetValve(id, position); err != nil {
		log.Printf("valves: set %s (V%d) to %d failed: %v", b.names[id], id, position, err)
		return
	}
	log.Printf("valves: %s (V%d) -> %d", b.names[id], id, position)
}

// Apply resolves and sets in one step.
func (b *ValveBank) Apply(id int, keyword string) error {
	position, err := b.Resolve(id, keyword)
	if err != nil {
		return err
	}
	b.Set(id, position)
	return nil
}

// OpenAll drives every valve to its Open position in the configured order.
func (b *ValveBank) OpenAll() {
	for _, id := range b.openSeq {
		b.Set(id, b.cal[id].Open)
	}
}

// CloseAll drives every valve to its Close position in the configured
// order. This is the fail-safe composite: it must succeed valve by valve
// regardless of individual driver errors.
func (b *ValveBank) CloseAll() {
	for _, id := range b.closeSeq {
		b.Set(id, b.cal[id].Close)
	}
}

// IDs returns the configured valve ids in ascending order.
func (b *ValveBank) IDs() []int {
	ids := make([]int, 0, len(b.cal))
	for id := range b.cal {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Name returns a valve's configured name, or empty when unknown.
func (b *ValveBank) Name(id int) string {
	return b.names[id]
}
