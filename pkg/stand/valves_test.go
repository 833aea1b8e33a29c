// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 GINA Propulsion

package stand

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// valveWrite is one recorded actuator call.
type valveWrite struct {
	id       int
	position int
}

// recordActuator captures every SetValve call, optionally failing them.
type recordActuator struct {
	writes []valveWrite
	err    error
}

func (a *recordActuator) SetValve(id int, position int) error {
	a.writes = append(a.writes, valveWrite{id, position})
	return a.err
}

func TestValveBank_ResolveKeywords(t *testing.T) {
	bank := NewValveBank(DefaultConfig(), &recordActuator{})

	pos, err := bank.Resolve(1, KeywordOpen)
	require.NoError(t, err)
	assert.Equal(t, 95, pos)

	pos, err = bank.Resolve(1, KeywordClose)
	require.NoError(t, err)
	assert.Equal(t, 150, pos)

	pos, err = bank.Resolve(4, KeywordOpen)
	require.NoError(t, err)
	assert.Equal(t, 73, pos)
}

func TestValveBank_UnknownKeywordFallsBackToNeutral(t *testing.T) {
	bank := NewValveBank(DefaultConfig(), &recordActuator{})

	pos, err := bank.Resolve(2, "WIGGLE")
	require.NoError(t, err)
	assert.Equal(t, 130, pos, "unrecognized keyword should rest at neutral")
}

func TestValveBank_ResolveErrors(t *testing.T) {
	bank := NewValveBank(DefaultConfig(), &recordActuator{})

	_, err := bank.Resolve(9, KeywordOpen)
	assert.ErrorIs(t, err, ErrInvalidValve)

	_, err = bank.Resolve(1, "")
	assert.ErrorIs(t, err, ErrInvalidKeyword)
}

func TestValveBank_ApplyDrivesActuator(t *testing.T) {
	act := &recordActuator{}
	bank := NewValveBank(DefaultConfig(), act)

	require.NoError(t, bank.Apply(3, KeywordOpen))
	require.Equal(t, []valveWrite{{3, 85}}, act.writes)
}

func TestValveBank_CloseAllConfiguredOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CloseSequence = []int{4, 3, 2, 1}
	act := &recordActuator{}
	bank := NewValveBank(cfg, act)

	bank.CloseAll()

	require.Len(t, act.writes, 4)
	assert.Equal(t, []valveWrite{{4, 150}, {3, 170}, {2, 172}, {1, 150}}, act.writes)
}

func TestValveBank_DefaultSequenceIsAscending(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OpenSequence = nil
	act := &recordActuator{}
	bank := NewValveBank(cfg, act)

	bank.OpenAll()

	require.Len(t, act.writes, 4)
	for i, w := range act.writes {
		assert.Equal(t, i+1, w.id)
	}
}

func TestValveBank_CloseAllSurvivesDriverErrors(t *testing.T) {
	act := &recordActuator{err: errors.New("servo stuck")}
	bank := NewValveBank(DefaultConfig(), act)

	// The fail-safe composite must still attempt every valve.
	bank.CloseAll()
	assert.Len(t, act.writes, 4)
}

func TestValveBank_IDsAndNames(t *testing.T) {
	bank := NewValveBank(DefaultConfig(), &recordActuator{})

	assert.Equal(t, []int{1, 2, 3, 4}, bank.IDs())
	assert.Equal(t, "fuel-release", bank.Name(3))
	assert.Empty(t, bank.Name(9))
}
