// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/ledger/ledger"
)

type counter struct {
	N uint64
}

func (c *counter) Clone() *counter {
	cpy := *c
	return &cpy
}

var _ Map[ledger.AccountNum, *counter] = (*MemMap[ledger.AccountNum, *counter])(nil)

func newTestMap() *MemMap[ledger.AccountNum, *counter] {
	return NewMemMap(map[ledger.AccountNum]*counter{
		3: {N: 30},
		1: {N: 10},
	})
}

func TestMemMapGetForModify(t *testing.T) {
	m := newTestMap()

	snapshot, ok := m.Get(1)
	require.True(t, ok)

	mut, ok := m.GetForModify(1)
	require.True(t, ok)
	mut.N = 11

	again, _ := m.GetForModify(1)
	assert.Same(t, mut, again, "repeated GetForModify returns the same handle")
	assert.Equal(t, uint64(10), snapshot.N, "snapshot is not affected")

	got, _ := m.Get(1)
	assert.Equal(t, uint64(11), got.N)

	_, ok = m.GetForModify(99)
	assert.False(t, ok)
}

func TestMemMapKeySet(t *testing.T) {
	m := newTestMap()
	m.Put(2, &counter{N: 20})
	m.Remove(3)

	assert.Equal(t, []ledger.AccountNum{1, 2}, m.KeySet())
	assert.Equal(t, 2, m.Size())
	assert.False(t, m.Contains(3))
}

func TestMemMapCheckpointRevert(t *testing.T) {
	m := newTestMap()

	rev := m.Checkpoint()
	mut, _ := m.GetForModify(1)
	mut.N = 100
	m.Put(5, &counter{N: 50})
	m.Remove(3)

	m.RevertTo(rev)

	got, _ := m.Get(1)
	assert.Equal(t, uint64(10), got.N)
	assert.False(t, m.Contains(5))
	assert.True(t, m.Contains(3))
	assert.Equal(t, []ledger.AccountNum{1, 3}, m.KeySet())
}

func TestMemMapFlush(t *testing.T) {
	m := newTestMap()

	m.Checkpoint()
	mut, _ := m.GetForModify(1)
	mut.N = 12
	m.Remove(3)
	m.Flush()

	assert.Equal(t, 1, m.sm.Depth())
	assert.Equal(t, []ledger.AccountNum{1}, m.KeySet())
	got, _ := m.Get(1)
	assert.Equal(t, uint64(12), got.N)

	// reverting past a flush is a no-op
	m.RevertTo(0)
	assert.Equal(t, []ledger.AccountNum{1}, m.KeySet())
}

func TestGroup(t *testing.T) {
	a := newTestMap()
	b := NewSingleton(&counter{N: 7})
	g := NewGroup(a, b)

	cp := g.Checkpoint()
	a.Remove(1)
	v, _ := b.GetForModify(ledger.Singleton{})
	v.N = 8
	g.RevertTo(cp)

	assert.True(t, a.Contains(1))
	got, _ := b.Get(ledger.Singleton{})
	assert.Equal(t, uint64(7), got.N)

	assert.Panics(t, func() { NewGroup(a, nil) })
}

func TestDigest(t *testing.T) {
	a := newTestMap()
	b := newTestMap()

	da, err := Digest(a)
	require.NoError(t, err)
	db, err := Digest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)

	mut, _ := b.GetForModify(3)
	mut.N++
	db, err = Digest(b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}
