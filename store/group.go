// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/vechain/ledger/ledger"
)

// Revertible is a map supporting checkpoints.
type Revertible interface {
	Checkpoint() int
	RevertTo(revision int)
	Flush()
}

// Digester writes a canonical encoding of its content.
type Digester interface {
	WriteDigest(w io.Writer) error
}

// Group checkpoints, reverts and flushes several maps together.
type Group struct {
	members []Revertible
}

// Checkpoint holds one revision per group member.
type Checkpoint []int

// NewGroup creates a group over the given maps.
func NewGroup(members ...Revertible) *Group {
	for _, m := range members {
		if m == nil {
			panic("store: nil group member")
		}
	}
	return &Group{members: members}
}

func (g *Group) Checkpoint() Checkpoint {
	cp := make(Checkpoint, len(g.members))
	for i, m := range g.members {
		cp[i] = m.Checkpoint()
	}
	return cp
}

func (g *Group) RevertTo(cp Checkpoint) {
	for i, m := range g.members {
		m.RevertTo(cp[i])
	}
}

func (g *Group) Flush() {
	for _, m := range g.members {
		m.Flush()
	}
}

// NewSingleton creates a single-valued map holding v.
func NewSingleton[V Value[V]](v V) *MemMap[ledger.Singleton, V] {
	return NewMemMap(map[ledger.Singleton]V{{}: v})
}

// Digest computes the blake2b-256 checksum over the digests of the given maps, in order.
func Digest(maps ...Digester) ([32]byte, error) {
	h, _ := blake2b.New256(nil)
	for _, m := range maps {
		if err := m.WriteDigest(h); err != nil {
			return [32]byte{}, err
		}
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
