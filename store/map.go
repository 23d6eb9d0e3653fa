// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"io"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/ledger/stackedmap"
)

// Key is the constraint on backing map keys.
// Keys are ordered so key sets can be traversed deterministically.
type Key[K any] interface {
	comparable
	Compare(K) int
	Bytes() []byte
}

// Value is the constraint on backing map values.
type Value[V any] interface {
	Clone() V
}

// Map is the key-value contract consumed by the commit pipeline.
type Map[K comparable, V any] interface {
	// Get returns a read-only snapshot of the value.
	Get(key K) (V, bool)
	// GetForModify returns a mutable handle. Repeated calls between
	// checkpoints return the same handle.
	GetForModify(key K) (V, bool)
	Put(key K, value V)
	Remove(key K)
	// KeySet returns all present keys in ascending order.
	KeySet() []K
	Size() int
}

type slot[V any] struct {
	value   V
	removed bool
}

// MemMap is an in-memory Map with checkpoint and revert.
type MemMap[K Key[K], V Value[V]] struct {
	base map[K]V
	sm   *stackedmap.StackedMap[K, slot[V]]
}

// NewMemMap creates a MemMap seeded with initial. The initial map is copied.
func NewMemMap[K Key[K], V Value[V]](initial map[K]V) *MemMap[K, V] {
	m := &MemMap[K, V]{base: make(map[K]V, len(initial))}
	for k, v := range initial {
		m.base[k] = v
	}
	m.sm = stackedmap.New(func(key K) (slot[V], bool) {
		v, ok := m.base[key]
		if !ok {
			return slot[V]{}, false
		}
		return slot[V]{value: v}, true
	})
	m.sm.Push()
	return m
}

func (m *MemMap[K, V]) Get(key K) (V, bool) {
	s, ok := m.sm.Get(key)
	if !ok || s.removed {
		var zero V
		return zero, false
	}
	return s.value, true
}

func (m *MemMap[K, V]) GetForModify(key K) (V, bool) {
	if s, ok := m.sm.Top(key); ok {
		if s.removed {
			var zero V
			return zero, false
		}
		return s.value, true
	}
	v, ok := m.Get(key)
	if !ok {
		return v, false
	}
	cpy := v.Clone()
	m.sm.Put(key, slot[V]{value: cpy})
	return cpy, true
}

func (m *MemMap[K, V]) Put(key K, value V) {
	m.sm.Put(key, slot[V]{value: value})
}

func (m *MemMap[K, V]) Remove(key K) {
	m.sm.Put(key, slot[V]{removed: true})
}

func (m *MemMap[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *MemMap[K, V]) KeySet() []K {
	candidates := make(map[K]struct{}, len(m.base))
	for k := range m.base {
		candidates[k] = struct{}{}
	}
	m.sm.Journal(func(k K, _ slot[V]) bool {
		candidates[k] = struct{}{}
		return true
	})

	keys := make([]K, 0, len(candidates))
	for k := range candidates {
		if m.Contains(k) {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b K) int { return a.Compare(b) })
	return keys
}

func (m *MemMap[K, V]) Size() int {
	return len(m.KeySet())
}

// Checkpoint makes a checkpoint of current content.
// It returns revision of the checkpoint.
func (m *MemMap[K, V]) Checkpoint() int {
	return m.sm.Push()
}

// RevertTo reverts to checkpoint specified by revision.
func (m *MemMap[K, V]) RevertTo(revision int) {
	m.sm.PopTo(revision)
	if m.sm.Depth() == 0 {
		m.sm.Push()
	}
}

// Flush folds all journaled changes into the base map.
func (m *MemMap[K, V]) Flush() {
	m.sm.Journal(func(k K, s slot[V]) bool {
		if s.removed {
			delete(m.base, k)
		} else {
			m.base[k] = s.value
		}
		return true
	})
	m.sm.PopTo(0)
	m.sm.Push()
}

// WriteDigest writes every key and the RLP encoding of its value, in key order.
func (m *MemMap[K, V]) WriteDigest(w io.Writer) error {
	for _, k := range m.KeySet() {
		v, _ := m.Get(k)
		enc, err := rlp.EncodeToBytes(v)
		if err != nil {
			return errors.Wrapf(err, "encode %v", k)
		}
		if _, err := w.Write(k.Bytes()); err != nil {
			return err
		}
		if _, err := w.Write(enc); err != nil {
			return err
		}
	}
	return nil
}
