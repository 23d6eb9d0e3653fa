// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package changeset

import (
	"fmt"

	"github.com/vechain/ledger/property"
)

// ChangeSet is the ordered batch of pending mutations of one backing map.
//
// Each entry holds the id, a snapshot of the current entity (nil when the entity
// is being created) and the property diff (nil when the entity is being removed).
// Entries are append-only and their indices never change, so interceptors may
// append while a loop over Size() is running; such a loop must re-read Size()
// on every iteration to observe the appended entries.
type ChangeSet[K comparable, E any, P property.Enum] struct {
	entries []entry[K, E, P]
	index   map[K]int
}

type entry[K comparable, E any, P property.Enum] struct {
	id      K
	entity  *E
	changes property.Changes[P]
}

// New creates an empty change set.
func New[K comparable, E any, P property.Enum]() *ChangeSet[K, E, P] {
	return &ChangeSet[K, E, P]{index: make(map[K]int)}
}

// Include appends an entry and returns its index.
// It panics if id is already included.
func (cs *ChangeSet[K, E, P]) Include(id K, entity *E, changes property.Changes[P]) int {
	if _, ok := cs.index[id]; ok {
		panic(fmt.Sprintf("changeset: %v included twice", id))
	}
	cs.entries = append(cs.entries, entry[K, E, P]{id: id, entity: entity, changes: changes})
	i := len(cs.entries) - 1
	cs.index[id] = i
	return i
}

// IncludeRemoval appends the removal of an existing entity.
func (cs *ChangeSet[K, E, P]) IncludeRemoval(id K, entity *E) int {
	return cs.Include(id, entity, nil)
}

func (cs *ChangeSet[K, E, P]) Size() int {
	return len(cs.entries)
}

func (cs *ChangeSet[K, E, P]) ID(i int) K {
	return cs.entries[i].id
}

// Entity returns the snapshot taken before the commit, nil for creations.
func (cs *ChangeSet[K, E, P]) Entity(i int) *E {
	return cs.entries[i].entity
}

// Changes returns the property diff, nil for removals.
// The returned map is live, writes are visible to later readers.
func (cs *ChangeSet[K, E, P]) Changes(i int) property.Changes[P] {
	return cs.entries[i].changes
}

// IsCreation reports whether entry i creates a new entity.
func (cs *ChangeSet[K, E, P]) IsCreation(i int) bool {
	return cs.entries[i].entity == nil
}

// IsRemoval reports whether entry i removes its entity.
func (cs *ChangeSet[K, E, P]) IsRemoval(i int) bool {
	return cs.entries[i].changes == nil
}

// IndexOf returns the index of id, or -1.
func (cs *ChangeSet[K, E, P]) IndexOf(id K) int {
	if i, ok := cs.index[id]; ok {
		return i
	}
	return -1
}

// Set records a property change on entry i.
// It panics for removals, which carry no diff.
func (cs *ChangeSet[K, E, P]) Set(i int, p P, v property.Value) {
	if cs.entries[i].changes == nil {
		panic(fmt.Sprintf("changeset: cannot change removed %v", cs.entries[i].id))
	}
	cs.entries[i].changes[p] = v
}
