// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package changeset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/property"
)

func TestIncludeAndAccessors(t *testing.T) {
	cs := NewAccounts()
	existing := entity.NewAccount()

	i := cs.Include(1001, existing, entity.AccountChanges{entity.AccountBalance: property.Int(5)})
	j := cs.Include(1002, nil, entity.AccountChanges{})
	k := cs.IncludeRemoval(1003, existing)

	assert.Equal(t, 3, cs.Size())
	assert.Equal(t, ledger.AccountNum(1002), cs.ID(j))
	assert.Same(t, existing, cs.Entity(i))
	assert.True(t, cs.IsCreation(j))
	assert.False(t, cs.IsCreation(i))
	assert.True(t, cs.IsRemoval(k))
	assert.Equal(t, 1, cs.IndexOf(1002))
	assert.Equal(t, -1, cs.IndexOf(42))

	cs.Set(j, entity.AccountBalance, property.Int(9))
	v, ok := cs.Changes(j).Get(entity.AccountBalance)
	assert.True(t, ok)
	assert.True(t, v.Equal(property.Int(9)))

	assert.Panics(t, func() { cs.Include(1001, nil, entity.AccountChanges{}) })
	assert.Panics(t, func() { cs.Set(k, entity.AccountBalance, property.Int(1)) })
}

func TestAppendWhileIterating(t *testing.T) {
	cs := NewAccounts()
	cs.Include(1, nil, entity.AccountChanges{})
	cs.Include(2, nil, entity.AccountChanges{})

	visited := make([]ledger.AccountNum, 0)
	for i := 0; i < cs.Size(); i++ {
		id := cs.ID(i)
		visited = append(visited, id)
		// every original entry drags in one stakee
		if id < 10 {
			cs.Include(id+10, nil, entity.AccountChanges{})
		}
	}
	assert.Equal(t, []ledger.AccountNum{1, 2, 11, 12}, visited)
}
