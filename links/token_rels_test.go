// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package links

import (
	"slices"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/commit"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/store"
	"github.com/vechain/ledger/test/datagen"
)

type relFixture struct {
	owner    ledger.AccountNum
	accounts *store.MemMap[ledger.AccountNum, *entity.Account]
	rels     *store.MemMap[ledger.RelKey, *entity.TokenRel]
	pipeline *commit.TokenRelsPipeline
	c        *commit.Committer
}

func newRelFixture() *relFixture {
	f := &relFixture{owner: datagen.RandAccountNum()}
	f.accounts = store.NewMemMap(map[ledger.AccountNum]*entity.Account{f.owner: entity.NewAccount()})
	f.rels = store.NewMemMap[ledger.RelKey, *entity.TokenRel](nil)
	f.pipeline = commit.NewTokenRelsPipeline(f.rels, NewTokenRelLinks(f.accounts, f.rels))
	f.c = commit.NewCommitter(store.NewGroup(f.accounts, f.rels), sideeffects.New())
	return f
}

func (f *relFixture) update(t *testing.T, associate, dissociate []ledger.TokenNum) {
	t.Helper()
	cs := changeset.NewTokenRels()
	for _, token := range dissociate {
		key := ledger.NewRelKey(f.owner, token)
		cur, ok := f.rels.Get(key)
		require.True(t, ok, "%v", key)
		cs.IncludeRemoval(key, cur)
	}
	for _, token := range associate {
		cs.Include(ledger.NewRelKey(f.owner, token), nil, entity.TokenRelChanges{})
	}
	require.NoError(t, f.c.Commit(&commit.Batch{}, f.pipeline.Bind(cs)))
}

func (f *relFixture) list(t *testing.T) []ledger.TokenNum {
	t.Helper()
	tokens, err := TokenRels(f.accounts, f.rels, f.owner)
	require.NoError(t, err)
	return tokens
}

func (f *relFixture) account() *entity.Account {
	a, _ := f.accounts.Get(f.owner)
	return a
}

func TestAssociateAndDissociate(t *testing.T) {
	f := newRelFixture()

	f.update(t, []ledger.TokenNum{3, 1, 2}, nil)
	assert.Equal(t, []ledger.TokenNum{3, 2, 1}, f.list(t))
	assert.Equal(t, ledger.TokenNum(3), f.account().HeadTokenNum)
	assert.Equal(t, int64(3), f.account().NumAssociations)

	// middle
	f.update(t, nil, []ledger.TokenNum{2})
	assert.Equal(t, []ledger.TokenNum{3, 1}, f.list(t))

	// head, with a new association in the same commit
	f.update(t, []ledger.TokenNum{7}, []ledger.TokenNum{3})
	assert.Equal(t, []ledger.TokenNum{7, 1}, f.list(t))
	assert.Equal(t, int64(2), f.account().NumAssociations)

	f.update(t, nil, []ledger.TokenNum{1, 7})
	assert.Empty(t, f.list(t))
	assert.Equal(t, ledger.TokenNum(0), f.account().HeadTokenNum)
	assert.Zero(t, f.account().NumAssociations)
	assert.Zero(t, f.rels.Size())
}

func TestBrokenHeadIsInvariantViolation(t *testing.T) {
	f := newRelFixture()
	f.update(t, []ledger.TokenNum{1, 2}, nil)

	// corrupt the head pointer
	a, _ := f.accounts.GetForModify(f.owner)
	a.HeadTokenNum = 1
	f.accounts.Flush()

	cur, _ := f.rels.Get(ledger.NewRelKey(f.owner, 2))
	cs := changeset.NewTokenRels()
	cs.IncludeRemoval(ledger.NewRelKey(f.owner, 2), cur)
	err := f.c.Commit(&commit.Batch{}, f.pipeline.Bind(cs))
	assert.True(t, ledger.IsInvariantViolation(err))
	assert.True(t, f.rels.Contains(ledger.NewRelKey(f.owner, 2)))
}

func TestRoundTripRandomSequences(t *testing.T) {
	for seed := int64(0); seed < 32; seed++ {
		f := newRelFixture()
		fz := fuzz.NewWithSeed(seed).NilChance(0).NumElements(1, 40)

		var raw []uint8
		fz.Fuzz(&raw)
		var tokens []ledger.TokenNum
		for _, r := range raw {
			token := ledger.TokenNum(r%64) + 1
			if !slices.Contains(tokens, token) {
				tokens = append(tokens, token)
			}
		}

		// associate over several commits
		for start := 0; start < len(tokens); {
			var n uint8
			fz.Fuzz(&n)
			end := min(len(tokens), start+int(n%5)+1)
			f.update(t, tokens[start:end], nil)
			start = end
		}

		var dropped, kept []ledger.TokenNum
		for _, token := range tokens {
			var drop bool
			fz.Fuzz(&drop)
			if drop {
				dropped = append(dropped, token)
			} else {
				kept = append(kept, token)
			}
		}
		f.update(t, nil, dropped)

		got := f.list(t)
		assert.ElementsMatch(t, kept, got, "seed %d", seed)
		assert.Equal(t, int64(len(kept)), f.account().NumAssociations, "seed %d", seed)
		assert.Equal(t, len(kept), f.rels.Size(), "seed %d", seed)
	}
}
