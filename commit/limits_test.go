// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/property"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/store"
)

func TestAutoAssociationsChargeAccount(t *testing.T) {
	owner := account(0)
	owner.MaxAutoAssociations = 2
	owner.UsedAutoAssociations = 1
	existing := entity.NewTokenRel()
	existing.AutomaticAssociation = true

	accounts := store.NewMemMap(map[ledger.AccountNum]*entity.Account{alice: owner})
	rels := store.NewMemMap(map[ledger.RelKey]*entity.TokenRel{ledger.NewRelKey(alice, 5): existing})
	tracker := sideeffects.New()
	p := NewTokenRelsPipeline(rels, NewAutoAssociations(accounts, tracker))
	c := NewCommitter(store.NewGroup(accounts, rels), tracker)

	auto := entity.TokenRelChanges{entity.RelAutomaticAssociation: property.Bool(true)}
	cs := changeset.NewTokenRels()
	cs.Include(ledger.NewRelKey(alice, 7), nil, auto)
	cs.Include(ledger.NewRelKey(alice, 8), nil, entity.TokenRelChanges{})
	require.NoError(t, c.Commit(&Batch{}, p.Bind(cs)))

	got, _ := accounts.Get(alice)
	assert.Equal(t, int64(2), got.UsedAutoAssociations)
	assert.Equal(t, []sideeffects.Association{
		{Token: 7, Account: alice, Automatic: true},
		{Token: 8, Account: alice},
	}, tracker.Associations())

	// the limit is reached, a further automatic association is rejected
	cs = changeset.NewTokenRels()
	cs.Include(ledger.NewRelKey(alice, 9), nil, auto)
	err := c.Commit(&Batch{}, p.Bind(cs))
	assert.True(t, ledger.IsValidationError(err))
	assert.False(t, rels.Contains(ledger.NewRelKey(alice, 9)))
	assert.Empty(t, tracker.Associations())

	// dissociating an automatic association frees a slot
	cur, _ := rels.Get(ledger.NewRelKey(alice, 5))
	cs = changeset.NewTokenRels()
	cs.IncludeRemoval(ledger.NewRelKey(alice, 5), cur)
	cs.Include(ledger.NewRelKey(alice, 9), nil, auto)
	require.NoError(t, c.Commit(&Batch{}, p.Bind(cs)))
	got, _ = accounts.Get(alice)
	assert.Equal(t, int64(2), got.UsedAutoAssociations)
}

func TestTokenCreationLimits(t *testing.T) {
	tokens := store.NewMemMap(map[ledger.TokenNum]*entity.Token{1: entity.NewToken()})
	tracker := sideeffects.New()
	limits := ledger.TokensConfig{MaxNumber: 3, MaxPerCommit: 1}
	p := NewTokensPipeline(tokens, NewTokenCreations(tokens, tracker, limits))
	c := NewCommitter(store.NewGroup(tokens), tracker)

	symbol := func(s string) entity.TokenChanges {
		return entity.TokenChanges{entity.TokenSymbol: property.Bytes([]byte(s))}
	}

	cs := changeset.NewTokens()
	cs.Include(2, nil, symbol("A"))
	cs.Include(3, nil, symbol("B"))
	assert.True(t, ledger.IsValidationError(c.Commit(&Batch{}, p.Bind(cs))))

	cs = changeset.NewTokens()
	cs.Include(2, nil, symbol("A"))
	require.NoError(t, c.Commit(&Batch{}, p.Bind(cs)))
	assert.Equal(t, []ledger.TokenNum{2}, tracker.TokensCreated())
	created, _ := tokens.Get(2)
	assert.Equal(t, "A", created.Symbol)

	cs = changeset.NewTokens()
	cs.Include(3, nil, symbol("B"))
	require.NoError(t, c.Commit(&Batch{}, p.Bind(cs)))

	cs = changeset.NewTokens()
	cs.Include(4, nil, symbol("C"))
	assert.True(t, ledger.IsValidationError(c.Commit(&Batch{}, p.Bind(cs))))
	assert.Equal(t, 3, tokens.Size())
}

func TestTokenCreationsReportedOnceCommitted(t *testing.T) {
	tokens := store.NewMemMap(map[ledger.TokenNum]*entity.Token{})
	tracker := sideeffects.New()
	tc := NewTokenCreations(tokens, tracker, ledger.TokensConfig{MaxNumber: 10, MaxPerCommit: 10})

	cs := changeset.NewTokens()
	cs.Include(2, nil, entity.TokenChanges{})
	require.NoError(t, tc.Preview(cs))
	assert.Empty(t, tracker.TokensCreated())

	tc.Abort()
	require.NoError(t, tc.FinalizeSideEffects())
	assert.Empty(t, tracker.TokensCreated())

	require.NoError(t, tc.Preview(cs))
	require.NoError(t, tc.FinalizeSideEffects())
	assert.Equal(t, []ledger.TokenNum{2}, tracker.TokensCreated())
}

func TestAutomaticFlagOfWrongKindRejected(t *testing.T) {
	accounts := store.NewMemMap(map[ledger.AccountNum]*entity.Account{alice: account(0)})
	tracker := sideeffects.New()
	aa := NewAutoAssociations(accounts, tracker)

	cs := changeset.NewTokenRels()
	cs.Include(ledger.NewRelKey(alice, 7), nil, entity.TokenRelChanges{entity.RelAutomaticAssociation: property.Int(1)})
	err := aa.Preview(cs)
	assert.True(t, ledger.IsValidationError(err))
	assert.Empty(t, tracker.Associations())
}
