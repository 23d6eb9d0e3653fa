// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sideeffects

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/ledger/ledger"
)

func TestHbarChanges(t *testing.T) {
	tr := New()
	tr.TrackHbarChange(1002, 30)
	tr.TrackHbarChange(1001, -30)
	tr.TrackHbarChange(1003, 5)
	tr.TrackHbarChange(1003, -5)

	assert.Equal(t, int64(0), tr.NetHbarChange())
	assert.Equal(t, []AccountAmount{{1001, -30}, {1002, 30}}, tr.HbarChanges())
}

func TestRewardsAndAssociations(t *testing.T) {
	tr := New()
	assert.False(t, tr.HasTrackedRewards())

	tr.TrackRewardPayment(1005, 7)
	tr.TrackRewardPayment(1004, 3)
	tr.TrackAssociation(20, 1004, true)
	tr.TrackAssociation(10, 1004, false)
	tr.TrackTokenCreation(30)

	assert.True(t, tr.HasTrackedRewards())
	assert.Equal(t, int64(10), tr.TotalRewardsPaid())
	assert.Equal(t, []AccountAmount{{1004, 3}, {1005, 7}}, tr.RewardsPaid())
	assert.Equal(t, []Association{{Token: 20, Account: 1004, Automatic: true}, {Token: 10, Account: 1004}}, tr.Associations())
	assert.Equal(t, []ledger.TokenNum{30}, tr.TokensCreated())

	tr.Reset()
	assert.Empty(t, tr.HbarChanges())
	assert.Empty(t, tr.RewardsPaid())
	assert.Empty(t, tr.Associations())
	assert.Empty(t, tr.TokensCreated())
	assert.Zero(t, tr.TotalRewardsPaid())
	assert.False(t, tr.HasTrackedRewards())
}
