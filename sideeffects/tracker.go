// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sideeffects accumulates the externally observable effects of a commit.
package sideeffects

import (
	"maps"
	"slices"

	"github.com/vechain/ledger/ledger"
)

// AccountAmount is a signed tinybar amount for one account.
type AccountAmount struct {
	Account ledger.AccountNum `yaml:"account"`
	Amount  int64             `yaml:"amount"`
}

// Association is a token relationship created by the commit.
type Association struct {
	Token     ledger.TokenNum   `yaml:"token"`
	Account   ledger.AccountNum `yaml:"account"`
	Automatic bool              `yaml:"automatic,omitempty"`
}

// Tracker accumulates side effects of one commit. It is not safe for concurrent use.
type Tracker struct {
	hbarChanges   map[ledger.AccountNum]int64
	netHbarChange int64
	associations  []Association
	rewards       map[ledger.AccountNum]int64
	totalRewards  int64
	tokensCreated []ledger.TokenNum
}

func New() *Tracker {
	return &Tracker{
		hbarChanges: make(map[ledger.AccountNum]int64),
		rewards:     make(map[ledger.AccountNum]int64),
	}
}

// TrackHbarChange records a balance adjustment.
func (t *Tracker) TrackHbarChange(account ledger.AccountNum, amount int64) {
	t.hbarChanges[account] += amount
	t.netHbarChange += amount
}

// NetHbarChange is the sum of every tracked balance adjustment.
func (t *Tracker) NetHbarChange() int64 {
	return t.netHbarChange
}

// HbarChanges returns the non-zero adjustments ordered by account.
func (t *Tracker) HbarChanges() []AccountAmount {
	return sorted(t.hbarChanges)
}

func (t *Tracker) TrackAssociation(token ledger.TokenNum, account ledger.AccountNum, automatic bool) {
	t.associations = append(t.associations, Association{Token: token, Account: account, Automatic: automatic})
}

// Associations returns the tracked associations in tracking order.
func (t *Tracker) Associations() []Association {
	return slices.Clone(t.associations)
}

// TrackRewardPayment records a staking reward paid to account.
func (t *Tracker) TrackRewardPayment(account ledger.AccountNum, amount int64) {
	t.rewards[account] += amount
	t.totalRewards += amount
}

// RewardsPaid returns the reward payments ordered by account.
func (t *Tracker) RewardsPaid() []AccountAmount {
	return sorted(t.rewards)
}

func (t *Tracker) TotalRewardsPaid() int64 {
	return t.totalRewards
}

func (t *Tracker) HasTrackedRewards() bool {
	return len(t.rewards) > 0
}

func (t *Tracker) TrackTokenCreation(token ledger.TokenNum) {
	t.tokensCreated = append(t.tokensCreated, token)
}

// TokensCreated returns the created tokens in tracking order.
func (t *Tracker) TokensCreated() []ledger.TokenNum {
	return slices.Clone(t.tokensCreated)
}

// Reset discards everything tracked so far.
func (t *Tracker) Reset() {
	clear(t.hbarChanges)
	clear(t.rewards)
	t.netHbarChange = 0
	t.totalRewards = 0
	t.associations = t.associations[:0]
	t.tokensCreated = t.tokensCreated[:0]
}

func sorted(m map[ledger.AccountNum]int64) []AccountAmount {
	out := make([]AccountAmount, 0, len(m))
	for _, account := range slices.Sorted(maps.Keys(m)) {
		if amount := m[account]; amount != 0 {
			out = append(out, AccountAmount{Account: account, Amount: amount})
		}
	}
	return out
}
