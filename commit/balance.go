// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commit

import (
	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/sideeffects"
)

// BalanceZeroSum tracks every account balance adjustment and rejects a commit
// whose adjustments do not sum to zero.
type BalanceZeroSum struct {
	tracker *sideeffects.Tracker
}

func NewBalanceZeroSum(tracker *sideeffects.Tracker) *BalanceZeroSum {
	if tracker == nil {
		panic("commit: nil tracker")
	}
	return &BalanceZeroSum{tracker: tracker}
}

func (b *BalanceZeroSum) Preview(cs *changeset.Accounts) error {
	for i := 0; i < cs.Size(); i++ {
		cur, next, err := Balances(cs, i)
		if err != nil {
			return err
		}
		if delta := next - cur; delta != 0 {
			b.tracker.TrackHbarChange(cs.ID(i), delta)
		}
	}
	return b.check()
}

func (b *BalanceZeroSum) Finish(int, *entity.Account) error { return nil }

// PostCommit checks again, covering adjustments tracked by later interceptors.
func (b *BalanceZeroSum) PostCommit() error {
	return b.check()
}

func (b *BalanceZeroSum) check() error {
	if net := b.tracker.NetHbarChange(); net != 0 {
		return ledger.NewInvariantError("balance adjustments sum to %d", net)
	}
	return nil
}

// Balances returns the balance of entry i before and after the commit.
// Created accounts start from zero and removed accounts end at zero.
func Balances(cs *changeset.Accounts, i int) (cur, next int64, err error) {
	if e := cs.Entity(i); e != nil {
		cur = e.Balance
	}
	if cs.IsRemoval(i) {
		return cur, 0, nil
	}
	next = cur
	if v, ok := cs.Changes(i).Get(entity.AccountBalance); ok {
		n, isInt := v.Int()
		if !isInt {
			return 0, 0, ledger.NewValidationError(entity.AccountBalance.String(), "expected int, got %s", v.Kind())
		}
		next = n
	}
	return cur, next, nil
}
