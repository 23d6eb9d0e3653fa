// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commit

import (
	"maps"
	"slices"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/store"
)

// AutoAssociations tracks new token associations and keeps each account's
// count of used automatic associations within its limit.
type AutoAssociations struct {
	accounts store.Map[ledger.AccountNum, *entity.Account]
	tracker  *sideeffects.Tracker

	usage map[ledger.AccountNum]int64
}

func NewAutoAssociations(accounts store.Map[ledger.AccountNum, *entity.Account], tracker *sideeffects.Tracker) *AutoAssociations {
	if accounts == nil || tracker == nil {
		panic("commit: nil collaborator for auto associations")
	}
	return &AutoAssociations{accounts: accounts, tracker: tracker}
}

func (a *AutoAssociations) Preview(cs *changeset.TokenRels) error {
	a.usage = make(map[ledger.AccountNum]int64)
	for i := 0; i < cs.Size(); i++ {
		key := cs.ID(i)
		switch {
		case cs.IsCreation(i):
			auto := false
			if v, ok := cs.Changes(i).Get(entity.RelAutomaticAssociation); ok {
				if auto, ok = v.Bool(); !ok {
					return ledger.NewValidationError(entity.RelAutomaticAssociation.String(), "expected bool, got %v", v.Kind())
				}
			}
			a.tracker.TrackAssociation(key.Token, key.Account, auto)
			if auto {
				a.usage[key.Account]++
			}
		case cs.IsRemoval(i):
			if cs.Entity(i).AutomaticAssociation {
				a.usage[key.Account]--
			}
		}
	}
	return nil
}

// BeforeMaterialize charges the automatic associations to their accounts.
func (a *AutoAssociations) BeforeMaterialize() error {
	for _, num := range slices.Sorted(maps.Keys(a.usage)) {
		delta := a.usage[num]
		if delta == 0 {
			continue
		}
		account, ok := a.accounts.GetForModify(num)
		if !ok {
			return ledger.NewInvariantError("association of missing account %v", num)
		}
		used := account.UsedAutoAssociations + delta
		if used < 0 {
			return ledger.NewInvariantError("account %v released more automatic associations than it used", num)
		}
		if delta > 0 && used > account.MaxAutoAssociations {
			return ledger.NewValidationError(entity.AccountUsedAutoAssociations.String(),
				"account %v has no automatic associations left (%d of %d used)", num, account.UsedAutoAssociations, account.MaxAutoAssociations)
		}
		account.UsedAutoAssociations = used
	}
	return nil
}

func (a *AutoAssociations) Finish(int, *entity.TokenRel) error { return nil }

func (a *AutoAssociations) PostCommit() error { return nil }
