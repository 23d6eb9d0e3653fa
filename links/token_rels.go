// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package links

import (
	"maps"
	"slices"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/log"
	"github.com/vechain/ledger/store"
)

var logger = log.WithContext("pkg", "links")

// TokenRelLinks keeps each account's token relationships in one doubly linked
// list rooted at the account's HeadTokenNum.
//
// Dissociated relationships are unlinked and new ones are pushed at the head,
// visiting accounts and tokens in ascending order.
type TokenRelLinks struct {
	accounts store.Map[ledger.AccountNum, *entity.Account]
	rels     store.Map[ledger.RelKey, *entity.TokenRel]

	cs       *changeset.TokenRels
	plans    map[ledger.AccountNum]*relPlan
	pointers map[ledger.RelKey]*relPointers
}

type relPlan struct {
	added   []ledger.TokenNum
	removed []ledger.TokenNum
}

type relPointers struct {
	prev, next ledger.TokenNum
}

func NewTokenRelLinks(accounts store.Map[ledger.AccountNum, *entity.Account], rels store.Map[ledger.RelKey, *entity.TokenRel]) *TokenRelLinks {
	if accounts == nil || rels == nil {
		panic("links: nil backing map")
	}
	return &TokenRelLinks{accounts: accounts, rels: rels}
}

func (l *TokenRelLinks) Preview(cs *changeset.TokenRels) error {
	l.cs = cs
	l.plans = make(map[ledger.AccountNum]*relPlan)
	l.pointers = make(map[ledger.RelKey]*relPointers)

	for i := 0; i < cs.Size(); i++ {
		key := cs.ID(i)
		switch {
		case cs.IsCreation(i):
			l.plan(key.Account).added = append(l.plan(key.Account).added, key.Token)
		case cs.IsRemoval(i):
			l.plan(key.Account).removed = append(l.plan(key.Account).removed, key.Token)
		}
	}
	for _, p := range l.plans {
		slices.Sort(p.added)
		slices.Sort(p.removed)
	}
	return nil
}

func (l *TokenRelLinks) plan(account ledger.AccountNum) *relPlan {
	p, ok := l.plans[account]
	if !ok {
		p = &relPlan{}
		l.plans[account] = p
	}
	return p
}

// BeforeMaterialize relinks every touched account's list.
// Pointers of new relationships are held until Finish.
func (l *TokenRelLinks) BeforeMaterialize() error {
	for _, num := range slices.Sorted(maps.Keys(l.plans)) {
		if err := l.relink(num, l.plans[num]); err != nil {
			return err
		}
	}
	return nil
}

func (l *TokenRelLinks) relink(num ledger.AccountNum, p *relPlan) error {
	account, ok := l.accounts.GetForModify(num)
	if !ok {
		return ledger.NewInvariantError("token relationships of missing account %v", num)
	}
	head := account.HeadTokenNum

	for _, token := range p.removed {
		rel, ok := l.rels.GetForModify(ledger.NewRelKey(num, token))
		if !ok {
			return ledger.NewInvariantError("dissociated relationship %v missing", ledger.NewRelKey(num, token))
		}
		prev, next := rel.Prev, rel.Next
		if prev == 0 {
			if head != token {
				return ledger.NewInvariantError("relationship %v has no predecessor but head is %v", ledger.NewRelKey(num, token), head)
			}
			head = next
		} else {
			before, ok := l.rels.GetForModify(ledger.NewRelKey(num, prev))
			if !ok {
				return ledger.NewInvariantError("predecessor %v missing", ledger.NewRelKey(num, prev))
			}
			before.Next = next
		}
		if next != 0 {
			after, ok := l.rels.GetForModify(ledger.NewRelKey(num, next))
			if !ok {
				return ledger.NewInvariantError("successor %v missing", ledger.NewRelKey(num, next))
			}
			after.Prev = prev
		}
		rel.Prev, rel.Next = 0, 0
	}

	for _, token := range p.added {
		key := ledger.NewRelKey(num, token)
		l.pointers[key] = &relPointers{next: head}
		if head != 0 {
			headKey := ledger.NewRelKey(num, head)
			if ptr, ok := l.pointers[headKey]; ok {
				ptr.prev = token
			} else if h, ok := l.rels.GetForModify(headKey); ok {
				h.Prev = token
			} else {
				return ledger.NewInvariantError("list head %v missing", headKey)
			}
		}
		head = token
	}

	associations := account.NumAssociations + int64(len(p.added)) - int64(len(p.removed))
	if associations < 0 {
		return ledger.NewInvariantError("account %v would have %d associations", num, associations)
	}
	account.HeadTokenNum = head
	account.NumAssociations = associations
	logger.Trace("relinked token relationships", "account", num, "added", len(p.added), "removed", len(p.removed), "head", head)
	return nil
}

// Finish sets the pointers of new relationships.
func (l *TokenRelLinks) Finish(i int, rel *entity.TokenRel) error {
	if !l.cs.IsCreation(i) {
		return nil
	}
	ptr, ok := l.pointers[l.cs.ID(i)]
	if !ok {
		return ledger.NewInvariantError("no links planned for %v", l.cs.ID(i))
	}
	rel.Prev, rel.Next = ptr.prev, ptr.next
	return nil
}

func (l *TokenRelLinks) PostCommit() error { return nil }

// TokenRels walks the token relationship list of account from its head.
// It fails on dangling or inconsistent pointers and on cycles.
func TokenRels(
	accounts store.Map[ledger.AccountNum, *entity.Account],
	rels store.Map[ledger.RelKey, *entity.TokenRel],
	num ledger.AccountNum,
) ([]ledger.TokenNum, error) {
	account, ok := accounts.Get(num)
	if !ok {
		return nil, ledger.NewInvariantError("account %v missing", num)
	}
	var (
		out  []ledger.TokenNum
		prev ledger.TokenNum
		seen = make(map[ledger.TokenNum]bool)
	)
	for token := account.HeadTokenNum; token != 0; {
		if seen[token] {
			return nil, ledger.NewInvariantError("cycle at %v", ledger.NewRelKey(num, token))
		}
		seen[token] = true
		rel, ok := rels.Get(ledger.NewRelKey(num, token))
		if !ok {
			return nil, ledger.NewInvariantError("dangling pointer to %v", ledger.NewRelKey(num, token))
		}
		if rel.Prev != prev {
			return nil, ledger.NewInvariantError("%v points back to %v, expected %v", ledger.NewRelKey(num, token), rel.Prev, prev)
		}
		out = append(out, token)
		prev, token = token, rel.Next
	}
	return out, nil
}
