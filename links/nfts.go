// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package links

import (
	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/store"
)

// NftLinks keeps the NFTs owned by each account in one doubly linked list
// rooted at the account's HeadNft. Treasury owned NFTs are never linked.
type NftLinks struct {
	accounts store.Map[ledger.AccountNum, *entity.Account]
	nfts     store.Map[ledger.NftID, *entity.Nft]
	tokens   store.Map[ledger.TokenNum, *entity.Token]

	cs *changeset.Nfts
}

func NewNftLinks(
	accounts store.Map[ledger.AccountNum, *entity.Account],
	nfts store.Map[ledger.NftID, *entity.Nft],
	tokens store.Map[ledger.TokenNum, *entity.Token],
) *NftLinks {
	if accounts == nil || nfts == nil || tokens == nil {
		panic("links: nil backing map")
	}
	return &NftLinks{accounts: accounts, nfts: nfts, tokens: tokens}
}

func (l *NftLinks) Preview(cs *changeset.Nfts) error {
	l.cs = cs
	return nil
}

// Finish moves the NFT from the list of its previous owner to the head of the
// list of its new owner.
func (l *NftLinks) Finish(i int, nft *entity.Nft) error {
	id := l.cs.ID(i)
	token, ok := l.tokens.Get(id.Token)
	if !ok {
		return ledger.NewInvariantError("nft %v of missing token", id)
	}

	var from, to ledger.AccountNum
	before := l.cs.Entity(i)
	if before != nil {
		from = before.Owner
	}
	if !l.cs.IsRemoval(i) {
		to = nft.Owner
	}
	wasLinked := before != nil && !token.IsTreasury(from)
	linked := !l.cs.IsRemoval(i) && !token.IsTreasury(to)
	if wasLinked && linked && from == to {
		return nil
	}

	if wasLinked {
		if err := l.unlink(id, nft, from); err != nil {
			return err
		}
	}
	if linked {
		return l.link(id, nft, to)
	}
	return nil
}

func (l *NftLinks) unlink(id ledger.NftID, nft *entity.Nft, owner ledger.AccountNum) error {
	account, ok := l.accounts.GetForModify(owner)
	if !ok {
		return ledger.NewInvariantError("owner %v of nft %v missing", owner, id)
	}
	prev, next := nft.Prev, nft.Next
	if prev.IsZero() {
		if account.HeadNft != id {
			return ledger.NewInvariantError("nft %v has no predecessor but head of %v is %v", id, owner, account.HeadNft)
		}
		account.HeadNft = next
	} else {
		before, ok := l.nfts.GetForModify(prev)
		if !ok {
			return ledger.NewInvariantError("predecessor %v of nft %v missing", prev, id)
		}
		before.Next = next
	}
	if !next.IsZero() {
		after, ok := l.nfts.GetForModify(next)
		if !ok {
			return ledger.NewInvariantError("successor %v of nft %v missing", next, id)
		}
		after.Prev = prev
	}
	nft.Prev, nft.Next = ledger.MissingNftID, ledger.MissingNftID
	account.NftsOwned--
	return nil
}

func (l *NftLinks) link(id ledger.NftID, nft *entity.Nft, owner ledger.AccountNum) error {
	account, ok := l.accounts.GetForModify(owner)
	if !ok {
		return ledger.NewInvariantError("new owner %v of nft %v missing", owner, id)
	}
	head := account.HeadNft
	if !head.IsZero() {
		h, ok := l.nfts.GetForModify(head)
		if !ok {
			return ledger.NewInvariantError("head %v of %v missing", head, owner)
		}
		h.Prev = id
	}
	nft.Prev, nft.Next = ledger.MissingNftID, head
	account.HeadNft = id
	account.NftsOwned++
	return nil
}

func (l *NftLinks) PostCommit() error { return nil }

// Nfts walks the NFT list of account from its head.
// It fails on dangling or inconsistent pointers and on cycles.
func Nfts(
	accounts store.Map[ledger.AccountNum, *entity.Account],
	nfts store.Map[ledger.NftID, *entity.Nft],
	num ledger.AccountNum,
) ([]ledger.NftID, error) {
	account, ok := accounts.Get(num)
	if !ok {
		return nil, ledger.NewInvariantError("account %v missing", num)
	}
	var (
		out  []ledger.NftID
		prev ledger.NftID
		seen = make(map[ledger.NftID]bool)
	)
	for id := account.HeadNft; !id.IsZero(); {
		if seen[id] {
			return nil, ledger.NewInvariantError("cycle at nft %v", id)
		}
		seen[id] = true
		nft, ok := nfts.Get(id)
		if !ok {
			return nil, ledger.NewInvariantError("dangling pointer to nft %v", id)
		}
		if nft.Prev != prev {
			return nil, ledger.NewInvariantError("nft %v points back to %v, expected %v", id, nft.Prev, prev)
		}
		if nft.Owner != num {
			return nil, ledger.NewInvariantError("nft %v linked under %v but owned by %v", id, num, nft.Owner)
		}
		out = append(out, id)
		prev, id = id, nft.Next
	}
	return out, nil
}
