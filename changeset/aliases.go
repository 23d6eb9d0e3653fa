// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package changeset

import (
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
)

type (
	Accounts  = ChangeSet[ledger.AccountNum, entity.Account, entity.AccountProperty]
	TokenRels = ChangeSet[ledger.RelKey, entity.TokenRel, entity.TokenRelProperty]
	Nfts      = ChangeSet[ledger.NftID, entity.Nft, entity.NftProperty]
	Tokens    = ChangeSet[ledger.TokenNum, entity.Token, entity.TokenProperty]
)

func NewAccounts() *Accounts   { return New[ledger.AccountNum, entity.Account, entity.AccountProperty]() }
func NewTokenRels() *TokenRels { return New[ledger.RelKey, entity.TokenRel, entity.TokenRelProperty]() }
func NewNfts() *Nfts           { return New[ledger.NftID, entity.Nft, entity.NftProperty]() }
func NewTokens() *Tokens       { return New[ledger.TokenNum, entity.Token, entity.TokenProperty]() }
