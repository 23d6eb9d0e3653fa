// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commit

import (
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/store"
)

type (
	AccountsInterceptor  = Interceptor[ledger.AccountNum, entity.Account, entity.AccountProperty]
	TokenRelsInterceptor = Interceptor[ledger.RelKey, entity.TokenRel, entity.TokenRelProperty]
	NftsInterceptor      = Interceptor[ledger.NftID, entity.Nft, entity.NftProperty]
	TokensInterceptor    = Interceptor[ledger.TokenNum, entity.Token, entity.TokenProperty]

	AccountsPipeline  = Pipeline[ledger.AccountNum, entity.Account, entity.AccountProperty]
	TokenRelsPipeline = Pipeline[ledger.RelKey, entity.TokenRel, entity.TokenRelProperty]
	NftsPipeline      = Pipeline[ledger.NftID, entity.Nft, entity.NftProperty]
	TokensPipeline    = Pipeline[ledger.TokenNum, entity.Token, entity.TokenProperty]
)

func NewAccountsPipeline(m store.Map[ledger.AccountNum, *entity.Account], interceptors ...AccountsInterceptor) *AccountsPipeline {
	return NewPipeline("accounts", m, entity.AccountTable, entity.NewAccount, interceptors...)
}

func NewTokenRelsPipeline(m store.Map[ledger.RelKey, *entity.TokenRel], interceptors ...TokenRelsInterceptor) *TokenRelsPipeline {
	return NewPipeline("tokenRels", m, entity.TokenRelTable, entity.NewTokenRel, interceptors...)
}

func NewNftsPipeline(m store.Map[ledger.NftID, *entity.Nft], interceptors ...NftsInterceptor) *NftsPipeline {
	return NewPipeline("nfts", m, entity.NftTable, entity.NewNft, interceptors...)
}

func NewTokensPipeline(m store.Map[ledger.TokenNum, *entity.Token], interceptors ...TokensInterceptor) *TokensPipeline {
	return NewPipeline("tokens", m, entity.TokenTable, entity.NewToken, interceptors...)
}
