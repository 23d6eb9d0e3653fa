// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package entity

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/property"
)

// TokenRel is the relationship between an account and a token.
// The relationships of one account form a list rooted at the account's HeadTokenNum,
// Prev and Next hold the token numbers of the neighbours.
type TokenRel struct {
	Balance              int64
	Frozen               bool
	KycGranted           bool
	AutomaticAssociation bool

	Prev ledger.TokenNum
	Next ledger.TokenNum
}

func NewTokenRel() *TokenRel {
	return &TokenRel{}
}

func (r *TokenRel) Clone() *TokenRel {
	cpy := *r
	return &cpy
}

func (r *TokenRel) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		uint64(r.Balance),
		r.Frozen,
		r.KycGranted,
		r.AutomaticAssociation,
		uint64(r.Prev),
		uint64(r.Next),
	})
}

// TokenRelProperty enumerates the token relationship properties a change set may carry.
type TokenRelProperty uint8

const (
	RelBalance TokenRelProperty = iota
	RelFrozen
	RelKycGranted
	RelAutomaticAssociation
)

func (p TokenRelProperty) String() string {
	switch p {
	case RelBalance:
		return "TOKEN_BALANCE"
	case RelFrozen:
		return "IS_FROZEN"
	case RelKycGranted:
		return "IS_KYC_GRANTED"
	case RelAutomaticAssociation:
		return "IS_AUTOMATIC_ASSOCIATION"
	}
	return "UNKNOWN"
}

// TokenRelChanges is the property diff of one token relationship.
type TokenRelChanges = property.Changes[TokenRelProperty]

// TokenRelTable is the accessor table of TokenRelProperty.
var TokenRelTable = property.NewTable(map[TokenRelProperty]property.Accessor[TokenRel]{
	RelBalance: {
		Get: func(r *TokenRel) property.Value { return property.Int(r.Balance) },
		Set: property.IntSetter("TOKEN_BALANCE", property.NonNegative("TOKEN_BALANCE"), func(r *TokenRel, v int64) { r.Balance = v }),
	},
	RelFrozen: {
		Get: func(r *TokenRel) property.Value { return property.Bool(r.Frozen) },
		Set: property.BoolSetter("IS_FROZEN", func(r *TokenRel, v bool) { r.Frozen = v }),
	},
	RelKycGranted: {
		Get: func(r *TokenRel) property.Value { return property.Bool(r.KycGranted) },
		Set: property.BoolSetter("IS_KYC_GRANTED", func(r *TokenRel, v bool) { r.KycGranted = v }),
	},
	RelAutomaticAssociation: {
		Get: func(r *TokenRel) property.Value { return property.Bool(r.AutomaticAssociation) },
		Set: property.BoolSetter("IS_AUTOMATIC_ASSOCIATION", func(r *TokenRel, v bool) { r.AutomaticAssociation = v }),
	},
})
