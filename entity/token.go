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

// Token is a token class.
type Token struct {
	Treasury       ledger.AccountNum
	Symbol         string
	TotalSupply    int64
	Decimals       int64
	NonFungible    bool
	LastUsedSerial int64
	Deleted        bool
}

func NewToken() *Token {
	return &Token{}
}

func (t *Token) Clone() *Token {
	cpy := *t
	return &cpy
}

// IsTreasury reports whether the account holds every unit not explicitly owned.
// The zero owner always denotes the treasury.
func (t *Token) IsTreasury(owner ledger.AccountNum) bool {
	return owner.IsZero() || owner == t.Treasury
}

func (t *Token) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		uint64(t.Treasury),
		t.Symbol,
		uint64(t.TotalSupply),
		uint64(t.Decimals),
		t.NonFungible,
		uint64(t.LastUsedSerial),
		t.Deleted,
	})
}

// TokenProperty enumerates the token properties a change set may carry.
type TokenProperty uint8

const (
	TokenTreasury TokenProperty = iota
	TokenSymbol
	TokenTotalSupply
	TokenDecimals
	TokenNonFungible
	TokenLastUsedSerial
	TokenIsDeleted
)

var tokenPropertyNames = [...]string{
	TokenTreasury:       "TREASURY",
	TokenSymbol:         "SYMBOL",
	TokenTotalSupply:    "TOTAL_SUPPLY",
	TokenDecimals:       "DECIMALS",
	TokenNonFungible:    "IS_NON_FUNGIBLE",
	TokenLastUsedSerial: "LAST_USED_SERIAL_NUMBER",
	TokenIsDeleted:      "IS_DELETED",
}

func (p TokenProperty) String() string {
	if int(p) < len(tokenPropertyNames) {
		return tokenPropertyNames[p]
	}
	return "UNKNOWN"
}

// TokenChanges is the property diff of one token.
type TokenChanges = property.Changes[TokenProperty]

// TokenTable is the accessor table of TokenProperty.
var TokenTable = property.NewTable(map[TokenProperty]property.Accessor[Token]{
	TokenTreasury: {
		Get: func(t *Token) property.Value { return property.Int(int64(t.Treasury)) },
		Set: property.IntSetter("TREASURY", property.NonNegative("TREASURY"), func(t *Token, v int64) { t.Treasury = ledger.AccountNum(v) }),
	},
	TokenSymbol: {
		Get: func(t *Token) property.Value { return property.Bytes([]byte(t.Symbol)) },
		Set: property.BytesSetter("SYMBOL", func(t *Token, v []byte) { t.Symbol = string(v) }),
	},
	TokenTotalSupply: {
		Get: func(t *Token) property.Value { return property.Int(t.TotalSupply) },
		Set: property.IntSetter("TOTAL_SUPPLY", property.NonNegative("TOTAL_SUPPLY"), func(t *Token, v int64) { t.TotalSupply = v }),
	},
	TokenDecimals: {
		Get: func(t *Token) property.Value { return property.Int(t.Decimals) },
		Set: property.IntSetter("DECIMALS", property.NonNegative("DECIMALS"), func(t *Token, v int64) { t.Decimals = v }),
	},
	TokenNonFungible: {
		Get: func(t *Token) property.Value { return property.Bool(t.NonFungible) },
		Set: property.BoolSetter("IS_NON_FUNGIBLE", func(t *Token, v bool) { t.NonFungible = v }),
	},
	TokenLastUsedSerial: {
		Get: func(t *Token) property.Value { return property.Int(t.LastUsedSerial) },
		Set: property.IntSetter("LAST_USED_SERIAL_NUMBER", property.NonNegative("LAST_USED_SERIAL_NUMBER"), func(t *Token, v int64) { t.LastUsedSerial = v }),
	},
	TokenIsDeleted: {
		Get: func(t *Token) property.Value { return property.Bool(t.Deleted) },
		Set: property.BoolSetter("IS_DELETED", func(t *Token, v bool) { t.Deleted = v }),
	},
})
