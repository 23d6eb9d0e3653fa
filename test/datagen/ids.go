// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"github.com/vechain/ledger/ledger"
)

// RandAccountNum returns a user account number, above the reserved range.
func RandAccountNum() ledger.AccountNum {
	return ledger.AccountNum(RandInt64Between(1001, 1_000_000))
}

func RandTokenNum() ledger.TokenNum {
	return ledger.TokenNum(RandInt64Between(1001, 1_000_000))
}

func RandNftID() ledger.NftID {
	return ledger.NftID{Token: RandTokenNum(), Serial: RandInt64Between(1, 10_000)}
}

// RandTinybars returns a balance below maxHbars whole hbars. maxHbars must be positive.
func RandTinybars(maxHbars int64) int64 {
	return RandInt64Between(0, maxHbars)*ledger.HbarsToTinybars + RandInt64Between(0, ledger.HbarsToTinybars)
}
