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

// Account is the account record, restricted to what the commit pipeline touches.
type Account struct {
	Balance       int64
	StakedID      ledger.StakedID
	DeclineReward bool
	// StakedToMe is the sum of the balances of accounts staking to this one.
	StakedToMe int64
	// StakePeriodStart is the last period already settled for rewards, -1 if none.
	StakePeriodStart                 int64
	StakeAtStartOfLastRewardedPeriod int64
	RewardedSinceLastMetadataChange  bool

	HeadTokenNum    ledger.TokenNum
	NumAssociations int64
	HeadNft         ledger.NftID
	NftsOwned       int64

	MaxAutoAssociations  int64
	UsedAutoAssociations int64

	Deleted bool
}

// NewAccount returns an account with no staking history.
func NewAccount() *Account {
	return &Account{
		StakePeriodStart:                 -1,
		StakeAtStartOfLastRewardedPeriod: -1,
	}
}

func (a *Account) Clone() *Account {
	cpy := *a
	return &cpy
}

// TotalStake is the balance plus everything staked to the account.
func (a *Account) TotalStake() int64 {
	return a.Balance + a.StakedToMe
}

func (a *Account) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		uint64(a.Balance),
		uint64(a.StakedID),
		a.DeclineReward,
		uint64(a.StakedToMe),
		uint64(a.StakePeriodStart),
		uint64(a.StakeAtStartOfLastRewardedPeriod),
		a.RewardedSinceLastMetadataChange,
		uint64(a.HeadTokenNum),
		uint64(a.NumAssociations),
		uint64(a.HeadNft.Token),
		uint64(a.HeadNft.Serial),
		uint64(a.NftsOwned),
		uint64(a.MaxAutoAssociations),
		uint64(a.UsedAutoAssociations),
		a.Deleted,
	})
}

// AccountProperty enumerates the account properties a change set may carry.
type AccountProperty uint8

const (
	AccountBalance AccountProperty = iota
	AccountStakedID
	AccountDeclineReward
	AccountStakedToMe
	AccountStakePeriodStart
	AccountStakeAtStartOfLastRewardedPeriod
	AccountRewardedSinceLastMetadataChange
	AccountHeadTokenNum
	AccountNumAssociations
	AccountHeadNft
	AccountNftsOwned
	AccountMaxAutoAssociations
	AccountUsedAutoAssociations
	AccountIsDeleted
)

var accountPropertyNames = [...]string{
	AccountBalance:                          "BALANCE",
	AccountStakedID:                         "STAKED_ID",
	AccountDeclineReward:                    "DECLINE_REWARD",
	AccountStakedToMe:                       "STAKED_TO_ME",
	AccountStakePeriodStart:                 "STAKE_PERIOD_START",
	AccountStakeAtStartOfLastRewardedPeriod: "STAKE_AT_START_OF_LAST_REWARDED_PERIOD",
	AccountRewardedSinceLastMetadataChange:  "REWARDED_SINCE_LAST_METADATA_CHANGE",
	AccountHeadTokenNum:                     "HEAD_TOKEN_NUM",
	AccountNumAssociations:                  "NUM_ASSOCIATIONS",
	AccountHeadNft:                          "HEAD_NFT",
	AccountNftsOwned:                        "NFTS_OWNED",
	AccountMaxAutoAssociations:              "MAX_AUTO_ASSOCIATIONS",
	AccountUsedAutoAssociations:             "USED_AUTO_ASSOCIATIONS",
	AccountIsDeleted:                        "IS_DELETED",
}

func (p AccountProperty) String() string {
	if int(p) < len(accountPropertyNames) {
		return accountPropertyNames[p]
	}
	return "UNKNOWN"
}

// AccountChanges is the property diff of one account.
type AccountChanges = property.Changes[AccountProperty]

// AccountTable is the accessor table of AccountProperty.
var AccountTable = property.NewTable(map[AccountProperty]property.Accessor[Account]{
	AccountBalance: {
		Get: func(a *Account) property.Value { return property.Int(a.Balance) },
		Set: property.IntSetter("BALANCE", property.NonNegative("BALANCE"), func(a *Account, v int64) { a.Balance = v }),
	},
	AccountStakedID: {
		Get: func(a *Account) property.Value { return property.Int(int64(a.StakedID)) },
		Set: property.IntSetter("STAKED_ID", nil, func(a *Account, v int64) { a.StakedID = ledger.StakedID(v) }),
	},
	AccountDeclineReward: {
		Get: func(a *Account) property.Value { return property.Bool(a.DeclineReward) },
		Set: property.BoolSetter("DECLINE_REWARD", func(a *Account, v bool) { a.DeclineReward = v }),
	},
	AccountStakedToMe: {
		Get: func(a *Account) property.Value { return property.Int(a.StakedToMe) },
		Set: property.IntSetter("STAKED_TO_ME", property.NonNegative("STAKED_TO_ME"), func(a *Account, v int64) { a.StakedToMe = v }),
	},
	AccountStakePeriodStart: {
		Get: func(a *Account) property.Value { return property.Int(a.StakePeriodStart) },
		Set: property.IntSetter("STAKE_PERIOD_START", atLeastMinusOne("STAKE_PERIOD_START"), func(a *Account, v int64) { a.StakePeriodStart = v }),
	},
	AccountStakeAtStartOfLastRewardedPeriod: {
		Get: func(a *Account) property.Value { return property.Int(a.StakeAtStartOfLastRewardedPeriod) },
		Set: property.IntSetter("STAKE_AT_START_OF_LAST_REWARDED_PERIOD", atLeastMinusOne("STAKE_AT_START_OF_LAST_REWARDED_PERIOD"), func(a *Account, v int64) {
			a.StakeAtStartOfLastRewardedPeriod = v
		}),
	},
	AccountRewardedSinceLastMetadataChange: {
		Get: func(a *Account) property.Value { return property.Bool(a.RewardedSinceLastMetadataChange) },
		Set: property.BoolSetter("REWARDED_SINCE_LAST_METADATA_CHANGE", func(a *Account, v bool) { a.RewardedSinceLastMetadataChange = v }),
	},
	AccountHeadTokenNum: {
		Get: func(a *Account) property.Value { return property.Int(int64(a.HeadTokenNum)) },
		Set: property.IntSetter("HEAD_TOKEN_NUM", property.NonNegative("HEAD_TOKEN_NUM"), func(a *Account, v int64) { a.HeadTokenNum = ledger.TokenNum(v) }),
	},
	AccountNumAssociations: {
		Get: func(a *Account) property.Value { return property.Int(a.NumAssociations) },
		Set: property.IntSetter("NUM_ASSOCIATIONS", property.NonNegative("NUM_ASSOCIATIONS"), func(a *Account, v int64) { a.NumAssociations = v }),
	},
	AccountHeadNft: {
		Get: func(a *Account) property.Value { return NftIDValue(a.HeadNft) },
		Set: func(a *Account, v property.Value) error {
			id, err := nftIDFromValue("HEAD_NFT", v)
			if err != nil {
				return err
			}
			a.HeadNft = id
			return nil
		},
	},
	AccountNftsOwned: {
		Get: func(a *Account) property.Value { return property.Int(a.NftsOwned) },
		Set: property.IntSetter("NFTS_OWNED", property.NonNegative("NFTS_OWNED"), func(a *Account, v int64) { a.NftsOwned = v }),
	},
	AccountMaxAutoAssociations: {
		Get: func(a *Account) property.Value { return property.Int(a.MaxAutoAssociations) },
		Set: property.IntSetter("MAX_AUTO_ASSOCIATIONS", property.NonNegative("MAX_AUTO_ASSOCIATIONS"), func(a *Account, v int64) { a.MaxAutoAssociations = v }),
	},
	AccountUsedAutoAssociations: {
		Get: func(a *Account) property.Value { return property.Int(a.UsedAutoAssociations) },
		Set: property.IntSetter("USED_AUTO_ASSOCIATIONS", property.NonNegative("USED_AUTO_ASSOCIATIONS"), func(a *Account, v int64) { a.UsedAutoAssociations = v }),
	},
	AccountIsDeleted: {
		Get: func(a *Account) property.Value { return property.Bool(a.Deleted) },
		Set: property.BoolSetter("IS_DELETED", func(a *Account, v bool) { a.Deleted = v }),
	},
})

func atLeastMinusOne(name string) func(int64) error {
	return func(n int64) error {
		if n < -1 {
			return ledger.NewValidationError(name, "value %d below -1", n)
		}
		return nil
	}
}
