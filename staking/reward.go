// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
)

// RewardCalculator computes the reward an account has earned since its stake period start.
type RewardCalculator struct {
	periods *PeriodManager
}

func NewRewardCalculator(periods *PeriodManager) *RewardCalculator {
	return &RewardCalculator{periods: periods}
}

// Compute returns the reward of account, staked to the node described by info,
// for every complete period before current. The account is the state before the commit.
func (c *RewardCalculator) Compute(account *entity.Account, info *entity.StakingInfo, current int64) (int64, error) {
	start := c.periods.EffectiveStart(account.StakePeriodStart, current)
	start = max(start, info.RewardStartPeriod)
	rewardFrom := current - 1 - start
	if rewardFrom <= 0 {
		return 0, nil
	}
	h := info.RewardSumHistory
	if rewardFrom >= int64(len(h)) {
		return 0, ledger.NewInvariantError("reward from %d periods back exceeds history of %d", rewardFrom, len(h))
	}

	totalHbars := ledger.WholeHbars(account.TotalStake())
	if account.StakeAtStartOfLastRewardedPeriod == -1 {
		return perHbarTimes(h[0]-h[rewardFrom], totalHbars)
	}
	// the oldest period is paid on the stake remembered at its start
	first, err := perHbarTimes(h[rewardFrom-1]-h[rewardFrom], ledger.WholeHbars(account.StakeAtStartOfLastRewardedPeriod))
	if err != nil {
		return 0, err
	}
	rest, err := perHbarTimes(h[0]-h[rewardFrom-1], totalHbars)
	if err != nil {
		return 0, err
	}
	return checkedAdd(first, rest)
}

func perHbarTimes(perHbar, hbars int64) (int64, error) {
	if perHbar < 0 || hbars < 0 {
		return 0, ledger.NewInvariantError("negative reward operand %d x %d", perHbar, hbars)
	}
	product, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(uint64(perHbar)), uint256.NewInt(uint64(hbars)))
	if overflow || !fitsInt64(product) {
		return 0, ledger.NewInvariantError("reward %d x %d overflows", perHbar, hbars)
	}
	return int64(product.Uint64()), nil
}

// mulDiv evaluates a * b / c / d left to right with truncating divisions.
// A zero divisor yields zero.
func mulDiv(a, b, c, d int64) (int64, error) {
	if c == 0 || d == 0 {
		return 0, nil
	}
	if a < 0 || b < 0 || c < 0 || d < 0 {
		return 0, ledger.NewInvariantError("negative operand in %d * %d / %d / %d", a, b, c, d)
	}
	x := new(uint256.Int).Mul(uint256.NewInt(uint64(a)), uint256.NewInt(uint64(b)))
	x.Div(x, uint256.NewInt(uint64(c)))
	x.Div(x, uint256.NewInt(uint64(d)))
	if !fitsInt64(x) {
		return 0, ledger.NewInvariantError("%d * %d / %d / %d overflows", a, b, c, d)
	}
	return int64(x.Uint64()), nil
}

func checkedAdd(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ledger.NewInvariantError("%d + %d overflows", a, b)
	}
	return a + b, nil
}

func fitsInt64(x *uint256.Int) bool {
	return x.IsUint64() && x.Uint64() <= math.MaxInt64
}
