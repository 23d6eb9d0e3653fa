// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/metrics"
	"github.com/vechain/ledger/store"
)

var (
	metricPeriodsClosed  = metrics.LazyLoadCounter("staking_periods_closed_total")
	metricPendingRewards = metrics.LazyLoadGauge("staking_pending_rewards")
)

// EndOfPeriodCalculator closes a staking period: it records the reward rate
// earned by each node over the period and fixes the stakes the next period
// is rewarded on.
type EndOfPeriodCalculator struct {
	accounts store.Map[ledger.AccountNum, *entity.Account]
	network  store.Map[ledger.Singleton, *entity.NetworkContext]
	infos    *InfoManager
	periods  *PeriodManager
	group    *store.Group
	cfg      ledger.Config
}

// NewEndOfPeriodCalculator creates a calculator. Updates are reverted through
// group on failure, so it must include the staking infos and network maps.
func NewEndOfPeriodCalculator(
	accounts store.Map[ledger.AccountNum, *entity.Account],
	network store.Map[ledger.Singleton, *entity.NetworkContext],
	infos *InfoManager,
	group *store.Group,
	cfg ledger.Config,
) *EndOfPeriodCalculator {
	if accounts == nil || network == nil || infos == nil || group == nil {
		panic("staking: nil collaborator for end of period calculator")
	}
	return &EndOfPeriodCalculator{
		accounts: accounts,
		network:  network,
		infos:    infos,
		periods:  NewPeriodManager(cfg.Staking),
		group:    group,
		cfg:      cfg,
	}
}

// Run closes the period preceding the one containing now. It returns false
// when that period is already closed.
func (c *EndOfPeriodCalculator) Run(now time.Time) (closed bool, err error) {
	current := c.periods.PeriodOf(now)
	net, ok := c.network.Get(ledger.Singleton{})
	if !ok {
		return false, ledger.NewInvariantError("network context missing")
	}
	if net.LastPeriodCalculated >= current-1 {
		return false, nil
	}

	cp := c.group.Checkpoint()
	defer func() {
		if err != nil {
			c.group.RevertTo(cp)
			return
		}
		c.group.Flush()
	}()

	if err := c.closePeriod(current - 1); err != nil {
		return false, errors.Wrapf(err, "close period %d", current-1)
	}
	return true, nil
}

func (c *EndOfPeriodCalculator) closePeriod(period int64) error {
	net, ok := c.network.GetForModify(ledger.Singleton{})
	if !ok {
		return ledger.NewInvariantError("network context missing")
	}
	rate, err := c.effectiveRate(net)
	if err != nil {
		return err
	}

	var (
		totalRewardStart int64
		totalStakeStart  int64
		accrued          int64
	)
	for _, node := range c.infos.Nodes() {
		info, err := c.infos.mutable(node)
		if err != nil {
			return err
		}
		var perHbar int64
		if !c.cfg.Staking.RequireMinStakeToReward || info.Stake >= info.MinStake {
			if perHbar, err = mulDiv(rate, info.StakeRewardStart, net.TotalStakedRewardStart, ledger.HbarsToTinybars); err != nil {
				return err
			}
		}
		info.UpdateRewardSumHistory(perHbar)

		earned, err := perHbarTimes(perHbar, ledger.WholeHbars(info.StakeRewardStart))
		if err != nil {
			return err
		}
		if accrued, err = checkedAdd(accrued, earned); err != nil {
			return err
		}

		stake := info.RecomputeStake()
		info.StakeRewardStart = ledger.RoundedToHbar(info.StakeToReward)
		if totalRewardStart, err = checkedAdd(totalRewardStart, info.StakeRewardStart); err != nil {
			return err
		}
		if totalStakeStart, err = checkedAdd(totalStakeStart, stake); err != nil {
			return err
		}
		logger.Debug("node period closed", "node", node, "perHbar", perHbar, "stake", stake, "stakeRewardStart", info.StakeRewardStart)
	}

	net.TotalStakedRewardStart = totalRewardStart
	net.TotalStakedStart = totalStakeStart
	pending, err := checkedAdd(net.PendingRewards, accrued)
	if err != nil {
		return err
	}
	net.PendingRewards = pending
	net.LastPeriodCalculated = period

	metricPeriodsClosed().Add(1)
	metricPendingRewards().Set(pending)
	logger.Info("staking period closed", "period", period, "rate", rate, "accrued", accrued, "pending", pending)
	return nil
}

// effectiveRate is the configured reward rate, bounded by what the funding
// account can still pay beyond the rewards already pending.
func (c *EndOfPeriodCalculator) effectiveRate(net *entity.NetworkContext) (int64, error) {
	if !net.RewardsActivated() {
		return 0, nil
	}
	funding, ok := c.accounts.Get(c.cfg.Accounts.StakingRewardAccount)
	if !ok {
		return 0, ledger.NewInvariantError("staking reward account %v missing", c.cfg.Accounts.StakingRewardAccount)
	}
	available := max(funding.Balance-net.PendingRewards, 0)
	return min(c.cfg.Staking.RewardRate, available), nil
}
