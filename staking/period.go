// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"time"

	"github.com/vechain/ledger/ledger"
)

// PeriodManager maps consensus time onto staking periods.
type PeriodManager struct {
	periodSecs int64
	numStored  int64
}

func NewPeriodManager(cfg ledger.StakingConfig) *PeriodManager {
	return &PeriodManager{
		periodSecs: cfg.PeriodMins * 60,
		numStored:  int64(cfg.RewardHistory.NumStoredPeriods),
	}
}

// PeriodOf returns the period containing t.
func (m *PeriodManager) PeriodOf(t time.Time) int64 {
	return t.Unix() / m.periodSecs
}

// StartOf returns the first instant of period p.
func (m *PeriodManager) StartOf(p int64) time.Time {
	return time.Unix(p*m.periodSecs, 0).UTC()
}

// IsRewardable reports whether an account whose stake started at
// stakePeriodStart has been staked through at least one complete period.
func (m *PeriodManager) IsRewardable(stakePeriodStart, current int64) bool {
	return stakePeriodStart > -1 && stakePeriodStart < current-1
}

// EffectiveStart bounds stakePeriodStart to the periods still held in the
// reward history.
func (m *PeriodManager) EffectiveStart(stakePeriodStart, current int64) int64 {
	return max(stakePeriodStart, current-1-m.numStored)
}
