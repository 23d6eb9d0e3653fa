// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package entity

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// StakingInfo is the staking record of one node.
type StakingInfo struct {
	MinStake int64
	MaxStake int64

	StakeToReward    int64
	StakeToNotReward int64
	// StakeRewardStart is the rounded stake to reward fixed at the start of the current period.
	StakeRewardStart int64
	Stake            int64

	// RewardSumHistory holds cumulative per-hbar rewards, newest first.
	RewardSumHistory []int64
	// RewardStartPeriod is the last period for which no reward accrues.
	RewardStartPeriod int64
}

// NewStakingInfo returns a staking record with a zeroed history of the given size.
func NewStakingInfo(minStake, maxStake int64, historySize int) *StakingInfo {
	return &StakingInfo{
		MinStake:         minStake,
		MaxStake:         maxStake,
		RewardSumHistory: make([]int64, historySize),
	}
}

func (s *StakingInfo) Clone() *StakingInfo {
	cpy := *s
	cpy.RewardSumHistory = append([]int64(nil), s.RewardSumHistory...)
	return &cpy
}

// TotalStake is the unclamped stake elected to the node.
func (s *StakingInfo) TotalStake() int64 {
	return s.StakeToReward + s.StakeToNotReward
}

// RecomputeStake clamps the elected stake into [0, MaxStake], zeroing it below MinStake.
func (s *StakingInfo) RecomputeStake() int64 {
	total := s.TotalStake()
	switch {
	case total > s.MaxStake:
		s.Stake = s.MaxStake
	case total < s.MinStake, total < 0:
		s.Stake = 0
	default:
		s.Stake = total
	}
	return s.Stake
}

// ClearRewardSumHistory zeroes every slot of the history.
func (s *StakingInfo) ClearRewardSumHistory() {
	clear(s.RewardSumHistory)
}

// UpdateRewardSumHistory shifts the history one slot older, dropping the oldest,
// and stores the new cumulative sum in the newest slot.
func (s *StakingInfo) UpdateRewardSumHistory(perHbarRate int64) {
	h := s.RewardSumHistory
	if len(h) == 0 {
		return
	}
	newest := h[0] + perHbarRate
	copy(h[1:], h[:len(h)-1])
	h[0] = newest
}

func (s *StakingInfo) EncodeRLP(w io.Writer) error {
	history := make([]uint64, len(s.RewardSumHistory))
	for i, v := range s.RewardSumHistory {
		history[i] = uint64(v)
	}
	return rlp.Encode(w, []any{
		uint64(s.MinStake),
		uint64(s.MaxStake),
		uint64(s.StakeToReward),
		uint64(s.StakeToNotReward),
		uint64(s.StakeRewardStart),
		uint64(s.Stake),
		history,
		uint64(s.RewardStartPeriod),
	})
}
