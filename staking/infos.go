// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/store"
)

// InfoManager reads and updates the per-node staking records.
type InfoManager struct {
	infos store.Map[ledger.NodeNum, *entity.StakingInfo]
}

func NewInfoManager(infos store.Map[ledger.NodeNum, *entity.StakingInfo]) *InfoManager {
	if infos == nil {
		panic("staking: nil staking infos")
	}
	return &InfoManager{infos: infos}
}

// Get returns the read-only record of node.
func (m *InfoManager) Get(node ledger.NodeNum) (*entity.StakingInfo, error) {
	info, ok := m.infos.Get(node)
	if !ok {
		return nil, ledger.NewInvariantError("no staking info for %v", node)
	}
	return info, nil
}

func (m *InfoManager) mutable(node ledger.NodeNum) (*entity.StakingInfo, error) {
	info, ok := m.infos.GetForModify(node)
	if !ok {
		return nil, ledger.NewInvariantError("no staking info for %v", node)
	}
	return info, nil
}

// Nodes returns every node number in ascending order.
func (m *InfoManager) Nodes() []ledger.NodeNum {
	return m.infos.KeySet()
}

// ApplyStakeDelta adjusts the stake elected to node. A stake driven negative
// is clamped to zero.
func (m *InfoManager) ApplyStakeDelta(node ledger.NodeNum, toReward, toNotReward int64) error {
	info, err := m.mutable(node)
	if err != nil {
		return err
	}
	info.StakeToReward = clampStake(node, "stakeToReward", info.StakeToReward+toReward)
	info.StakeToNotReward = clampStake(node, "stakeToNotReward", info.StakeToNotReward+toNotReward)
	return nil
}

func clampStake(node ledger.NodeNum, field string, v int64) int64 {
	if v < 0 {
		logger.Warn("negative node stake, clamping to zero", "node", node, "field", field, "value", v)
		return 0
	}
	return v
}

// ResetAll clears every node's reward history and starts rewards after period.
func (m *InfoManager) ResetAll(period int64) error {
	for _, node := range m.Nodes() {
		info, err := m.mutable(node)
		if err != nil {
			return err
		}
		info.ClearRewardSumHistory()
		info.RewardStartPeriod = period
	}
	return nil
}
