// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package entity

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// NetworkContext is the network-wide staking state.
type NetworkContext struct {
	rewardsActivated bool

	TotalStakedRewardStart int64
	TotalStakedStart       int64
	// PendingRewards is accrued at period boundaries and not yet paid.
	PendingRewards int64
	// LastPeriodCalculated is the last period closed by the end-of-period calculator, -1 if none.
	LastPeriodCalculated int64
}

// NewNetworkContext returns a context with rewards in the given activation state.
func NewNetworkContext(rewardsActivated bool) *NetworkContext {
	return &NetworkContext{rewardsActivated: rewardsActivated, LastPeriodCalculated: -1}
}

func (n *NetworkContext) Clone() *NetworkContext {
	cpy := *n
	return &cpy
}

// RewardsActivated reports whether staking rewards are payable.
func (n *NetworkContext) RewardsActivated() bool {
	return n.rewardsActivated
}

// ActivateRewards turns rewards on. Activation is irreversible.
// It reports whether the call changed the state.
func (n *NetworkContext) ActivateRewards() bool {
	if n.rewardsActivated {
		return false
	}
	n.rewardsActivated = true
	return true
}

// DecreasePendingRewards records paid rewards, never going below zero.
func (n *NetworkContext) DecreasePendingRewards(amount int64) {
	n.PendingRewards -= amount
	if n.PendingRewards < 0 {
		n.PendingRewards = 0
	}
}

func (n *NetworkContext) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		n.rewardsActivated,
		uint64(n.TotalStakedRewardStart),
		uint64(n.TotalStakedStart),
		uint64(n.PendingRewards),
		uint64(n.LastPeriodCalculated),
	})
}
