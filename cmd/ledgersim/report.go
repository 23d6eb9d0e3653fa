// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"gopkg.in/yaml.v3"

	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/state"
)

// Report is the observable outcome of a fixture.
type Report struct {
	Steps    []StepReport    `yaml:"steps"`
	Accounts []AccountReport `yaml:"accounts"`
	Nodes    []NodeReport    `yaml:"nodes,omitempty"`
	Network  NetworkReport   `yaml:"network"`
	Root     string          `yaml:"root"`
}

type StepReport struct {
	Step          int                         `yaml:"step"`
	Aborted       string                      `yaml:"aborted,omitempty"`
	PeriodClosed  *bool                       `yaml:"periodClosed,omitempty"`
	HbarChanges   []sideeffects.AccountAmount `yaml:"hbarChanges,omitempty"`
	RewardsPaid   []sideeffects.AccountAmount `yaml:"rewardsPaid,omitempty"`
	Associations  []sideeffects.Association   `yaml:"associations,omitempty"`
	TokensCreated []ledger.TokenNum           `yaml:"tokensCreated,omitempty"`
}

type AccountReport struct {
	Num              ledger.AccountNum `yaml:"num"`
	Balance          int64             `yaml:"balance"`
	StakedID         string            `yaml:"stakedId,omitempty"`
	StakedToMe       int64             `yaml:"stakedToMe,omitempty"`
	StakePeriodStart int64             `yaml:"stakePeriodStart"`
	Tokens           []ledger.TokenNum `yaml:"tokens,omitempty"`
	Nfts             []string          `yaml:"nfts,omitempty"`
	Deleted          bool              `yaml:"deleted,omitempty"`
}

type NodeReport struct {
	ID               ledger.NodeNum `yaml:"id"`
	Stake            int64          `yaml:"stake"`
	StakeToReward    int64          `yaml:"stakeToReward"`
	StakeToNotReward int64          `yaml:"stakeToNotReward"`
	StakeRewardStart int64          `yaml:"stakeRewardStart"`
	RewardSum        int64          `yaml:"rewardSum"`
}

type NetworkReport struct {
	RewardsActivated     bool  `yaml:"rewardsActivated"`
	PendingRewards       int64 `yaml:"pendingRewards"`
	LastPeriodCalculated int64 `yaml:"lastPeriodCalculated"`
}

// abortKind classifies a commit error for the report.
func abortKind(err error) string {
	switch {
	case ledger.IsInvariantViolation(err):
		return "invariant violation"
	case ledger.IsValidationError(err):
		return "validation"
	}
	return "error"
}

func commitReport(step int, err error, fx *sideeffects.Tracker) StepReport {
	r := StepReport{Step: step}
	if err != nil {
		r.Aborted = abortKind(err)
		return r
	}
	r.HbarChanges = fx.HbarChanges()
	r.RewardsPaid = fx.RewardsPaid()
	r.Associations = fx.Associations()
	r.TokensCreated = fx.TokensCreated()
	return r
}

func endPeriodReport(step int, closed bool, err error) StepReport {
	if err != nil {
		return StepReport{Step: step, Aborted: abortKind(err)}
	}
	return StepReport{Step: step, PeriodClosed: &closed}
}

// finish completes the report with the final content of s.
func (r *Report) finish(s *state.State) error {
	for _, num := range s.AccountNums() {
		a, _ := s.Account(num)
		ar := AccountReport{
			Num:              num,
			Balance:          a.Balance,
			StakedToMe:       a.StakedToMe,
			StakePeriodStart: a.StakePeriodStart,
			Deleted:          a.Deleted,
		}
		if !a.StakedID.IsUnset() {
			ar.StakedID = a.StakedID.String()
		}
		tokens, err := s.TokenRels(num)
		if err != nil {
			return err
		}
		ar.Tokens = tokens
		nfts, err := s.Nfts(num)
		if err != nil {
			return err
		}
		for _, id := range nfts {
			ar.Nfts = append(ar.Nfts, fmt.Sprintf("%d.%d", id.Token, id.Serial))
		}
		r.Accounts = append(r.Accounts, ar)
	}

	for _, node := range s.Nodes() {
		info, _ := s.StakingInfo(node)
		nr := NodeReport{
			ID:               node,
			Stake:            info.Stake,
			StakeToReward:    info.StakeToReward,
			StakeToNotReward: info.StakeToNotReward,
			StakeRewardStart: info.StakeRewardStart,
		}
		if len(info.RewardSumHistory) > 0 {
			nr.RewardSum = info.RewardSumHistory[0]
		}
		r.Nodes = append(r.Nodes, nr)
	}

	net := s.Network()
	r.Network = NetworkReport{
		RewardsActivated:     net.RewardsActivated(),
		PendingRewards:       net.PendingRewards,
		LastPeriodCalculated: net.LastPeriodCalculated,
	}

	root, err := s.Root()
	if err != nil {
		return err
	}
	r.Root = hexutil.Encode(root[:])
	return nil
}

func (r *Report) Marshal() (string, error) {
	b, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
