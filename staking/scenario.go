// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/vechain/ledger/ledger"

// Scenario classifies a change of staking election.
type Scenario uint8

const (
	FromAbsentToAbsent Scenario = iota
	FromAbsentToAccount
	FromAbsentToNode
	FromAccountToAbsent
	FromAccountToAccount
	FromAccountToNode
	FromNodeToAbsent
	FromNodeToAccount
	FromNodeToNode
)

type target uint8

const (
	absent target = iota
	toAccount
	toNode
)

func targetOf(id ledger.StakedID) target {
	switch {
	case id.IsNode():
		return toNode
	case id.IsAccount():
		return toAccount
	}
	return absent
}

// ForCase classifies the move from cur to next by their signs.
func ForCase(cur, next ledger.StakedID) Scenario {
	return Scenario(uint8(targetOf(cur))*3 + uint8(targetOf(next)))
}

func (s Scenario) from() target { return target(s / 3) }
func (s Scenario) to() target { return target(s % 3) }

func (s Scenario) WithdrawsFromAccount() bool { return s.from() == toAccount }
func (s Scenario) WithdrawsFromNode() bool { return s.from() == toNode }
func (s Scenario) AwardsToAccount() bool { return s.to() == toAccount }
func (s Scenario) AwardsToNode() bool { return s.to() == toNode }

var scenarioNames = [...]string{
	"FROM_ABSENT_TO_ABSENT",
	"FROM_ABSENT_TO_ACCOUNT",
	"FROM_ABSENT_TO_NODE",
	"FROM_ACCOUNT_TO_ABSENT",
	"FROM_ACCOUNT_TO_ACCOUNT",
	"FROM_ACCOUNT_TO_NODE",
	"FROM_NODE_TO_ABSENT",
	"FROM_NODE_TO_ACCOUNT",
	"FROM_NODE_TO_NODE",
}

func (s Scenario) String() string {
	if int(s) < len(scenarioNames) {
		return scenarioNames[s]
	}
	return "UNKNOWN"
}
