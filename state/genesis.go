// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
)

// Genesis describes the initial content of a ledger.
// Derived aggregates (stakedToMe, node stakes, network totals) are computed
// from the accounts, not given.
type Genesis struct {
	RewardsActivated bool    `yaml:"rewardsActivated"`
	PendingRewards   int64   `yaml:"pendingRewards"`
	Accounts         []Alloc `yaml:"accounts"`
	Tokens           []Token `yaml:"tokens"`
	Nodes            []Node  `yaml:"nodes"`
}

// Alloc is a genesis account.
type Alloc struct {
	Num                 ledger.AccountNum `yaml:"num"`
	Balance             int64             `yaml:"balance"`
	StakedToAccount     ledger.AccountNum `yaml:"stakedToAccount,omitempty"`
	StakedToNode        *ledger.NodeNum   `yaml:"stakedToNode,omitempty"`
	DeclineReward       bool              `yaml:"declineReward,omitempty"`
	StakePeriodStart    *int64            `yaml:"stakePeriodStart,omitempty"`
	MaxAutoAssociations int64             `yaml:"maxAutoAssociations,omitempty"`
	Associations        []ledger.TokenNum `yaml:"associations,omitempty"`
}

// Token is a genesis token. Non-fungible tokens start with Serials minted to the treasury.
type Token struct {
	Num         ledger.TokenNum   `yaml:"num"`
	Treasury    ledger.AccountNum `yaml:"treasury"`
	Symbol      string            `yaml:"symbol"`
	TotalSupply int64             `yaml:"totalSupply,omitempty"`
	NonFungible bool              `yaml:"nonFungible,omitempty"`
	Serials     int64             `yaml:"serials,omitempty"`
}

// Node is a genesis consensus node.
type Node struct {
	ID       ledger.NodeNum `yaml:"id"`
	MinStake int64          `yaml:"minStake"`
	MaxStake int64          `yaml:"maxStake,omitempty"`
}

// LoadGenesis decodes a YAML genesis.
func LoadGenesis(r io.Reader) (*Genesis, error) {
	var g Genesis
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &g, nil
}

// content is the initial content of every backing map.
type content struct {
	accounts map[ledger.AccountNum]*entity.Account
	rels     map[ledger.RelKey]*entity.TokenRel
	nfts     map[ledger.NftID]*entity.Nft
	tokens   map[ledger.TokenNum]*entity.Token
	infos    map[ledger.NodeNum]*entity.StakingInfo
	network  *entity.NetworkContext
}

func (g *Genesis) build(cfg ledger.Config) (*content, error) {
	c := &content{
		accounts: make(map[ledger.AccountNum]*entity.Account),
		rels:     make(map[ledger.RelKey]*entity.TokenRel),
		nfts:     make(map[ledger.NftID]*entity.Nft),
		tokens:   make(map[ledger.TokenNum]*entity.Token),
		infos:    make(map[ledger.NodeNum]*entity.StakingInfo),
		network:  entity.NewNetworkContext(g.RewardsActivated),
	}
	c.network.PendingRewards = g.PendingRewards

	for _, n := range g.Nodes {
		if _, ok := c.infos[n.ID]; ok {
			return nil, fmt.Errorf("%v: duplicate node", n.ID)
		}
		maxStake := n.MaxStake
		if maxStake == 0 {
			maxStake = math.MaxInt64
		}
		if n.MinStake < 0 || maxStake < n.MinStake {
			return nil, fmt.Errorf("%v: stake bounds [%d, %d] invalid", n.ID, n.MinStake, maxStake)
		}
		c.infos[n.ID] = entity.NewStakingInfo(n.MinStake, maxStake, cfg.RewardHistorySize())
	}

	for _, a := range g.Accounts {
		if _, ok := c.accounts[a.Num]; ok {
			return nil, fmt.Errorf("%v: duplicate account", a.Num)
		}
		if a.Balance < 0 {
			return nil, fmt.Errorf("%v: balance must be a non-negative integer", a.Num)
		}
		acc := entity.NewAccount()
		acc.Balance = a.Balance
		acc.DeclineReward = a.DeclineReward
		acc.MaxAutoAssociations = a.MaxAutoAssociations
		switch {
		case a.StakedToNode != nil && a.StakedToAccount != 0:
			return nil, fmt.Errorf("%v: staked to both an account and a node", a.Num)
		case a.StakedToNode != nil:
			if _, ok := c.infos[*a.StakedToNode]; !ok {
				return nil, fmt.Errorf("%v: staked to unknown %v", a.Num, *a.StakedToNode)
			}
			acc.StakedID = ledger.StakedToNode(*a.StakedToNode)
			acc.StakePeriodStart = 0
			if a.StakePeriodStart != nil {
				acc.StakePeriodStart = *a.StakePeriodStart
			}
		case a.StakedToAccount == a.Num:
			return nil, fmt.Errorf("%v: staked to itself", a.Num)
		case a.StakedToAccount != 0:
			acc.StakedID = ledger.StakedToAccount(a.StakedToAccount)
		}
		c.accounts[a.Num] = acc
	}
	for _, num := range []ledger.AccountNum{cfg.Accounts.StakingRewardAccount, cfg.Accounts.NodeRewardAccount} {
		if _, ok := c.accounts[num]; !ok {
			c.accounts[num] = entity.NewAccount()
		}
	}

	for _, t := range g.Tokens {
		if err := c.addToken(t); err != nil {
			return nil, err
		}
	}
	for _, a := range g.Accounts {
		for _, tok := range a.Associations {
			if err := c.associate(a.Num, tok); err != nil {
				return nil, err
			}
		}
	}

	if err := c.aggregateStakes(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *content) addToken(t Token) error {
	if _, ok := c.tokens[t.Num]; ok {
		return fmt.Errorf("%v: duplicate token", t.Num)
	}
	if _, ok := c.accounts[t.Treasury]; !ok {
		return fmt.Errorf("%v: unknown treasury %v", t.Num, t.Treasury)
	}
	if t.Serials > 0 && !t.NonFungible {
		return fmt.Errorf("%v: serials minted for a fungible token", t.Num)
	}
	tok := entity.NewToken()
	tok.Treasury = t.Treasury
	tok.Symbol = t.Symbol
	tok.TotalSupply = t.TotalSupply
	tok.NonFungible = t.NonFungible
	if t.NonFungible {
		tok.TotalSupply = t.Serials
		tok.LastUsedSerial = t.Serials
	}
	c.tokens[t.Num] = tok

	// treasury-held nfts are not linked to any owner
	for serial := int64(1); serial <= t.Serials; serial++ {
		c.nfts[ledger.NftID{Token: t.Num, Serial: serial}] = entity.NewNft()
	}
	if err := c.associate(t.Treasury, t.Num); err != nil {
		return err
	}
	if !t.NonFungible {
		c.rels[ledger.NewRelKey(t.Treasury, t.Num)].Balance = t.TotalSupply
	}
	return nil
}

// associate prepends the relationship to the account's token list.
func (c *content) associate(num ledger.AccountNum, tok ledger.TokenNum) error {
	acc, ok := c.accounts[num]
	if !ok {
		return fmt.Errorf("%v: unknown account", num)
	}
	if _, ok := c.tokens[tok]; !ok {
		return fmt.Errorf("%v: association with unknown token %v", num, tok)
	}
	key := ledger.NewRelKey(num, tok)
	if _, ok := c.rels[key]; ok {
		return fmt.Errorf("%v: duplicate association", key)
	}
	rel := entity.NewTokenRel()
	rel.KycGranted = true
	rel.Next = acc.HeadTokenNum
	if acc.HeadTokenNum != 0 {
		c.rels[ledger.NewRelKey(num, acc.HeadTokenNum)].Prev = tok
	}
	c.rels[key] = rel
	acc.HeadTokenNum = tok
	acc.NumAssociations++
	return nil
}

// aggregateStakes fills stakedToMe, the node stakes and the network totals.
func (c *content) aggregateStakes() error {
	for num, acc := range c.accounts {
		if !acc.StakedID.IsAccount() {
			continue
		}
		stakee, ok := c.accounts[acc.StakedID.Account()]
		if !ok {
			return fmt.Errorf("%v: staked to unknown account %v", num, acc.StakedID.Account())
		}
		stakee.StakedToMe += acc.Balance
	}
	for _, acc := range c.accounts {
		if !acc.StakedID.IsNode() {
			continue
		}
		info := c.infos[acc.StakedID.Node()]
		stake := ledger.RoundedToHbar(acc.TotalStake())
		if acc.DeclineReward {
			info.StakeToNotReward += stake
		} else {
			info.StakeToReward += stake
		}
	}
	for _, info := range c.infos {
		info.RecomputeStake()
		info.StakeRewardStart = ledger.RoundedToHbar(info.StakeToReward)
		c.network.TotalStakedRewardStart += info.StakeRewardStart
		c.network.TotalStakedStart += info.Stake
	}
	return nil
}
