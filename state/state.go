// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/commit"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/links"
	"github.com/vechain/ledger/log"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/staking"
	"github.com/vechain/ledger/store"
)

var logger = log.WithContext("pkg", "state")

// State holds the backing maps of a ledger and the pipelines committing to them.
type State struct {
	cfg ledger.Config

	accounts *store.MemMap[ledger.AccountNum, *entity.Account]
	rels     *store.MemMap[ledger.RelKey, *entity.TokenRel]
	nfts     *store.MemMap[ledger.NftID, *entity.Nft]
	tokens   *store.MemMap[ledger.TokenNum, *entity.Token]
	infos    *store.MemMap[ledger.NodeNum, *entity.StakingInfo]
	network  *store.MemMap[ledger.Singleton, *entity.NetworkContext]

	tracker   *sideeffects.Tracker
	committer *commit.Committer
	rewards   *staking.RewardsInterceptor
	period    *staking.EndOfPeriodCalculator

	tokensPipeline   *commit.TokensPipeline
	accountsPipeline *commit.AccountsPipeline
	nftsPipeline     *commit.NftsPipeline
	relsPipeline     *commit.TokenRelsPipeline
}

// New creates a state holding the genesis content.
func New(g *Genesis, cfg ledger.Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	c, err := g.build(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "genesis")
	}

	s := &State{
		cfg:      cfg,
		accounts: store.NewMemMap(c.accounts),
		rels:     store.NewMemMap(c.rels),
		nfts:     store.NewMemMap(c.nfts),
		tokens:   store.NewMemMap(c.tokens),
		infos:    store.NewMemMap(c.infos),
		network:  store.NewSingleton(c.network),
		tracker:  sideeffects.New(),
	}
	group := store.NewGroup(s.accounts, s.rels, s.nfts, s.tokens, s.infos, s.network)
	infos := staking.NewInfoManager(s.infos)

	s.committer = commit.NewCommitter(group, s.tracker)
	s.rewards = staking.NewRewardsInterceptor(s.accounts, s.network, infos, s.tracker, cfg)
	s.period = staking.NewEndOfPeriodCalculator(s.accounts, s.network, infos, group, cfg)

	s.tokensPipeline = commit.NewTokensPipeline(s.tokens,
		commit.NewTokenCreations(s.tokens, s.tracker, cfg.Tokens))
	s.accountsPipeline = commit.NewAccountsPipeline(s.accounts,
		commit.NewBalanceZeroSum(s.tracker),
		s.rewards)
	s.nftsPipeline = commit.NewNftsPipeline(s.nfts,
		links.NewNftLinks(s.accounts, s.nfts, s.tokens))
	s.relsPipeline = commit.NewTokenRelsPipeline(s.rels,
		commit.NewAutoAssociations(s.accounts, s.tracker),
		links.NewTokenRelLinks(s.accounts, s.rels))

	logger.Debug("state created", "accounts", len(c.accounts), "tokens", len(c.tokens), "nodes", len(c.infos))
	return s, nil
}

// ChangeSets holds the change sets of one transaction. Nil members are skipped.
type ChangeSets struct {
	Tokens    *changeset.Tokens
	Accounts  *changeset.Accounts
	Nfts      *changeset.Nfts
	TokenRels *changeset.TokenRels
}

// NewChangeSets returns empty change sets for every entity kind.
func NewChangeSets() *ChangeSets {
	return &ChangeSets{
		Tokens:    changeset.NewTokens(),
		Accounts:  changeset.NewAccounts(),
		Nfts:      changeset.NewNfts(),
		TokenRels: changeset.NewTokenRels(),
	}
}

// Commit commits one transaction. Tokens are materialized first, then
// accounts, so the list maintainers of nfts and token relationships find
// every entity they link.
func (s *State) Commit(batch *commit.Batch, sets *ChangeSets) error {
	var stages []commit.Stage
	if sets.Tokens != nil {
		stages = append(stages, s.tokensPipeline.Bind(sets.Tokens))
	}
	if sets.Accounts != nil {
		stages = append(stages, s.accountsPipeline.Bind(sets.Accounts))
	}
	if sets.Nfts != nil {
		stages = append(stages, s.nftsPipeline.Bind(sets.Nfts))
	}
	if sets.TokenRels != nil {
		stages = append(stages, s.relsPipeline.Bind(sets.TokenRels))
	}
	return s.committer.Commit(batch, stages...)
}

// EndPeriod closes the staking period preceding now, if not closed yet.
func (s *State) EndPeriod(now time.Time) (bool, error) {
	return s.period.Run(now)
}

// SideEffects returns the side effects of the last successful commit.
func (s *State) SideEffects() *sideeffects.Tracker {
	return s.tracker
}

// Root returns the digest of the whole state.
func (s *State) Root() ([32]byte, error) {
	return store.Digest(s.accounts, s.rels, s.nfts, s.tokens, s.infos, s.network)
}

func (s *State) Config() ledger.Config { return s.cfg }

func (s *State) Account(num ledger.AccountNum) (*entity.Account, bool) { return s.accounts.Get(num) }
func (s *State) TokenRel(key ledger.RelKey) (*entity.TokenRel, bool) { return s.rels.Get(key) }
func (s *State) Nft(id ledger.NftID) (*entity.Nft, bool) { return s.nfts.Get(id) }
func (s *State) Token(num ledger.TokenNum) (*entity.Token, bool) { return s.tokens.Get(num) }
func (s *State) StakingInfo(node ledger.NodeNum) (*entity.StakingInfo, bool) { return s.infos.Get(node) }

func (s *State) Network() *entity.NetworkContext {
	n, _ := s.network.Get(ledger.Singleton{})
	return n
}

func (s *State) AccountNums() []ledger.AccountNum { return s.accounts.KeySet() }
func (s *State) Nodes() []ledger.NodeNum { return s.infos.KeySet() }

// TokenRels returns the token numbers associated with num, head first.
func (s *State) TokenRels(num ledger.AccountNum) ([]ledger.TokenNum, error) {
	return links.TokenRels(s.accounts, s.rels, num)
}

// Nfts returns the nfts owned by num, head first.
func (s *State) Nfts(num ledger.AccountNum) ([]ledger.NftID, error) {
	return links.Nfts(s.accounts, s.nfts, num)
}
