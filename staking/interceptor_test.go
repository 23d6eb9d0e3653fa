// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/commit"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/property"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/store"
)

const (
	funding ledger.AccountNum = 800
	alice   ledger.AccountNum = 1001
	bob     ledger.AccountNum = 1002
	carol   ledger.AccountNum = 1003

	node0  ledger.NodeNum = 0
	period int64          = 20000
	hbar                  = ledger.HbarsToTinybars
)

type fixture struct {
	cfg      ledger.Config
	accounts *store.MemMap[ledger.AccountNum, *entity.Account]
	infos    *store.MemMap[ledger.NodeNum, *entity.StakingInfo]
	network  *store.MemMap[ledger.Singleton, *entity.NetworkContext]
	tracker  *sideeffects.Tracker
	rewards  *RewardsInterceptor
	pipeline *commit.AccountsPipeline
	c        *commit.Committer
}

func newFixture(activated bool) *fixture {
	cfg := ledger.DefaultConfig()
	cfg.Staking.StartThreshold = 1000 * hbar

	info := entity.NewStakingInfo(0, math.MaxInt64, cfg.RewardHistorySize())
	copy(info.RewardSumHistory, []int64{300, 200, 100})
	net := entity.NewNetworkContext(activated)
	net.PendingRewards = 1_000_000

	f := &fixture{
		cfg: cfg,
		accounts: store.NewMemMap(map[ledger.AccountNum]*entity.Account{
			funding: account(5000*hbar, 0),
			bob:     account(50*hbar, 0),
		}),
		infos:   store.NewMemMap(map[ledger.NodeNum]*entity.StakingInfo{node0: info}),
		network: store.NewSingleton(net),
		tracker: sideeffects.New(),
	}
	f.rewards = NewRewardsInterceptor(f.accounts, f.network, NewInfoManager(f.infos), f.tracker, cfg)
	f.pipeline = commit.NewAccountsPipeline(f.accounts, commit.NewBalanceZeroSum(f.tracker), f.rewards)
	f.c = commit.NewCommitter(store.NewGroup(f.accounts, f.infos, f.network), f.tracker)
	return f
}

func account(balance int64, stakedID ledger.StakedID) *entity.Account {
	a := entity.NewAccount()
	a.Balance = balance
	a.StakedID = stakedID
	return a
}

// stakeToNode puts an account staked to node0 since three periods and
// registers its stake on the node.
func (f *fixture) stakeToNode(num ledger.AccountNum, balance int64) {
	a := account(balance, ledger.StakedToNode(node0))
	a.StakePeriodStart = period - 3
	f.accounts.Put(num, a)
	info, _ := f.infos.GetForModify(node0)
	info.StakeToReward += ledger.RoundedToHbar(balance)
	f.accounts.Flush()
	f.infos.Flush()
}

func (f *fixture) batch() *commit.Batch {
	return &commit.Batch{ConsensusTime: time.Unix(period*86400+100, 0)}
}

func (f *fixture) snapshot(num ledger.AccountNum) *entity.Account {
	a, _ := f.accounts.Get(num)
	return a
}

func (f *fixture) get(t *testing.T, num ledger.AccountNum) *entity.Account {
	a, ok := f.accounts.Get(num)
	require.True(t, ok, "account %v", num)
	return a
}

func (f *fixture) node(t *testing.T) *entity.StakingInfo {
	info, ok := f.infos.Get(node0)
	require.True(t, ok)
	return info
}

func (f *fixture) net() *entity.NetworkContext {
	n, _ := f.network.Get(ledger.Singleton{})
	return n
}

func balance(v int64) entity.AccountChanges {
	return entity.AccountChanges{entity.AccountBalance: property.Int(v)}
}

func TestRewardPaidOnBalanceChange(t *testing.T) {
	f := newFixture(true)
	f.stakeToNode(alice, 10*hbar)

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), balance(9*hbar))
	cs.Include(bob, f.snapshot(bob), balance(51*hbar))
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))

	const reward = (300 - 100) * 10
	assert.Equal(t, []sideeffects.AccountAmount{{alice, reward}}, f.tracker.RewardsPaid())
	assert.Zero(t, f.tracker.NetHbarChange())

	a := f.get(t, alice)
	assert.Equal(t, 9*hbar+reward, a.Balance)
	assert.Equal(t, period-1, a.StakePeriodStart)
	assert.Equal(t, 10*hbar, a.StakeAtStartOfLastRewardedPeriod)
	assert.True(t, a.RewardedSinceLastMetadataChange)

	assert.Equal(t, 5000*hbar-reward, f.get(t, funding).Balance)
	assert.Equal(t, int64(1_000_000-reward), f.net().PendingRewards)
	assert.Equal(t, 9*hbar, f.node(t).StakeToReward)

	got, rewarded := f.rewards.Rewarded(alice)
	assert.True(t, rewarded)
	assert.Equal(t, int64(reward), got)
}

func TestNoRewardWithoutRewardableChange(t *testing.T) {
	f := newFixture(true)
	f.stakeToNode(alice, 10*hbar)

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), entity.AccountChanges{entity.AccountMaxAutoAssociations: property.Int(3)})
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))

	assert.False(t, f.tracker.HasTrackedRewards())
	assert.Equal(t, period-3, f.get(t, alice).StakePeriodStart)
	assert.Equal(t, 10*hbar, f.get(t, alice).Balance)
}

func TestDeclinedRewardSettlesWithoutPayment(t *testing.T) {
	f := newFixture(true)
	f.stakeToNode(alice, 10*hbar)
	a, _ := f.accounts.GetForModify(alice)
	a.DeclineReward = true
	f.accounts.Flush()

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), balance(9*hbar))
	cs.Include(bob, f.snapshot(bob), balance(51*hbar))
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))

	assert.False(t, f.tracker.HasTrackedRewards())
	assert.Equal(t, 9*hbar, f.get(t, alice).Balance)
	assert.Equal(t, period-1, f.get(t, alice).StakePeriodStart)
	assert.Equal(t, 5000*hbar, f.get(t, funding).Balance)
}

func TestMetadataChangeResetsStakeHistory(t *testing.T) {
	f := newFixture(true)
	f.stakeToNode(alice, 10*hbar)

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), entity.AccountChanges{entity.AccountDeclineReward: property.Bool(true)})
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))

	// the reward up to the change is still paid
	assert.Equal(t, []sideeffects.AccountAmount{{alice, 2000}}, f.tracker.RewardsPaid())
	a := f.get(t, alice)
	assert.Equal(t, period, a.StakePeriodStart)
	assert.Equal(t, int64(-1), a.StakeAtStartOfLastRewardedPeriod)
	assert.False(t, a.RewardedSinceLastMetadataChange)

	info := f.node(t)
	assert.Zero(t, info.StakeToReward)
	assert.Equal(t, 10*hbar, info.StakeToNotReward)
}

func TestNoRewardBeforeActivation(t *testing.T) {
	f := newFixture(false)
	f.stakeToNode(alice, 10*hbar)
	f.accounts.Put(funding, account(999*hbar, 0))
	f.accounts.Flush()

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), balance(9*hbar))
	cs.Include(funding, f.snapshot(funding), balance(1000*hbar))
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))

	assert.False(t, f.tracker.HasTrackedRewards(), "no payment in the activating commit")
	assert.True(t, f.net().RewardsActivated())
	info := f.node(t)
	assert.Equal(t, period, info.RewardStartPeriod)
	assert.Equal(t, make([]int64, len(info.RewardSumHistory)), info.RewardSumHistory)

	// once active, activation never runs again
	info2, _ := f.infos.GetForModify(node0)
	info2.RewardSumHistory[0] = 7
	f.infos.Flush()
	cs = changeset.NewAccounts()
	cs.Include(funding, f.snapshot(funding), balance(0))
	cs.Include(bob, f.snapshot(bob), balance(1050*hbar))
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))
	assert.True(t, f.net().RewardsActivated())
	assert.Equal(t, int64(7), f.node(t).RewardSumHistory[0])
}

func TestBelowThresholdStaysInactive(t *testing.T) {
	f := newFixture(false)
	f.accounts.Put(funding, account(10*hbar, 0))
	f.accounts.Flush()

	cs := changeset.NewAccounts()
	cs.Include(funding, f.snapshot(funding), balance(11*hbar))
	cs.Include(bob, f.snapshot(bob), balance(49*hbar))
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))
	assert.False(t, f.net().RewardsActivated())
}

func TestStakeToAccountAppendsStakee(t *testing.T) {
	f := newFixture(true)
	f.accounts.Put(alice, account(100*hbar, 0))
	f.accounts.Flush()

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), entity.AccountChanges{entity.AccountStakedID: property.Int(int64(ledger.StakedToAccount(bob)))})
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))

	assert.Equal(t, 2, cs.Size())
	assert.Equal(t, bob, cs.ID(1))
	assert.Equal(t, 100*hbar, f.get(t, bob).StakedToMe)
	assert.Equal(t, int64(-1), f.get(t, alice).StakePeriodStart)
	assert.False(t, f.tracker.HasTrackedRewards())
}

func TestStakeeAlreadyPassedIsRewarded(t *testing.T) {
	f := newFixture(true)
	f.stakeToNode(bob, 50*hbar)
	f.accounts.Put(alice, account(100*hbar, 0))
	f.accounts.Flush()

	cs := changeset.NewAccounts()
	// bob comes first with no rewardable change of its own
	cs.Include(bob, f.snapshot(bob), entity.AccountChanges{})
	cs.Include(alice, f.snapshot(alice), entity.AccountChanges{entity.AccountStakedID: property.Int(int64(ledger.StakedToAccount(bob)))})
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))

	const reward = (300 - 100) * 50
	assert.Equal(t, []sideeffects.AccountAmount{{bob, reward}}, f.tracker.RewardsPaid())
	b := f.get(t, bob)
	assert.Equal(t, 50*hbar+reward, b.Balance)
	assert.Equal(t, 100*hbar, b.StakedToMe)
	assert.Equal(t, period-1, b.StakePeriodStart)
	assert.Equal(t, 150*hbar, f.node(t).StakeToReward)
}

func TestMovingStakeBetweenAccounts(t *testing.T) {
	f := newFixture(true)
	a := account(30*hbar, ledger.StakedToAccount(bob))
	f.accounts.Put(alice, a)
	b, _ := f.accounts.GetForModify(bob)
	b.StakedToMe = 30 * hbar
	f.accounts.Put(carol, account(0, 0))
	f.accounts.Flush()

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), entity.AccountChanges{
		entity.AccountStakedID: property.Int(int64(ledger.StakedToAccount(carol))),
		entity.AccountBalance:  property.Int(20 * hbar),
	})
	cs.Include(bob, f.snapshot(bob), balance(60*hbar))
	require.NoError(t, f.c.Commit(f.batch(), f.pipeline.Bind(cs)))

	assert.Zero(t, f.get(t, bob).StakedToMe)
	assert.Equal(t, 20*hbar, f.get(t, carol).StakedToMe)
}

func TestSelfStakingIsInvariantViolation(t *testing.T) {
	f := newFixture(true)
	f.accounts.Put(alice, account(10*hbar, 0))
	f.accounts.Flush()

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), entity.AccountChanges{entity.AccountStakedID: property.Int(int64(ledger.StakedToAccount(alice)))})
	err := f.c.Commit(f.batch(), f.pipeline.Bind(cs))
	assert.True(t, ledger.IsInvariantViolation(err))
	assert.Equal(t, ledger.StakedID(0), f.get(t, alice).StakedID)
}

func TestRewardOfDeletedAccountRedirected(t *testing.T) {
	f := newFixture(true)
	f.stakeToNode(alice, 10*hbar)

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), entity.AccountChanges{
		entity.AccountBalance:   property.Int(0),
		entity.AccountIsDeleted: property.Bool(true),
	})
	cs.Include(bob, f.snapshot(bob), balance(60*hbar))
	batch := f.batch()
	batch.Beneficiaries = map[ledger.AccountNum]ledger.AccountNum{alice: bob}
	require.NoError(t, f.c.Commit(batch, f.pipeline.Bind(cs)))

	const reward = (300 - 100) * 10
	assert.Equal(t, []sideeffects.AccountAmount{{bob, reward}}, f.tracker.RewardsPaid())
	assert.Equal(t, 60*hbar+reward, f.get(t, bob).Balance)
	assert.Zero(t, f.get(t, alice).Balance)
	assert.Zero(t, f.node(t).StakeToReward)
}

func TestRedirectWithoutBeneficiaryAborts(t *testing.T) {
	f := newFixture(true)
	f.stakeToNode(alice, 10*hbar)

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), entity.AccountChanges{
		entity.AccountBalance:   property.Int(0),
		entity.AccountIsDeleted: property.Bool(true),
	})
	cs.Include(bob, f.snapshot(bob), balance(60*hbar))
	err := f.c.Commit(f.batch(), f.pipeline.Bind(cs))
	assert.True(t, ledger.IsInvariantViolation(err))
	assert.Equal(t, 10*hbar, f.get(t, alice).Balance)
	assert.Equal(t, int64(1_000_000), f.net().PendingRewards)
}

func TestRedirectedRewardDeclinedByBeneficiary(t *testing.T) {
	f := newFixture(true)
	f.stakeToNode(alice, 10*hbar)

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), entity.AccountChanges{
		entity.AccountBalance:   property.Int(0),
		entity.AccountIsDeleted: property.Bool(true),
	})
	cs.Include(bob, f.snapshot(bob), entity.AccountChanges{
		entity.AccountBalance:       property.Int(60 * hbar),
		entity.AccountDeclineReward: property.Bool(true),
	})
	batch := f.batch()
	batch.Beneficiaries = map[ledger.AccountNum]ledger.AccountNum{alice: bob}
	require.NoError(t, f.c.Commit(batch, f.pipeline.Bind(cs)))

	assert.False(t, f.tracker.HasTrackedRewards())
	assert.Equal(t, 60*hbar, f.get(t, bob).Balance)
}

func TestNegativeBalanceOfStakerIsValidationError(t *testing.T) {
	f := newFixture(true)
	f.accounts.Put(alice, account(100*hbar, ledger.StakedToAccount(bob)))
	f.accounts.Put(carol, account(0, 0))
	f.accounts.Flush()

	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), balance(-5))
	cs.Include(carol, f.snapshot(carol), balance(100*hbar+5))
	err := f.c.Commit(f.batch(), f.pipeline.Bind(cs))
	require.Error(t, err)
	assert.True(t, ledger.IsValidationError(err))
	assert.False(t, ledger.IsInvariantViolation(err))
	assert.Equal(t, 100*hbar, f.get(t, alice).Balance)
	assert.Zero(t, f.get(t, bob).StakedToMe)
}

func TestAbortedCommitLeavesNoRewardState(t *testing.T) {
	f := newFixture(true)
	f.stakeToNode(alice, 10*hbar)

	// alice is settled before bob's self stake aborts the commit
	cs := changeset.NewAccounts()
	cs.Include(alice, f.snapshot(alice), balance(9*hbar))
	cs.Include(bob, f.snapshot(bob), entity.AccountChanges{
		entity.AccountBalance:  property.Int(51 * hbar),
		entity.AccountStakedID: property.Int(int64(ledger.StakedToAccount(bob))),
	})
	err := f.c.Commit(f.batch(), f.pipeline.Bind(cs))
	assert.True(t, ledger.IsInvariantViolation(err))

	got, rewarded := f.rewards.Rewarded(alice)
	assert.False(t, rewarded)
	assert.Zero(t, got)
	assert.Equal(t, period-3, f.get(t, alice).StakePeriodStart)
}
