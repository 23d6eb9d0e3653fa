// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"maps"
	"slices"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/commit"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/log"
	"github.com/vechain/ledger/metrics"
	"github.com/vechain/ledger/property"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/store"
)

var (
	logger = log.WithContext("pkg", "staking")

	metricRewardsPaid = metrics.LazyLoadCounter("staking_rewards_paid_total")
	metricActivated   = metrics.LazyLoadGauge("staking_rewards_activated")
)

// RewardsInterceptor pays staking rewards and propagates stake changes for
// the accounts of a commit.
//
// Entries are processed in index order. Processing an entry first pays its
// pending reward when eligible, then moves its contribution to the stakedToMe
// of the account it stakes to. A stakee missing from the change set is
// appended, and a stakee already passed by the loop is processed again right
// away, so its eligibility reflects the change.
type RewardsInterceptor struct {
	accounts store.Map[ledger.AccountNum, *entity.Account]
	network  store.Map[ledger.Singleton, *entity.NetworkContext]
	infos    *InfoManager
	periods  *PeriodManager
	calc     *RewardCalculator
	tracker  *sideeffects.Tracker
	cfg      ledger.Config

	// state of the current commit
	cs            *changeset.Accounts
	period        int64
	activated     bool
	beneficiaries *Beneficiaries
	cursor        int
	entries       []*entryState
	rewardsPaid   int64
	debited       int64
	nodeDeltas    map[ledger.NodeNum]*nodeDelta
	activate      bool
}

// entryState is the bookkeeping of one change set entry.
type entryState struct {
	rewarded bool
	reward   int64
	// applied is the stakedToMe contribution currently reflected on its stakee.
	applied *contribution
}

type contribution struct {
	stakee ledger.AccountNum
	amount int64
}

func (c *contribution) equal(o *contribution) bool {
	if c == nil || o == nil {
		return c == o
	}
	return *c == *o
}

type nodeDelta struct {
	toReward    int64
	toNotReward int64
}

func NewRewardsInterceptor(
	accounts store.Map[ledger.AccountNum, *entity.Account],
	network store.Map[ledger.Singleton, *entity.NetworkContext],
	infos *InfoManager,
	tracker *sideeffects.Tracker,
	cfg ledger.Config,
) *RewardsInterceptor {
	if accounts == nil || network == nil || infos == nil || tracker == nil {
		panic("staking: nil collaborator for rewards interceptor")
	}
	periods := NewPeriodManager(cfg.Staking)
	return &RewardsInterceptor{
		accounts: accounts,
		network:  network,
		infos:    infos,
		periods:  periods,
		calc:     NewRewardCalculator(periods),
		tracker:  tracker,
		cfg:      cfg,
	}
}

func (r *RewardsInterceptor) Begin(b *commit.Batch) error {
	net, ok := r.network.Get(ledger.Singleton{})
	if !ok {
		return ledger.NewInvariantError("network context missing")
	}
	r.period = r.periods.PeriodOf(b.ConsensusTime)
	r.activated = net.RewardsActivated()
	r.beneficiaries = NewBeneficiaries(b.Beneficiaries)
	return nil
}

func (r *RewardsInterceptor) Preview(cs *changeset.Accounts) error {
	r.cs = cs
	r.entries = r.entries[:0]
	r.rewardsPaid = 0
	r.debited = 0
	r.nodeDeltas = make(map[ledger.NodeNum]*nodeDelta)
	r.activate = false
	if r.beneficiaries == nil {
		r.beneficiaries = NewBeneficiaries(nil)
	}

	r.cursor = 0
	if err := r.settle(); err != nil {
		return err
	}
	// funding may pull in more entries, settled in turn
	for r.debited < r.rewardsPaid {
		if err := r.fundRewards(r.rewardsPaid - r.debited); err != nil {
			return err
		}
		if err := r.settle(); err != nil {
			return err
		}
	}
	if err := r.computeNodeDeltas(); err != nil {
		return err
	}
	return r.checkActivation()
}

// settle processes every entry from the cursor to the end of the change set.
func (r *RewardsInterceptor) settle() error {
	for ; r.cursor < r.cs.Size(); r.cursor++ {
		if err := r.process(r.cursor); err != nil {
			return err
		}
	}
	return nil
}

func (r *RewardsInterceptor) process(i int) error {
	if err := r.rewardIfEligible(i); err != nil {
		return err
	}
	return r.sync(i)
}

func (r *RewardsInterceptor) state(i int) *entryState {
	for len(r.entries) <= i {
		j := len(r.entries)
		st := &entryState{}
		if cur := r.cs.Entity(j); cur != nil && cur.StakedID.IsAccount() && !cur.Deleted {
			st.applied = &contribution{stakee: cur.StakedID.Account(), amount: cur.Balance}
		}
		r.entries = append(r.entries, st)
	}
	return r.entries[i]
}

// touch reprocesses entry i if the loop has already passed it.
func (r *RewardsInterceptor) touch(i int) error {
	if i < r.cursor {
		return r.process(i)
	}
	return nil
}

func (r *RewardsInterceptor) rewardIfEligible(i int) error {
	st := r.state(i)
	if st.rewarded || !r.activated {
		return nil
	}
	cur := r.cs.Entity(i)
	if cur == nil || !cur.StakedID.IsNode() || !r.periods.IsRewardable(cur.StakePeriodStart, r.period) {
		return nil
	}
	if !r.hasRewardableChange(i) {
		return nil
	}
	st.rewarded = true
	if cur.DeclineReward {
		return nil
	}

	info, err := r.infos.Get(cur.StakedID.Node())
	if err != nil {
		return err
	}
	reward, err := r.calc.Compute(cur, info, r.period)
	if err != nil || reward == 0 {
		return err
	}
	return r.pay(i, st, reward)
}

func (r *RewardsInterceptor) hasRewardableChange(i int) bool {
	if r.cs.IsRemoval(i) {
		return true
	}
	changes := r.cs.Changes(i)
	return changes.Has(entity.AccountBalance) ||
		changes.Has(entity.AccountStakedID) ||
		changes.Has(entity.AccountDeclineReward) ||
		changes.Has(entity.AccountStakedToMe)
}

// pay credits reward earned by entry i, redirecting it away from deleted accounts.
func (r *RewardsInterceptor) pay(i int, st *entryState, reward int64) error {
	earner := r.cs.ID(i)
	receiver, err := r.beneficiaries.Resolve(earner, r.isDeleted)
	if err != nil {
		return err
	}
	k, err := r.include(receiver)
	if err != nil {
		return err
	}
	if receiver != earner {
		declines, err := r.boolAfter(k, entity.AccountDeclineReward)
		if err != nil {
			return err
		}
		if declines {
			logger.Debug("redirected reward declined", "earner", earner, "beneficiary", receiver, "reward", reward)
			return nil
		}
	}
	if r.cs.IsRemoval(k) {
		return ledger.NewInvariantError("reward of %v paid to removed account %v", earner, receiver)
	}

	_, balance, err := commit.Balances(r.cs, k)
	if err != nil {
		return err
	}
	r.cs.Set(k, entity.AccountBalance, property.Int(balance+reward))
	r.tracker.TrackHbarChange(receiver, reward)
	r.tracker.TrackRewardPayment(receiver, reward)
	r.rewardsPaid += reward
	st.reward = reward
	if k != i {
		return r.touch(k)
	}
	return nil
}

// sync moves the stakedToMe contribution of entry i to its final stakee and amount.
func (r *RewardsInterceptor) sync(i int) error {
	st := r.state(i)
	desired, err := r.desiredContribution(i)
	if err != nil {
		return err
	}
	if st.applied.equal(desired) {
		return nil
	}
	old := st.applied
	st.applied = desired

	if old != nil {
		if err := r.adjustStakedToMe(old.stakee, -old.amount); err != nil {
			return err
		}
	}
	if desired != nil {
		return r.adjustStakedToMe(desired.stakee, desired.amount)
	}
	return nil
}

func (r *RewardsInterceptor) desiredContribution(i int) (*contribution, error) {
	if r.cs.IsRemoval(i) {
		return nil, nil
	}
	deleted, err := r.boolAfter(i, entity.AccountIsDeleted)
	if err != nil || deleted {
		return nil, err
	}
	stakedID, err := r.intAfter(i, entity.AccountStakedID)
	if err != nil || !ledger.StakedID(stakedID).IsAccount() {
		return nil, err
	}
	stakee := ledger.StakedID(stakedID).Account()
	if stakee == r.cs.ID(i) {
		return nil, ledger.NewInvariantError("account %v staked to itself", stakee)
	}
	_, balance, err := commit.Balances(r.cs, i)
	if err != nil {
		return nil, err
	}
	return &contribution{stakee: stakee, amount: balance}, nil
}

func (r *RewardsInterceptor) adjustStakedToMe(stakee ledger.AccountNum, delta int64) error {
	if delta == 0 {
		return nil
	}
	k, err := r.include(stakee)
	if err != nil {
		return err
	}
	if r.cs.IsRemoval(k) {
		return ledger.NewInvariantError("stakee %v is removed", stakee)
	}
	stakedToMe, err := r.intAfter(k, entity.AccountStakedToMe)
	if err != nil {
		return err
	}
	if stakedToMe+delta < 0 {
		return ledger.NewInvariantError("stakedToMe of %v would be %d", stakee, stakedToMe+delta)
	}
	r.cs.Set(k, entity.AccountStakedToMe, property.Int(stakedToMe+delta))
	return r.touch(k)
}

// include returns the index of num, appending the account when absent.
func (r *RewardsInterceptor) include(num ledger.AccountNum) (int, error) {
	if k := r.cs.IndexOf(num); k >= 0 {
		return k, nil
	}
	cur, ok := r.accounts.Get(num)
	if !ok {
		return -1, ledger.NewInvariantError("account %v missing", num)
	}
	return r.cs.Include(num, cur, entity.AccountChanges{}), nil
}

func (r *RewardsInterceptor) isDeleted(num ledger.AccountNum) (bool, error) {
	if k := r.cs.IndexOf(num); k >= 0 {
		if r.cs.IsRemoval(k) {
			return true, nil
		}
		return r.boolAfter(k, entity.AccountIsDeleted)
	}
	cur, ok := r.accounts.Get(num)
	if !ok {
		return false, ledger.NewInvariantError("account %v missing", num)
	}
	return cur.Deleted, nil
}

// valueAfter returns property p of entry i as it will be after the commit.
func (r *RewardsInterceptor) valueAfter(i int, p entity.AccountProperty) (property.Value, error) {
	if changes := r.cs.Changes(i); changes != nil {
		if v, ok := changes.Get(p); ok {
			return v, nil
		}
	}
	cur := r.cs.Entity(i)
	if cur == nil {
		cur = entity.NewAccount()
	}
	return entity.AccountTable.Get(cur, p)
}

func (r *RewardsInterceptor) intAfter(i int, p entity.AccountProperty) (int64, error) {
	v, err := r.valueAfter(i, p)
	if err != nil {
		return 0, err
	}
	n, ok := v.Int()
	if !ok {
		return 0, ledger.NewValidationError(p.String(), "expected int, got %s", v.Kind())
	}
	return n, nil
}

func (r *RewardsInterceptor) boolAfter(i int, p entity.AccountProperty) (bool, error) {
	v, err := r.valueAfter(i, p)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	if !ok {
		return false, ledger.NewValidationError(p.String(), "expected bool, got %s", v.Kind())
	}
	return b, nil
}

// fundRewards debits amount from the staking reward account.
func (r *RewardsInterceptor) fundRewards(amount int64) error {
	funding := r.cfg.Accounts.StakingRewardAccount
	k, err := r.include(funding)
	if err != nil {
		return err
	}
	if r.cs.IsRemoval(k) {
		return ledger.NewInvariantError("staking reward account %v is removed", funding)
	}
	_, balance, err := commit.Balances(r.cs, k)
	if err != nil {
		return err
	}
	r.cs.Set(k, entity.AccountBalance, property.Int(balance-amount))
	r.tracker.TrackHbarChange(funding, -amount)
	r.debited += amount
	return r.touch(k)
}

// computeNodeDeltas derives the change of stake elected to each node from the
// initial and final state of every entry.
func (r *RewardsInterceptor) computeNodeDeltas() error {
	for i := 0; i < r.cs.Size(); i++ {
		if cur := r.cs.Entity(i); cur != nil && cur.StakedID.IsNode() && !cur.Deleted {
			r.addNodeStake(cur.StakedID.Node(), -ledger.RoundedToHbar(cur.TotalStake()), cur.DeclineReward)
		}
		if r.cs.IsRemoval(i) {
			continue
		}
		deleted, err := r.boolAfter(i, entity.AccountIsDeleted)
		if err != nil {
			return err
		}
		stakedID, err := r.intAfter(i, entity.AccountStakedID)
		if err != nil {
			return err
		}
		if deleted || !ledger.StakedID(stakedID).IsNode() {
			continue
		}
		_, balance, err := commit.Balances(r.cs, i)
		if err != nil {
			return err
		}
		stakedToMe, err := r.intAfter(i, entity.AccountStakedToMe)
		if err != nil {
			return err
		}
		declines, err := r.boolAfter(i, entity.AccountDeclineReward)
		if err != nil {
			return err
		}
		r.addNodeStake(ledger.StakedID(stakedID).Node(), ledger.RoundedToHbar(balance+stakedToMe), declines)
	}
	return nil
}

func (r *RewardsInterceptor) addNodeStake(node ledger.NodeNum, amount int64, declines bool) {
	d, ok := r.nodeDeltas[node]
	if !ok {
		d = &nodeDelta{}
		r.nodeDeltas[node] = d
	}
	if declines {
		d.toNotReward += amount
	} else {
		d.toReward += amount
	}
}

// checkActivation activates rewards when this commit brings the funding
// account to the start threshold.
func (r *RewardsInterceptor) checkActivation() error {
	if r.activated {
		return nil
	}
	k := r.cs.IndexOf(r.cfg.Accounts.StakingRewardAccount)
	if k < 0 {
		return nil
	}
	_, balance, err := commit.Balances(r.cs, k)
	if err != nil {
		return err
	}
	r.activate = balance >= r.cfg.Staking.StartThreshold
	return nil
}

// Finish updates the reward period bookkeeping of entry i.
func (r *RewardsInterceptor) Finish(i int, account *entity.Account) error {
	if r.cs.IsRemoval(i) {
		return nil
	}
	st := r.state(i)
	var curStakedID ledger.StakedID
	var curDecline bool
	cur := r.cs.Entity(i)
	if cur != nil {
		curStakedID, curDecline = cur.StakedID, cur.DeclineReward
	}
	metaChanged := curStakedID != account.StakedID || curDecline != account.DeclineReward

	sc := ForCase(curStakedID, account.StakedID)
	switch {
	case sc.AwardsToNode() && (!sc.WithdrawsFromNode() || metaChanged):
		account.StakePeriodStart = r.period
	case sc.AwardsToNode() && st.rewarded:
		account.StakePeriodStart = r.period - 1
	case sc.WithdrawsFromNode() && !sc.AwardsToNode():
		account.StakePeriodStart = -1
	}
	if metaChanged {
		logger.Trace("staking election changed", "account", r.cs.ID(i), "scenario", sc, "period", r.period)
	}

	switch {
	case metaChanged:
		account.StakeAtStartOfLastRewardedPeriod = -1
		account.RewardedSinceLastMetadataChange = false
	case st.rewarded:
		account.StakeAtStartOfLastRewardedPeriod = ledger.RoundedToHbar(cur.TotalStake())
		account.RewardedSinceLastMetadataChange = true
	}
	return nil
}

// PostCommit applies the node stake changes, activates rewards once the
// funding threshold is reached and reduces the pending rewards by those paid.
func (r *RewardsInterceptor) PostCommit() error {
	for _, node := range slices.Sorted(maps.Keys(r.nodeDeltas)) {
		d := r.nodeDeltas[node]
		if d.toReward == 0 && d.toNotReward == 0 {
			continue
		}
		if err := r.infos.ApplyStakeDelta(node, d.toReward, d.toNotReward); err != nil {
			return err
		}
	}

	if !r.activate && r.rewardsPaid == 0 {
		return nil
	}
	net, ok := r.network.GetForModify(ledger.Singleton{})
	if !ok {
		return ledger.NewInvariantError("network context missing")
	}
	if r.activate && net.ActivateRewards() {
		if err := r.infos.ResetAll(r.period); err != nil {
			return err
		}
		metricActivated().Set(1)
		logger.Info("staking rewards activated", "period", r.period)
	}
	if r.rewardsPaid > 0 {
		net.DecreasePendingRewards(r.rewardsPaid)
		metricRewardsPaid().Add(r.rewardsPaid)
	}
	return nil
}

// Abort drops the bookkeeping of an aborted commit.
func (r *RewardsInterceptor) Abort() {
	r.cs = nil
	r.entries = r.entries[:0]
	r.nodeDeltas = nil
	r.rewardsPaid = 0
	r.debited = 0
	r.activate = false
}

// Rewarded reports the reward paid for the entry with the given id in the last
// successful commit, and whether the entry went through a reward settlement at all.
func (r *RewardsInterceptor) Rewarded(num ledger.AccountNum) (int64, bool) {
	if r.cs == nil {
		return 0, false
	}
	i := r.cs.IndexOf(num)
	if i < 0 || i >= len(r.entries) {
		return 0, false
	}
	return r.entries[i].reward, r.entries[i].rewarded
}
