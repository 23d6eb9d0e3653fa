// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commit

import (
	"github.com/vechain/ledger/log"
	"github.com/vechain/ledger/metrics"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/store"
)

var (
	logger = log.WithContext("pkg", "commit")

	metricCommits = metrics.LazyLoadCounterVec("commit_total", []string{"result"})
	metricEntries = metrics.LazyLoadHistogram("commit_entries", metrics.BucketEntries)
)

// Committer runs the stages of one transaction as a single atomic commit.
//
// Every diff is validated, then every stage is previewed, in order, before
// anything is written. Stages are then materialized in order, each preceded
// by its BeforeMaterialize hooks, and finally every PostCommit and
// FinalizeSideEffects hook runs. Any error reverts every map of the group,
// resets the tracker and notifies the Aborter interceptors.
type Committer struct {
	group   *store.Group
	tracker *sideeffects.Tracker
}

func NewCommitter(group *store.Group, tracker *sideeffects.Tracker) *Committer {
	if group == nil || tracker == nil {
		panic("commit: nil collaborator for committer")
	}
	return &Committer{group: group, tracker: tracker}
}

// Tracker returns the side effects of the last successful commit.
func (c *Committer) Tracker() *sideeffects.Tracker {
	return c.tracker
}

// Commit commits the given stages. Stages are previewed and materialized in
// the given order.
func (c *Committer) Commit(batch *Batch, stages ...Stage) error {
	c.tracker.Reset()
	cp := c.group.Checkpoint()

	if err := c.run(batch, stages); err != nil {
		c.group.RevertTo(cp)
		c.tracker.Reset()
		for _, s := range stages {
			s.abort()
		}
		metricCommits().AddWithLabel(1, map[string]string{"result": "aborted"})
		logger.Debug("commit aborted", "err", err)
		return err
	}
	c.group.Flush()

	entries := 0
	for _, s := range stages {
		entries += s.Size()
	}
	metricCommits().AddWithLabel(1, map[string]string{"result": "ok"})
	metricEntries().Observe(int64(entries))
	logger.Trace("committed", "entries", entries, "rewards", c.tracker.TotalRewardsPaid())
	return nil
}

func (c *Committer) run(batch *Batch, stages []Stage) error {
	for _, s := range stages {
		if err := s.begin(batch); err != nil {
			return err
		}
	}
	for _, s := range stages {
		if err := s.validate(); err != nil {
			return err
		}
	}
	for _, s := range stages {
		if err := s.preview(); err != nil {
			return err
		}
	}
	for _, s := range stages {
		if err := s.beforeMaterialize(); err != nil {
			return err
		}
		if err := s.materialize(); err != nil {
			return err
		}
	}
	for _, s := range stages {
		if err := s.postCommit(); err != nil {
			return err
		}
	}
	for _, s := range stages {
		if err := s.finalizeSideEffects(); err != nil {
			return err
		}
	}
	return nil
}
