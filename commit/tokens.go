// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commit

import (
	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/store"
)

// TokenCreations counts the tokens created by a commit against the usage limits.
type TokenCreations struct {
	tokens       store.Map[ledger.TokenNum, *entity.Token]
	tracker      *sideeffects.Tracker
	maxNumber    int
	maxPerCommit int

	created []ledger.TokenNum
}

func NewTokenCreations(tokens store.Map[ledger.TokenNum, *entity.Token], tracker *sideeffects.Tracker, cfg ledger.TokensConfig) *TokenCreations {
	if tokens == nil || tracker == nil {
		panic("commit: nil collaborator for token creations")
	}
	return &TokenCreations{
		tokens:       tokens,
		tracker:      tracker,
		maxNumber:    cfg.MaxNumber,
		maxPerCommit: cfg.MaxPerCommit,
	}
}

func (t *TokenCreations) Preview(cs *changeset.Tokens) error {
	t.created = t.created[:0]
	created := 0
	for i := 0; i < cs.Size(); i++ {
		if cs.IsCreation(i) {
			created++
		}
	}
	if created == 0 {
		return nil
	}
	if created > t.maxPerCommit {
		return ledger.NewValidationError("", "%d tokens created, at most %d allowed per commit", created, t.maxPerCommit)
	}
	if existing := t.tokens.Size(); existing+created > t.maxNumber {
		return ledger.NewValidationError("", "token limit %d reached, %d exist", t.maxNumber, existing)
	}
	for i := 0; i < cs.Size(); i++ {
		if cs.IsCreation(i) {
			t.created = append(t.created, cs.ID(i))
		}
	}
	return nil
}

func (t *TokenCreations) Finish(int, *entity.Token) error { return nil }

func (t *TokenCreations) PostCommit() error { return nil }

// FinalizeSideEffects reports the created tokens once the whole commit went through.
func (t *TokenCreations) FinalizeSideEffects() error {
	for _, num := range t.created {
		t.tracker.TrackTokenCreation(num)
	}
	return nil
}

func (t *TokenCreations) Abort() {
	t.created = t.created[:0]
}
