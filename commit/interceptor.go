// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commit

import (
	"time"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/property"
)

// Interceptor observes, expands or rejects the commit of one change set.
type Interceptor[K comparable, E any, P property.Enum] interface {
	// Preview runs before anything is written. It may append entries to cs.
	Preview(cs *changeset.ChangeSet[K, E, P]) error
	// Finish is called for entry i with the mutable entity, after its diff is
	// applied and before it is stored or removed.
	Finish(i int, e *E) error
	// PostCommit runs once every stage of the batch is materialized.
	PostCommit() error
}

// Beginner is implemented by interceptors that need the batch context.
// Begin runs before any preview.
type Beginner interface {
	Begin(b *Batch) error
}

// BeforeMaterializer is implemented by interceptors that mutate backing maps
// right before their own stage is materialized.
type BeforeMaterializer interface {
	BeforeMaterialize() error
}

// SideEffectsFinalizer is implemented by interceptors that emit side effects
// once every PostCommit has run.
type SideEffectsFinalizer interface {
	FinalizeSideEffects() error
}

// Aborter is implemented by interceptors holding per-commit state that must
// not outlive an aborted commit. Abort runs after the maps are reverted.
type Aborter interface {
	Abort()
}

// Batch is the context shared by every stage of one commit.
type Batch struct {
	ConsensusTime time.Time
	// Beneficiaries maps each account deleted by the transaction to the account
	// receiving its assets.
	Beneficiaries map[ledger.AccountNum]ledger.AccountNum
}
