// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commit

import (
	"github.com/pkg/errors"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/property"
	"github.com/vechain/ledger/store"
)

// Pipeline commits change sets of one entity kind into its backing map,
// running an ordered chain of interceptors around the writes.
type Pipeline[K comparable, E any, P property.Enum] struct {
	name         string
	store        store.Map[K, *E]
	table        *property.Table[P, E]
	create       func() *E
	interceptors []Interceptor[K, E, P]
}

// NewPipeline creates a pipeline. The interceptors run in the given order.
func NewPipeline[K comparable, E any, P property.Enum](
	name string,
	m store.Map[K, *E],
	table *property.Table[P, E],
	create func() *E,
	interceptors ...Interceptor[K, E, P],
) *Pipeline[K, E, P] {
	if m == nil || table == nil || create == nil {
		panic("commit: nil collaborator for pipeline " + name)
	}
	for _, ic := range interceptors {
		if ic == nil {
			panic("commit: nil interceptor for pipeline " + name)
		}
	}
	return &Pipeline[K, E, P]{
		name:         name,
		store:        m,
		table:        table,
		create:       create,
		interceptors: interceptors,
	}
}

func (p *Pipeline[K, E, P]) Name() string { return p.name }

// Bind returns the stage committing cs through this pipeline.
func (p *Pipeline[K, E, P]) Bind(cs *changeset.ChangeSet[K, E, P]) Stage {
	return &stage[K, E, P]{p: p, cs: cs}
}

// Stage is a pipeline bound to the change set of one commit.
type Stage interface {
	Name() string
	// Size is the current number of entries.
	Size() int

	begin(b *Batch) error
	validate() error
	preview() error
	beforeMaterialize() error
	materialize() error
	postCommit() error
	finalizeSideEffects() error
	abort()
}

type stage[K comparable, E any, P property.Enum] struct {
	p  *Pipeline[K, E, P]
	cs *changeset.ChangeSet[K, E, P]
}

func (s *stage[K, E, P]) Name() string { return s.p.name }
func (s *stage[K, E, P]) Size() int { return s.cs.Size() }

func (s *stage[K, E, P]) begin(b *Batch) error {
	for _, ic := range s.p.interceptors {
		if bg, ok := ic.(Beginner); ok {
			if err := bg.Begin(b); err != nil {
				return errors.Wrapf(err, "%s: begin", s.p.name)
			}
		}
	}
	return nil
}

// validate checks every diff of the caller against its entity, so malformed
// values are rejected before any interceptor acts on them.
func (s *stage[K, E, P]) validate() error {
	for i := 0; i < s.cs.Size(); i++ {
		if s.cs.IsRemoval(i) {
			continue
		}
		base := s.cs.Entity(i)
		if base == nil {
			base = s.p.create()
		}
		if err := s.p.table.Validate(base, s.cs.Changes(i)); err != nil {
			return errors.Wrapf(err, "%s: validate %v", s.p.name, s.cs.ID(i))
		}
	}
	return nil
}

func (s *stage[K, E, P]) preview() error {
	for _, ic := range s.p.interceptors {
		if err := ic.Preview(s.cs); err != nil {
			return errors.Wrapf(err, "%s: preview", s.p.name)
		}
	}
	return nil
}

func (s *stage[K, E, P]) beforeMaterialize() error {
	for _, ic := range s.p.interceptors {
		if bm, ok := ic.(BeforeMaterializer); ok {
			if err := bm.BeforeMaterialize(); err != nil {
				return errors.Wrapf(err, "%s: before materialize", s.p.name)
			}
		}
	}
	return nil
}

func (s *stage[K, E, P]) materialize() error {
	for i := 0; i < s.cs.Size(); i++ {
		if err := s.materializeEntry(i); err != nil {
			return errors.Wrapf(err, "%s: materialize %v", s.p.name, s.cs.ID(i))
		}
	}
	return nil
}

func (s *stage[K, E, P]) materializeEntry(i int) error {
	id := s.cs.ID(i)
	switch {
	case s.cs.IsCreation(i) && s.cs.IsRemoval(i):
		return ledger.NewInvariantError("entry neither exists nor carries changes")
	case s.cs.IsCreation(i):
		if _, ok := s.p.store.Get(id); ok {
			return ledger.NewInvariantError("created entity already exists")
		}
		e := s.p.create()
		if err := s.p.table.Apply(e, s.cs.Changes(i)); err != nil {
			return err
		}
		if err := s.finish(i, e); err != nil {
			return err
		}
		s.p.store.Put(id, e)
	case s.cs.IsRemoval(i):
		e, ok := s.p.store.GetForModify(id)
		if !ok {
			return ledger.NewInvariantError("removed entity does not exist")
		}
		if err := s.finish(i, e); err != nil {
			return err
		}
		s.p.store.Remove(id)
	default:
		e, ok := s.p.store.GetForModify(id)
		if !ok {
			return ledger.NewInvariantError("modified entity does not exist")
		}
		if err := s.p.table.Apply(e, s.cs.Changes(i)); err != nil {
			return err
		}
		if err := s.finish(i, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *stage[K, E, P]) finish(i int, e *E) error {
	for _, ic := range s.p.interceptors {
		if err := ic.Finish(i, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *stage[K, E, P]) postCommit() error {
	for _, ic := range s.p.interceptors {
		if err := ic.PostCommit(); err != nil {
			return errors.Wrapf(err, "%s: post commit", s.p.name)
		}
	}
	return nil
}

func (s *stage[K, E, P]) finalizeSideEffects() error {
	for _, ic := range s.p.interceptors {
		if f, ok := ic.(SideEffectsFinalizer); ok {
			if err := f.FinalizeSideEffects(); err != nil {
				return errors.Wrapf(err, "%s: finalize side effects", s.p.name)
			}
		}
	}
	return nil
}

func (s *stage[K, E, P]) abort() {
	for _, ic := range s.p.interceptors {
		if a, ok := ic.(Aborter); ok {
			a.Abort()
		}
	}
}
