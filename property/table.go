// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package property

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/ledger/ledger"
)

// Enum is the constraint on property enumerations.
type Enum interface {
	~uint8
	String() string
}

// Changes maps properties to their new values.
type Changes[P Enum] map[P]Value

// Get returns the changed value of p, if any.
func (c Changes[P]) Get(p P) (Value, bool) {
	v, ok := c[p]
	return v, ok
}

// Has reports whether p is changed.
func (c Changes[P]) Has(p P) bool {
	_, ok := c[p]
	return ok
}

// Keys returns the changed properties in ascending order.
func (c Changes[P]) Keys() []P {
	keys := make([]P, 0, len(c))
	for p := range c {
		keys = append(keys, p)
	}
	slices.SortFunc(keys, func(a, b P) int { return cmp.Compare(a, b) })
	return keys
}

// Accessor is the getter/setter pair of one property over the mutable entity E.
type Accessor[E any] struct {
	Get func(e *E) Value
	Set func(e *E, v Value) error
}

// Table maps each property of an enumeration to its accessor.
type Table[P Enum, E any] struct {
	accessors map[P]Accessor[E]
}

// NewTable builds a table. It panics if an accessor is incomplete.
func NewTable[P Enum, E any](accessors map[P]Accessor[E]) *Table[P, E] {
	for p, a := range accessors {
		if a.Get == nil || a.Set == nil {
			panic("property: incomplete accessor for " + p.String())
		}
	}
	return &Table[P, E]{accessors: accessors}
}

// Get returns the value of p in e.
func (t *Table[P, E]) Get(e *E, p P) (Value, error) {
	a, ok := t.accessors[p]
	if !ok {
		return Value{}, ledger.NewValidationError(p.String(), "unknown property")
	}
	return a.Get(e), nil
}

// Set assigns v to p in e.
func (t *Table[P, E]) Set(e *E, p P, v Value) error {
	a, ok := t.accessors[p]
	if !ok {
		return ledger.NewValidationError(p.String(), "unknown property")
	}
	return a.Set(e, v)
}

// Apply sets every changed property on e, in ascending property order.
// It stops at the first rejected assignment.
func (t *Table[P, E]) Apply(e *E, changes Changes[P]) error {
	for _, p := range changes.Keys() {
		if err := t.Set(e, p, changes[p]); err != nil {
			return errors.Wrapf(err, "apply %s", p)
		}
	}
	return nil
}

// Validate checks every change against a scratch copy, leaving the entity untouched.
func (t *Table[P, E]) Validate(e *E, changes Changes[P]) error {
	var scratch E
	if e != nil {
		scratch = *e
	}
	return t.Apply(&scratch, changes)
}

// IntSetter returns a setter accepting integer values accepted by check.
func IntSetter[E any](name string, check func(int64) error, set func(e *E, v int64)) func(*E, Value) error {
	return func(e *E, v Value) error {
		n, ok := v.Int()
		if !ok {
			return ledger.NewValidationError(name, "expected int, got %v", v.Kind())
		}
		if check != nil {
			if err := check(n); err != nil {
				return err
			}
		}
		set(e, n)
		return nil
	}
}

// BoolSetter returns a setter accepting boolean values.
func BoolSetter[E any](name string, set func(e *E, v bool)) func(*E, Value) error {
	return func(e *E, v Value) error {
		b, ok := v.Bool()
		if !ok {
			return ledger.NewValidationError(name, "expected bool, got %v", v.Kind())
		}
		set(e, b)
		return nil
	}
}

// BytesSetter returns a setter accepting byte string values. The bytes are copied.
func BytesSetter[E any](name string, set func(e *E, v []byte)) func(*E, Value) error {
	return func(e *E, v Value) error {
		b, ok := v.Bytes()
		if !ok {
			return ledger.NewValidationError(name, "expected bytes, got %v", v.Kind())
		}
		set(e, append([]byte(nil), b...))
		return nil
	}
}

// NonNegative rejects negative integers for the named property.
func NonNegative(name string) func(int64) error {
	return func(n int64) error {
		if n < 0 {
			return ledger.NewValidationError(name, "negative value %d", n)
		}
		return nil
	}
}

// Lookup returns the property of enumeration P named name.
func Lookup[P Enum](name string) (P, bool) {
	var zero P
	if name == "UNKNOWN" {
		return zero, false
	}
	for i := 0; i < 256; i++ {
		if p := P(i); p.String() == name {
			return p, true
		}
	}
	return zero, false
}
