// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package property

import (
	"bytes"
	"fmt"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindBool
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	}
	return "none"
}

// Value is a tagged union holding one property value.
type Value struct {
	kind Kind
	num  int64
	flag bool
	raw  []byte
}

// Int creates an integer value.
func Int(v int64) Value { return Value{kind: KindInt, num: v} }

// Bool creates a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, flag: v} }

// Bytes creates a byte string value. The slice is not copied.
func Bytes(v []byte) Value { return Value{kind: KindBytes, raw: v} }

func (v Value) Kind() Kind { return v.kind }

// Int returns the integer held, or false if v is not an integer.
func (v Value) Int() (int64, bool) { return v.num, v.kind == KindInt }

// Bool returns the boolean held, or false if v is not a boolean.
func (v Value) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// Bytes returns the bytes held, or false if v is not a byte string.
func (v Value) Bytes() ([]byte, bool) { return v.raw, v.kind == KindBytes }

// Equal reports whether both values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
	case KindBytes:
		return bytes.Equal(v.raw, o.raw)
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.flag)
	case KindBytes:
		return fmt.Sprintf("0x%x", v.raw)
	}
	return "<none>"
}
