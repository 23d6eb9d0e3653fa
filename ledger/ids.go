// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"cmp"
	"encoding/binary"
	"fmt"
)

// AccountNum is the entity number of an account.
type AccountNum int64

// TokenNum is the entity number of a token.
type TokenNum int64

// NodeNum is the id of a consensus node.
type NodeNum int64

func (a AccountNum) Compare(o AccountNum) int { return cmp.Compare(a, o) }
func (t TokenNum) Compare(o TokenNum) int { return cmp.Compare(t, o) }
func (n NodeNum) Compare(o NodeNum) int { return cmp.Compare(n, o) }

func (a AccountNum) String() string { return fmt.Sprintf("0.0.%d", int64(a)) }
func (t TokenNum) String() string { return fmt.Sprintf("0.0.%d", int64(t)) }
func (n NodeNum) String() string { return fmt.Sprintf("node%d", int64(n)) }

func (a AccountNum) Bytes() []byte { return binary.BigEndian.AppendUint64(nil, uint64(a)) }
func (t TokenNum) Bytes() []byte { return binary.BigEndian.AppendUint64(nil, uint64(t)) }
func (n NodeNum) Bytes() []byte { return binary.BigEndian.AppendUint64(nil, uint64(n)) }

// IsZero reports whether the number is the missing-entity sentinel.
func (a AccountNum) IsZero() bool { return a == 0 }

// NftID identifies a unique token by class and serial number.
type NftID struct {
	Token  TokenNum
	Serial int64
}

// MissingNftID is the zero NftID, used as the list terminator.
var MissingNftID = NftID{}

func (n NftID) IsZero() bool { return n == MissingNftID }

func (n NftID) Compare(o NftID) int {
	if c := cmp.Compare(n.Token, o.Token); c != 0 {
		return c
	}
	return cmp.Compare(n.Serial, o.Serial)
}

func (n NftID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(n.Token.Bytes(), uint64(n.Serial))
}

func (n NftID) String() string {
	return fmt.Sprintf("%v.%d", n.Token, n.Serial)
}

// RelKey is the composite key of a token relationship.
// Both halves are packed into one uint64, account in the high word.
type RelKey struct {
	Account AccountNum
	Token   TokenNum
}

// NewRelKey builds a RelKey.
func NewRelKey(account AccountNum, token TokenNum) RelKey {
	return RelKey{Account: account, Token: token}
}

// Packed returns the packed 64-bit form of the key.
func (k RelKey) Packed() uint64 {
	return uint64(uint32(k.Account))<<32 | uint64(uint32(k.Token))
}

// UnpackRelKey reverses Packed.
func UnpackRelKey(v uint64) RelKey {
	return RelKey{Account: AccountNum(v >> 32), Token: TokenNum(uint32(v))}
}

func (k RelKey) Compare(o RelKey) int {
	return cmp.Compare(k.Packed(), o.Packed())
}

func (k RelKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, k.Packed())
}

func (k RelKey) String() string {
	return fmt.Sprintf("%v-%v", k.Account, k.Token)
}

// Singleton is the key type of single-valued maps.
type Singleton struct{}

func (Singleton) Compare(Singleton) int { return 0 }
func (Singleton) Bytes() []byte { return nil }

// StakedID encodes a staking election:
// 0 is unset, >0 the account number staked to, <0 the node -(id+1).
type StakedID int64

// StakedToAccount returns the election staking to the given account.
func StakedToAccount(a AccountNum) StakedID { return StakedID(a) }

// StakedToNode returns the election staking to the given node.
func StakedToNode(n NodeNum) StakedID { return StakedID(-int64(n) - 1) }

func (s StakedID) IsUnset() bool { return s == 0 }
func (s StakedID) IsAccount() bool { return s > 0 }
func (s StakedID) IsNode() bool { return s < 0 }
func (s StakedID) Account() AccountNum { return AccountNum(s) }
func (s StakedID) Node() NodeNum { return NodeNum(-int64(s) - 1) }

func (s StakedID) String() string {
	switch {
	case s.IsNode():
		return s.Node().String()
	case s.IsAccount():
		return s.Account().String()
	}
	return "unset"
}
