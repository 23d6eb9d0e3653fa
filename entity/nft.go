// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package entity

import (
	"encoding/binary"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/property"
)

// Nft is a unique token.
// Nfts owned by an account other than the treasury form a doubly linked list
// rooted at the owner's HeadNft.
type Nft struct {
	// Owner is 0 while the treasury holds the nft.
	Owner    ledger.AccountNum
	Metadata []byte
	Prev     ledger.NftID
	Next     ledger.NftID
}

func NewNft() *Nft {
	return &Nft{}
}

func (n *Nft) Clone() *Nft {
	cpy := *n
	cpy.Metadata = append([]byte(nil), n.Metadata...)
	return &cpy
}

// IsLinked reports whether the nft has a neighbour in its owner's list.
func (n *Nft) IsLinked() bool {
	return !n.Prev.IsZero() || !n.Next.IsZero()
}

func (n *Nft) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		uint64(n.Owner),
		n.Metadata,
		uint64(n.Prev.Token), uint64(n.Prev.Serial),
		uint64(n.Next.Token), uint64(n.Next.Serial),
	})
}

// NftIDValue encodes an nft id as a property value.
func NftIDValue(id ledger.NftID) property.Value {
	return property.Bytes(id.Bytes())
}

func nftIDFromValue(name string, v property.Value) (ledger.NftID, error) {
	b, ok := v.Bytes()
	if !ok {
		return ledger.NftID{}, ledger.NewValidationError(name, "expected bytes, got %v", v.Kind())
	}
	if len(b) != 16 {
		return ledger.NftID{}, ledger.NewValidationError(name, "malformed nft id of %d bytes", len(b))
	}
	return ledger.NftID{
		Token:  ledger.TokenNum(binary.BigEndian.Uint64(b[:8])),
		Serial: int64(binary.BigEndian.Uint64(b[8:])),
	}, nil
}

// NftProperty enumerates the nft properties a change set may carry.
type NftProperty uint8

const (
	NftOwner NftProperty = iota
	NftMetadata
)

func (p NftProperty) String() string {
	switch p {
	case NftOwner:
		return "OWNER"
	case NftMetadata:
		return "METADATA"
	}
	return "UNKNOWN"
}

// NftChanges is the property diff of one nft.
type NftChanges = property.Changes[NftProperty]

// NftTable is the accessor table of NftProperty.
var NftTable = property.NewTable(map[NftProperty]property.Accessor[Nft]{
	NftOwner: {
		Get: func(n *Nft) property.Value { return property.Int(int64(n.Owner)) },
		Set: property.IntSetter("OWNER", property.NonNegative("OWNER"), func(n *Nft, v int64) { n.Owner = ledger.AccountNum(v) }),
	},
	NftMetadata: {
		Get: func(n *Nft) property.Value { return property.Bytes(n.Metadata) },
		Set: property.BytesSetter("METADATA", func(n *Nft, v []byte) { n.Metadata = v }),
	},
})
