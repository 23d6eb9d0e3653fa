// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/ledger/changeset"
	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/property"
	"github.com/vechain/ledger/state"
)

// Fixture is a genesis followed by the steps applied to it.
type Fixture struct {
	Name    string        `yaml:"name"`
	Genesis state.Genesis `yaml:"genesis"`
	Steps   []Step        `yaml:"steps"`
	// Expect is the report verify compares against.
	Expect string `yaml:"expect,omitempty"`
}

// Step is one transaction, or the close of a staking period when EndPeriod is set.
type Step struct {
	// Time is the consensus time, in unix seconds.
	Time          int64                                   `yaml:"time"`
	EndPeriod     bool                                    `yaml:"endPeriod,omitempty"`
	Beneficiaries map[ledger.AccountNum]ledger.AccountNum `yaml:"beneficiaries,omitempty"`
	Tokens        []Entry                                 `yaml:"tokens,omitempty"`
	Accounts      []Entry                                 `yaml:"accounts,omitempty"`
	Nfts          []Entry                                 `yaml:"nfts,omitempty"`
	TokenRels     []Entry                                 `yaml:"tokenRels,omitempty"`
}

// Entry is one change set entry. The id is an entity number, "token.serial"
// for nfts or "account-token" for token relationships.
type Entry struct {
	ID     string               `yaml:"id"`
	Create bool                 `yaml:"create,omitempty"`
	Remove bool                 `yaml:"remove,omitempty"`
	Set    map[string]yaml.Node `yaml:"set,omitempty"`
}

func (st *Step) ConsensusTime() time.Time {
	return time.Unix(st.Time, 0).UTC()
}

func loadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open fixture")
	}
	defer f.Close()
	return decodeFixture(f, path)
}

func decodeFixture(r io.Reader, name string) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, errors.Wrapf(err, "decode fixture %s", name)
	}
	if fx.Name == "" {
		fx.Name = name
	}
	return &fx, nil
}

// changeSets builds the change sets of a step, snapshotting entities from s.
func (st *Step) changeSets(s *state.State) (*state.ChangeSets, error) {
	sets := &state.ChangeSets{}
	var err error
	if len(st.Tokens) > 0 {
		if sets.Tokens, err = buildSet(changeset.NewTokens(), st.Tokens, parseTokenNum, s.Token); err != nil {
			return nil, errors.Wrap(err, "tokens")
		}
	}
	if len(st.Accounts) > 0 {
		if sets.Accounts, err = buildSet(changeset.NewAccounts(), st.Accounts, parseAccountNum, s.Account); err != nil {
			return nil, errors.Wrap(err, "accounts")
		}
	}
	if len(st.Nfts) > 0 {
		if sets.Nfts, err = buildSet(changeset.NewNfts(), st.Nfts, parseNftID, s.Nft); err != nil {
			return nil, errors.Wrap(err, "nfts")
		}
	}
	if len(st.TokenRels) > 0 {
		if sets.TokenRels, err = buildSet(changeset.NewTokenRels(), st.TokenRels, parseRelKey, s.TokenRel); err != nil {
			return nil, errors.Wrap(err, "token relationships")
		}
	}
	return sets, nil
}

func buildSet[K comparable, E any, P property.Enum](
	cs *changeset.ChangeSet[K, E, P],
	entries []Entry,
	parseID func(string) (K, error),
	get func(K) (*E, bool),
) (*changeset.ChangeSet[K, E, P], error) {
	for _, e := range entries {
		id, err := parseID(e.ID)
		if err != nil {
			return nil, err
		}
		if cs.IndexOf(id) >= 0 {
			return nil, fmt.Errorf("%v: listed twice", id)
		}
		cur, exists := get(id)
		switch {
		case e.Create && e.Remove:
			return nil, fmt.Errorf("%v: both created and removed", id)
		case e.Create:
			cur = nil
		case !exists:
			return nil, fmt.Errorf("%v: unknown entity", id)
		}
		if e.Remove {
			cs.IncludeRemoval(id, cur)
			continue
		}
		changes, err := parseChanges[P](e.Set)
		if err != nil {
			return nil, errors.Wrapf(err, "%v", id)
		}
		cs.Include(id, cur, changes)
	}
	return cs, nil
}

func parseChanges[P property.Enum](set map[string]yaml.Node) (property.Changes[P], error) {
	changes := make(property.Changes[P], len(set))
	for name, node := range set {
		p, ok := property.Lookup[P](name)
		if !ok {
			return nil, fmt.Errorf("unknown property %s", name)
		}
		v, err := parseValue(&node)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		changes[p] = v
	}
	return changes, nil
}

// parseValue maps YAML integers and booleans onto their kinds. Strings are
// byte values: 0x-prefixed hex, an nft id written "nft:token.serial", or raw text.
func parseValue(node *yaml.Node) (property.Value, error) {
	if node.Kind != yaml.ScalarNode {
		return property.Value{}, fmt.Errorf("line %d: scalar expected", node.Line)
	}
	if strings.HasPrefix(node.Value, "0x") {
		b, err := hexutil.Decode(node.Value)
		if err != nil {
			return property.Value{}, err
		}
		return property.Bytes(b), nil
	}
	switch node.Tag {
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return property.Value{}, err
		}
		return property.Int(n), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return property.Value{}, err
		}
		return property.Bool(b), nil
	}
	if s, ok := strings.CutPrefix(node.Value, "nft:"); ok {
		id, err := parseNftID(s)
		if err != nil {
			return property.Value{}, err
		}
		return entity.NftIDValue(id), nil
	}
	return property.Bytes([]byte(node.Value)), nil
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q", s)
	}
	return n, nil
}

func parseAccountNum(s string) (ledger.AccountNum, error) {
	n, err := parseInt(s)
	return ledger.AccountNum(n), err
}

func parseTokenNum(s string) (ledger.TokenNum, error) {
	n, err := parseInt(s)
	return ledger.TokenNum(n), err
}

func parseNftID(s string) (ledger.NftID, error) {
	tok, serial, ok := strings.Cut(s, ".")
	if !ok {
		return ledger.NftID{}, fmt.Errorf("malformed nft id %q", s)
	}
	t, err := parseTokenNum(tok)
	if err != nil {
		return ledger.NftID{}, err
	}
	n, err := parseInt(serial)
	if err != nil {
		return ledger.NftID{}, err
	}
	return ledger.NftID{Token: t, Serial: n}, nil
}

func parseRelKey(s string) (ledger.RelKey, error) {
	acc, tok, ok := strings.Cut(s, "-")
	if !ok {
		return ledger.RelKey{}, fmt.Errorf("malformed token relationship %q", s)
	}
	a, err := parseAccountNum(acc)
	if err != nil {
		return ledger.RelKey{}, err
	}
	t, err := parseTokenNum(tok)
	if err != nil {
		return ledger.RelKey{}, err
	}
	return ledger.NewRelKey(a, t), nil
}
