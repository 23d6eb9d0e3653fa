// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vechain/ledger/entity"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/property"
	"github.com/vechain/ledger/sideeffects"
	"github.com/vechain/ledger/state"
)

const hbar = ledger.HbarsToTinybars

func TestRunFixture(t *testing.T) {
	fx, err := loadFixture("testdata/transfer.yaml")
	require.NoError(t, err)
	assert.Equal(t, "transfer", fx.Name)

	r, _, err := runFixture(fx, ledger.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, r.Steps, 3)

	assert.Empty(t, r.Steps[0].Aborted)
	assert.Equal(t, []sideeffects.AccountAmount{{1001, -hbar}, {1002, hbar}}, r.Steps[0].HbarChanges)
	assert.Empty(t, r.Steps[0].RewardsPaid)

	require.NotNil(t, r.Steps[1].PeriodClosed)
	assert.True(t, *r.Steps[1].PeriodClosed)

	assert.Equal(t, "invariant violation", r.Steps[2].Aborted)
	assert.Empty(t, r.Steps[2].HbarChanges)

	balances := make(map[ledger.AccountNum]int64)
	for _, a := range r.Accounts {
		balances[a.Num] = a.Balance
	}
	assert.Equal(t, 9*hbar, balances[1001])
	assert.Equal(t, hbar+100, balances[1002])

	require.Len(t, r.Nodes, 1)
	assert.Equal(t, 9*hbar, r.Nodes[0].StakeToReward)
	assert.Equal(t, int64(20000), r.Network.LastPeriodCalculated)
	assert.True(t, strings.HasPrefix(r.Root, "0x"))
}

func TestReportIsDeterministic(t *testing.T) {
	run := func() string {
		fx, err := loadFixture("testdata/transfer.yaml")
		require.NoError(t, err)
		r, _, err := runFixture(fx, ledger.DefaultConfig())
		require.NoError(t, err)
		out, err := r.Marshal()
		require.NoError(t, err)
		return out
	}
	a, b := run(), run()
	assert.Equal(t, a, b)
	assert.Empty(t, reportDiff(a, b))

	diff := reportDiff(strings.Replace(a, "stakePeriodStart", "stakeperiodstart", 1), b)
	assert.Contains(t, diff, "--- Expected")
	assert.Contains(t, diff, "+++ Actual")
}

func TestDecodeFixtureRejectsUnknownFields(t *testing.T) {
	_, err := decodeFixture(strings.NewReader("name: x\nstepz: []\n"), "x")
	assert.Error(t, err)

	fx, err := decodeFixture(strings.NewReader("steps: []\n"), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", fx.Name)
}

func TestChangeSetsRejectMalformedSteps(t *testing.T) {
	g, err := state.LoadGenesis(strings.NewReader("accounts: [{num: 5, balance: 1}]"))
	require.NoError(t, err)
	s, err := state.New(g, ledger.DefaultConfig())
	require.NoError(t, err)

	cases := map[string]string{
		"unknown entity":    `accounts: [{id: "6", set: {BALANCE: 1}}]`,
		"unknown property":  `accounts: [{id: "5", set: {BALANZE: 1}}]`,
		"listed twice":      `accounts: [{id: "5"}, {id: "5"}]`,
		"create and remove": `accounts: [{id: "5", create: true, remove: true}]`,
		"malformed nft":     `nfts: [{id: "7", create: true}]`,
		"malformed rel":     `tokenRels: [{id: "5.7", create: true}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			var st Step
			require.NoError(t, yaml.Unmarshal([]byte(doc), &st))
			_, err := st.changeSets(s)
			assert.Error(t, err)
		})
	}

	var st Step
	require.NoError(t, yaml.Unmarshal([]byte(`accounts: [{id: "5", set: {BALANCE: 2, DECLINE_REWARD: true}}]`), &st))
	sets, err := st.changeSets(s)
	require.NoError(t, err)
	assert.Nil(t, sets.Tokens)
	assert.Equal(t, 1, sets.Accounts.Size())
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		doc  string
		want property.Value
	}{
		{"42", property.Int(42)},
		{"-1", property.Int(-1)},
		{"true", property.Bool(true)},
		{"0x0102", property.Bytes([]byte{1, 2})},
		{"nft:2002.3", entity.NftIDValue(ledger.NftID{Token: 2002, Serial: 3})},
		{"ART", property.Bytes([]byte("ART"))},
	}
	for _, tt := range tests {
		var node yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte(tt.doc), &node))
		got, err := parseValue(node.Content[0])
		require.NoError(t, err, tt.doc)
		assert.Equal(t, tt.want, got, tt.doc)
	}

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("[1, 2]"), &node))
	_, err := parseValue(node.Content[0])
	assert.Error(t, err)
}
