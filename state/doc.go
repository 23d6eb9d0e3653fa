// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state assembles a ledger: the in-memory backing maps seeded from a
// genesis, the commit pipeline of each entity kind in materialization order,
// and the staking period calculator.
package state
