// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package store provides the backing maps the commit pipeline mutates.
// It follows the flow as bellow:
//
//	[ Map contract: Get / GetForModify / Put / Remove / KeySet ]
//	             |
//	      [ stacked map ] -> [ journal ] -> [ flush ] -> [ base map ]
//	             |
//	       [ checkpoint / revert ]
//
// Values handed out by Get must be treated as read-only snapshots. GetForModify
// returns a private copy at the current checkpoint level, so reverting a
// checkpoint drops every modification made through it.
package store
