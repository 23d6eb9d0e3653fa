// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

// HbarsToTinybars is the number of tinybars in a whole hbar.
const HbarsToTinybars int64 = 100_000_000

// RoundedToHbar truncates tinybars to a whole number of hbars, expressed in tinybars.
func RoundedToHbar(tinybars int64) int64 {
	return (tinybars / HbarsToTinybars) * HbarsToTinybars
}

// WholeHbars returns the number of whole hbars in tinybars.
func WholeHbars(tinybars int64) int64 {
	return tinybars / HbarsToTinybars
}
