// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/vechain/ledger/ledger"

// Beneficiaries records, for one transaction, the account receiving the assets
// of each deleted account.
type Beneficiaries struct {
	m map[ledger.AccountNum]ledger.AccountNum
}

func NewBeneficiaries(m map[ledger.AccountNum]ledger.AccountNum) *Beneficiaries {
	cpy := make(map[ledger.AccountNum]ledger.AccountNum, len(m))
	for k, v := range m {
		cpy[k] = v
	}
	return &Beneficiaries{m: cpy}
}

// Size is the number of deletions, which bounds any redirect chain.
func (b *Beneficiaries) Size() int {
	return len(b.m)
}

func (b *Beneficiaries) Of(deleted ledger.AccountNum) (ledger.AccountNum, bool) {
	v, ok := b.m[deleted]
	return v, ok
}

// Resolve follows the beneficiaries of deleted accounts from start until it
// reaches an account that is not deleted. More redirects than deletions, or a
// deleted account without beneficiary, is an invariant violation.
func (b *Beneficiaries) Resolve(start ledger.AccountNum, isDeleted func(ledger.AccountNum) (bool, error)) (ledger.AccountNum, error) {
	cur := start
	for redirects := 0; ; redirects++ {
		deleted, err := isDeleted(cur)
		if err != nil {
			return 0, err
		}
		if !deleted {
			return cur, nil
		}
		if redirects == len(b.m) {
			return 0, ledger.NewInvariantError("reward for %v redirected more than %d times", start, len(b.m))
		}
		next, ok := b.m[cur]
		if !ok {
			return 0, ledger.NewInvariantError("deleted account %v has no beneficiary", cur)
		}
		cur = next
	}
}
