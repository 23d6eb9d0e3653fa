// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()
	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	Counter("commits").Add(1)
	CounterVec("commit_results", []string{"result"}).AddWithLabel(1, map[string]string{"result": "ok"})
	Gauge("activated").Set(1)
	GaugeVec("node_stake", []string{"node"}).SetWithLabel(5, map[string]string{"node": "3"})
	hist := Histogram("entries", BucketEntries)
	for i := range rand.N(100) + 1 {
		hist.Observe(int64(i))
	}

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
