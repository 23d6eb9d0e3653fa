// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import cli "gopkg.in/urfave/cli.v1"

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file, over the mainnet defaults",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	logJSONFlag = cli.BoolFlag{
		Name:  "log-json",
		Usage: "write logs as JSON",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "serve prometheus metrics on this address until interrupted",
	}
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "dump the final entities of each fixture",
	}
	parallelFlag = cli.IntFlag{
		Name:  "parallel",
		Value: 4,
		Usage: "number of fixtures run at once",
	}
)
