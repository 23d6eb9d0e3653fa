// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/ledger/commit"
	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/log"
	"github.com/vechain/ledger/metrics"
	"github.com/vechain/ledger/state"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "ledgersim")
)

func main() {
	app := cli.App{
		Name:    "ledgersim",
		Version: fmt.Sprintf("%s-%s", version, gitCommit),
		Usage:   "replay ledger fixtures through the commit pipelines",
		Flags:   []cli.Flag{configFlag, verbosityFlag, logJSONFlag, metricsAddrFlag},
		Before:  beforeAction,
		Commands: []cli.Command{
			{
				Name:      "run",
				Usage:     "run fixtures and print their reports",
				ArgsUsage: "<fixture.yaml>...",
				Flags:     []cli.Flag{dumpFlag, parallelFlag},
				Action:    runAction,
			},
			{
				Name:      "verify",
				Usage:     "run fixtures and compare their reports with the expected ones",
				ArgsUsage: "<fixture.yaml>...",
				Flags:     []cli.Flag{parallelFlag},
				Action:    verifyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		os.Exit(1)
	}
}

func beforeAction(ctx *cli.Context) error {
	initLogger(ctx)
	if ctx.GlobalString(metricsAddrFlag.Name) != "" {
		metrics.InitializePrometheusMetrics()
	}
	return nil
}

type result struct {
	fixture *Fixture
	report  *Report
	state   *state.State
}

func runAction(ctx *cli.Context) error {
	results, err := runFixtures(ctx)
	if err != nil {
		return err
	}
	config := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}
	for _, res := range results {
		out, err := res.report.Marshal()
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n%s", res.fixture.Name, out)
		if ctx.Bool(dumpFlag.Name) {
			dumpState(&config, os.Stdout, res.state)
		}
	}
	return waitMetrics(ctx)
}

func verifyAction(ctx *cli.Context) error {
	results, err := runFixtures(ctx)
	if err != nil {
		return err
	}
	failed := 0
	for _, res := range results {
		out, err := res.report.Marshal()
		if err != nil {
			return err
		}
		if diff := reportDiff(res.fixture.Expect, out); diff != "" {
			failed++
			fmt.Printf("FAIL %s\n%s", res.fixture.Name, diff)
			continue
		}
		fmt.Printf("ok   %s\n", res.fixture.Name)
	}
	if err := waitMetrics(ctx); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fixtures failed", failed, len(results))
	}
	return nil
}

func runFixtures(ctx *cli.Context) ([]result, error) {
	paths := ctx.Args()
	if len(paths) == 0 {
		return nil, errors.New("no fixture given")
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]result, len(paths))
	var g errgroup.Group
	g.SetLimit(max(ctx.Int(parallelFlag.Name), 1))
	for i, path := range paths {
		g.Go(func() error {
			fx, err := loadFixture(path)
			if err != nil {
				return err
			}
			report, s, err := runFixture(fx, cfg)
			if err != nil {
				return errors.Wrap(err, fx.Name)
			}
			results[i] = result{fixture: fx, report: report, state: s}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runFixture applies every step of fx to a fresh state. Aborted commits are
// part of the report, malformed steps are errors.
func runFixture(fx *Fixture, cfg ledger.Config) (*Report, *state.State, error) {
	s, err := state.New(&fx.Genesis, cfg)
	if err != nil {
		return nil, nil, err
	}

	r := &Report{}
	for i := range fx.Steps {
		st := &fx.Steps[i]
		if st.EndPeriod {
			closed, err := s.EndPeriod(st.ConsensusTime())
			r.Steps = append(r.Steps, endPeriodReport(i, closed, err))
			continue
		}
		sets, err := st.changeSets(s)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "step %d", i)
		}
		err = s.Commit(&commit.Batch{ConsensusTime: st.ConsensusTime(), Beneficiaries: st.Beneficiaries}, sets)
		if err != nil {
			logger.Debug("step aborted", "fixture", fx.Name, "step", i, "err", err)
		}
		r.Steps = append(r.Steps, commitReport(i, err, s.SideEffects()))
	}
	if err := r.finish(s); err != nil {
		return nil, nil, err
	}
	logger.Info("fixture done", "fixture", fx.Name, "steps", len(fx.Steps), "root", r.Root)
	return r, s, nil
}

func reportDiff(expected, actual string) string {
	if expected == actual {
		return ""
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	return diff
}

func dumpState(config *spew.ConfigState, w io.Writer, s *state.State) {
	for _, num := range s.AccountNums() {
		a, _ := s.Account(num)
		config.Fdump(w, a)
	}
	for _, node := range s.Nodes() {
		info, _ := s.StakingInfo(node)
		config.Fdump(w, info)
	}
	config.Fdump(w, s.Network())
}

// waitMetrics keeps the metrics of the run served until interrupted.
func waitMetrics(ctx *cli.Context) error {
	addr := ctx.GlobalString(metricsAddrFlag.Name)
	if addr == "" {
		return nil
	}
	url, stop, err := startMetricsServer(addr)
	if err != nil {
		return err
	}
	defer stop()
	logger.Info("metrics server started", "url", url)
	<-handleExitSignal().Done()
	return nil
}
