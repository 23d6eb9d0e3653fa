// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/ledger/ledger"
	"github.com/vechain/ledger/log"
)

func initLogger(ctx *cli.Context) {
	handler := log.JSONHandler(os.Stderr)
	if !ctx.GlobalBool(logJSONFlag.Name) {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandler(os.Stderr, useColor)
	}
	level := log.LevelFromVerbosity(ctx.GlobalInt(verbosityFlag.Name))
	log.SetDefault(log.FilterHandler(handler, level))
}

func loadConfig(ctx *cli.Context) (ledger.Config, error) {
	path := ctx.GlobalString(configFlag.Name)
	if path == "" {
		return ledger.DefaultConfig(), nil
	}
	cfg, err := ledger.LoadConfig(path)
	if err != nil {
		return ledger.Config{}, errors.Wrap(err, "-config")
	}
	return cfg, nil
}

// handleExitSignal returns a context cancelled on the first interrupt or terminate signal.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exit := make(chan os.Signal, 1)
		signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-exit
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
