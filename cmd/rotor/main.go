// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/rotorchain/rotor/api"
	"github.com/rotorchain/rotor/cmd/rotor/httpserver"
	"github.com/rotorchain/rotor/ledger"
	"github.com/rotorchain/rotor/log"
	"github.com/rotorchain/rotor/metrics"
	"github.com/rotorchain/rotor/registry"
	"github.com/rotorchain/rotor/rotor"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Rotor",
		Usage:     "Sequencer registry and rotation engine",
		Copyright: "2025 The Rotor developers",
		Flags: []cli.Flag{
			genesisFlag,
			ownerFlag,
			startTimeFlag,
			apiAddrFlag,
			apiCorsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			verbosityFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	gene := selectGenesis(ctx)
	owner := selectOwner(ctx, gene)

	led := ledger.NewMemLedger()
	for _, acc := range gene.Accounts {
		id, err := rotor.ParseIdentity(acc.Identity)
		if err != nil {
			fatal(fmt.Sprintf("genesis account [%v]: %v", acc.Identity, err))
		}
		led.Mint(*id, acc.Balance)
	}

	startTime := gene.StartTime
	if ctx.IsSet(startTimeFlag.Name) {
		startTime = ctx.Uint64(startTimeFlag.Name)
	}

	reg := registry.New(led, registry.NewSingleOwner(owner), registry.Options{
		StartTime: startTime,
	})
	defer func() { log.Info("closing registry..."); reg.Close() }()

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			fatal(fmt.Sprintf("start metrics server: %v", err))
		}
		metricsURL = url
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
	}

	handler := api.New(reg, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	apiURL, closeAPI, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		fatal(fmt.Sprintf("start API server: %v", err))
	}
	defer func() { log.Info("stopping API server..."); closeAPI() }()

	printStartupMessage(reg, owner, apiURL, metricsURL)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)
	<-interrupt

	return nil
}

func selectGenesis(ctx *cli.Context) *Genesis {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		log.Info("no genesis file specified, using dev genesis")
		return devGenesis()
	}
	gene, err := loadGenesis(path)
	if err != nil {
		fatal(err)
	}
	return gene
}

func selectOwner(ctx *cli.Context, gene *Genesis) rotor.Identity {
	if raw := ctx.String(ownerFlag.Name); raw != "" {
		id, err := rotor.ParseIdentity(raw)
		if err != nil {
			fatal(fmt.Sprintf("parse -%s: %v", ownerFlag.Name, err))
		}
		return *id
	}
	owner, err := gene.OwnerIdentity()
	if err != nil {
		fatal(err)
	}
	return owner
}

func printStartupMessage(reg *registry.Registry, owner rotor.Identity, apiURL, metricsURL string) {
	fmt.Printf(`Starting %v
    Version     %v
    Owner       %v
    Start Time  %v (%v)
    API portal  %v`,
		"Rotor",
		fullVersion(),
		owner,
		reg.StartTime(), time.Unix(int64(reg.StartTime()), 0).UTC().Format(time.RFC3339),
		apiURL,
	)
	if metricsURL != "" {
		fmt.Printf(`
    Metrics     %v`, metricsURL)
	}
	fmt.Println()
}
