package main

import (
	"context"
	"time"

	"github.com/cnwallet/walletd/internal/config"
	"github.com/cnwallet/walletd/internal/core/application"
	"github.com/cnwallet/walletd/pkg/stats"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var syncWallet = cli.Command{
	Name:  "sync",
	Usage: "open the wallet and keep it synced until interrupted",
	Flags: []cli.Flag{
		passwordFlag,
		&cli.DurationFlag{
			Name:  "status_interval",
			Usage: "the interval between two sync status logs",
			Value: 30 * time.Second,
		},
	},
	Action: syncAction,
}

func syncAction(ctx *cli.Context) error {
	password, err := getPassword(ctx)
	if err != nil {
		return err
	}

	cfg, err := newAppConfig()
	if err != nil {
		return err
	}
	defer cfg.Close()

	svc := cfg.WalletService()
	if err := svc.OpenWallet(context.Background(), password); err != nil {
		return err
	}
	defer closeWallet(svc)

	statsCtx, stopStats := context.WithCancel(context.Background())
	defer stopStats()
	if config.GetBool(config.EnableProfilerKey) {
		stats.EnableMemoryStatistics(
			statsCtx, config.GetSeconds(config.StatsIntervalKey),
			config.GetProfilerDir(),
		)
	}

	if config.GetBool(config.EnableMetricsKey) {
		server := serveMetrics()
		defer server.Close()
	}

	quit := make(chan struct{})
	go logStatus(svc, ctx.Duration("status_interval"), quit)

	log.Info("wallet is syncing, press ctrl+c to stop")
	waitForSignal()
	close(quit)

	log.Info("shutting down")
	return nil
}

func logStatus(
	svc application.WalletService, interval time.Duration, quit chan struct{},
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			status, err := svc.Status(context.Background())
			if err != nil {
				log.WithError(err).Warn("failed to get sync status")
				continue
			}
			balance, _ := svc.GetTotalBalance(context.Background())
			log.WithFields(log.Fields{
				"wallet_height":  status.WalletHeight,
				"daemon_height":  status.DaemonHeight,
				"network_height": status.NetworkHeight,
				"synced":         status.IsSynced(),
				"balance":        balance,
			}).Info("sync status")
		}
	}
}
