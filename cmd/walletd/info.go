package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var info = cli.Command{
	Name:   "info",
	Usage:  "show addresses, balances and sync status of the wallet",
	Flags:  []cli.Flag{passwordFlag},
	Action: infoAction,
}

func infoAction(ctx *cli.Context) error {
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

	status, err := svc.Status(context.Background())
	if err != nil {
		return err
	}
	balances, err := svc.GetBalances(context.Background())
	if err != nil {
		return err
	}
	txs, err := svc.GetTransactions(context.Background())
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"wallet_height":     status.WalletHeight,
		"daemon_height":     status.DaemonHeight,
		"network_height":    status.NetworkHeight,
		"synced":            status.IsSynced(),
		"balances":          balances,
		"transaction_count": len(txs),
	})
	return nil
}
