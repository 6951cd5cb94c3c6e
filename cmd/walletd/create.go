package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var create = cli.Command{
	Name:   "create",
	Usage:  "create a new wallet with freshly generated keys",
	Flags:  []cli.Flag{passwordFlag},
	Action: createAction,
}

func createAction(ctx *cli.Context) error {
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
	walletInfo, err := svc.CreateWallet(context.Background(), password)
	if err != nil {
		return err
	}
	defer closeWallet(svc)

	viewKey, err := svc.GetPrivateViewKey(context.Background())
	if err != nil {
		return err
	}
	spendKeys, err := svc.GetSpendKeys(context.Background(), walletInfo.Address)
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"address":           walletInfo.Address,
		"private_view_key":  viewKey,
		"private_spend_key": spendKeys.PrivateKey,
	})
	return nil
}
