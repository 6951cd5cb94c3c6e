package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var scanHeightFlag = &cli.Uint64Flag{
	Name:  "scan_height",
	Usage: "the height from where to start scanning the blockchain",
}

var importWallet = cli.Command{
	Name:  "import",
	Usage: "import a wallet from its private spend and view keys",
	Flags: []cli.Flag{
		passwordFlag,
		&cli.StringFlag{
			Name:     "spend_key",
			Usage:    "the hex encoded private spend key",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "view_key",
			Usage:    "the hex encoded private view key",
			Required: true,
		},
		scanHeightFlag,
	},
	Action: importWalletAction,
}

var importViewWallet = cli.Command{
	Name:  "import-view",
	Usage: "import a view only wallet from its address and private view key",
	Flags: []cli.Flag{
		passwordFlag,
		&cli.StringFlag{
			Name:     "view_key",
			Usage:    "the hex encoded private view key",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "address",
			Usage:    "the address of the wallet",
			Required: true,
		},
		scanHeightFlag,
	},
	Action: importViewWalletAction,
}

func importWalletAction(ctx *cli.Context) error {
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
	walletInfo, err := svc.ImportWallet(
		context.Background(), password,
		ctx.String("spend_key"), ctx.String("view_key"),
		ctx.Uint64(scanHeightFlag.Name),
	)
	if err != nil {
		return err
	}
	defer closeWallet(svc)

	printJSON(walletInfo)
	return nil
}

func importViewWalletAction(ctx *cli.Context) error {
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
	walletInfo, err := svc.ImportViewWallet(
		context.Background(), password,
		ctx.String("view_key"), ctx.String("address"),
		ctx.Uint64(scanHeightFlag.Name),
	)
	if err != nil {
		return err
	}
	defer closeWallet(svc)

	printJSON(walletInfo)
	return nil
}
