package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cnwallet/walletd/internal/config"
	"github.com/cnwallet/walletd/internal/core/application"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var passwordFlag = &cli.StringFlag{
	Name:  "password",
	Usage: "the password used to encrypt the wallet keys",
}

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "walletd"
	app.Usage = "CryptoNote wallet synchronizing with a remote daemon"
	app.Before = func(*cli.Context) error {
		log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
		return config.InitConfig()
	}
	app.Commands = append(
		app.Commands,
		&create,
		&importWallet,
		&importViewWallet,
		&syncWallet,
		&info,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func newAppConfig() (*application.Config, error) {
	cfg := &application.Config{
		DBType:        config.GetString(config.DBTypeKey),
		DBDir:         config.GetDbDir(),
		KeystoreDir:   config.GetKeystoreDir(),
		DaemonOpts:    config.GetDaemonOptions(),
		AddressPrefix: config.GetUint64(config.AddressPrefixKey),
		SyncConfig: application.SyncConfig{
			QueueSize:     config.GetInt(config.QueueSizeKey),
			RetryInterval: config.GetMilliseconds(config.RetryIntervalKey),
			IdleInterval:  config.GetMilliseconds(config.IdleIntervalKey),
		},
		SaveInterval: config.GetSeconds(config.SaveIntervalKey),
	}
	if err := cfg.Validate(); err != nil {
		cfg.Close()
		return nil, err
	}
	return cfg, nil
}

// getPassword returns the password flag or, if not set, the content of the
// configured password file.
func getPassword(ctx *cli.Context) (string, error) {
	if password := ctx.String(passwordFlag.Name); password != "" {
		return password, nil
	}

	pwdFile := config.GetString(config.WalletPasswordFileKey)
	if pwdFile == "" {
		return "", fmt.Errorf(
			"password must be given either with --%s or with WALLETD_%s",
			passwordFlag.Name, config.WalletPasswordFileKey,
		)
	}
	buf, err := os.ReadFile(pwdFile)
	if err != nil {
		return "", fmt.Errorf("error while sourcing password: %s", err)
	}
	return strings.TrimSpace(string(buf)), nil
}

func serveMetrics() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.GetInt(config.MetricsPortKey)),
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	log.Infof("metrics served on %s/metrics", server.Addr)
	return server
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
}

func printJSON(v interface{}) {
	buf, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(buf))
}

func closeWallet(svc application.WalletService) {
	if err := svc.Close(context.Background()); err != nil {
		log.WithError(err).Warn("error while closing wallet")
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[walletd] %v\n", err)
	os.Exit(1)
}
