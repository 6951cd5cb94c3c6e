package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/cnwallet/walletd/internal/infrastructure/daemon/turtlecoind"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory where the wallet state and the
	// encrypted keystore are stored
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is the storage of the wallet state, either badger or inmemory
	DBTypeKey = "DB_TYPE"
	// DaemonEndpointKey is the base url of the node serving the blockchain
	DaemonEndpointKey = "DAEMON_ENDPOINT"
	// DaemonRequestTimeoutKey are the milliseconds to wait for HTTP responses
	// before timeouts
	DaemonRequestTimeoutKey = "DAEMON_REQUEST_TIMEOUT"
	// DaemonRateLimitKey is the max number of requests per second made to the
	// daemon, 0 for no limit
	DaemonRateLimitKey = "DAEMON_RATE_LIMIT"
	// RetryIntervalKey are the milliseconds to wait after a failed request
	RetryIntervalKey = "RETRY_INTERVAL"
	// IdleIntervalKey are the milliseconds to wait when the wallet is synced
	// before asking the daemon for new blocks
	IdleIntervalKey = "IDLE_INTERVAL"
	// QueueSizeKey is the number of downloaded blocks that can wait to be
	// processed
	QueueSizeKey = "QUEUE_SIZE"
	// BlockCountKey is the max number of blocks asked per request, 0 to let
	// the daemon decide
	BlockCountKey = "BLOCK_COUNT"
	// SaveIntervalKey are the seconds between two automatic saves of the
	// wallet state
	SaveIntervalKey = "SAVE_INTERVAL"
	// AddressPrefixKey is the varint prefix of the wallet addresses
	AddressPrefixKey = "ADDRESS_PREFIX"
	// EnableMetricsKey exposes prometheus metrics over http
	EnableMetricsKey = "ENABLE_METRICS"
	// MetricsPortKey is the port of the metrics endpoint
	MetricsPortKey = "METRICS_PORT"
	// EnableProfilerKey enables memory statistics that can be used to
	// investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval in seconds for printing memory
	// statistics
	StatsIntervalKey = "STATS_INTERVAL"
	// WalletPasswordFileKey is the path of a file containing the wallet
	// password, used when not given as flag
	WalletPasswordFileKey = "WALLET_PASSWORD_FILE"

	DbLocation       = "db"
	KeystoreLocation = "keystore"
	ProfilerLocation = "stats"

	dbTypeBadger   = "badger"
	dbTypeInMemory = "inmemory"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("walletd", false)

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("WALLETD")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, dbTypeBadger)
	vip.SetDefault(DaemonEndpointKey, "http://127.0.0.1:11898")
	vip.SetDefault(DaemonRequestTimeoutKey, 30000)
	vip.SetDefault(DaemonRateLimitKey, 0)
	vip.SetDefault(RetryIntervalKey, 500)
	vip.SetDefault(IdleIntervalKey, 1000)
	vip.SetDefault(QueueSizeKey, 1000)
	vip.SetDefault(BlockCountKey, 100)
	vip.SetDefault(SaveIntervalKey, 300)
	vip.SetDefault(AddressPrefixKey, 3914525)
	vip.SetDefault(EnableMetricsKey, false)
	vip.SetDefault(MetricsPortKey, 9100)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)
}

// InitConfig validates the current configuration and creates the datadir
// tree.
func InitConfig() error {
	if err := validate(); err != nil {
		return err
	}
	return initDatadir()
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetMilliseconds returns the value of key, expressed in milliseconds, as a
// duration.
func GetMilliseconds(key string) time.Duration {
	return time.Duration(vip.GetInt64(key)) * time.Millisecond
}

// GetSeconds returns the value of key, expressed in seconds, as a duration.
func GetSeconds(key string) time.Duration {
	return time.Duration(vip.GetInt64(key)) * time.Second
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	if GetString(DBTypeKey) == dbTypeInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetKeystoreDir() string {
	return filepath.Join(GetDatadir(), KeystoreLocation)
}

func GetProfilerDir() string {
	return filepath.Join(GetDatadir(), ProfilerLocation)
}

// GetDaemonOptions returns the options of the daemon http client.
func GetDaemonOptions() turtlecoind.Options {
	return turtlecoind.Options{
		Endpoint:       GetString(DaemonEndpointKey),
		RequestTimeout: GetMilliseconds(DaemonRequestTimeoutKey),
		RateLimit:      GetInt(DaemonRateLimitKey),
		BlockCount:     GetUint64(BlockCountKey),
	}
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// IsSet returns whether the give key is set
func IsSet(key string) bool {
	return vip.IsSet(key)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("datadir must not be null")
	}

	dbType := GetString(DBTypeKey)
	if dbType != dbTypeBadger && dbType != dbTypeInMemory {
		return fmt.Errorf(
			"db type must be either '%s' or '%s'", dbTypeBadger, dbTypeInMemory,
		)
	}

	endpoint := GetString(DaemonEndpointKey)
	if endpoint == "" {
		return fmt.Errorf("daemon endpoint must not be null")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("daemon endpoint is not a valid url: %s", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("daemon endpoint must be an http(s) url")
	}

	for _, key := range []string{
		DaemonRequestTimeoutKey, DaemonRateLimitKey, RetryIntervalKey,
		IdleIntervalKey, QueueSizeKey, BlockCountKey, SaveIntervalKey,
		StatsIntervalKey,
	} {
		if vip.GetInt64(key) < 0 {
			return fmt.Errorf("%s must not be a negative number", key)
		}
	}
	if GetInt(QueueSizeKey) == 0 {
		return fmt.Errorf("%s must be a positive number", QueueSizeKey)
	}
	if GetUint64(AddressPrefixKey) == 0 {
		return fmt.Errorf("%s must not be zero", AddressPrefixKey)
	}

	if GetBool(EnableMetricsKey) {
		port := GetInt(MetricsPortKey)
		if port <= 0 || port > 65535 {
			return fmt.Errorf("%s is not a valid port", MetricsPortKey)
		}
	}

	if pwdFile := GetString(WalletPasswordFileKey); pwdFile != "" {
		if _, err := os.Stat(pwdFile); err != nil {
			return fmt.Errorf("%s must be an existing path", WalletPasswordFileKey)
		}
	}
	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, KeystoreLocation)); err != nil {
		return err
	}

	if GetString(DBTypeKey) == dbTypeBadger {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	}

	if GetBool(EnableProfilerKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
