package application

// WalletInfo describes a freshly created or imported wallet.
type WalletInfo struct {
	Address      string
	IsViewWallet bool
	// SyncStartTimestamp is the timestamp sync starts from.
	SyncStartTimestamp uint64
}

// WalletStatus compares the wallet sync progress with the daemon's.
type WalletStatus struct {
	WalletHeight     uint64
	DownloaderHeight uint64
	DaemonHeight     uint64
	NetworkHeight    uint64
	IsSyncing        bool
}

// IsSynced returns whether the wallet scanned every block the daemon knows.
func (s WalletStatus) IsSynced() bool {
	return s.DaemonHeight > 0 && s.WalletHeight >= s.DaemonHeight
}

// SubWalletBalance is the balance of a single address.
type SubWalletBalance struct {
	Address        string
	PublicSpendKey string
	Balance        uint64
}

// SpendKeys holds the hex encoded spend keys of a subwallet. PrivateKey is
// empty for view wallets.
type SpendKeys struct {
	PublicKey  string
	PrivateKey string
}
