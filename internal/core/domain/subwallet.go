package domain

import "github.com/cnwallet/walletd/pkg/cncrypto"

// SubWallet is one spend keypair of a wallet. View only subwallets have a
// zero private spend key and never generate key images.
type SubWallet struct {
	PublicSpendKey  cncrypto.PublicKey
	PrivateSpendKey cncrypto.SecretKey
	Address         string
	IsViewWallet    bool
	// SyncStartTimestamp is the timestamp of the first block that could
	// contain outputs for this subwallet.
	SyncStartTimestamp uint64
	// KeyImages maps every owned key image to the height of the block that
	// created the output.
	KeyImages map[cncrypto.KeyImage]uint64
	// Balance is the running sum of all committed transfers, kept modulo 2^64.
	Balance uint64
}

func newSubWallet(
	publicSpendKey cncrypto.PublicKey, privateSpendKey cncrypto.SecretKey,
	address string, syncStartTimestamp uint64,
) *SubWallet {
	return &SubWallet{
		PublicSpendKey:     publicSpendKey,
		PrivateSpendKey:    privateSpendKey,
		Address:            address,
		IsViewWallet:       privateSpendKey.IsZero(),
		SyncStartTimestamp: syncStartTimestamp,
		KeyImages:          make(map[cncrypto.KeyImage]uint64),
	}
}

func (s *SubWallet) generateAndStoreKeyImage(
	derivation cncrypto.KeyDerivation, outputIndex uint64, height uint64,
) error {
	if s.IsViewWallet {
		return nil
	}

	keyImage, err := cncrypto.DeriveKeyImage(
		derivation, outputIndex, s.PublicSpendKey, s.PrivateSpendKey,
	)
	if err != nil {
		return err
	}
	s.KeyImages[keyImage] = height
	return nil
}

func (s *SubWallet) addTransfer(amount int64) {
	// Two's complement wrap keeps the running balance equal to the replay.
	s.Balance += uint64(amount)
}

func (s *SubWallet) removeKeyImagesFrom(height uint64) int {
	removed := 0
	for keyImage, h := range s.KeyImages {
		if h >= height {
			delete(s.KeyImages, keyImage)
			removed++
		}
	}
	return removed
}

func (s *SubWallet) clone() SubWallet {
	out := *s
	out.KeyImages = make(map[cncrypto.KeyImage]uint64, len(s.KeyImages))
	for k, v := range s.KeyImages {
		out.KeyImages[k] = v
	}
	return out
}
