package domain_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/pkg/cncrypto"
	"github.com/stretchr/testify/require"
)

func TestParseTxExtra(t *testing.T) {
	key := cncrypto.FastHash([]byte("tx key"))
	paymentID := bytes.Repeat([]byte{0xab}, 32)

	nonce := append([]byte{domain.TxExtraNoncePaymentID}, paymentID...)
	withNonce := append([]byte{domain.TxExtraTagPubKey}, key[:]...)
	withNonce = append(withNonce, domain.TxExtraTagNonce, byte(len(nonce)))
	withNonce = append(withNonce, nonce...)

	tests := []struct {
		name              string
		extra             []byte
		expectedKey       bool
		expectedPaymentID string
	}{
		{
			name:  "empty",
			extra: nil,
		},
		{
			name:        "public key only",
			extra:       append([]byte{domain.TxExtraTagPubKey}, key[:]...),
			expectedKey: true,
		},
		{
			name:  "truncated public key",
			extra: append([]byte{domain.TxExtraTagPubKey}, key[:31]...),
		},
		{
			name:        "padding before public key",
			extra:       append([]byte{0, 0, domain.TxExtraTagPubKey}, key[:]...),
			expectedKey: true,
		},
		{
			name:              "public key and payment id",
			extra:             withNonce,
			expectedKey:       true,
			expectedPaymentID: hex.EncodeToString(paymentID),
		},
		{
			name:  "unknown tag",
			extra: append([]byte{0xde, domain.TxExtraTagPubKey}, key[:]...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := domain.ParseTxExtra(tt.extra)
			require.Equal(t, tt.expectedKey, parsed.HasPublicKey)
			require.Equal(t, tt.expectedPaymentID, parsed.PaymentID)
			if tt.expectedKey {
				require.Equal(t, cncrypto.PublicKey(key), parsed.PublicKey)
			}
		})
	}
}
