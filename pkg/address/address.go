// Package address implements CryptoNote public addresses: a varint network
// prefix, the public spend and view keys and a 4 byte Keccak checksum, all
// encoded with the block based CryptoNote flavour of Base58.
package address

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/cnwallet/walletd/pkg/cncrypto"
)

const (
	// TurtleCoinPrefix is the address prefix of TurtleCoin mainnet (TRTL).
	TurtleCoinPrefix uint64 = 3914525

	checksumSize         = 4
	fullBlockSize        = 8
	fullEncodedBlockSize = 11
)

// encodedBlockSizes maps a block of n bytes to the length of its encoding.
var encodedBlockSizes = []int{0, 2, 3, 5, 6, 7, 9, 10, 11}

// Address is a decoded CryptoNote address.
type Address struct {
	Prefix         uint64
	PublicSpendKey cncrypto.PublicKey
	PublicViewKey  cncrypto.PublicKey
}

// Encode returns the Base58 representation of the address.
func (a Address) Encode() string {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, a.Prefix)
	data := append([]byte{}, buf[:n]...)
	data = append(data, a.PublicSpendKey[:]...)
	data = append(data, a.PublicViewKey[:]...)
	checksum := cncrypto.FastHash(data)
	data = append(data, checksum[:checksumSize]...)

	return encode(data)
}

// Decode parses a Base58 address, verifying its checksum, its prefix and
// that both keys are valid points.
func Decode(str string, prefix uint64) (*Address, error) {
	data, err := decode(str)
	if err != nil {
		return nil, err
	}

	p, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, ErrInvalidPrefix
	}
	if p != prefix {
		return nil, ErrPrefixMismatch
	}
	if len(data) != n+2*cncrypto.KeySize+checksumSize {
		return nil, ErrInvalidLength
	}

	body := data[:len(data)-checksumSize]
	checksum := cncrypto.FastHash(body)
	if !bytes.Equal(checksum[:checksumSize], data[len(body):]) {
		return nil, ErrInvalidChecksum
	}

	addr := &Address{Prefix: p}
	copy(addr.PublicSpendKey[:], body[n:n+cncrypto.KeySize])
	copy(addr.PublicViewKey[:], body[n+cncrypto.KeySize:])
	if !cncrypto.CheckKey(addr.PublicSpendKey) ||
		!cncrypto.CheckKey(addr.PublicViewKey) {
		return nil, ErrInvalidKey
	}
	return addr, nil
}

func encode(data []byte) string {
	var sb strings.Builder
	for len(data) > 0 {
		size := fullBlockSize
		if len(data) < size {
			size = len(data)
		}
		sb.WriteString(encodeBlock(data[:size]))
		data = data[size:]
	}
	return sb.String()
}

// encodeBlock encodes a block as a big endian number, left padded with the
// zero digit up to the fixed size for its length.
func encodeBlock(block []byte) string {
	digits := strings.TrimLeft(base58.Encode(block), "1")
	size := encodedBlockSizes[len(block)]
	return strings.Repeat("1", size-len(digits)) + digits
}

func decode(str string) ([]byte, error) {
	var out []byte
	for len(str) > 0 {
		size := fullEncodedBlockSize
		if len(str) < size {
			size = len(str)
		}
		block, err := decodeBlock(str[:size])
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		str = str[size:]
	}
	return out, nil
}

func decodeBlock(chunk string) ([]byte, error) {
	blockSize := -1
	for i, s := range encodedBlockSizes {
		if s == len(chunk) {
			blockSize = i
			break
		}
	}
	if blockSize <= 0 {
		return nil, ErrInvalidLength
	}

	raw := base58.Decode(chunk)
	if len(raw) == 0 {
		return nil, ErrInvalidEncoding
	}
	num := bytes.TrimLeft(raw, "\x00")
	if len(num) > blockSize {
		return nil, ErrInvalidEncoding
	}

	block := make([]byte, blockSize)
	copy(block[blockSize-len(num):], num)
	return block, nil
}
