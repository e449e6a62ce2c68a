package common

import (
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/config/types"
)

var (
	// ErrOddLengthHex is returned when a hex string doesn't represent whole bytes
	ErrOddLengthHex = errors.New("hex string has odd length")
	// ErrInvalidHashLength is returned when a decoded hash is not 32 bytes long
	ErrInvalidHashLength = errors.New("hash must be 32 bytes long")
)

// Uint64ToBytes converts a uint64 to a byte slice
func Uint64ToBytes(num uint64) []byte {
	const uint64ByteSize = 8

	bytes := make([]byte, uint64ByteSize)
	binary.BigEndian.PutUint64(bytes, num)

	return bytes
}

// BytesToUint64 converts a byte slice to a uint64
func BytesToUint64(bytes []byte) uint64 {
	return binary.BigEndian.Uint64(bytes)
}

// Uint64ToLEBytes converts a uint64 to a byte slice in little-endian order
func Uint64ToLEBytes(num uint64) []byte {
	const uint64ByteSize = 8

	bytes := make([]byte, uint64ByteSize)
	binary.LittleEndian.PutUint64(bytes, num)

	return bytes
}

// Uint32ToLEBytes converts a uint32 to a byte slice in little-endian order
func Uint32ToLEBytes(num uint32) []byte {
	const uint32ByteSize = 4

	key := make([]byte, uint32ByteSize)
	binary.LittleEndian.PutUint32(key, num)

	return key
}

// DecodeHex decodes a hex string with or without the 0x prefix.
// Unlike common.FromHex it rejects odd length input instead of left padding it.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: %q", ErrOddLengthHex, s)
	}
	return hex.DecodeString(s)
}

// ParseHash decodes a 32 bytes hash from hex
func ParseHash(s string) (common.Hash, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: got %d", ErrInvalidHashLength, len(b))
	}
	return common.BytesToHash(b), nil
}

// NewKeyFromKeystore creates a private key from a keystore file
func NewKeyFromKeystore(cfg types.KeystoreFileConfig) (*ecdsa.PrivateKey, error) {
	if cfg.Path == "" && cfg.Password == "" {
		return nil, nil
	}
	keystoreEncrypted, err := os.ReadFile(filepath.Clean(cfg.Path))
	if err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(keystoreEncrypted, cfg.Password)
	if err != nil {
		return nil, err
	}
	return key.PrivateKey, nil
}
