package ckb

import (
	"hash"

	"github.com/ethereum/go-ethereum/common"
	blake2b "github.com/minio/blake2b-simd"
)

const (
	// HashPersonalization is the blake2b personalization used by every CKB hash
	HashPersonalization = "ckb-default-hash"
	// Blake160Size is the size of a truncated blake2b hash used for lock args
	Blake160Size = 20
)

func newBlake2b() hash.Hash {
	h, err := blake2b.New(&blake2b.Config{
		Size:   common.HashLength,
		Person: []byte(HashPersonalization),
	})
	if err != nil {
		// the config is constant, it can't fail
		panic(err)
	}
	return h
}

// Blake2b256 returns the CKB flavoured blake2b-256 digest of the concatenated inputs
func Blake2b256(data ...[]byte) common.Hash {
	h := newBlake2b()
	for _, d := range data {
		h.Write(d) //nolint:errcheck
	}
	return common.BytesToHash(h.Sum(nil))
}

// Blake160 returns the first 20 bytes of the blake2b-256 digest
func Blake160(data []byte) []byte {
	return Blake2b256(data).Bytes()[:Blake160Size]
}
