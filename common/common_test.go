package common

import (
	"path"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/forcebridge/relayer/config/types"
	"github.com/stretchr/testify/require"
)

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
		isErr    bool
	}{
		{name: "with prefix", input: "0x0102", expected: []byte{1, 2}},
		{name: "without prefix", input: "ff00", expected: []byte{0xff, 0}},
		{name: "empty", input: "0x", expected: []byte{}},
		{name: "odd length", input: "0x123", isErr: true},
		{name: "not hex", input: "zz", isErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecodeHex(tt.input)
			if tt.isErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, res)
		})
	}
}

func TestParseHash(t *testing.T) {
	h, err := ParseHash("0x71a7ba8fc96349fea0ed3a5c47992e3b4084b031a42264a018e0072e8172e46c")
	require.NoError(t, err)
	require.Equal(t, byte(0x71), h[0])
	require.Equal(t, byte(0x6c), h[31])

	_, err = ParseHash("0x0102")
	require.ErrorIs(t, err, ErrInvalidHashLength)
}

func TestLittleEndian(t *testing.T) {
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, Uint64ToLEBytes(1))
	require.Equal(t, []byte{0x10, 0x27, 0, 0}, Uint32ToLEBytes(10000))
	require.Equal(t, uint64(258), BytesToUint64(Uint64ToBytes(258)))
}

func TestNewKeyFromKeystore(t *testing.T) {
	key, err := NewKeyFromKeystore(types.KeystoreFileConfig{})
	require.NoError(t, err)
	require.Nil(t, key)

	dir := t.TempDir()
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	acc, err := ks.ImportECDSA(pk, "testonly")
	require.NoError(t, err)

	key, err = NewKeyFromKeystore(types.KeystoreFileConfig{Path: acc.URL.Path, Password: "testonly"})
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(pk.PublicKey), crypto.PubkeyToAddress(key.PublicKey))

	_, err = NewKeyFromKeystore(types.KeystoreFileConfig{Path: path.Join(dir, "missing"), Password: "x"})
	require.Error(t, err)
}
