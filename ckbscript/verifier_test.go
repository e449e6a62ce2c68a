package ckbscript

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/ckb"
	"github.com/stretchr/testify/require"
)

type mockChain struct {
	hash common.Hash
	err  error
}

func (m mockChain) LoadTxHash() (common.Hash, error) { return m.hash, m.err }

func TestVerify(t *testing.T) {
	require.Equal(t, Success, Verify(mockChain{}))
	require.Equal(t, Success, Verify(mockChain{hash: common.HexToHash("0x01")}))
	require.Equal(t, ErrLoadTxHash, Verify(mockChain{err: errors.New("syscall failed")}))
}

func TestTxChain(t *testing.T) {
	tx := &ckb.Transaction{Witnesses: [][]byte{{0x01}}}
	hash, err := NewTxChain(tx).LoadTxHash()
	require.NoError(t, err)
	require.Equal(t, tx.Hash(), hash)
	require.Equal(t, Success, Verify(NewTxChain(tx)))

	_, err = NewTxChain(nil).LoadTxHash()
	require.Error(t, err)
	require.Equal(t, ErrLoadTxHash, Verify(NewTxChain(nil)))
}
