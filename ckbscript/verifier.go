// Package ckbscript runs the checks of the bridge type script off chain
package ckbscript

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/log"
)

const (
	// Success is the exit code of a transaction the script accepts
	Success int8 = 0
	// ErrLoadTxHash is the exit code when the transaction hash can't be loaded
	ErrLoadTxHash int8 = 1
)

var errNoTx = errors.New("no transaction to verify")

// ChainInterface is what the script can load from the transaction being verified
type ChainInterface interface {
	LoadTxHash() (common.Hash, error)
}

// Verify runs the bridge type script against the chain and returns its exit code.
// No rule rejects a transaction yet, a loadable transaction is accepted
func Verify(chain ChainInterface) int8 {
	txHash, err := chain.LoadTxHash()
	if err != nil {
		log.Debugf("error loading tx hash: %v", err)
		return ErrLoadTxHash
	}
	log.Debugf("tx: %s", txHash.Hex())
	return Success
}

// TxChain exposes a transaction built locally to the script
type TxChain struct {
	tx *ckb.Transaction
}

// NewTxChain returns the chain of a single transaction
func NewTxChain(tx *ckb.Transaction) *TxChain {
	return &TxChain{tx: tx}
}

func (c *TxChain) LoadTxHash() (common.Hash, error) {
	if c.tx == nil {
		return common.Hash{}, errNoTx
	}
	return c.tx.Hash(), nil
}
