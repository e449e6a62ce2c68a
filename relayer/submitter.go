package relayer

import (
	"context"
	"fmt"
	"sync"

	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
	"github.com/forcebridge/relayer/ckbscript"
	"github.com/forcebridge/relayer/txgen"
)

type buildFunc func(ctx context.Context, fundingLock *ckb.Script) (*txgen.UnsignedTx, error)

// ckbSubmitter builds, signs and sends CKB transactions one at a time, so that two builds never
// pick the same funding or bridge cells
type ckbSubmitter struct {
	mu     sync.Mutex
	client ckbclient.Clienter
	signer *ckb.Secp256k1Signer
}

// persistFunc records a signed transaction before it is sent
type persistFunc func(tx *ckb.Transaction) error

// submit builds, signs and sends a transaction and returns the signed transaction. When persist is
// given it runs before the send and a failure leaves the transaction unsent
func (s *ckbSubmitter) submit(ctx context.Context, build buildFunc, persist persistFunc) (*ckb.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unsigned, err := build(ctx, s.signer.LockScript())
	if err != nil {
		return nil, err
	}
	if err := unsigned.Sign(s.signer); err != nil {
		return nil, fmt.Errorf("error signing tx: %w", err)
	}
	if code := ckbscript.Verify(ckbscript.NewTxChain(unsigned.Tx)); code != ckbscript.Success {
		return nil, fmt.Errorf("%w: tx %s fails the bridge script with code %d", ErrTxRejected, unsigned.Tx.Hash().Hex(), code)
	}
	if persist != nil {
		if err := persist(unsigned.Tx); err != nil {
			return nil, fmt.Errorf("error recording tx %s before sending it: %w", unsigned.Tx.Hash().Hex(), err)
		}
	}
	if err := s.send(ctx, unsigned.Tx); err != nil {
		return nil, err
	}
	return unsigned.Tx, nil
}

// resend sends an already signed transaction again
func (s *ckbSubmitter) resend(ctx context.Context, tx *ckb.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(ctx, tx)
}

func (s *ckbSubmitter) send(ctx context.Context, tx *ckb.Transaction) error {
	expected := tx.Hash()
	txHash, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("error sending tx %s: %w", expected.Hex(), err)
	}
	if txHash != expected {
		return fmt.Errorf("node answered tx hash %s for tx %s", txHash.Hex(), expected.Hex())
	}
	return nil
}
