package relayer

import (
	"context"
	"errors"
	"fmt"

	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
	relayercommon "github.com/forcebridge/relayer/common"
	"github.com/forcebridge/relayer/ethproof"
	"github.com/forcebridge/relayer/relaystore"
	"github.com/forcebridge/relayer/txgen"
)

func (d *Driver) handleEthToCkb(ctx context.Context, rec *relaystore.EthToCkbRecord) error {
	switch rec.Status {
	case relaystore.StatusPending:
		return d.relayEthToCkb(ctx, rec)
	case relaystore.StatusSubmitted:
		return d.checkEthToCkb(ctx, rec)
	default:
		return nil
	}
}

// relayEthToCkb proves the Locked event, makes sure the light client holds its block and mints on CKB
func (d *Driver) relayEthToCkb(ctx context.Context, rec *relaystore.EthToCkbRecord) error {
	proof, err := d.buildProof(ctx, rec)
	if err != nil {
		return err
	}
	if err := d.lightClient.ensure(ctx, proof.BlockNumber(), proof.BlockHash()); err != nil {
		return err
	}
	// the record is submitted before the mint is sent, a mint the node never received is sent
	// again or rebuilt by checkEthToCkb
	_, err = d.submitter.submit(ctx, func(ctx context.Context, fundingLock *ckb.Script) (*txgen.UnsignedTx, error) {
		return d.gen.BuildSPVRelayTx(ctx, fundingLock, proof)
	}, func(tx *ckb.Transaction) error {
		rec.CKBTxHash = tx.Hash().Hex()
		rec.Status = relaystore.StatusSubmitted
		rec.ErrMsg = ""
		if err := d.save(ctx, rec); err != nil {
			rec.CKBTxHash, rec.Status = "", relaystore.StatusPending
			return err
		}
		d.remember(rec.EthLockTxHash, tx)
		return nil
	})
	if err != nil {
		return err
	}
	d.logger.Infof("eth to ckb %s submitted in ckb tx %s", rec.EthLockTxHash, rec.CKBTxHash)
	return nil
}

func (d *Driver) buildProof(ctx context.Context, rec *relaystore.EthToCkbRecord) (*ethproof.SourceEventProof, error) {
	lockTxHash, err := relayercommon.ParseHash(rec.EthLockTxHash)
	if err != nil {
		return nil, fmt.Errorf("invalid eth lock tx hash %q: %w", rec.EthLockTxHash, err)
	}
	proof, err := d.proofs.BuildForTx(ctx, lockTxHash)
	if err != nil {
		return nil, err
	}
	if rec.TokenAddr != proof.Token || rec.LockedAmount != proof.LockAmount {
		// records requested through the RPC only know the tx hash
		if err := fillFromEvent(rec, proof.Event()); err != nil {
			return nil, err
		}
	}
	return proof, nil
}

// checkEthToCkb follows the mint transaction. A transaction the node forgot is sent again with the
// same bytes, or rebuilt when this process didn't send it
func (d *Driver) checkEthToCkb(ctx context.Context, rec *relaystore.EthToCkbRecord) error {
	txHash, err := relayercommon.ParseHash(rec.CKBTxHash)
	if err != nil {
		return fmt.Errorf("invalid ckb tx hash %q of submitted record: %w", rec.CKBTxHash, err)
	}
	status := ckbclient.TxStatusUnknown
	tx, err := d.ckbClient.GetTransaction(ctx, txHash)
	switch {
	case err == nil:
		status = tx.Status
	case !errors.Is(err, ckbclient.ErrNotFound):
		return err
	}

	switch status {
	case ckbclient.TxStatusCommitted:
		rec.Status = relaystore.StatusConfirmed
		if err := d.save(ctx, rec); err != nil {
			return err
		}
		d.forget(rec.EthLockTxHash)
		d.logger.Infof("eth to ckb %s confirmed in ckb tx %s", rec.EthLockTxHash, rec.CKBTxHash)
		return nil
	case ckbclient.TxStatusRejected:
		d.forget(rec.EthLockTxHash)
		return fmt.Errorf("%w: ckb tx %s: %s", ErrTxRejected, rec.CKBTxHash, tx.Reason)
	case ckbclient.TxStatusUnknown:
		return d.resubmitEthToCkb(ctx, rec)
	default:
		d.logger.Debugf("eth to ckb %s: ckb tx %s is %s", rec.EthLockTxHash, rec.CKBTxHash, status)
		return nil
	}
}

func (d *Driver) resubmitEthToCkb(ctx context.Context, rec *relaystore.EthToCkbRecord) error {
	if tx := d.remembered(rec.EthLockTxHash); tx != nil {
		d.logger.Warnf("ckb tx %s of %s is unknown to the node, sending it again", rec.CKBTxHash, rec.EthLockTxHash)
		return d.submitter.resend(ctx, tx)
	}
	d.logger.Warnf("ckb tx %s of %s is unknown to the node, rebuilding it", rec.CKBTxHash, rec.EthLockTxHash)
	proof, err := d.buildProof(ctx, rec)
	if err != nil {
		return err
	}
	_, err = d.submitter.submit(ctx, func(ctx context.Context, fundingLock *ckb.Script) (*txgen.UnsignedTx, error) {
		return d.gen.BuildSPVRelayTx(ctx, fundingLock, proof)
	}, func(tx *ckb.Transaction) error {
		if hash := tx.Hash().Hex(); hash != rec.CKBTxHash {
			d.logger.Warnf("rebuilt ckb tx of %s changed from %s to %s", rec.EthLockTxHash, rec.CKBTxHash, hash)
			rec.CKBTxHash = hash
			if err := d.save(ctx, rec); err != nil {
				return err
			}
		}
		d.remember(rec.EthLockTxHash, tx)
		return nil
	})
	return err
}

func (d *Driver) remember(key string, tx *ckb.Transaction) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent[key] = tx
}

func (d *Driver) remembered(key string) *ckb.Transaction {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent[key]
}

func (d *Driver) forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sent, key)
}
