package relayer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ethproof"
	"github.com/forcebridge/relayer/relaystore"
	"github.com/forcebridge/relayer/sync"
	"github.com/gaze-network/uint128"
)

// GetLastProcessedBlock returns the last ethereum block whose Locked events were turned into records
func (d *Driver) GetLastProcessedBlock(ctx context.Context) (uint64, error) {
	return d.store.GetLastProcessedBlock(ctx, SourceEthereum)
}

// ProcessBlock creates a pending record per Locked event of the block. Records that already exist,
// because the block was seen before or the transfer was requested through the RPC, are kept as they are
func (d *Driver) ProcessBlock(ctx context.Context, block sync.Block) error {
	for _, e := range block.Events {
		event, ok := e.(*ethproof.LockedEvent)
		if !ok {
			d.logger.Warnf("unexpected event %T on block %d", e, block.Num)
			continue
		}
		if err := d.createFromEvent(ctx, event); err != nil {
			return err
		}
	}
	return d.store.UpdateLastProcessedBlock(ctx, SourceEthereum, block.Num)
}

func (d *Driver) createFromEvent(ctx context.Context, event *ethproof.LockedEvent) error {
	key := event.TxHash.Hex()
	rec := &relaystore.EthToCkbRecord{EthLockTxHash: key}
	if err := fillFromEvent(rec, event); err != nil {
		// the proof carries the event again, the record is completed when relayed
		d.logger.Warnf("Locked event of %s has unexpected values: %v", key, err)
		rec = &relaystore.EthToCkbRecord{EthLockTxHash: key}
	}
	_, err := d.store.InsertEthToCkb(ctx, rec)
	if errors.Is(err, relaystore.ErrAlreadyExists) {
		d.logger.Debugf("record %s already exists", key)
		return nil
	}
	if err != nil {
		return err
	}
	d.logger.Infof("new eth to ckb transfer %s of %s tokens %s", key, rec.LockedAmount, rec.TokenAddr.Hex())
	return nil
}

func fillFromEvent(rec *relaystore.EthToCkbRecord, event *ethproof.LockedEvent) error {
	amount, err := uint128.FromBig(event.LockedAmount)
	if err != nil {
		return fmt.Errorf("locked amount: %w", err)
	}
	fee, err := uint128.FromBig(event.BridgeFee)
	if err != nil {
		return fmt.Errorf("bridge fee: %w", err)
	}
	rec.TokenAddr = event.Token
	rec.SenderAddr = event.Sender
	rec.LockedAmount = amount
	rec.BridgeFee = fee
	rec.CKBRecipientLockscript = recipientString(event.RecipientLockscript)
	rec.SudtExtraData = hexutil.Encode(event.SudtExtraData)
	return nil
}

// recipientString keeps CKB addresses readable and hex encodes serialized lock scripts
func recipientString(recipient []byte) string {
	if _, _, err := ckb.ParseAddress(string(recipient)); err == nil {
		return string(recipient)
	}
	return hexutil.Encode(recipient)
}
