package relayer

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	ethtxtypes "github.com/0xPolygon/zkevm-ethtx-manager/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/ckb/molecule"
	"github.com/forcebridge/relayer/ckbclient"
	relayercommon "github.com/forcebridge/relayer/common"
	"github.com/forcebridge/relayer/ethproof"
	"github.com/forcebridge/relayer/headerchain"
	"github.com/forcebridge/relayer/relaystore"
)

func (d *Driver) handleCkbToEth(ctx context.Context, rec *relaystore.CkbToEthRecord) error {
	switch rec.Status {
	case relaystore.StatusPending:
		return d.relayCkbToEth(ctx, rec)
	case relaystore.StatusSubmitted:
		return d.checkCkbToEth(ctx, rec)
	default:
		return nil
	}
}

// activeUnlockStatuses are the statuses of monitored txs that still count as relaying a burn
var activeUnlockStatuses = []ethtxtypes.MonitoredTxStatus{
	ethtxtypes.MonitoredTxStatusCreated,
	ethtxtypes.MonitoredTxStatusSent,
	ethtxtypes.MonitoredTxStatusMined,
	ethtxtypes.MonitoredTxStatusSafe,
	ethtxtypes.MonitoredTxStatusFinalized,
}

// unlockCalls are the calls to the ethereum bridge relaying a burn
type unlockCalls struct {
	addHeaders []byte
	unlock     []byte
}

// relayCkbToEth relays the header of the burn block and the burn transaction with its proof to the
// ethereum bridge. Both transactions go through the tx manager, the unlock is the one followed.
// The record is submitted without unlock id before anything reaches the tx manager, see addUnlock
func (d *Driver) relayCkbToEth(ctx context.Context, rec *relaystore.CkbToEthRecord) error {
	calls, err := d.buildUnlockCalls(ctx, rec)
	if err != nil {
		return err
	}
	rec.EthTxHash = ""
	rec.Status = relaystore.StatusSubmitted
	rec.ErrMsg = ""
	if err := d.save(ctx, rec); err != nil {
		rec.Status = relaystore.StatusPending
		return err
	}
	return d.addUnlock(ctx, rec, calls)
}

func (d *Driver) buildUnlockCalls(ctx context.Context, rec *relaystore.CkbToEthRecord) (*unlockCalls, error) {
	burnTxHash, err := relayercommon.ParseHash(rec.CKBBurnTxHash)
	if err != nil {
		return nil, fmt.Errorf("invalid ckb burn tx hash %q: %w", rec.CKBBurnTxHash, err)
	}
	burn, err := d.ckbClient.GetTransaction(ctx, burnTxHash)
	if err != nil {
		return nil, err
	}
	if burn.Status != ckbclient.TxStatusCommitted {
		return nil, fmt.Errorf("%w: ckb tx %s is %s", ErrNotCommitted, rec.CKBBurnTxHash, burn.Status)
	}
	data, err := d.gen.FindRecipientData(burn.Transaction)
	if err != nil {
		return nil, err
	}
	rec.RecipientAddr = data.RecipientAddress
	rec.TokenAddr = data.TokenAddress
	rec.TokenAmount = data.Amount
	rec.Fee = data.Fee

	header, err := d.ckbClient.GetHeader(ctx, burn.BlockHash)
	if err != nil {
		return nil, err
	}
	headers, err := d.ckbHeaders.Fetch(ctx, []uint64{header.Number})
	if err != nil {
		return nil, err
	}
	batch := &headerchain.HeaderBatch{Headers: headers, Acceptance: headerchain.MainChain}
	if batch.Last().Hash() != burn.BlockHash {
		return nil, fmt.Errorf("%w: block %d is %s, burn tx is in %s",
			headerchain.ErrForkDetected, header.Number, batch.Last().Hash().Hex(), burn.BlockHash.Hex())
	}
	proof, err := d.ckbClient.GetTransactionProof(ctx, burnTxHash)
	if err != nil {
		return nil, err
	}

	bridgeABI := ethproof.ABI()
	addHeaders, err := bridgeABI.Pack("addHeaders", batch.Encode())
	if err != nil {
		return nil, err
	}
	unlock, err := bridgeABI.Pack("unlockToken", EncodeTransactionProof(proof), burn.Transaction.Serialize())
	if err != nil {
		return nil, err
	}
	return &unlockCalls{addHeaders: addHeaders, unlock: unlock}, nil
}

// addUnlock hands the calls of a submitted record to the tx manager and stores the unlock id.
// Calls the tx manager already monitors, because a previous run stopped before storing the id,
// are not added twice
func (d *Driver) addUnlock(ctx context.Context, rec *relaystore.CkbToEthRecord, calls *unlockCalls) error {
	monitored, err := d.ethTxMan.ResultsByStatus(ctx, activeUnlockStatuses)
	if err != nil {
		return fmt.Errorf("%w: error getting monitored txs: %w", ckbclient.ErrTransport, err)
	}
	headersID, err := d.addOnce(ctx, monitored, calls.addHeaders)
	if err != nil {
		return fmt.Errorf("error adding headers tx: %w", err)
	}
	unlockID, err := d.addOnce(ctx, monitored, calls.unlock)
	if err != nil {
		return fmt.Errorf("error adding unlock tx: %w", err)
	}
	rec.EthTxHash = unlockID.Hex()
	if err := d.save(ctx, rec); err != nil {
		return err
	}
	d.logger.Infof("ckb to eth %s submitted, headers tx %s, unlock tx %s",
		rec.CKBBurnTxHash, headersID.Hex(), unlockID.Hex())
	return nil
}

func (d *Driver) addOnce(ctx context.Context, monitored []ethtxtypes.MonitoredTxResult, data []byte) (common.Hash, error) {
	for _, m := range monitored {
		if m.To != nil && *m.To == d.cfg.EthBridgeAddr && bytes.Equal(m.Data, data) {
			d.logger.Debugf("tx %s to the bridge is already monitored", m.ID.Hex())
			return m.ID, nil
		}
	}
	return d.ethTxMan.Add(ctx, &d.cfg.EthBridgeAddr, big.NewInt(0), data, d.cfg.UnlockGasOffset, nil)
}

func (d *Driver) checkCkbToEth(ctx context.Context, rec *relaystore.CkbToEthRecord) error {
	if rec.EthTxHash == "" {
		calls, err := d.buildUnlockCalls(ctx, rec)
		if err != nil {
			return err
		}
		return d.addUnlock(ctx, rec, calls)
	}
	id := common.HexToHash(rec.EthTxHash)
	res, err := d.ethTxMan.Result(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: error getting result of monitored tx %s: %w", ckbclient.ErrTransport, id.Hex(), err)
	}
	switch res.Status {
	case ethtxtypes.MonitoredTxStatusCreated,
		ethtxtypes.MonitoredTxStatusSent:
		d.logger.Debugf("ckb to eth %s: unlock tx %s is %s", rec.CKBBurnTxHash, id.Hex(), res.Status)
		return nil
	case ethtxtypes.MonitoredTxStatusFailed:
		return fmt.Errorf("%w: unlock tx %s", ErrTxRejected, id.Hex())
	case ethtxtypes.MonitoredTxStatusMined,
		ethtxtypes.MonitoredTxStatusSafe,
		ethtxtypes.MonitoredTxStatusFinalized:
		rec.Status = relaystore.StatusConfirmed
		if err := d.save(ctx, rec); err != nil {
			return err
		}
		d.logger.Infof("ckb to eth %s confirmed by unlock tx %s", rec.CKBBurnTxHash, id.Hex())
		return nil
	default:
		d.logger.Errorf("unexpected status %s of unlock tx %s", res.Status, id.Hex())
		return nil
	}
}

// EncodeTransactionProof returns the molecule table of a CKB transaction proof:
// indices (Uint32 fixvec), block hash, witnesses root and lemmas (Byte32 fixvec)
func EncodeTransactionProof(p *ckbclient.TransactionProof) []byte {
	indices := make([][]byte, 0, len(p.Indices))
	for _, i := range p.Indices {
		indices = append(indices, molecule.PackUint32(i))
	}
	lemmas := make([][]byte, 0, len(p.Lemmas))
	for _, l := range p.Lemmas {
		lemmas = append(lemmas, l.Bytes())
	}
	return molecule.PackTable(
		molecule.PackFixVec(indices),
		p.BlockHash.Bytes(),
		p.WitnessesRoot.Bytes(),
		molecule.PackFixVec(lemmas),
	)
}
