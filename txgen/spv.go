package txgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/forcebridge/relayer/cellresolver"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckb/molecule"
	"github.com/forcebridge/relayer/ethproof"
)

// ErrInvalidRecipient is returned when the recipient of a Locked event is not a CKB lock
var ErrInvalidRecipient = errors.New("invalid ckb recipient")

// RecipientLock decodes the recipient of a Locked event. The recipient is either a CKB address
// string or a molecule encoded lock script
func RecipientLock(recipient []byte) (*ckb.Script, error) {
	lock, _, addrErr := ckb.ParseAddress(string(recipient))
	if addrErr == nil {
		return lock, nil
	}
	fields, err := molecule.UnpackTable(recipient, 3)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipient, addrErr)
	}
	if len(fields[0]) != 32 || len(fields[1]) != 1 {
		return nil, fmt.Errorf("%w: malformed script", ErrInvalidRecipient)
	}
	args, err := molecule.UnpackBytes(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipient, err)
	}
	lock = &ckb.Script{HashType: ckb.ScriptHashType(fields[1][0]), Args: args}
	copy(lock.CodeHash[:], fields[0])
	return lock, nil
}

// BuildSPVRelayTx mints the tokens locked on ethereum. It spends and recreates the bridge cell of the
// token, creates the SUDT cell of the recipient and carries the proof in the first witness
func (g *Generator) BuildSPVRelayTx(
	ctx context.Context, fundingLock *ckb.Script, proof *ethproof.SourceEventProof,
) (*UnsignedTx, error) {
	recipient, err := RecipientLock(proof.CKBRecipient)
	if err != nil {
		return nil, err
	}
	bridgeLock := g.BridgeLock(proof.Token.Bytes())
	found, err := g.resolver.FindCellByLock(ctx, bridgeLock)
	if errors.Is(err, cellresolver.ErrCellNotFound) {
		return nil, fmt.Errorf("%w: token %s, lock %s", ErrBridgeCellMissing, proof.Token.Hex(), bridgeLock.Hash().Hex())
	}
	if err != nil {
		return nil, err
	}

	deps := []ckb.CellDep{g.bridgeLock.dep, g.spvType.dep, g.sudt.dep}
	if g.bridgeType != nil {
		deps = append(deps, g.bridgeType.dep)
	}
	b := g.newBuilder(deps...)
	// the data of the bridge cell is recreated as is, so it comes from the node rather than the indexer
	bridgeCell, err := b.cache.GetLiveCell(ctx, found.OutPoint, true)
	if errors.Is(err, cellresolver.ErrCellNotFound) {
		return nil, fmt.Errorf("%w: bridge cell %s was spent", ErrBridgeCellMissing, found.OutPoint)
	}
	if err != nil {
		return nil, err
	}
	if err := b.addInput(ctx, bridgeCell); err != nil {
		return nil, err
	}
	b.tx.Witnesses[0] = (&ckb.WitnessArgs{InputType: proof.Encode()}).Serialize()

	b.addOutput(bridgeLock, bridgeCell.Output.Type, bridgeCell.Data)
	b.addOutput(recipient, g.SUDTType(bridgeLock), molecule.PackUint128(proof.LockAmount))
	if err := g.balance(ctx, b, fundingLock, false); err != nil {
		return nil, err
	}
	g.logger.Debugf("spv relay tx %s for receipt %d of block %d",
		b.tx.Hash().Hex(), proof.ReceiptIndex, proof.BlockNumber())
	return b.unsigned(), nil
}
