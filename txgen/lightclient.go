package txgen

import (
	"context"
	"fmt"

	"github.com/forcebridge/relayer/cellresolver"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/headerchain"
)

// BuildLightClientInitTx creates the light client cell. Its type args are the identity version
// followed by the out point of the first input, which makes the type script unique
func (g *Generator) BuildLightClientInitTx(
	ctx context.Context, fundingLock *ckb.Script, typeTemplate *ckb.Script,
) (*UnsignedTx, error) {
	b := g.newBuilder(g.bridgeLock.dep, g.lightClientType.dep)
	typeScript := &ckb.Script{
		CodeHash: typeTemplate.CodeHash,
		HashType: typeTemplate.HashType,
		// placeholder of the final size, the capacity doesn't depend on the content
		Args: make([]byte, LightClientArgsSize),
	}
	b.addOutput(fundingLock, typeScript, []byte{})
	if err := g.balance(ctx, b, fundingLock, true); err != nil {
		return nil, err
	}
	args := append([]byte{g.cfg.LightClientVersion}, b.tx.Inputs[0].PreviousOutput.Serialize()...)
	if len(args) != LightClientArgsSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLightClientArgs, LightClientArgsSize, len(args))
	}
	typeScript.Args = args
	g.logger.Debugf("light client init tx %s, type script hash %s", b.tx.Hash().Hex(), typeScript.Hash().Hex())
	return b.unsigned(), nil
}

// BuildLightClientUpdateTx spends the light client cell and recreates it with the headers of the batch.
// recentHeaders are the headers currently stored by the light client, lowest first
func (g *Generator) BuildLightClientUpdateTx(
	ctx context.Context,
	batch *headerchain.HeaderBatch,
	lightClientCell *cellresolver.Cell,
	recentHeaders []headerchain.Header,
	fundingLock *ckb.Script,
) (*UnsignedTx, error) {
	if batch == nil || len(batch.Headers) == 0 {
		return nil, fmt.Errorf("empty header batch")
	}
	if lightClientCell.Output.Type == nil {
		return nil, fmt.Errorf("%w: light client cell %s has no type", ErrInvalidLightClientArgs, lightClientCell.OutPoint)
	}
	if len(lightClientCell.Output.Type.Args) != LightClientArgsSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidLightClientArgs, LightClientArgsSize, len(lightClientCell.Output.Type.Args))
	}
	first := batch.First()
	if len(recentHeaders) > 0 {
		tip := recentHeaders[len(recentHeaders)-1]
		if first.ParentHash() != tip.Hash() && first.Number() < tip.Number() {
			// side branch payload is not defined by the light client yet
			return nil, fmt.Errorf("%w: light client update on a side branch at %d, tip is %d",
				ErrNotYetImplemented, first.Number(), tip.Number())
		}
	}
	window := make([]headerchain.Header, 0, len(recentHeaders)+len(batch.Headers))
	for _, h := range recentHeaders {
		if h.Number() < first.Number() {
			window = append(window, h)
		}
	}
	window = append(window, batch.Headers...)
	if len(window) > g.cfg.WindowSize {
		window = window[len(window)-g.cfg.WindowSize:]
	}

	b := g.newBuilder(g.bridgeLock.dep, g.lightClientType.dep)
	if err := b.addInput(ctx, lightClientCell); err != nil {
		return nil, err
	}
	b.addOutput(lightClientCell.Output.Lock, lightClientCell.Output.Type, headerchain.EncodeHeaders(window))
	if err := g.balance(ctx, b, fundingLock, false); err != nil {
		return nil, err
	}
	return b.unsigned(), nil
}
