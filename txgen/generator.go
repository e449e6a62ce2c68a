package txgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/forcebridge/relayer/cellresolver"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/log"
)

var (
	// ErrBridgeCellMissing is returned when no live bridge cell exists for the token
	ErrBridgeCellMissing = errors.New("bridge cell not found")
	// ErrInsufficientFunds is returned when the funding lock can't pay for outputs and fee
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNotYetImplemented is returned for light client updates on a side branch
	ErrNotYetImplemented = errors.New("not yet implemented")
	// ErrInvalidLightClientArgs is returned when the light client type args don't have the expected size
	ErrInvalidLightClientArgs = errors.New("invalid light client type args")
)

// LightClientArgsSize is the size of the light client type args: version byte and out point
const LightClientArgsSize = 1 + ckb.OutPointSize

// Generator builds the unsigned CKB transactions of the bridge.
// The same inputs and chain state always produce the same transaction
type Generator struct {
	cfg             Config
	bridgeLock      *deployedScript
	bridgeType      *deployedScript
	lightClientType *deployedScript
	spvType         *deployedScript
	recipientType   *deployedScript
	sudt            *deployedScript
	secp256k1Dep    ckb.CellDep
	client          cellresolver.CellClienter
	resolver        *cellresolver.Resolver
	logger          *log.Logger
}

// New parses the deployed scripts and returns a generator
func New(cfg Config, scripts ScriptsConfig, client cellresolver.CellClienter) (*Generator, error) {
	if cfg.TxFee == 0 {
		cfg.TxFee = DefaultTxFee
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	g := &Generator{
		cfg:      cfg,
		client:   client,
		resolver: cellresolver.New(client, cfg.PageSize),
		logger:   log.WithFields("module", "txgen"),
	}
	var err error
	if g.bridgeLock, err = parseScript("bridge lock", scripts.BridgeLock); err != nil {
		return nil, err
	}
	if !scripts.BridgeType.IsEmpty() {
		if g.bridgeType, err = parseScript("bridge type", scripts.BridgeType); err != nil {
			return nil, err
		}
	}
	if g.lightClientType, err = parseScript("light client type", scripts.LightClientType); err != nil {
		return nil, err
	}
	if g.spvType, err = parseScript("spv type", scripts.SPVType); err != nil {
		return nil, err
	}
	if g.recipientType, err = parseScript("recipient type", scripts.RecipientType); err != nil {
		return nil, err
	}
	if g.sudt, err = parseScript("sudt", scripts.SUDT); err != nil {
		return nil, err
	}
	if g.secp256k1Dep, err = parseCellDep("secp256k1 dep group", scripts.Secp256k1DepGroup); err != nil {
		return nil, err
	}
	return g, nil
}

// Resolver returns the cell resolver used by the generator
func (g *Generator) Resolver() *cellresolver.Resolver {
	return g.resolver
}

// BridgeLock returns the lock of the bridge cell of the token
func (g *Generator) BridgeLock(token []byte) *ckb.Script {
	return g.bridgeLock.script(token)
}

// RecipientType returns the type script that marks burn outputs
func (g *Generator) RecipientType() *ckb.Script {
	return g.recipientType.script(nil)
}

// SUDTType returns the SUDT type script issued by the bridge lock
func (g *Generator) SUDTType(bridgeLock *ckb.Script) *ckb.Script {
	return g.sudt.script(bridgeLock.Hash().Bytes())
}

// LightClientType returns the light client type script with the given args
func (g *Generator) LightClientType(args []byte) *ckb.Script {
	return g.lightClientType.script(args)
}

// UnsignedTx is a balanced transaction waiting for the funding signature
type UnsignedTx struct {
	Tx *ckb.Transaction
	// InputLocks holds the lock of every input, in the same order as Tx.Inputs
	InputLocks []*ckb.Script
}

// Sign fills the witness of the inputs locked by the signer
func (u *UnsignedTx) Sign(signer *ckb.Secp256k1Signer) error {
	return signer.SignTransaction(u.Tx, u.InputLocks)
}

// builder accumulates a transaction and the locks of its inputs
type builder struct {
	tx            *ckb.Transaction
	inputLocks    []*ckb.Script
	inputCapacity uint64
	cache         *cellresolver.BuildCache
}

func (g *Generator) newBuilder(deps ...ckb.CellDep) *builder {
	b := &builder{
		tx:    &ckb.Transaction{},
		cache: cellresolver.NewBuildCache(g.client),
	}
	for _, d := range deps {
		b.addCellDep(d)
	}
	return b
}

func (b *builder) addCellDep(dep ckb.CellDep) {
	for _, d := range b.tx.CellDeps {
		if d == dep {
			return
		}
	}
	b.tx.CellDeps = append(b.tx.CellDeps, dep)
}

// addInput spends a cell the node still sees live. The indexer may lag behind the node
func (b *builder) addInput(ctx context.Context, cell *cellresolver.Cell) error {
	live, err := b.cache.GetLiveCell(ctx, cell.OutPoint, true)
	if err != nil {
		return err
	}
	if b.inputCapacity, err = ckb.SafeAdd(b.inputCapacity, live.Output.Capacity); err != nil {
		return err
	}
	b.tx.Inputs = append(b.tx.Inputs, ckb.CellInput{PreviousOutput: live.OutPoint})
	b.tx.Witnesses = append(b.tx.Witnesses, []byte{})
	b.inputLocks = append(b.inputLocks, live.Output.Lock)
	return nil
}

// addOutput appends an output holding exactly its occupied capacity
func (b *builder) addOutput(lock, typeScript *ckb.Script, data []byte) {
	output := ckb.CellOutput{Lock: lock, Type: typeScript}
	output.Capacity = ckb.OccupiedCapacity(&output, data)
	b.tx.Outputs = append(b.tx.Outputs, output)
	b.tx.OutputsData = append(b.tx.OutputsData, data)
}

func (b *builder) outputCapacity() (uint64, error) {
	var (
		total uint64
		err   error
	)
	for _, o := range b.tx.Outputs {
		if total, err = ckb.SafeAdd(total, o.Capacity); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (b *builder) unsigned() *UnsignedTx {
	return &UnsignedTx{Tx: b.tx, InputLocks: b.inputLocks}
}

// balance adds funding inputs until they cover the outputs and the fee. The leftover goes to a change
// output locked by the funding lock, which is only created when it can hold its own occupied capacity
func (g *Generator) balance(ctx context.Context, b *builder, fundingLock *ckb.Script, atLeastOneInput bool) error {
	if fundingLock.CodeHash == ckb.Secp256k1Blake160SighashAllTypeHash && fundingLock.HashType == ckb.HashTypeType {
		b.addCellDep(g.secp256k1Dep)
	}
	outputs, err := b.outputCapacity()
	if err != nil {
		return err
	}
	required, err := ckb.SafeAdd(outputs, g.cfg.TxFee)
	if err != nil {
		return err
	}
	change := ckb.CellOutput{Lock: fundingLock}
	changeOccupied := ckb.OccupiedCapacity(&change, nil)

	done := func(funded int) bool {
		if b.inputCapacity < required || (atLeastOneInput && funded == 0) {
			return false
		}
		excess := b.inputCapacity - required
		return excess == 0 || excess >= changeOccupied
	}

	var funded int
	if !done(funded) {
		need := required + changeOccupied
		if b.inputCapacity < need {
			need -= b.inputCapacity
		} else {
			need = changeOccupied
		}
		cells, _, err := g.resolver.CollectCellsByLock(ctx, fundingLock, need)
		if err != nil {
			return err
		}
		for _, cell := range cells {
			if err := b.addInput(ctx, cell); err != nil {
				return err
			}
			funded++
			if done(funded) {
				break
			}
		}
		if !done(funded) {
			return fmt.Errorf("%w: lock %s has %d shannons available, %d required",
				ErrInsufficientFunds, fundingLock.Hash().Hex(), b.inputCapacity, required)
		}
	}
	if excess := b.inputCapacity - required; excess > 0 {
		change.Capacity = excess
		b.tx.Outputs = append(b.tx.Outputs, change)
		b.tx.OutputsData = append(b.tx.OutputsData, []byte{})
	}
	return nil
}
