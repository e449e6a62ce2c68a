package txgen

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/forcebridge/relayer/cellresolver"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckb/molecule"
	"github.com/forcebridge/relayer/ckbclient"
	"github.com/forcebridge/relayer/ckbclient/ckbtest"
	"github.com/forcebridge/relayer/ethproof"
	"github.com/forcebridge/relayer/headerchain"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	recipient = &ckb.Script{
		CodeHash: ckb.Secp256k1Blake160SighashAllTypeHash,
		HashType: ckb.HashTypeType,
		Args:     common.FromHex("0xb39bbc0b3673c7d36450bc14cfcdad2d559c6c64"),
	}
)

func testScripts() ScriptsConfig {
	script := func(n int64) ScriptConfig {
		return ScriptConfig{
			CodeHash: common.BigToHash(big.NewInt(n)).Hex(),
			HashType: "data",
			TxHash:   common.BigToHash(big.NewInt(n + 100)).Hex(),
			Index:    0,
		}
	}
	return ScriptsConfig{
		BridgeLock:      script(1),
		LightClientType: script(2),
		SPVType:         script(3),
		RecipientType:   script(4),
		SUDT:            script(5),
		Secp256k1DepGroup: ScriptConfig{
			TxHash:  common.HexToHash("0xf8de3bb47d055cdf460d93a2a6e1b05f7432f9777c8c474abf4eec1d4aee5d37").Hex(),
			DepType: "dep_group",
		},
	}
}

type fixture struct {
	chain   *ckbtest.Chain
	gen     *Generator
	signer  *ckb.Secp256k1Signer
	funding *ckb.Script
}

func newFixture(t *testing.T, fundingCells int, cellCapacity uint64) *fixture {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := ckb.NewSecp256k1Signer(key)
	chain := ckbtest.NewChain()
	for i := 0; i < fundingCells; i++ {
		chain.AddCell(
			ckb.OutPoint{TxHash: common.BigToHash(big.NewInt(int64(1000 + i)))},
			ckb.CellOutput{Capacity: cellCapacity, Lock: signer.LockScript()},
			nil,
		)
	}
	gen, err := New(Config{WindowSize: 3}, testScripts(), chain)
	require.NoError(t, err)
	return &fixture{chain: chain, gen: gen, signer: signer, funding: signer.LockScript()}
}

func (f *fixture) addBridgeCell() {
	lock := f.gen.BridgeLock(tokenAddr.Bytes())
	output := ckb.CellOutput{Lock: lock}
	output.Capacity = ckb.OccupiedCapacity(&output, nil)
	f.chain.AddCell(ckb.OutPoint{TxHash: common.HexToHash("0xb0")}, output, nil)
}

func testProof(t *testing.T, amount int64) *ethproof.SourceEventProof {
	t.Helper()
	addr, err := ckb.EncodeAddress(ckb.Testnet, recipient)
	require.NoError(t, err)
	data, err := ethproof.PackLockedEventData(&ethproof.LockedEvent{
		LockedAmount:         big.NewInt(amount),
		BridgeFee:            big.NewInt(0),
		RecipientLockscript:  []byte(addr),
		ReplayResistOutpoint: []byte{},
		SudtExtraData:        []byte{},
	})
	require.NoError(t, err)
	log := &types.Log{
		Address: common.HexToAddress("0xb7098a13a48ece087d3da15b2d28ece0f89819b8"),
		Topics: []common.Hash{
			ethproof.LockedEventSignature,
			common.BytesToHash(tokenAddr.Bytes()),
			common.BytesToHash(common.HexToAddress("0xbb").Bytes()),
		},
		Data: data,
	}
	receipts := []*types.Receipt{
		{Status: types.ReceiptStatusSuccessful, CumulativeGasUsed: 50000, Logs: []*types.Log{log}},
	}
	receipts[0].Bloom = types.CreateBloom(types.Receipts(receipts))
	header := &types.Header{
		Number:      big.NewInt(10),
		Difficulty:  big.NewInt(1),
		ReceiptHash: types.DeriveSha(types.Receipts(receipts), trie.NewStackTrie(nil)),
	}
	p, err := ethproof.BuildFromReceipts(header, receipts, 0, 0)
	require.NoError(t, err)
	return p
}

func totalCapacity(t *testing.T, chainCells map[ckb.OutPoint]uint64, tx *ckb.Transaction) (uint64, uint64) {
	t.Helper()
	var in, out uint64
	for _, i := range tx.Inputs {
		c, ok := chainCells[i.PreviousOutput]
		require.True(t, ok, "unknown input %s", i.PreviousOutput)
		in += c
	}
	for _, o := range tx.Outputs {
		out += o.Capacity
	}
	return in, out
}

func liveCapacities(t *testing.T, f *fixture, tx *ckb.Transaction) map[ckb.OutPoint]uint64 {
	t.Helper()
	res := map[ckb.OutPoint]uint64{}
	for _, i := range tx.Inputs {
		cell, err := f.chain.GetLiveCell(context.Background(), i.PreviousOutput, false)
		require.NoError(t, err)
		res[i.PreviousOutput] = cell.Output.Capacity
	}
	return res
}

func TestBuildSPVRelayTx(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, 100*ckb.ShannonsPerCKB)
	f.addBridgeCell()
	proof := testProof(t, 1000)

	unsigned, err := f.gen.BuildSPVRelayTx(ctx, f.funding, proof)
	require.NoError(t, err)
	tx := unsigned.Tx

	bridgeLock := f.gen.BridgeLock(tokenAddr.Bytes())
	bridgeOutputs := 0
	for _, o := range tx.Outputs {
		if o.Lock.Equals(bridgeLock) {
			bridgeOutputs++
		}
	}
	require.Equal(t, 1, bridgeOutputs)
	require.Equal(t, common.HexToHash("0xb0"), tx.Inputs[0].PreviousOutput.TxHash)

	sudt := tx.Outputs[1]
	require.True(t, sudt.Lock.Equals(recipient))
	require.Equal(t, bridgeLock.Hash().Bytes(), sudt.Type.Args)
	require.Equal(t, molecule.PackUint128(proof.LockAmount), tx.OutputsData[1])
	require.Equal(t, ckb.OccupiedCapacity(&sudt, tx.OutputsData[1]), sudt.Capacity)

	witness, err := ckb.DecodeWitnessArgs(tx.Witnesses[0])
	require.NoError(t, err)
	require.Equal(t, proof.Encode(), witness.InputType)
	require.Len(t, tx.Witnesses, len(tx.Inputs))

	in, out := totalCapacity(t, liveCapacities(t, f, tx), tx)
	require.Equal(t, in, out+DefaultTxFee)
	// deps: bridge lock, spv, sudt and the secp256k1 group
	require.Len(t, tx.CellDeps, 4)
	require.Equal(t, ckb.DepTypeDepGroup, tx.CellDeps[3].DepType)

	require.NoError(t, unsigned.Sign(f.signer))
	require.NotEmpty(t, tx.Witnesses[1])
}

// nodeView answers live cell lookups like a node ahead of its indexer
type nodeView struct {
	*ckbtest.Chain
	dead    map[ckb.OutPoint]bool
	lookups map[ckb.OutPoint]int
}

func (n *nodeView) GetLiveCell(ctx context.Context, outPoint ckb.OutPoint, withData bool) (*ckbclient.LiveCell, error) {
	n.lookups[outPoint]++
	if n.dead[outPoint] {
		return nil, fmt.Errorf("cell %s: %w", outPoint, ckbclient.ErrNotFound)
	}
	return n.Chain.GetLiveCell(ctx, outPoint, withData)
}

func TestBuildSPVRelayTxChecksInputsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, 100*ckb.ShannonsPerCKB)
	f.addBridgeCell()
	node := &nodeView{Chain: f.chain, dead: map[ckb.OutPoint]bool{}, lookups: map[ckb.OutPoint]int{}}
	gen, err := New(Config{WindowSize: 3}, testScripts(), node)
	require.NoError(t, err)

	unsigned, err := gen.BuildSPVRelayTx(ctx, f.funding, testProof(t, 1000))
	require.NoError(t, err)
	require.Len(t, node.lookups, len(unsigned.Tx.Inputs))
	for _, in := range unsigned.Tx.Inputs {
		require.Equal(t, 1, node.lookups[in.PreviousOutput], in.PreviousOutput.String())
	}

	// a funding cell the indexer still lists but the node saw spent
	funding := unsigned.Tx.Inputs[1].PreviousOutput
	node.dead[funding] = true
	_, err = gen.BuildSPVRelayTx(ctx, f.funding, testProof(t, 1000))
	require.ErrorIs(t, err, cellresolver.ErrCellNotFound)
}

func TestBuildSPVRelayTxDeterministic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, 100*ckb.ShannonsPerCKB)
	f.addBridgeCell()
	proof := testProof(t, 42)

	first, err := f.gen.BuildSPVRelayTx(ctx, f.funding, proof)
	require.NoError(t, err)
	second, err := f.gen.BuildSPVRelayTx(ctx, f.funding, proof)
	require.NoError(t, err)
	require.Equal(t, first.Tx.Serialize(), second.Tx.Serialize())
	require.Equal(t, first.Tx.Hash(), second.Tx.Hash())
}

func TestBuildSPVRelayTxErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("bridge cell missing", func(t *testing.T) {
		f := newFixture(t, 3, 100*ckb.ShannonsPerCKB)
		_, err := f.gen.BuildSPVRelayTx(ctx, f.funding, testProof(t, 1))
		require.ErrorIs(t, err, ErrBridgeCellMissing)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		f := newFixture(t, 1, 100*ckb.ShannonsPerCKB)
		f.addBridgeCell()
		_, err := f.gen.BuildSPVRelayTx(ctx, f.funding, testProof(t, 1))
		require.ErrorIs(t, err, ErrInsufficientFunds)
	})
}

func TestBuildLightClientInitTx(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, 100*ckb.ShannonsPerCKB)
	template := f.gen.LightClientType(nil)

	unsigned, err := f.gen.BuildLightClientInitTx(ctx, f.funding, template)
	require.NoError(t, err)
	tx := unsigned.Tx
	args := tx.Outputs[0].Type.Args
	require.Len(t, args, LightClientArgsSize)
	require.Equal(t, 37, len(args))
	require.Equal(t, DefaultLightClientVersion, args[0])
	require.Equal(t, tx.Inputs[0].PreviousOutput.Serialize(), args[1:])
	require.Equal(t, template.CodeHash, tx.Outputs[0].Type.CodeHash)
	require.Len(t, tx.Inputs, 2)

	in, out := totalCapacity(t, liveCapacities(t, f, tx), tx)
	require.Equal(t, in, out+DefaultTxFee)
	require.NoError(t, unsigned.Sign(f.signer))
}

func chainOf(from, to uint64, parent common.Hash, salt byte) []headerchain.Header {
	res := []headerchain.Header{}
	for n := from; n <= to; n++ {
		h := &headerchain.ETHHeaderRecord{
			BlockNumber: n,
			Parent:      parent,
			BlockHash:   common.BytesToHash([]byte{salt, byte(n)}),
		}
		parent = h.BlockHash
		res = append(res, h)
	}
	return res
}

func TestBuildLightClientUpdateTx(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, 100*ckb.ShannonsPerCKB)
	recent := chainOf(1, 3, common.Hash{}, 1)
	typeScript := f.gen.LightClientType(make([]byte, LightClientArgsSize))
	lcOutput := ckb.CellOutput{Lock: f.funding, Type: typeScript}
	lcData := headerchain.EncodeHeaders(recent)
	lcOutput.Capacity = ckb.OccupiedCapacity(&lcOutput, lcData)
	lcCell := &cellresolver.Cell{OutPoint: ckb.OutPoint{TxHash: common.HexToHash("0x1c")}, Output: lcOutput, Data: lcData}
	f.chain.AddCell(lcCell.OutPoint, lcCell.Output, lcCell.Data)

	batch := &headerchain.HeaderBatch{Headers: chainOf(4, 5, recent[2].Hash(), 1)}
	unsigned, err := f.gen.BuildLightClientUpdateTx(ctx, batch, lcCell, recent, f.funding)
	require.NoError(t, err)
	tx := unsigned.Tx
	require.Equal(t, lcCell.OutPoint, tx.Inputs[0].PreviousOutput)
	stored, err := headerchain.DecodeETHHeaders(tx.OutputsData[0])
	require.NoError(t, err)
	// window of 3 headers
	require.Len(t, stored, 3)
	require.Equal(t, uint64(3), stored[0].Number())
	require.Equal(t, uint64(5), stored[2].Number())
	require.True(t, tx.Outputs[0].Type.Equals(typeScript))

	in, out := totalCapacity(t, liveCapacities(t, f, tx), tx)
	require.Equal(t, in, out+DefaultTxFee)

	// replacing the tip
	batch = &headerchain.HeaderBatch{Headers: chainOf(3, 3, recent[1].Hash(), 2)}
	unsigned, err = f.gen.BuildLightClientUpdateTx(ctx, batch, lcCell, recent, f.funding)
	require.NoError(t, err)
	stored, err = headerchain.DecodeETHHeaders(unsigned.Tx.OutputsData[0])
	require.NoError(t, err)
	require.Len(t, stored, 3)
	require.Equal(t, batch.Headers[0].Hash(), stored[2].Hash())

	// side branch
	batch = &headerchain.HeaderBatch{Headers: chainOf(2, 2, recent[0].Hash(), 3)}
	_, err = f.gen.BuildLightClientUpdateTx(ctx, batch, lcCell, recent, f.funding)
	require.ErrorIs(t, err, ErrNotYetImplemented)

	// malformed light client cell
	bad := *lcCell
	bad.Output.Type = f.gen.LightClientType([]byte{1})
	_, err = f.gen.BuildLightClientUpdateTx(ctx, batch, &bad, recent, f.funding)
	require.ErrorIs(t, err, ErrInvalidLightClientArgs)
}

func TestConfigInvalid(t *testing.T) {
	scripts := testScripts()
	scripts.SUDT.CodeHash = "0x123"
	_, err := New(Config{}, scripts, ckbtest.NewChain())
	require.ErrorIs(t, err, ErrConfigInvalid)

	scripts = testScripts()
	scripts.SPVType.TxHash = "not hex"
	_, err = New(Config{}, scripts, ckbtest.NewChain())
	require.ErrorIs(t, err, ErrConfigInvalid)

	scripts = testScripts()
	scripts.LightClientType.HashType = "code"
	_, err = New(Config{}, scripts, ckbtest.NewChain())
	require.ErrorIs(t, err, ErrConfigInvalid)
}

func TestRecipientLock(t *testing.T) {
	addr, err := ckb.EncodeAddress(ckb.Mainnet, recipient)
	require.NoError(t, err)
	lock, err := RecipientLock([]byte(addr))
	require.NoError(t, err)
	require.True(t, lock.Equals(recipient))

	lock, err = RecipientLock(recipient.Serialize())
	require.NoError(t, err)
	require.True(t, lock.Equals(recipient))

	_, err = RecipientLock([]byte("nope"))
	require.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestRecipientData(t *testing.T) {
	f := newFixture(t, 0, 0)
	data := &RecipientData{
		RecipientAddress: common.HexToAddress("0x00000000000000000000000000000000000000b0"),
		TokenAddress:     tokenAddr,
		Amount:           uint128.From64(500),
		Fee:              uint128.From64(5),
	}
	encoded := data.Encode()
	require.Len(t, encoded, RecipientDataSize)

	tx := &ckb.Transaction{
		Outputs: []ckb.CellOutput{
			{Capacity: 1, Lock: recipient},
			{Capacity: 1, Lock: recipient, Type: f.gen.RecipientType()},
		},
		OutputsData: [][]byte{nil, encoded},
	}
	found, err := f.gen.FindRecipientData(tx)
	require.NoError(t, err)
	require.Equal(t, data, found)

	_, err = f.gen.FindRecipientData(&ckb.Transaction{
		Outputs:     []ckb.CellOutput{{Capacity: 1, Lock: recipient}},
		OutputsData: [][]byte{nil},
	})
	require.ErrorIs(t, err, ErrRecipientCellMissing)

	_, err = DecodeRecipientData(encoded[1:])
	require.ErrorIs(t, err, molecule.ErrInvalidData)
}
