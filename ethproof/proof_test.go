package ethproof

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/forcebridge/relayer/ckb/molecule"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	bridgeAddr = common.HexToAddress("0xb7098a13a48ece087d3da15b2d28ece0f89819b8")
	tokenAddr  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	senderAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	recipient  = []byte("ckt1qyqywrwdchjyqeysjegpzw38fvandtktdhrs0zaxl4")
)

func lockedLog(t *testing.T, amount *big.Int) *types.Log {
	t.Helper()
	data, err := PackLockedEventData(&LockedEvent{
		LockedAmount:         amount,
		BridgeFee:            big.NewInt(1),
		RecipientLockscript:  recipient,
		ReplayResistOutpoint: []byte{1, 2, 3},
		SudtExtraData:        []byte("extra"),
	})
	require.NoError(t, err)
	return &types.Log{
		Address: bridgeAddr,
		Topics: []common.Hash{
			LockedEventSignature,
			common.BytesToHash(tokenAddr.Bytes()),
			common.BytesToHash(senderAddr.Bytes()),
		},
		Data: data,
	}
}

func testBlock(t *testing.T, amount *big.Int) (*types.Header, []*types.Receipt) {
	t.Helper()
	foreign := &types.Log{Address: common.HexToAddress("0x01"), Topics: []common.Hash{crypto.Keccak256Hash([]byte("foo"))}}
	receipts := []*types.Receipt{
		{Status: types.ReceiptStatusSuccessful, CumulativeGasUsed: 21000, Logs: []*types.Log{}},
		{Status: types.ReceiptStatusSuccessful, CumulativeGasUsed: 90000, Logs: []*types.Log{foreign, lockedLog(t, amount)}},
		{Status: types.ReceiptStatusFailed, CumulativeGasUsed: 111000, Logs: []*types.Log{}},
	}
	for _, r := range receipts {
		r.Bloom = types.CreateBloom(types.Receipts{r})
	}
	header := &types.Header{
		Number:      big.NewInt(100),
		ParentHash:  common.HexToHash("0x99"),
		Difficulty:  big.NewInt(1),
		Time:        1700000000,
		ReceiptHash: types.DeriveSha(types.Receipts(receipts), trie.NewStackTrie(nil)),
	}
	return header, receipts
}

func TestBuildAndVerify(t *testing.T) {
	header, receipts := testBlock(t, big.NewInt(1000))
	p, err := BuildFromReceipts(header, receipts, 1, 1)
	require.NoError(t, err)
	require.NoError(t, p.Verify())
	require.Equal(t, tokenAddr, p.Token)
	require.Equal(t, uint64(1000), p.LockAmount.Lo)
	require.Equal(t, recipient, p.CKBRecipient)
	require.Equal(t, uint64(100), p.BlockNumber())
	require.Equal(t, header.Hash(), p.BlockHash())
	require.Equal(t, senderAddr, p.Event().Sender)
	require.Equal(t, []byte("extra"), p.Event().SudtExtraData)

	// the foreign log is not a Locked event
	_, err = BuildFromReceipts(header, receipts, 1, 0)
	require.ErrorIs(t, err, ErrMalformedProof)

	// wrong receipts root
	header.ReceiptHash = common.HexToHash("0x01")
	_, err = BuildFromReceipts(header, receipts, 1, 1)
	require.ErrorIs(t, err, ErrReceiptsRootMismatch)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	header, receipts := testBlock(t, big.NewInt(123456789))
	p, err := BuildFromReceipts(header, receipts, 1, 1)
	require.NoError(t, err)

	encoded := p.Encode()
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, encoded, decoded.Encode())
	require.Equal(t, p.LogIndex, decoded.LogIndex)
	require.Equal(t, p.ReceiptIndex, decoded.ReceiptIndex)
	require.Equal(t, p.Proof, decoded.Proof)
	require.True(t, p.LockAmount.Equals(decoded.LockAmount))
	require.NoError(t, decoded.Verify())
}

func TestMalformedProof(t *testing.T) {
	header, receipts := testBlock(t, big.NewInt(5))
	p, err := BuildFromReceipts(header, receipts, 1, 1)
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		encoded := p.Encode()
		_, err := Decode(encoded[:len(encoded)-3])
		require.ErrorIs(t, err, ErrMalformedProof)
	})

	t.Run("advisory fields don't match the log", func(t *testing.T) {
		fields, err := molecule.UnpackTable(p.Encode(), proofFields)
		require.NoError(t, err)
		fields[6] = common.HexToAddress("0x0c").Bytes()
		_, err = Decode(molecule.PackTable(fields...))
		require.ErrorIs(t, err, ErrMalformedProof)
	})

	t.Run("log entry not in receipt", func(t *testing.T) {
		_, err := New(0, p.LogEntryData, p.ReceiptIndex, p.ReceiptData, p.HeaderData, p.Proof)
		require.ErrorIs(t, err, ErrMalformedProof)
	})

	t.Run("empty proof", func(t *testing.T) {
		_, err := New(p.LogIndex, p.LogEntryData, p.ReceiptIndex, p.ReceiptData, p.HeaderData, nil)
		require.ErrorIs(t, err, ErrMalformedProof)
	})

	t.Run("garbage header", func(t *testing.T) {
		_, err := New(p.LogIndex, p.LogEntryData, p.ReceiptIndex, p.ReceiptData, []byte{0x01, 0x02}, p.Proof)
		require.ErrorIs(t, err, ErrMalformedProof)
	})

	t.Run("tampered path", func(t *testing.T) {
		tampered, err := New(p.LogIndex, p.LogEntryData, p.ReceiptIndex, p.ReceiptData, p.HeaderData, p.Proof[:1])
		require.NoError(t, err)
		require.ErrorIs(t, tampered.Verify(), ErrMalformedProof)
	})

	t.Run("amount overflows u128", func(t *testing.T) {
		huge := new(big.Int).Lsh(big.NewInt(1), 130)
		header, receipts := testBlock(t, huge)
		_, err := BuildFromReceipts(header, receipts, 1, 1)
		require.ErrorIs(t, err, ErrMalformedProof)
	})
}

type ethClientMock struct {
	mock.Mock
}

func (m *ethClientMock) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)
	r, _ := args.Get(0).(*types.Receipt)
	return r, args.Error(1)
}

func (m *ethClientMock) HeaderByHash(ctx context.Context, hash common.Hash) (*types.Header, error) {
	args := m.Called(ctx, hash)
	h, _ := args.Get(0).(*types.Header)
	return h, args.Error(1)
}

func (m *ethClientMock) BlockReceipts(ctx context.Context, blockNrOrHash rpc.BlockNumberOrHash) ([]*types.Receipt, error) {
	args := m.Called(ctx, blockNrOrHash)
	r, _ := args.Get(0).([]*types.Receipt)
	return r, args.Error(1)
}

func TestBuilderBuildForTx(t *testing.T) {
	ctx := context.Background()
	header, receipts := testBlock(t, big.NewInt(77))
	txHash := common.HexToHash("0x1234")
	receipt := *receipts[1]
	receipt.BlockHash = header.Hash()
	receipt.TransactionIndex = 1

	client := &ethClientMock{}
	client.On("TransactionReceipt", ctx, txHash).Return(&receipt, nil).Once()
	client.On("HeaderByHash", ctx, header.Hash()).Return(header, nil).Once()
	client.On("BlockReceipts", ctx, mock.Anything).Return(receipts, nil).Once()

	p, err := NewBuilder(client, bridgeAddr).BuildForTx(ctx, txHash)
	require.NoError(t, err)
	require.Equal(t, uint64(1), p.LogIndex)
	require.NoError(t, p.Verify())
	client.AssertExpectations(t)

	other := common.HexToHash("0x5678")
	client.On("TransactionReceipt", ctx, other).Return(receipts[0], nil).Once()
	_, err = NewBuilder(client, bridgeAddr).BuildForTx(ctx, other)
	require.ErrorIs(t, err, ErrEventNotFound)
}
