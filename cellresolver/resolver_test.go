package cellresolver

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
	"github.com/forcebridge/relayer/ckbclient/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLock = &ckb.Script{
	CodeHash: ckb.Secp256k1Blake160SighashAllTypeHash,
	HashType: ckb.HashTypeType,
	Args:     common.FromHex("0xb39bbc0b3673c7d36450bc14cfcdad2d559c6c64"),
}

func capacityCell(block uint64, txByte byte, index uint32, capacity uint64) ckbclient.IndexedCell {
	return ckbclient.IndexedCell{
		OutPoint:    ckb.OutPoint{TxHash: common.BytesToHash([]byte{txByte}), Index: index},
		Output:      ckb.CellOutput{Capacity: capacity, Lock: testLock},
		BlockNumber: block,
	}
}

func TestFindCellByLockAndType(t *testing.T) {
	ctx := context.Background()
	client := mocks.NewClienterMock(t)
	typeScript := &ckb.Script{CodeHash: common.HexToHash("0x01"), HashType: ckb.HashTypeData}
	typed := capacityCell(1, 1, 0, 200)
	typed.Output.Type = typeScript
	typed.OutputData = []byte{1, 2}

	client.On("GetCells", ctx, ckbclient.SearchKey{Script: typeScript, ScriptType: ckbclient.ScriptTypeType}, uint32(1), "").
		Return(&ckbclient.CellsPage{Cells: []ckbclient.IndexedCell{typed}}, nil)
	client.On("GetCells", ctx, ckbclient.SearchKey{Script: testLock, ScriptType: ckbclient.ScriptTypeLock}, uint32(1), "").
		Return(&ckbclient.CellsPage{}, nil)

	r := New(client, 10)
	output, data, err := r.GetCellByType(ctx, typeScript)
	require.NoError(t, err)
	require.Equal(t, uint64(200), output.Capacity)
	require.Equal(t, []byte{1, 2}, data)

	_, err = r.FindCellByLock(ctx, testLock)
	require.ErrorIs(t, err, ErrCellNotFound)
}

func TestFindCellTransportError(t *testing.T) {
	ctx := context.Background()
	client := mocks.NewClienterMock(t)
	client.On("GetCells", ctx, mock.Anything, uint32(1), "").
		Return(nil, ckbclient.ErrTransport)

	_, err := New(client, 10).FindCellByLock(ctx, testLock)
	require.ErrorIs(t, err, ckbclient.ErrTransport)
	require.False(t, errors.Is(err, ErrCellNotFound))
}

func TestCollectCellsByLock(t *testing.T) {
	ctx := context.Background()
	client := mocks.NewClienterMock(t)
	withData := capacityCell(1, 9, 0, 1000)
	withData.OutputData = []byte{1}
	page1 := &ckbclient.CellsPage{
		Cells:      []ckbclient.IndexedCell{capacityCell(5, 2, 1, 100), capacityCell(5, 2, 0, 100)},
		LastCursor: "c1",
	}
	page2 := &ckbclient.CellsPage{
		Cells:      []ckbclient.IndexedCell{withData, capacityCell(3, 7, 0, 300)},
		LastCursor: "c2",
	}
	page3 := &ckbclient.CellsPage{LastCursor: "c3"}
	key := ckbclient.SearchKey{Script: testLock, ScriptType: ckbclient.ScriptTypeLock, WithoutType: true, EmptyData: true}
	client.On("GetCells", ctx, key, uint32(2), "").Return(page1, nil)
	client.On("GetCells", ctx, key, uint32(2), "c1").Return(page2, nil)
	client.On("GetCells", ctx, key, uint32(2), "c2").Return(page3, nil)

	r := New(client, 2)
	cells, total, err := r.CollectCellsByLock(ctx, testLock, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(500), total)
	require.Len(t, cells, 3)
	// ordered by block then out point
	require.Equal(t, uint64(300), cells[0].Output.Capacity)
	require.Equal(t, uint32(0), cells[1].OutPoint.Index)
	require.Equal(t, uint32(1), cells[2].OutPoint.Index)

	// the first page already covers the need
	cells, total, err = r.CollectCellsByLock(ctx, testLock, 150)
	require.NoError(t, err)
	require.Equal(t, uint64(200), total)
	require.Len(t, cells, 2)
	require.Equal(t, uint32(0), cells[0].OutPoint.Index)
}

func TestBuildCache(t *testing.T) {
	ctx := context.Background()
	client := mocks.NewClienterMock(t)
	live := ckb.OutPoint{TxHash: common.HexToHash("0x01")}
	dead := ckb.OutPoint{TxHash: common.HexToHash("0x02")}
	client.On("GetLiveCell", ctx, live, true).
		Return(&ckbclient.LiveCell{Status: "live", Output: &ckb.CellOutput{Capacity: 1, Lock: testLock}, Data: []byte{7}}, nil).
		Once()
	client.On("GetLiveCell", ctx, live, false).
		Return(&ckbclient.LiveCell{Status: "live", Output: &ckb.CellOutput{Capacity: 1, Lock: testLock}}, nil).
		Once()
	client.On("GetLiveCell", ctx, dead, true).Return(nil, ckbclient.ErrNotFound)

	cache := NewBuildCache(client)
	for i := 0; i < 3; i++ {
		cell, err := cache.GetLiveCell(ctx, live, true)
		require.NoError(t, err)
		require.Equal(t, []byte{7}, cell.Data)
	}
	cell, err := cache.GetLiveCell(ctx, live, false)
	require.NoError(t, err)
	require.Nil(t, cell.Data)
	require.Equal(t, 2, cache.Len())

	_, err = cache.GetLiveCell(ctx, dead, true)
	require.ErrorIs(t, err, ErrCellNotFound)
}
