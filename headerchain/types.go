package headerchain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckb/molecule"
)

// Header is a fixed size header record relayed to a light client
type Header interface {
	Number() uint64
	Hash() common.Hash
	ParentHash() common.Hash
	// Encode returns the fixed size record of the header
	Encode() []byte
}

// ETHHeaderRecordSize is the size of an encoded ETHHeaderRecord
const ETHHeaderRecordSize = 8 + 8 + 32 + 32 + 32 + 8

// ETHHeaderRecord is the part of an ethereum header the CKB light client keeps
type ETHHeaderRecord struct {
	BlockNumber  uint64
	Timestamp    uint64
	BlockHash    common.Hash
	Parent       common.Hash
	ReceiptsRoot common.Hash
	Difficulty   uint64
}

var _ Header = (*ETHHeaderRecord)(nil)

// NewETHHeaderRecord extracts the record of an ethereum header
func NewETHHeaderRecord(h *types.Header) *ETHHeaderRecord {
	var difficulty uint64
	if h.Difficulty != nil && h.Difficulty.IsUint64() {
		difficulty = h.Difficulty.Uint64()
	}
	return &ETHHeaderRecord{
		BlockNumber:  h.Number.Uint64(),
		Timestamp:    h.Time,
		BlockHash:    h.Hash(),
		Parent:       h.ParentHash,
		ReceiptsRoot: h.ReceiptHash,
		Difficulty:   difficulty,
	}
}

func (r *ETHHeaderRecord) Number() uint64          { return r.BlockNumber }
func (r *ETHHeaderRecord) Hash() common.Hash       { return r.BlockHash }
func (r *ETHHeaderRecord) ParentHash() common.Hash { return r.Parent }

// Encode returns the ETHHeaderRecordSize bytes molecule struct of the record
func (r *ETHHeaderRecord) Encode() []byte {
	res := make([]byte, 0, ETHHeaderRecordSize)
	res = append(res, molecule.PackUint64(r.BlockNumber)...)
	res = append(res, molecule.PackUint64(r.Timestamp)...)
	res = append(res, r.BlockHash.Bytes()...)
	res = append(res, r.Parent.Bytes()...)
	res = append(res, r.ReceiptsRoot.Bytes()...)
	return append(res, molecule.PackUint64(r.Difficulty)...)
}

// DecodeETHHeaderRecord decodes an encoded record
func DecodeETHHeaderRecord(data []byte) (*ETHHeaderRecord, error) {
	if len(data) != ETHHeaderRecordSize {
		return nil, fmt.Errorf("%w: header record must be %d bytes, got %d",
			molecule.ErrInvalidData, ETHHeaderRecordSize, len(data))
	}
	number, _ := molecule.UnpackUint64(data[0:8])
	timestamp, _ := molecule.UnpackUint64(data[8:16])
	difficulty, _ := molecule.UnpackUint64(data[112:120])
	return &ETHHeaderRecord{
		BlockNumber:  number,
		Timestamp:    timestamp,
		BlockHash:    common.BytesToHash(data[16:48]),
		Parent:       common.BytesToHash(data[48:80]),
		ReceiptsRoot: common.BytesToHash(data[80:112]),
		Difficulty:   difficulty,
	}, nil
}

// CKBHeader adapts a CKB header to a light client record
type CKBHeader struct {
	raw  *ckb.Header
	hash common.Hash
}

var _ Header = (*CKBHeader)(nil)

// NewCKBHeader wraps a CKB header
func NewCKBHeader(h *ckb.Header) *CKBHeader {
	return &CKBHeader{raw: h, hash: h.Hash()}
}

func (h *CKBHeader) Number() uint64          { return h.raw.Number }
func (h *CKBHeader) Hash() common.Hash       { return h.hash }
func (h *CKBHeader) ParentHash() common.Hash { return h.raw.ParentHash }

// Raw returns the wrapped header
func (h *CKBHeader) Raw() *ckb.Header { return h.raw }

// Encode returns the 208 bytes molecule Header
func (h *CKBHeader) Encode() []byte { return h.raw.Serialize() }

// Acceptance tells how a batch relates to the tracked chain
type Acceptance int

const (
	// MainChain batches extend (or replace the tip of) the tracked chain
	MainChain Acceptance = iota
	// SideBranch batches fork from a retained header below the tip
	SideBranch
)

func (a Acceptance) String() string {
	if a == SideBranch {
		return "side-branch"
	}
	return "main-chain"
}

// HeaderBatch is an ordered, contiguous run of headers
type HeaderBatch struct {
	Headers    []Header
	Acceptance Acceptance
}

// First returns the lowest header of the batch
func (b *HeaderBatch) First() Header { return b.Headers[0] }

// Last returns the highest header of the batch
func (b *HeaderBatch) Last() Header { return b.Headers[len(b.Headers)-1] }

// Encode returns the molecule fixvec of the header records
func (b *HeaderBatch) Encode() []byte {
	return EncodeHeaders(b.Headers)
}

// EncodeHeaders returns the molecule fixvec of the header records
func EncodeHeaders(headers []Header) []byte {
	items := make([][]byte, 0, len(headers))
	for _, h := range headers {
		items = append(items, h.Encode())
	}
	return molecule.PackFixVec(items)
}

// DecodeETHHeaders decodes a fixvec of ETHHeaderRecord
func DecodeETHHeaders(data []byte) ([]*ETHHeaderRecord, error) {
	items, err := molecule.UnpackFixVec(data, ETHHeaderRecordSize)
	if err != nil {
		return nil, err
	}
	res := make([]*ETHHeaderRecord, 0, len(items))
	for _, item := range items {
		r, err := DecodeETHHeaderRecord(item)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}
