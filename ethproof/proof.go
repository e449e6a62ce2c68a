// Package ethproof models the SPV proof that an ethereum Locked event was included
// in a block, and builds it from an ethereum node.
package ethproof

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/forcebridge/relayer/ckb/molecule"
	"github.com/gaze-network/uint128"
)

// ErrMalformedProof is returned when the proof components can't be decoded or are inconsistent
var ErrMalformedProof = errors.New("malformed proof")

const proofFields = 9

// SourceEventProof proves a Locked event was emitted by a transaction included in a block.
// The decoded fields are derived from the raw log and exist for convenience
type SourceEventProof struct {
	// LogIndex is the position of the log inside the receipt
	LogIndex     uint64
	LogEntryData []byte
	// ReceiptIndex is the position of the receipt inside the block
	ReceiptIndex uint64
	ReceiptData  []byte
	HeaderData   []byte
	// Proof holds the receipts trie nodes from the root to the leaf
	Proof [][]byte

	Token        common.Address
	LockAmount   uint128.Uint128
	CKBRecipient []byte

	event  *LockedEvent
	header *types.Header
}

// New validates the raw components and builds the proof
func New(
	logIndex uint64, logEntry []byte,
	receiptIndex uint64, receipt []byte,
	header []byte, proof [][]byte,
) (*SourceEventProof, error) {
	p := &SourceEventProof{
		LogIndex:     logIndex,
		LogEntryData: logEntry,
		ReceiptIndex: receiptIndex,
		ReceiptData:  receipt,
		HeaderData:   header,
		Proof:        proof,
	}
	if err := p.decode(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *SourceEventProof) decode() error {
	if len(p.Proof) == 0 {
		return fmt.Errorf("%w: empty proof path", ErrMalformedProof)
	}
	var l types.Log
	if err := rlp.DecodeBytes(p.LogEntryData, &l); err != nil {
		return fmt.Errorf("%w: log entry: %w", ErrMalformedProof, err)
	}
	var receipt types.Receipt
	if err := receipt.UnmarshalBinary(p.ReceiptData); err != nil {
		return fmt.Errorf("%w: receipt: %w", ErrMalformedProof, err)
	}
	if p.LogIndex >= uint64(len(receipt.Logs)) {
		return fmt.Errorf("%w: log index %d out of range, receipt has %d logs",
			ErrMalformedProof, p.LogIndex, len(receipt.Logs))
	}
	encodedLog, err := rlp.EncodeToBytes(receipt.Logs[p.LogIndex])
	if err != nil {
		return fmt.Errorf("%w: re-encoding receipt log: %w", ErrMalformedProof, err)
	}
	if !bytes.Equal(encodedLog, p.LogEntryData) {
		return fmt.Errorf("%w: log entry is not the log %d of the receipt", ErrMalformedProof, p.LogIndex)
	}
	var header types.Header
	if err := rlp.DecodeBytes(p.HeaderData, &header); err != nil {
		return fmt.Errorf("%w: header: %w", ErrMalformedProof, err)
	}
	l.BlockNumber = header.Number.Uint64()
	l.BlockHash = header.Hash()
	event, err := DecodeLockedEvent(l)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}
	amount, err := uint128.FromBig(event.LockedAmount)
	if err != nil {
		return fmt.Errorf("%w: locked amount %s doesn't fit in 128 bits", ErrMalformedProof, event.LockedAmount)
	}
	p.event = event
	p.header = &header
	p.Token = event.Token
	p.LockAmount = amount
	p.CKBRecipient = event.RecipientLockscript
	return nil
}

// Event returns the decoded Locked event
func (p *SourceEventProof) Event() *LockedEvent {
	return p.event
}

// BlockNumber returns the number of the block the event was included in
func (p *SourceEventProof) BlockNumber() uint64 {
	return p.header.Number.Uint64()
}

// BlockHash returns the hash of the block the event was included in
func (p *SourceEventProof) BlockHash() common.Hash {
	return p.header.Hash()
}

// Header returns the decoded header of the block the event was included in
func (p *SourceEventProof) Header() *types.Header {
	return p.header
}

// Verify checks the proof path against the receipts root of the header
func (p *SourceEventProof) Verify() error {
	key, err := rlp.EncodeToBytes(uint(p.ReceiptIndex))
	if err != nil {
		return err
	}
	db := memorydb.New()
	for _, node := range p.Proof {
		if err := db.Put(crypto.Keccak256(node), node); err != nil {
			return err
		}
	}
	value, err := trie.VerifyProof(p.header.ReceiptHash, key, db)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}
	if !bytes.Equal(value, p.ReceiptData) {
		return fmt.Errorf("%w: proven receipt differs from the receipt data", ErrMalformedProof)
	}
	return nil
}

// Encode returns the molecule encoding of the proof, as consumed by the on chain verifier
func (p *SourceEventProof) Encode() []byte {
	proof := make([][]byte, 0, len(p.Proof))
	for _, node := range p.Proof {
		proof = append(proof, molecule.PackBytes(node))
	}
	return molecule.PackTable(
		molecule.PackUint64(p.LogIndex),
		molecule.PackBytes(p.LogEntryData),
		molecule.PackUint64(p.ReceiptIndex),
		molecule.PackBytes(p.ReceiptData),
		molecule.PackBytes(p.HeaderData),
		molecule.PackDynVec(proof),
		p.Token.Bytes(),
		molecule.PackUint128(p.LockAmount),
		molecule.PackBytes(p.CKBRecipient),
	)
}

// Decode parses an encoded proof. The decoded fields must match the ones derived from the log
func Decode(data []byte) (*SourceEventProof, error) {
	fields, err := molecule.UnpackTable(data, proofFields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}
	logIndex, err := molecule.UnpackUint64(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: log index: %w", ErrMalformedProof, err)
	}
	receiptIndex, err := molecule.UnpackUint64(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: receipt index: %w", ErrMalformedProof, err)
	}
	byteFields := make([][]byte, 0, 4) //nolint:mnd
	for _, i := range []int{1, 3, 4, 8} {
		b, err := molecule.UnpackBytes(fields[i])
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %w", ErrMalformedProof, i, err)
		}
		byteFields = append(byteFields, b)
	}
	packedNodes, err := molecule.UnpackDynVec(fields[5])
	if err != nil {
		return nil, fmt.Errorf("%w: proof path: %w", ErrMalformedProof, err)
	}
	nodes := make([][]byte, 0, len(packedNodes))
	for _, n := range packedNodes {
		node, err := molecule.UnpackBytes(n)
		if err != nil {
			return nil, fmt.Errorf("%w: proof node: %w", ErrMalformedProof, err)
		}
		nodes = append(nodes, node)
	}
	if len(fields[6]) != common.AddressLength {
		return nil, fmt.Errorf("%w: token must be %d bytes", ErrMalformedProof, common.AddressLength)
	}
	amount, err := molecule.UnpackUint128(fields[7])
	if err != nil {
		return nil, fmt.Errorf("%w: lock amount: %w", ErrMalformedProof, err)
	}

	p, err := New(logIndex, byteFields[0], receiptIndex, byteFields[1], byteFields[2], nodes)
	if err != nil {
		return nil, err
	}
	if p.Token != common.BytesToAddress(fields[6]) || !p.LockAmount.Equals(amount) ||
		!bytes.Equal(p.CKBRecipient, byteFields[3]) {
		return nil, fmt.Errorf("%w: decoded fields don't match the log entry", ErrMalformedProof)
	}
	return p, nil
}
