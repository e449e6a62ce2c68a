package ckb

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/ckb/molecule"
	"github.com/gaze-network/uint128"
)

// ScriptHashType selects how the code hash of a script is matched
type ScriptHashType byte

const (
	HashTypeData  ScriptHashType = 0
	HashTypeType  ScriptHashType = 1
	HashTypeData1 ScriptHashType = 2
	HashTypeData2 ScriptHashType = 4
)

// String returns the RPC representation of the hash type
func (h ScriptHashType) String() string {
	switch h {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	case HashTypeData1:
		return "data1"
	case HashTypeData2:
		return "data2"
	default:
		return fmt.Sprintf("unknown(%d)", byte(h))
	}
}

// ParseScriptHashType parses the RPC representation of a hash type
func ParseScriptHashType(s string) (ScriptHashType, error) {
	switch s {
	case "data":
		return HashTypeData, nil
	case "type":
		return HashTypeType, nil
	case "data1":
		return HashTypeData1, nil
	case "data2":
		return HashTypeData2, nil
	default:
		return 0, fmt.Errorf("unknown script hash type %q", s)
	}
}

// DepType tells whether a cell dep points to code or to a group of deps
type DepType byte

const (
	DepTypeCode     DepType = 0
	DepTypeDepGroup DepType = 1
)

// String returns the RPC representation of the dep type
func (d DepType) String() string {
	if d == DepTypeDepGroup {
		return "dep_group"
	}
	return "code"
}

// ParseDepType parses the RPC representation of a dep type
func ParseDepType(s string) (DepType, error) {
	switch s {
	case "code":
		return DepTypeCode, nil
	case "dep_group":
		return DepTypeDepGroup, nil
	default:
		return 0, fmt.Errorf("unknown dep type %q", s)
	}
}

// Script is a lock or type script
type Script struct {
	CodeHash common.Hash
	HashType ScriptHashType
	Args     []byte
}

// Serialize returns the molecule encoding of the script
func (s *Script) Serialize() []byte {
	return molecule.PackTable(s.CodeHash.Bytes(), []byte{byte(s.HashType)}, molecule.PackBytes(s.Args))
}

// Hash returns the script hash, used for type args and cell lookups
func (s *Script) Hash() common.Hash {
	return Blake2b256(s.Serialize())
}

// Equals returns true if both scripts are the same
func (s *Script) Equals(other *Script) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.CodeHash == other.CodeHash && s.HashType == other.HashType && string(s.Args) == string(other.Args)
}

// OccupiedCapacity returns the bytes the script takes inside a cell
func (s *Script) OccupiedCapacity() uint64 {
	return uint64(common.HashLength + 1 + len(s.Args))
}

// OutPointSize is the size of a serialized OutPoint
const OutPointSize = 36

// OutPoint references an output of a committed transaction
type OutPoint struct {
	TxHash common.Hash
	Index  uint32
}

// Serialize returns the molecule encoding of the out point
func (o OutPoint) Serialize() []byte {
	res := make([]byte, 0, OutPointSize)
	res = append(res, o.TxHash.Bytes()...)
	return append(res, molecule.PackUint32(o.Index)...)
}

// String implements fmt.Stringer
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxHash.Hex(), o.Index)
}

// CellInput spends the cell referenced by PreviousOutput
type CellInput struct {
	Since          uint64
	PreviousOutput OutPoint
}

// Serialize returns the molecule encoding of the input
func (i CellInput) Serialize() []byte {
	return append(molecule.PackUint64(i.Since), i.PreviousOutput.Serialize()...)
}

// CellOutput is the cell created by a transaction, without its data
type CellOutput struct {
	Capacity uint64
	Lock     *Script
	Type     *Script
}

// Serialize returns the molecule encoding of the output
func (o *CellOutput) Serialize() []byte {
	var typ []byte
	if o.Type != nil {
		typ = o.Type.Serialize()
	}
	return molecule.PackTable(
		molecule.PackUint64(o.Capacity),
		o.Lock.Serialize(),
		molecule.PackOption(typ, o.Type != nil),
	)
}

// CellDep makes the code of a cell available to the scripts of a transaction
type CellDep struct {
	OutPoint OutPoint
	DepType  DepType
}

// Serialize returns the molecule encoding of the cell dep
func (d CellDep) Serialize() []byte {
	return append(d.OutPoint.Serialize(), byte(d.DepType))
}

// WitnessArgs is the conventional layout of a witness
type WitnessArgs struct {
	Lock       []byte
	InputType  []byte
	OutputType []byte
}

// Serialize returns the molecule encoding of the witness args. Nil fields are encoded as none
func (w *WitnessArgs) Serialize() []byte {
	return molecule.PackTable(
		molecule.PackOption(molecule.PackBytes(w.Lock), w.Lock != nil),
		molecule.PackOption(molecule.PackBytes(w.InputType), w.InputType != nil),
		molecule.PackOption(molecule.PackBytes(w.OutputType), w.OutputType != nil),
	)
}

// DecodeWitnessArgs decodes a serialized WitnessArgs
func DecodeWitnessArgs(data []byte) (*WitnessArgs, error) {
	const witnessArgsFields = 3
	fields, err := molecule.UnpackTable(data, witnessArgsFields)
	if err != nil {
		return nil, err
	}
	res := &WitnessArgs{}
	targets := []*[]byte{&res.Lock, &res.InputType, &res.OutputType}
	for i, f := range fields {
		if len(f) == 0 {
			continue
		}
		b, err := molecule.UnpackBytes(f)
		if err != nil {
			return nil, err
		}
		*targets[i] = b
	}
	return res, nil
}

// Transaction is a CKB transaction
type Transaction struct {
	Version     uint32
	CellDeps    []CellDep
	HeaderDeps  []common.Hash
	Inputs      []CellInput
	Outputs     []CellOutput
	OutputsData [][]byte
	Witnesses   [][]byte
}

// SerializeRaw returns the molecule encoding of the transaction without witnesses
func (t *Transaction) SerializeRaw() []byte {
	deps := make([][]byte, 0, len(t.CellDeps))
	for _, d := range t.CellDeps {
		deps = append(deps, d.Serialize())
	}
	headerDeps := make([][]byte, 0, len(t.HeaderDeps))
	for _, h := range t.HeaderDeps {
		headerDeps = append(headerDeps, h.Bytes())
	}
	inputs := make([][]byte, 0, len(t.Inputs))
	for _, i := range t.Inputs {
		inputs = append(inputs, i.Serialize())
	}
	outputs := make([][]byte, 0, len(t.Outputs))
	for i := range t.Outputs {
		outputs = append(outputs, t.Outputs[i].Serialize())
	}
	return molecule.PackTable(
		molecule.PackUint32(t.Version),
		molecule.PackFixVec(deps),
		molecule.PackFixVec(headerDeps),
		molecule.PackFixVec(inputs),
		molecule.PackDynVec(outputs),
		packBytesVec(t.OutputsData),
	)
}

// Serialize returns the molecule encoding of the full transaction
func (t *Transaction) Serialize() []byte {
	return molecule.PackTable(t.SerializeRaw(), packBytesVec(t.Witnesses))
}

// Hash returns the transaction hash
func (t *Transaction) Hash() common.Hash {
	return Blake2b256(t.SerializeRaw())
}

func packBytesVec(items [][]byte) []byte {
	packed := make([][]byte, 0, len(items))
	for _, item := range items {
		packed = append(packed, molecule.PackBytes(item))
	}
	return molecule.PackDynVec(packed)
}

// HeaderSize is the size of a serialized CKB header
const HeaderSize = 208

// Header is a CKB block header
type Header struct {
	Version          uint32
	CompactTarget    uint32
	Timestamp        uint64
	Number           uint64
	Epoch            uint64
	ParentHash       common.Hash
	TransactionsRoot common.Hash
	ProposalsHash    common.Hash
	ExtraHash        common.Hash
	Dao              common.Hash
	Nonce            uint128.Uint128
}

// Serialize returns the 208 bytes molecule encoding of the header
func (h *Header) Serialize() []byte {
	res := make([]byte, 0, HeaderSize)
	res = append(res, molecule.PackUint32(h.Version)...)
	res = append(res, molecule.PackUint32(h.CompactTarget)...)
	res = append(res, molecule.PackUint64(h.Timestamp)...)
	res = append(res, molecule.PackUint64(h.Number)...)
	res = append(res, molecule.PackUint64(h.Epoch)...)
	res = append(res, h.ParentHash.Bytes()...)
	res = append(res, h.TransactionsRoot.Bytes()...)
	res = append(res, h.ProposalsHash.Bytes()...)
	res = append(res, h.ExtraHash.Bytes()...)
	res = append(res, h.Dao.Bytes()...)
	return append(res, molecule.PackUint128(h.Nonce)...)
}

// Hash returns the block hash
func (h *Header) Hash() common.Hash {
	return Blake2b256(h.Serialize())
}
