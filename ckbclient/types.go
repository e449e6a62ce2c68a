package ckbclient

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/forcebridge/relayer/ckb"
	"github.com/gaze-network/uint128"
)

// TxStatus is the status of a transaction as reported by the node
type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusProposed  TxStatus = "proposed"
	TxStatusCommitted TxStatus = "committed"
	TxStatusRejected  TxStatus = "rejected"
	TxStatusUnknown   TxStatus = "unknown"
)

// ScriptType selects which script of a cell the indexer matches
type ScriptType string

const (
	ScriptTypeLock ScriptType = "lock"
	ScriptTypeType ScriptType = "type"
)

// SearchKey is the indexer query
type SearchKey struct {
	Script     *ckb.Script
	ScriptType ScriptType
	// WithoutType restricts the search to cells without type script (lock searches only)
	WithoutType bool
	// EmptyData restricts the search to cells without data (lock searches only)
	EmptyData bool
}

// IndexedCell is a live cell returned by the indexer
type IndexedCell struct {
	OutPoint    ckb.OutPoint
	Output      ckb.CellOutput
	OutputData  []byte
	BlockNumber uint64
}

// CellsPage is a page of indexer results
type CellsPage struct {
	Cells      []IndexedCell
	LastCursor string
}

// LiveCell is the result of get_live_cell
type LiveCell struct {
	Status string
	Output *ckb.CellOutput
	Data   []byte
}

// TransactionWithStatus is the result of get_transaction
type TransactionWithStatus struct {
	Transaction *ckb.Transaction
	Status      TxStatus
	BlockHash   common.Hash
	Reason      string
}

type scriptJSON struct {
	CodeHash common.Hash   `json:"code_hash"`
	HashType string        `json:"hash_type"`
	Args     hexutil.Bytes `json:"args"`
}

func newScriptJSON(s *ckb.Script) *scriptJSON {
	if s == nil {
		return nil
	}
	return &scriptJSON{CodeHash: s.CodeHash, HashType: s.HashType.String(), Args: s.Args}
}

func (s *scriptJSON) toScript() (*ckb.Script, error) {
	if s == nil {
		return nil, nil //nolint:nilnil
	}
	hashType, err := ckb.ParseScriptHashType(s.HashType)
	if err != nil {
		return nil, err
	}
	return &ckb.Script{CodeHash: s.CodeHash, HashType: hashType, Args: s.Args}, nil
}

type outPointJSON struct {
	TxHash common.Hash    `json:"tx_hash"`
	Index  hexutil.Uint64 `json:"index"`
}

func newOutPointJSON(o ckb.OutPoint) outPointJSON {
	return outPointJSON{TxHash: o.TxHash, Index: hexutil.Uint64(o.Index)}
}

func (o outPointJSON) toOutPoint() ckb.OutPoint {
	return ckb.OutPoint{TxHash: o.TxHash, Index: uint32(o.Index)}
}

type cellOutputJSON struct {
	Capacity hexutil.Uint64 `json:"capacity"`
	Lock     *scriptJSON    `json:"lock"`
	Type     *scriptJSON    `json:"type"`
}

func newCellOutputJSON(o *ckb.CellOutput) cellOutputJSON {
	return cellOutputJSON{Capacity: hexutil.Uint64(o.Capacity), Lock: newScriptJSON(o.Lock), Type: newScriptJSON(o.Type)}
}

func (o *cellOutputJSON) toCellOutput() (*ckb.CellOutput, error) {
	lock, err := o.Lock.toScript()
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return nil, fmt.Errorf("cell output without lock script")
	}
	typ, err := o.Type.toScript()
	if err != nil {
		return nil, err
	}
	return &ckb.CellOutput{Capacity: uint64(o.Capacity), Lock: lock, Type: typ}, nil
}

type cellDepJSON struct {
	OutPoint outPointJSON `json:"out_point"`
	DepType  string       `json:"dep_type"`
}

type cellInputJSON struct {
	Since          hexutil.Uint64 `json:"since"`
	PreviousOutput outPointJSON   `json:"previous_output"`
}

type transactionJSON struct {
	Version     hexutil.Uint64   `json:"version"`
	CellDeps    []cellDepJSON    `json:"cell_deps"`
	HeaderDeps  []common.Hash    `json:"header_deps"`
	Inputs      []cellInputJSON  `json:"inputs"`
	Outputs     []cellOutputJSON `json:"outputs"`
	OutputsData []hexutil.Bytes  `json:"outputs_data"`
	Witnesses   []hexutil.Bytes  `json:"witnesses"`
}

func newTransactionJSON(tx *ckb.Transaction) *transactionJSON {
	res := &transactionJSON{
		Version:     hexutil.Uint64(tx.Version),
		CellDeps:    make([]cellDepJSON, 0, len(tx.CellDeps)),
		HeaderDeps:  make([]common.Hash, 0, len(tx.HeaderDeps)),
		Inputs:      make([]cellInputJSON, 0, len(tx.Inputs)),
		Outputs:     make([]cellOutputJSON, 0, len(tx.Outputs)),
		OutputsData: make([]hexutil.Bytes, 0, len(tx.OutputsData)),
		Witnesses:   make([]hexutil.Bytes, 0, len(tx.Witnesses)),
	}
	for _, d := range tx.CellDeps {
		res.CellDeps = append(res.CellDeps, cellDepJSON{OutPoint: newOutPointJSON(d.OutPoint), DepType: d.DepType.String()})
	}
	res.HeaderDeps = append(res.HeaderDeps, tx.HeaderDeps...)
	for _, i := range tx.Inputs {
		res.Inputs = append(res.Inputs, cellInputJSON{
			Since: hexutil.Uint64(i.Since), PreviousOutput: newOutPointJSON(i.PreviousOutput),
		})
	}
	for i := range tx.Outputs {
		res.Outputs = append(res.Outputs, newCellOutputJSON(&tx.Outputs[i]))
	}
	for _, d := range tx.OutputsData {
		res.OutputsData = append(res.OutputsData, d)
	}
	for _, w := range tx.Witnesses {
		res.Witnesses = append(res.Witnesses, w)
	}
	return res
}

func (t *transactionJSON) toTransaction() (*ckb.Transaction, error) {
	tx := &ckb.Transaction{
		Version:     uint32(t.Version),
		CellDeps:    make([]ckb.CellDep, 0, len(t.CellDeps)),
		HeaderDeps:  t.HeaderDeps,
		Inputs:      make([]ckb.CellInput, 0, len(t.Inputs)),
		Outputs:     make([]ckb.CellOutput, 0, len(t.Outputs)),
		OutputsData: make([][]byte, 0, len(t.OutputsData)),
		Witnesses:   make([][]byte, 0, len(t.Witnesses)),
	}
	for _, d := range t.CellDeps {
		depType, err := ckb.ParseDepType(d.DepType)
		if err != nil {
			return nil, err
		}
		tx.CellDeps = append(tx.CellDeps, ckb.CellDep{OutPoint: d.OutPoint.toOutPoint(), DepType: depType})
	}
	for _, i := range t.Inputs {
		tx.Inputs = append(tx.Inputs, ckb.CellInput{Since: uint64(i.Since), PreviousOutput: i.PreviousOutput.toOutPoint()})
	}
	for i := range t.Outputs {
		out, err := t.Outputs[i].toCellOutput()
		if err != nil {
			return nil, err
		}
		tx.Outputs = append(tx.Outputs, *out)
	}
	for _, d := range t.OutputsData {
		tx.OutputsData = append(tx.OutputsData, d)
	}
	for _, w := range t.Witnesses {
		tx.Witnesses = append(tx.Witnesses, w)
	}
	return tx, nil
}

type headerJSON struct {
	Version          hexutil.Uint64 `json:"version"`
	CompactTarget    hexutil.Uint64 `json:"compact_target"`
	Timestamp        hexutil.Uint64 `json:"timestamp"`
	Number           hexutil.Uint64 `json:"number"`
	Epoch            hexutil.Uint64 `json:"epoch"`
	ParentHash       common.Hash    `json:"parent_hash"`
	TransactionsRoot common.Hash    `json:"transactions_root"`
	ProposalsHash    common.Hash    `json:"proposals_hash"`
	ExtraHash        common.Hash    `json:"extra_hash"`
	Dao              common.Hash    `json:"dao"`
	Nonce            *hexutil.Big   `json:"nonce"`
	Hash             common.Hash    `json:"hash"`
}

func (h *headerJSON) toHeader() (*ckb.Header, error) {
	nonce := uint128.Zero
	if h.Nonce != nil {
		var err error
		nonce, err = uint128.FromBig(h.Nonce.ToInt())
		if err != nil {
			return nil, fmt.Errorf("invalid header nonce: %w", err)
		}
	}
	header := &ckb.Header{
		Version:          uint32(h.Version),
		CompactTarget:    uint32(h.CompactTarget),
		Timestamp:        uint64(h.Timestamp),
		Number:           uint64(h.Number),
		Epoch:            uint64(h.Epoch),
		ParentHash:       h.ParentHash,
		TransactionsRoot: h.TransactionsRoot,
		ProposalsHash:    h.ProposalsHash,
		ExtraHash:        h.ExtraHash,
		Dao:              h.Dao,
		Nonce:            nonce,
	}
	if (h.Hash != common.Hash{}) && header.Hash() != h.Hash {
		return nil, fmt.Errorf("header %d hash mismatch: node says %s, computed %s", header.Number, h.Hash, header.Hash())
	}
	return header, nil
}

type txStatusJSON struct {
	Status    TxStatus     `json:"status"`
	BlockHash *common.Hash `json:"block_hash"`
	Reason    *string      `json:"reason"`
}

type transactionWithStatusJSON struct {
	Transaction *transactionJSON `json:"transaction"`
	TxStatus    txStatusJSON     `json:"tx_status"`
}

type cellWithStatusJSON struct {
	Cell *struct {
		Output cellOutputJSON `json:"output"`
		Data   *struct {
			Content hexutil.Bytes `json:"content"`
		} `json:"data"`
	} `json:"cell"`
	Status string `json:"status"`
}

type searchKeyFilterJSON struct {
	ScriptLenRange      []hexutil.Uint64 `json:"script_len_range,omitempty"`
	OutputDataLenRange  []hexutil.Uint64 `json:"output_data_len_range,omitempty"`
	OutputCapacityRange []hexutil.Uint64 `json:"output_capacity_range,omitempty"`
}

type searchKeyJSON struct {
	Script     *scriptJSON          `json:"script"`
	ScriptType ScriptType           `json:"script_type"`
	Filter     *searchKeyFilterJSON `json:"filter,omitempty"`
}

func newSearchKeyJSON(k SearchKey) searchKeyJSON {
	res := searchKeyJSON{Script: newScriptJSON(k.Script), ScriptType: k.ScriptType}
	if k.WithoutType || k.EmptyData {
		res.Filter = &searchKeyFilterJSON{}
		if k.WithoutType {
			res.Filter.ScriptLenRange = []hexutil.Uint64{0, 1}
		}
		if k.EmptyData {
			res.Filter.OutputDataLenRange = []hexutil.Uint64{0, 1}
		}
	}
	return res
}

type indexerCellJSON struct {
	Output      cellOutputJSON `json:"output"`
	OutputData  hexutil.Bytes  `json:"output_data"`
	OutPoint    outPointJSON   `json:"out_point"`
	BlockNumber hexutil.Uint64 `json:"block_number"`
}

type indexerCellsJSON struct {
	Objects    []indexerCellJSON `json:"objects"`
	LastCursor string            `json:"last_cursor"`
}

// TransactionProof is the merkle proof of transactions included in a block
type TransactionProof struct {
	BlockHash     common.Hash
	WitnessesRoot common.Hash
	Indices       []uint32
	Lemmas        []common.Hash
}

type transactionProofJSON struct {
	BlockHash     common.Hash `json:"block_hash"`
	WitnessesRoot common.Hash `json:"witnesses_root"`
	Proof         struct {
		Indices []hexutil.Uint64 `json:"indices"`
		Lemmas  []common.Hash    `json:"lemmas"`
	} `json:"proof"`
}

func (p *transactionProofJSON) toTransactionProof() *TransactionProof {
	res := &TransactionProof{
		BlockHash:     p.BlockHash,
		WitnessesRoot: p.WitnessesRoot,
		Indices:       make([]uint32, 0, len(p.Proof.Indices)),
		Lemmas:        p.Proof.Lemmas,
	}
	for _, i := range p.Proof.Indices {
		res.Indices = append(res.Indices, uint32(i))
	}
	return res
}
