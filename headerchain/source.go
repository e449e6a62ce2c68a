package headerchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
)

// ErrHeaderNotFound is returned when the source chain hasn't reached the requested height yet
var ErrHeaderNotFound = errors.New("header not found")

// HeaderSource provides canonical headers by height
type HeaderSource interface {
	HeaderByNumber(ctx context.Context, number uint64) (Header, error)
}

// EthClienter is the part of ethclient.Client used by EthSource
type EthClienter interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// EthSource reads ethereum headers
type EthSource struct {
	client EthClienter
}

// NewEthSource returns a source of ethereum header records
func NewEthSource(client EthClienter) *EthSource {
	return &EthSource{client: client}
}

func (s *EthSource) HeaderByNumber(ctx context.Context, number uint64) (Header, error) {
	h, err := s.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if errors.Is(err, ethereum.NotFound) || (err == nil && h == nil) {
		return nil, fmt.Errorf("ethereum header %d: %w", number, ErrHeaderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting ethereum header %d: %w", number, err)
	}
	return NewETHHeaderRecord(h), nil
}

// CKBHeaderGetter is the part of ckbclient.Clienter used by CKBSource
type CKBHeaderGetter interface {
	GetHeaderByNumber(ctx context.Context, number uint64) (*ckb.Header, error)
}

// CKBSource reads CKB headers
type CKBSource struct {
	client CKBHeaderGetter
}

// NewCKBSource returns a source of CKB headers
func NewCKBSource(client CKBHeaderGetter) *CKBSource {
	return &CKBSource{client: client}
}

func (s *CKBSource) HeaderByNumber(ctx context.Context, number uint64) (Header, error) {
	h, err := s.client.GetHeaderByNumber(ctx, number)
	if errors.Is(err, ckbclient.ErrNotFound) {
		return nil, fmt.Errorf("ckb header %d: %w", number, ErrHeaderNotFound)
	}
	if err != nil {
		return nil, err
	}
	return NewCKBHeader(h), nil
}
