package relayer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
	relayercommon "github.com/forcebridge/relayer/common"
	"github.com/forcebridge/relayer/headerchain"
	"github.com/forcebridge/relayer/log"
	"github.com/forcebridge/relayer/relaystore"
	"github.com/forcebridge/relayer/txgen"
	"golang.org/x/sync/errgroup"
)

const (
	// SourceEthereum is the scan position of the Locked events
	SourceEthereum = "ethereum"
)

// Driver moves relay records through pending -> submitted -> confirmed | failed.
// Every key is handled by at most one worker of the process at a time
type Driver struct {
	cfg         Config
	store       relaystore.Storer
	ckbClient   ckbclient.Clienter
	gen         *txgen.Generator
	submitter   *ckbSubmitter
	proofs      ProofBuilder
	lightClient *lightClient
	ckbHeaders  *headerchain.Builder
	ethTxMan    EthTxManager

	mu       sync.Mutex
	inFlight map[string]struct{}
	attempts map[string]int
	// sent keeps the signed CKB transactions of the submitted records so they can be sent again
	sent map[string]*ckb.Transaction

	logger *log.Logger
}

// Deps are the collaborators of the driver
type Deps struct {
	Store      relaystore.Storer
	CKB        ckbclient.Clienter
	Generator  *txgen.Generator
	Signer     *ckb.Secp256k1Signer
	Proofs     ProofBuilder
	EthHeaders *headerchain.Builder
	CKBHeaders *headerchain.Builder
	EthTxMan   EthTxManager
}

// New returns a driver
func New(cfg Config, deps Deps) (*Driver, error) {
	cfg.applyDefaults()
	lightClientArgs, err := relayercommon.DecodeHex(cfg.LightClientTypeArgs)
	if err != nil {
		return nil, fmt.Errorf("invalid light client type args %q: %w", cfg.LightClientTypeArgs, err)
	}
	if len(lightClientArgs) != txgen.LightClientArgsSize {
		return nil, fmt.Errorf("%w: light client type args must have %d bytes, got %d",
			txgen.ErrInvalidLightClientArgs, txgen.LightClientArgsSize, len(lightClientArgs))
	}
	logger := log.WithFields("module", "relayer")
	submitter := &ckbSubmitter{client: deps.CKB, signer: deps.Signer}
	return &Driver{
		cfg:       cfg,
		store:     deps.Store,
		ckbClient: deps.CKB,
		gen:       deps.Generator,
		submitter: submitter,
		proofs:    deps.Proofs,
		lightClient: &lightClient{
			typeScript: deps.Generator.LightClientType(lightClientArgs),
			headers:    deps.EthHeaders,
			gen:        deps.Generator,
			submitter:  submitter,
			maxHeaders: cfg.MaxHeadersPerUpdate,
			logger:     logger.WithFields("component", "lightclient"),
		},
		ckbHeaders: deps.CKBHeaders,
		ethTxMan:   deps.EthTxMan,
		inFlight:   make(map[string]struct{}),
		attempts:   make(map[string]int),
		sent:       make(map[string]*ckb.Transaction),
		logger:     logger,
	}, nil
}

// Start resumes the submitted records and runs the relay loop until ctx is done
func (d *Driver) Start(ctx context.Context) {
	if err := d.resume(ctx); err != nil {
		d.logger.Errorf("error resuming submitted records: %v", err)
	}
	ticker := time.NewTicker(d.cfg.PollInterval.Duration)
	defer ticker.Stop()
	for {
		if err := d.tick(ctx); err != nil {
			d.logger.Errorf("error on relay loop: %v", err)
		}
		select {
		case <-ctx.Done():
			d.logger.Info("relay loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// resume checks the submitted records against the chain they were sent to. Nothing is rebuilt
// for records whose transaction is already committed
func (d *Driver) resume(ctx context.Context) error {
	ethToCkb, err := d.store.GetEthToCkbByStatus(ctx, relaystore.StatusSubmitted)
	if err != nil {
		return err
	}
	ckbToEth, err := d.store.GetCkbToEthByStatus(ctx, relaystore.StatusSubmitted)
	if err != nil {
		return err
	}
	d.logger.Infof("resuming %d eth to ckb and %d ckb to eth submitted records", len(ethToCkb), len(ckbToEth))
	return d.dispatch(ctx, ethToCkb, ckbToEth)
}

// tick handles every pending and submitted record once
func (d *Driver) tick(ctx context.Context) error {
	active := []relaystore.Status{relaystore.StatusPending, relaystore.StatusSubmitted}
	ethToCkb, err := d.store.GetEthToCkbByStatus(ctx, active...)
	if err != nil {
		return err
	}
	ckbToEth, err := d.store.GetCkbToEthByStatus(ctx, active...)
	if err != nil {
		return err
	}
	return d.dispatch(ctx, ethToCkb, ckbToEth)
}

func (d *Driver) dispatch(
	ctx context.Context, ethToCkb []*relaystore.EthToCkbRecord, ckbToEth []*relaystore.CkbToEthRecord,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.MaxWorkers)
	for _, rec := range ethToCkb {
		rec := rec
		d.goHandle(gctx, g, rec, func(ctx context.Context) error { return d.handleEthToCkb(ctx, rec) })
	}
	if d.ethTxMan == nil && len(ckbToEth) > 0 {
		d.logger.Debugf("ckb to eth relays are disabled, %d records left untouched", len(ckbToEth))
		ckbToEth = nil
	}
	for _, rec := range ckbToEth {
		rec := rec
		d.goHandle(gctx, g, rec, func(ctx context.Context) error { return d.handleCkbToEth(ctx, rec) })
	}
	return g.Wait()
}

func (d *Driver) goHandle(ctx context.Context, g *errgroup.Group, rec relaystore.Record, handle func(context.Context) error) {
	key := rec.CorrelationKey()
	if !d.acquire(key) {
		d.logger.Debugf("%s is already being handled", key)
		return
	}
	g.Go(func() error {
		defer d.release(key)
		err := handle(ctx)
		if err == nil {
			d.resetAttempts(key)
			return nil
		}
		d.onError(ctx, rec, err)
		return nil
	})
}

func (d *Driver) acquire(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inFlight[key]; ok {
		return false
	}
	d.inFlight[key] = struct{}{}
	return true
}

func (d *Driver) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, key)
}

func (d *Driver) resetAttempts(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.attempts, key)
}

// onError keeps retryable failures for the next tick until MaxAttempts, everything else fails the record
func (d *Driver) onError(ctx context.Context, rec relaystore.Record, err error) {
	key := rec.CorrelationKey()
	if errors.Is(err, ErrLightClientBehind) {
		d.logger.Debugf("%s: %v", key, err)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	if IsRetryable(err) {
		d.mu.Lock()
		d.attempts[key]++
		attempts := d.attempts[key]
		d.mu.Unlock()
		if attempts < d.cfg.MaxAttempts {
			d.logger.Warnf("%s failed (attempt %d of %d): %v", key, attempts, d.cfg.MaxAttempts, err)
			return
		}
		err = fmt.Errorf("giving up after %d attempts: %w", attempts, err)
	}
	d.logger.Errorf("%s failed: %v", key, err)
	rec.SetStatus(relaystore.StatusFailed)
	rec.SetError(err.Error())
	if saveErr := d.save(ctx, rec); saveErr != nil {
		d.logger.Errorf("error marking %s as failed: %v", key, saveErr)
		return
	}
	d.resetAttempts(key)
}

// save persists a record of any direction
func (d *Driver) save(ctx context.Context, rec relaystore.Record) error {
	var (
		updated bool
		err     error
	)
	switch r := rec.(type) {
	case *relaystore.EthToCkbRecord:
		updated, err = d.store.UpdateEthToCkb(ctx, r)
	case *relaystore.CkbToEthRecord:
		updated, err = d.store.UpdateCkbToEth(ctx, r)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownDirection, rec)
	}
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: %s", relaystore.ErrInconsistentState, rec.CorrelationKey())
	}
	return nil
}

// RequestRelay creates a pending record for a transfer. Existing records are left as they are
func (d *Driver) RequestRelay(ctx context.Context, direction relaystore.Direction, key string) (int64, error) {
	switch direction {
	case relaystore.EthToCkb:
		return d.store.CreateEthToCkb(ctx, key)
	case relaystore.CkbToEth:
		return d.store.CreateCkbToEth(ctx, key)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownDirection, direction)
	}
}

// Retry moves a failed record back to pending. It returns false when the record isn't failed
func (d *Driver) Retry(ctx context.Context, direction relaystore.Direction, key string) (bool, error) {
	var (
		retried bool
		err     error
	)
	switch direction {
	case relaystore.EthToCkb:
		retried, err = d.store.RetryEthToCkb(ctx, key)
	case relaystore.CkbToEth:
		retried, err = d.store.RetryCkbToEth(ctx, key)
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownDirection, direction)
	}
	if err != nil {
		return false, err
	}
	if retried {
		d.resetAttempts(key)
		d.logger.Infof("%s %s moved back to pending", direction, key)
	}
	return retried, nil
}
