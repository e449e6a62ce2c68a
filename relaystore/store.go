package relaystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/db"
	"github.com/forcebridge/relayer/log"
	"github.com/forcebridge/relayer/relaystore/migrations"
	"github.com/russross/meddler"
)

const (
	ethToCkbTable = "eth_to_ckb"
	ckbToEthTable = "ckb_to_eth"
)

var (
	// ErrAlreadyExists is returned when a record with the same correlation key exists
	ErrAlreadyExists = errors.New("relay record already exists")
	// ErrInconsistentState is returned when an update didn't change any row
	ErrInconsistentState = errors.New("relay record state is inconsistent, try again later")
	// ErrInvalidTransition is returned when an update moves a record backwards
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Storer is the relay status store used by the relayer and the RPC
type Storer interface {
	CreateEthToCkb(ctx context.Context, ethLockTxHash string) (int64, error)
	InsertEthToCkb(ctx context.Context, rec *EthToCkbRecord) (int64, error)
	CreateCkbToEth(ctx context.Context, ckbBurnTxHash string) (int64, error)
	UpdateEthToCkb(ctx context.Context, rec *EthToCkbRecord) (bool, error)
	UpdateCkbToEth(ctx context.Context, rec *CkbToEthRecord) (bool, error)
	GetEthToCkb(ctx context.Context, ethLockTxHash string) (*EthToCkbRecord, error)
	GetCkbToEth(ctx context.Context, ckbBurnTxHash string) (*CkbToEthRecord, error)
	GetEthToCkbByStatus(ctx context.Context, statuses ...Status) ([]*EthToCkbRecord, error)
	GetCkbToEthByStatus(ctx context.Context, statuses ...Status) ([]*CkbToEthRecord, error)
	RetryEthToCkb(ctx context.Context, ethLockTxHash string) (bool, error)
	RetryCkbToEth(ctx context.Context, ckbBurnTxHash string) (bool, error)
	GetCrosschainHistory(ctx context.Context, ethAddr common.Address, ckbLockscript string) ([]*CrosschainHistory, error)
	GetLastProcessedBlock(ctx context.Context, source string) (uint64, error)
	UpdateLastProcessedBlock(ctx context.Context, source string, block uint64) error
}

var _ Storer = (*Store)(nil)

// Store persists relay records on SQLite
type Store struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

// New runs the migrations and opens the store
func New(dbPath string) (*Store, error) {
	if err := migrations.RunMigrations(dbPath); err != nil {
		return nil, err
	}
	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:     database,
		logger: log.WithFields("module", "relaystore"),
		now:    time.Now,
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateEthToCkb inserts a pending eth to ckb record
func (s *Store) CreateEthToCkb(ctx context.Context, ethLockTxHash string) (int64, error) {
	return s.InsertEthToCkb(ctx, &EthToCkbRecord{EthLockTxHash: ethLockTxHash})
}

// InsertEthToCkb inserts rec as a pending record, with the event fields it already carries
func (s *Store) InsertEthToCkb(ctx context.Context, rec *EthToCkbRecord) (int64, error) {
	now := s.now().Unix()
	rec.ID = 0
	rec.Status = StatusPending
	rec.CKBTxHash = ""
	rec.ErrMsg = ""
	rec.CreatedAt, rec.UpdatedAt = now, now
	if err := s.insert(ethToCkbTable, rec); err != nil {
		return 0, fmt.Errorf("eth lock tx %s: %w", rec.EthLockTxHash, err)
	}
	s.logger.Debugf("created eth_to_ckb record %d for %s", rec.ID, rec.EthLockTxHash)
	return rec.ID, nil
}

// CreateCkbToEth inserts a pending ckb to eth record
func (s *Store) CreateCkbToEth(ctx context.Context, ckbBurnTxHash string) (int64, error) {
	now := s.now().Unix()
	rec := &CkbToEthRecord{CKBBurnTxHash: ckbBurnTxHash, Status: StatusPending, CreatedAt: now, UpdatedAt: now}
	if err := s.insert(ckbToEthTable, rec); err != nil {
		return 0, fmt.Errorf("ckb burn tx %s: %w", ckbBurnTxHash, err)
	}
	s.logger.Debugf("created ckb_to_eth record %d for %s", rec.ID, ckbBurnTxHash)
	return rec.ID, nil
}

func (s *Store) insert(table string, rec interface{}) error {
	if err := meddler.Insert(s.db, table, rec); err != nil {
		if db.IsConstraintViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("error inserting into %s: %w", table, err)
	}
	return nil
}

// UpdateEthToCkb stores every field of the record. It returns false when no row was changed
func (s *Store) UpdateEthToCkb(ctx context.Context, rec *EthToCkbRecord) (bool, error) {
	var current EthToCkbRecord
	return s.update(ctx, ethToCkbTable, rec.ID, &current, rec, func() Status { return current.Status }, func() {
		rec.UpdatedAt = s.now().Unix()
	})
}

// UpdateCkbToEth stores every field of the record. It returns false when no row was changed
func (s *Store) UpdateCkbToEth(ctx context.Context, rec *CkbToEthRecord) (bool, error) {
	var current CkbToEthRecord
	return s.update(ctx, ckbToEthTable, rec.ID, &current, rec, func() Status { return current.Status }, func() {
		rec.UpdatedAt = s.now().Unix()
	})
}

func (s *Store) update(
	ctx context.Context, table string, id int64,
	current interface{}, rec Record, currentStatus func() Status, touch func(),
) (bool, error) {
	err := db.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		err := meddler.QueryRow(tx, current, fmt.Sprintf("SELECT * FROM %s WHERE id = $1;", table), id)
		if err != nil {
			return db.ReturnErrNotFound(err)
		}
		if !CanTransition(currentStatus(), rec.GetStatus()) {
			return fmt.Errorf("%w: %s record %s from %s to %s",
				ErrInvalidTransition, table, rec.CorrelationKey(), currentStatus(), rec.GetStatus())
		}
		touch()
		if err := meddler.Update(tx, table, rec); err != nil {
			return fmt.Errorf("error updating %s record %d: %w", table, id, err)
		}
		return nil
	})
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Debugf("%s record %s is %s", table, rec.CorrelationKey(), rec.GetStatus())
	return true, nil
}

// GetEthToCkb returns the record of the eth lock tx, db.ErrNotFound if there is none
func (s *Store) GetEthToCkb(ctx context.Context, ethLockTxHash string) (*EthToCkbRecord, error) {
	rec := &EthToCkbRecord{}
	err := meddler.QueryRow(s.db, rec, "SELECT * FROM eth_to_ckb WHERE eth_lock_tx_hash = $1;", ethLockTxHash)
	if err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return rec, nil
}

// GetCkbToEth returns the record of the ckb burn tx, db.ErrNotFound if there is none
func (s *Store) GetCkbToEth(ctx context.Context, ckbBurnTxHash string) (*CkbToEthRecord, error) {
	rec := &CkbToEthRecord{}
	err := meddler.QueryRow(s.db, rec, "SELECT * FROM ckb_to_eth WHERE ckb_burn_tx_hash = $1;", ckbBurnTxHash)
	if err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return rec, nil
}

// GetEthToCkbByStatus returns the records in any of the statuses, oldest first
func (s *Store) GetEthToCkbByStatus(ctx context.Context, statuses ...Status) ([]*EthToCkbRecord, error) {
	var recs []*EthToCkbRecord
	query, args := byStatusQuery(ethToCkbTable, statuses)
	if err := meddler.QueryAll(s.db, &recs, query, args...); err != nil {
		return nil, err
	}
	return recs, nil
}

// GetCkbToEthByStatus returns the records in any of the statuses, oldest first
func (s *Store) GetCkbToEthByStatus(ctx context.Context, statuses ...Status) ([]*CkbToEthRecord, error) {
	var recs []*CkbToEthRecord
	query, args := byStatusQuery(ckbToEthTable, statuses)
	if err := meddler.QueryAll(s.db, &recs, query, args...); err != nil {
		return nil, err
	}
	return recs, nil
}

func byStatusQuery(table string, statuses []Status) (string, []interface{}) {
	query := "SELECT * FROM " + table
	args := make([]interface{}, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN ("
		for i, status := range statuses {
			if i > 0 {
				query += ", "
			}
			query += fmt.Sprintf("$%d", i+1)
			args[i] = string(status)
		}
		query += ")"
	}
	return query + " ORDER BY id ASC;", args
}

// RetryEthToCkb moves a failed record back to pending. It returns false if the record is not failed
func (s *Store) RetryEthToCkb(ctx context.Context, ethLockTxHash string) (bool, error) {
	return s.retry(ethToCkbTable, "eth_lock_tx_hash", ethLockTxHash)
}

// RetryCkbToEth moves a failed record back to pending. It returns false if the record is not failed
func (s *Store) RetryCkbToEth(ctx context.Context, ckbBurnTxHash string) (bool, error) {
	return s.retry(ckbToEthTable, "ckb_burn_tx_hash", ckbBurnTxHash)
}

func (s *Store) retry(table, keyColumn, key string) (bool, error) {
	res, err := s.db.Exec(
		fmt.Sprintf("UPDATE %s SET status = $1, err_msg = NULL, updated_at = $2 WHERE %s = $3 AND status = $4;",
			table, keyColumn),
		string(StatusPending), s.now().Unix(), key, string(StatusFailed),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.logger.Infof("%s record %s moved back to pending", table, key)
	}
	return n > 0, nil
}

// GetCrosschainHistory returns the transfers to the ethereum address and to the ckb lockscript,
// in chronological order
func (s *Store) GetCrosschainHistory(
	ctx context.Context, ethAddr common.Address, ckbLockscript string,
) ([]*CrosschainHistory, error) {
	var history []*CrosschainHistory
	err := meddler.QueryAll(s.db, &history, `
		SELECT * FROM crosschain_history
		WHERE (sort = $1 AND address = $2) OR (sort = $3 AND address = $4)
		ORDER BY created_at ASC, sort ASC, id ASC;`,
		string(CkbToEth), ethAddr.Hex(), string(EthToCkb), ckbLockscript,
	)
	if err != nil {
		return nil, err
	}
	return history, nil
}

// GetLastProcessedBlock returns the last block of the source scanned by the relayer, 0 if none
func (s *Store) GetLastProcessedBlock(ctx context.Context, source string) (uint64, error) {
	var lastBlock uint64
	err := s.db.QueryRow("SELECT last_block FROM sync_state WHERE source = $1;", source).Scan(&lastBlock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return lastBlock, err
}

// UpdateLastProcessedBlock stores the last block of the source scanned by the relayer
func (s *Store) UpdateLastProcessedBlock(ctx context.Context, source string, block uint64) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_state (source, last_block) VALUES ($1, $2)
		ON CONFLICT(source) DO UPDATE SET last_block = excluded.last_block;`, source, block)
	return err
}
