package db

import (
	"context"
	"database/sql"

	"github.com/forcebridge/relayer/log"
)

// TxBeginner starts transactions, such as *sql.DB
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// RunInTx runs fn in a transaction. The transaction is committed when fn succeeds and rolled
// back otherwise, the error of fn is returned as is
func RunInTx(ctx context.Context, db TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if errRllbck := tx.Rollback(); errRllbck != nil {
			log.Errorf("error while rolling back tx: %v", errRllbck)
		}
		return err
	}
	return tx.Commit()
}
