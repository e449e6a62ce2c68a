package db

import (
	"fmt"
	"strings"

	"github.com/forcebridge/relayer/db/types"
	"github.com/forcebridge/relayer/log"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	upDownSeparator = "-- +migrate Up"
	downMarker      = "-- +migrate Down"
)

// RunMigrations will execute pending migrations if needed to keep
// the database updated with the latest changes
func RunMigrations(dbPath string, migrations []types.Migration) error {
	migs, err := toMigrationSource(migrations)
	if err != nil {
		return err
	}
	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		return fmt.Errorf("error creating DB %w", err)
	}
	defer db.Close()

	log.Debugf("running migrations: %+v", migrations)
	nMigrations, err := migrate.Exec(db, "sqlite3", migs, migrate.Up)
	if err != nil {
		return fmt.Errorf("error executing migration %w", err)
	}

	log.Infof("successfully ran %d migrations", nMigrations)
	return nil
}

func toMigrationSource(migrations []types.Migration) (*migrate.MemoryMigrationSource, error) {
	migs := &migrate.MemoryMigrationSource{Migrations: make([]*migrate.Migration, 0, len(migrations))}
	for _, m := range migrations {
		splitted := strings.Split(m.SQL, upDownSeparator)
		if len(splitted) != 2 { //nolint:mnd
			return nil, fmt.Errorf("migration %s must contain exactly one %q marker", m.ID, upDownSeparator)
		}
		down := strings.TrimSpace(strings.Replace(splitted[0], downMarker, "", 1))
		migs.Migrations = append(migs.Migrations, &migrate.Migration{
			Id:   m.ID,
			Up:   []string{splitted[1]},
			Down: []string{down},
		})
	}
	return migs, nil
}
