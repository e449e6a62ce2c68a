package migrations

import (
	_ "embed"

	"github.com/forcebridge/relayer/db"
	"github.com/forcebridge/relayer/db/types"
)

//go:embed relaystore0001.sql
var mig001 string

func RunMigrations(dbPath string) error {
	migrations := []types.Migration{
		{
			ID:  "relaystore0001",
			SQL: mig001,
		},
	}
	return db.RunMigrations(dbPath, migrations)
}
