package main

import (
	"os"

	forcebridge "github.com/forcebridge/relayer"
	"github.com/urfave/cli/v2"
)

func versionCmd(*cli.Context) error {
	forcebridge.PrintVersion(os.Stdout)
	return nil
}
