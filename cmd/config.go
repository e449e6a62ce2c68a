package main

import (
	"os"
	"strings"

	"github.com/forcebridge/relayer/config"
	"github.com/urfave/cli/v2"
)

const schemaFlagName = "schema"

// configCmd prints the default configuration, a starting point for a config file, or with
// --schema the JSON schema of the configuration
func configCmd(cliCtx *cli.Context) error {
	if cliCtx.Bool(schemaFlagName) {
		schema, err := config.GenerateJSONSchema()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(schema, '\n'))
		return err
	}
	defaultConfig := strings.Builder{}
	defaultConfig.WriteString(config.DefaultVars)
	defaultConfig.WriteString(config.DefaultValues)

	_, err := os.Stdout.WriteString(defaultConfig.String())
	return err
}
