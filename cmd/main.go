package main

import (
	"os"

	forcebridge "github.com/forcebridge/relayer"
	"github.com/forcebridge/relayer/common"
	"github.com/forcebridge/relayer/config"
	"github.com/forcebridge/relayer/log"
	"github.com/urfave/cli/v2"
)

const appName = "forcebridge-relayer"

var (
	configFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s)",
		Required: true,
	}
	deployedContractsFlag = cli.StringFlag{
		Name:     config.FlagDeployedContracts,
		Aliases:  []string{"deployed"},
		Usage:    "JSON file with the deployed bridge contract and CKB scripts, overrides the configured ones",
		Required: false,
	}
	componentsFlag = cli.StringSliceFlag{
		Name:     config.FlagComponents,
		Aliases:  []string{"co"},
		Usage:    "List of components to run",
		Required: false,
		Value:    cli.NewStringSlice(common.RELAYER, common.RPC),
	}
	saveConfigFlag = cli.StringFlag{
		Name:     config.FlagSaveConfigPath,
		Aliases:  []string{"s"},
		Usage:    "Save final configuration into to the indicated path (name: " + config.SaveConfigFileName + ")",
		Required: false,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Version = forcebridge.Version
	flags := []cli.Flag{
		&configFileFlag,
		&deployedContractsFlag,
		&componentsFlag,
		&saveConfigFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "config",
			Aliases: []string{},
			Usage:   "Print the default configuration",
			Action:  configCmd,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  schemaFlagName,
					Usage: "Print the JSON schema of the configuration instead",
				},
			},
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Run the bridge relayer",
			Action:  start,
			Flags:   flags,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
