package main

import (
	"github.com/spf13/cobra"

	"github.com/zeusync/scenekit/internal/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
	assetRoot  string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "scenectl",
		Short:         "Inspect and convert scene assets",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.logLevel
			}
			if cmd.Flags().Changed("asset-root") {
				cfg.AssetRoot = opts.assetRoot
			}
			opts.cfg = cfg
			return cfg.Validate()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn, error or silent")
	flags.StringVar(&opts.assetRoot, "asset-root", ".", "directory asset paths resolve against")

	cmd.AddCommand(
		newLoadCmd(opts),
		newMeshCmd(opts),
		newImageCmd(opts),
		newConvertCmd(opts),
	)
	return cmd
}
