package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/config"
)

// rootOptions carries what every subcommand needs once flags are parsed
type rootOptions struct {
	viper      *viper.Viper
	configFile string
	envFile    string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{viper: viper.New()}

	cmd := &cobra.Command{
		Use:           "bamcfg",
		Short:         "Generate monitoring engine configuration for business activities",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default ./config/config.yaml or /etc/bamcfg/config.yaml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("driver", "", "datastore driver (mysql, postgres, sqlite3, sqlite)")
	flags.String("dsn", "", "datastore DSN")
	flags.String("output-dir", "", "directory receiving one sub-directory per node")
	flags.Int("workers", 0, "nodes generated concurrently")
	flags.Bool("development", false, "human readable debug logging")

	bindings := map[string]string{
		"datastore.driver":   "driver",
		"datastore.dsn":      "dsn",
		"output.dir":         "output-dir",
		"generation.workers": "workers",
		"log.development":    "development",
	}
	for key, flag := range bindings {
		_ = opts.viper.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(
		newGenerateCommand(opts),
		newWatchCommand(opts),
		newNodesCommand(opts),
	)
	return cmd
}

func (o *rootOptions) init() error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", o.envFile, err)
		}
	}

	cfg, err := config.Load(o.viper, o.configFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	if cfg.Log.Development {
		o.logger, err = zap.NewDevelopment()
	} else {
		o.logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}
