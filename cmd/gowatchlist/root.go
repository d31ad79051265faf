package main

import (
	"sync"

	"github.com/amaumene/gowatchlist/internal/config"
	"github.com/amaumene/gowatchlist/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type commandContext struct {
	configOnce sync.Once
	config     *config.Config
	logger     *logrus.Logger
	configErr  error

	loadConfig func() (*config.Config, error)
}

func newCommandContext() *commandContext {
	return &commandContext{loadConfig: config.Load}
}

func (c *commandContext) ensureConfig() (*config.Config, *logrus.Logger, error) {
	c.configOnce.Do(func() {
		cfg, err := c.loadConfig()
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	})
	return c.config, c.logger, c.configErr
}

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()
	return newRootCommandWith(ctx)
}

func newRootCommandWith(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gowatchlist",
		Short:         "Track watched movies and series and keep a watchlist",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newPopularCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newToggleCommand(ctx))
	rootCmd.AddCommand(newRemoveCommand(ctx))

	return rootCmd
}
