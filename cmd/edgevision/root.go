package main

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"edgevision-studio/internal/config"
	"edgevision-studio/internal/core"
	imageio "edgevision-studio/internal/io"
	"edgevision-studio/internal/metrics"
)

// cli carries state shared by all subcommands once flags are parsed
type cli struct {
	configPath string
	debug      bool

	cfg    config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "edgevision",
		Short:         "Edge detection studio with Sobel, Laplacian and Canny operators",
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug mode with verbose logging")

	root.AddCommand(
		newServeCmd(c),
		newDesktopCmd(c),
		newProcessCmd(c),
	)

	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = c.debug
	}

	c.cfg = cfg
	c.logger = initLogger(cfg.Debug, cmd.ErrOrStderr())

	c.logger.WithFields(logrus.Fields{
		"version":    config.AppVersion,
		"command":    cmd.Name(),
		"debug_mode": cfg.Debug,
		"config":     c.configPath,
	}).Debug("Configuration loaded")
	return nil
}

// validate re-checks the config after command flag overrides
func (c *cli) validate() error {
	if err := c.cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid settings")
	}
	return nil
}

func (c *cli) newHandler() *core.Handler {
	return core.NewHandler(c.logger, metrics.NewEvaluator())
}

func (c *cli) newLoader() *imageio.ImageLoader {
	return imageio.NewImageLoader(c.logger)
}
