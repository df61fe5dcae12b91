package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"edgevision-studio/internal/config"
	"edgevision-studio/internal/web"
)

type serveFlags struct {
	addr         string
	maxUploadMB  int
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func newServeCmd(c *cli) *cobra.Command {
	f := &serveFlags{}
	defaults := config.Default().Server

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the edge detection page over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd.Flags(), &c.cfg.Server)
			if err := c.validate(); err != nil {
				return err
			}

			srv, err := web.NewServer(c.cfg, c.logger, c.newHandler(), c.newLoader())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.addr, "addr", defaults.Addr, "listen address")
	flags.IntVar(&f.maxUploadMB, "max-upload-mb", defaults.MaxUploadMB, "maximum upload size in megabytes")
	flags.DurationVar(&f.readTimeout, "read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	flags.DurationVar(&f.writeTimeout, "write-timeout", defaults.WriteTimeout, "HTTP write timeout")

	return cmd
}

// apply overrides config values with flags given explicitly on the command line
func (f *serveFlags) apply(flags *pflag.FlagSet, server *config.ServerConfig) {
	if flags.Changed("addr") {
		server.Addr = f.addr
	}
	if flags.Changed("max-upload-mb") {
		server.MaxUploadMB = f.maxUploadMB
	}
	if flags.Changed("read-timeout") {
		server.ReadTimeout = f.readTimeout
	}
	if flags.Changed("write-timeout") {
		server.WriteTimeout = f.writeTimeout
	}
}
