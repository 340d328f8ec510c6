package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/qbar/internal/server"
	"github.com/oakwood-commons/qbar/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		rateLimit float64
		burst     int
	)
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the record API over HTTP",
		Long: `Serve the record API:

  GET /api?filterType=&filterKey=&filterOperator=&filterValue=&search=
  GET /healthz
  GET /metrics   (Prometheus)

Records come from the configured source, usually the memory dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			opts := server.Options{
				Addr:      a.cfg.Server.Addr,
				RateLimit: a.cfg.Server.RateLimit,
				Burst:     a.cfg.Server.Burst,
			}
			f := cmd.Flags()
			if f.Changed("addr") {
				opts.Addr = addr
			}
			if f.Changed("rate-limit") {
				opts.RateLimit = rateLimit
			}
			if f.Changed("burst") {
				opts.Burst = burst
			}

			src, err := buildSource(a.cfg, a.log)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.log.Info("serving record api", "addr", opts.Addr, "source", a.cfg.Source.Kind, "rate_limit", opts.RateLimit)
			fmt.Fprintf(cmd.ErrOrStderr(), "listening on http://%s%s\n", opts.Addr, store.APIPath)
			return server.New(src, opts, a.log).Run(ctx)
		},
	}
	f := c.Flags()
	f.StringVar(&addr, "addr", "", "listen address (default from config)")
	f.Float64Var(&rateLimit, "rate-limit", 0, "requests per second for /api, 0 disables (default from config)")
	f.IntVar(&burst, "burst", 0, "rate limiter burst (default from config)")
	return c
}
