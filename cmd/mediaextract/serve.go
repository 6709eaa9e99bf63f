package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mediaextract/internal/api"
	"mediaextract/internal/logging"
	"mediaextract/internal/pipeline"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			p, _, err := pipeline.NewFromConfig(cfg, logger)
			if err != nil {
				return err
			}
			srv, err := api.NewServer(cfg, p, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := srv.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", srv.Addr())
			if !cfg.AuthEnabled() {
				logging.WarnWithContext(logger, "api authentication disabled", "api_auth_disabled",
					logging.String(logging.FieldImpact, "any client that can reach the bind address can run extractions"),
					logging.String(logging.FieldErrorHint, "set server.api_key or MEDIA_EXTRACTOR_API_KEY"),
				)
			}

			var serveErr error
			select {
			case <-runCtx.Done():
			case err, ok := <-srv.Errors():
				if ok {
					serveErr = err
				}
			}
			if err := srv.Shutdown(); err != nil && serveErr == nil {
				serveErr = err
			}
			return serveErr
		},
	}
}
