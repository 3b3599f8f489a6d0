// -- cmd/serve.go --
package cmd

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/agent"
	"github.com/kvirtue/gemini-computer-use/internal/llmclient"
	"github.com/kvirtue/gemini-computer-use/internal/observability"
	"github.com/kvirtue/gemini-computer-use/internal/server"
	"github.com/kvirtue/gemini-computer-use/internal/store"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service exposing the task, diagram, and ROI endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			model, err := llmclient.NewGeminiClient(ctx, loadedCfg.Model, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize model client: %w", err)
			}

			var runStore schemas.RunStore
			if loadedCfg.Store.Enabled {
				pool, err := pgxpool.New(ctx, loadedCfg.Store.DSN)
				if err != nil {
					return fmt.Errorf("failed to create database pool: %w", err)
				}
				defer pool.Close()

				runStore, err = store.New(ctx, pool, logger)
				if err != nil {
					return fmt.Errorf("failed to initialize run store: %w", err)
				}
			}

			runner := agent.NewRunner(loadedCfg, model, runStore, logger)
			handler := server.NewHandler(runner, logger)
			srv := server.New(loadedCfg.Server, handler, logger)

			return srv.Serve(ctx)
		},
	}
}
