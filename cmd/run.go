// -- cmd/run.go --
package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/kvirtue/gemini-computer-use/api/schemas"
	"github.com/kvirtue/gemini-computer-use/internal/agent"
	"github.com/kvirtue/gemini-computer-use/internal/llmclient"
	"github.com/kvirtue/gemini-computer-use/internal/observability"
)

func newRunCommand() *cobra.Command {
	var (
		startURL string
		width    int
		height   int
	)

	runCmd := &cobra.Command{
		Use:   "run \"<instruction>\"",
		Short: "Execute a single browser task and print the result as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			model, err := llmclient.NewGeminiClient(ctx, loadedCfg.Model, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize model client: %w", err)
			}

			runner := agent.NewRunner(loadedCfg, model, nil, logger)
			result, err := runner.RunTask(ctx, schemas.Task{
				Instruction: args[0],
				StartURL:    startURL,
				Viewport:    schemas.Viewport{Width: width, Height: height},
			})
			if err != nil {
				return err
			}

			// The screenshot is dropped from stdout output; it belongs in the
			// HTTP response, not a terminal.
			result.FinalScreenshot = nil

			enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	runCmd.Flags().StringVar(&startURL, "start-url", "", "page to load before the first screenshot")
	runCmd.Flags().IntVar(&width, "width", schemas.DefaultViewport.Width, "viewport width in pixels")
	runCmd.Flags().IntVar(&height, "height", schemas.DefaultViewport.Height, "viewport height in pixels")

	return runCmd
}
