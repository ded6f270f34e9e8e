package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazriqpedia/waybill/internal/cli"
	"github.com/hazriqpedia/waybill/internal/config"
)

var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "waybill",
	Short: "Waybill is a tool-using chat assistant for shipments and research",
	Long: `Waybill runs a language model in a bounded tool loop.
Without a subcommand it starts the shipment assistant, which tracks and
reschedules deliveries. The research assistant searches the web and
Wikipedia and can save its findings to a file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./waybill.yaml or ~/.config/waybill/waybill.yaml)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("model", "", "Model name")
	flags.String("base-url", "", "OpenAI-compatible API base URL")
	flags.Int("max-iterations", 0, "Tool loop round budget")
	flags.String("store", "", "Conversation store: memory, file or redis")
	flags.String("trace-file", "", "Append NDJSON spans to this file")

	bind := map[string]string{
		"llm.model":            "model",
		"llm.base_url":         "base-url",
		"agent.max_iterations": "max-iterations",
		"store.type":           "store",
		"trace.file":           "trace-file",
	}
	for key, flag := range bind {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}

// loadStack reads the configuration and builds the shared dependencies.
func loadStack(ctx context.Context, cmd *cobra.Command) (*cli.Stack, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return nil, err
	}
	return cli.NewStack(ctx, cfg, logger, nil)
}
