package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hazriqpedia/waybill/internal/cli"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Ask the research assistant",
	Long: `Answers a single research query when one is given, otherwise starts an
interactive session. Answers follow the topic/summary/sources format.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return runChat(cmd, cli.ProfileResearch, "")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)
		err := runChat(cmd, cli.ProfileResearch, query)
		if ctx.Err() != nil {
			// Interrupted; the runner already said so.
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(researchCmd)
	addChatFlags(researchCmd)
	researchCmd.Flags().String("output-dir", "", "Directory save_text_to_file writes into")
	_ = v.BindPFlag("research.output_dir", researchCmd.Flags().Lookup("output-dir"))
}
