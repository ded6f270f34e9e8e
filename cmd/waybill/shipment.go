package main

import (
	"github.com/spf13/cobra"

	"github.com/hazriqpedia/waybill/internal/cli"
)

var shipmentCmd = &cobra.Command{
	Use:   "shipment",
	Short: "Chat with the shipment assistant",
	Long:  `Starts an interactive session with the logistics assistant. Type 'exit' or 'quit' to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, cli.ProfileShipment, "")
	},
}

func init() {
	rootCmd.AddCommand(shipmentCmd)
	addChatFlags(shipmentCmd)

	// The shipment assistant is the default.
	addChatFlags(rootCmd)
	rootCmd.RunE = shipmentCmd.RunE
}

func addChatFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	cmd.Flags().BoolP("verbose", "v", false, "Print each tool call and the tools used per answer")
	cmd.Flags().StringP("conversation", "c", "default", "Conversation ID to remember turns under")
}

func runChat(cmd *cobra.Command, profile, query string) error {
	ctx := cmd.Context()
	stack, err := loadStack(ctx, cmd)
	if err != nil {
		return err
	}
	defer stack.Close()

	jsonMode, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	conversation, _ := cmd.Flags().GetString("conversation")

	return stack.RunSession(ctx, cli.Session{
		Profile:        profile,
		ConversationID: conversation,
		Query:          query,
		JSON:           jsonMode,
		Verbose:        verbose,
		In:             cmd.InOrStdin(),
		Out:            cmd.OutOrStdout(),
	})
}
