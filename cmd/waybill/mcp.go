package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hazriqpedia/waybill"
	"github.com/hazriqpedia/waybill/internal/cli"
	"github.com/hazriqpedia/waybill/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the assistant's tools, plus an ask_assistant tool that runs the
full tool loop, to MCP clients.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Logs go to stderr.
- sse: Uses Server-Sent Events over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		profile, _ := cmd.Flags().GetString("profile")

		stack, err := loadStack(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		assistant, err := buildAssistant(stack, profile)
		if err != nil {
			return err
		}
		srv := mcp.NewServer(assistant.Registry(),
			mcp.WithAssistant(assistant),
			mcp.WithLogger(stack.Logger),
			mcp.WithVersion(waybill.Version),
		)

		switch transport {
		case "stdio":
			stack.Logger.Info("starting waybill MCP server (stdio)", "profile", profile)
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ServeSSE(ctx, fmt.Sprintf(":%d", port), fmt.Sprintf("http://localhost:%d", port))
		default:
			return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
		}
	},
}

// buildAssistant creates the assistant named by profile.
func buildAssistant(stack *cli.Stack, profile string) (*waybill.Assistant, error) {
	switch profile {
	case cli.ProfileShipment:
		a, _, err := stack.ShipmentAssistant()
		return a, err
	case cli.ProfileResearch:
		return stack.ResearchAssistant()
	}
	return nil, fmt.Errorf("unknown profile %q", profile)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 8080, "Port for the SSE transport")
	mcpCmd.Flags().String("profile", cli.ProfileShipment, "Assistant to expose: shipment or research")
}
