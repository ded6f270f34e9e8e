package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazriqpedia/waybill/internal/cli"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/registry"
	"github.com/hazriqpedia/waybill/pkg/research"
	"github.com/hazriqpedia/waybill/pkg/shipment"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools an assistant can call",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, _ := cmd.Flags().GetString("profile")
		tools, err := profileTools(profile)
		if err != nil {
			return err
		}
		printTools(cmd.OutOrStdout(), tools)
		return nil
	},
}

// profileTools lists tools without loading config or contacting the model.
func profileTools(profile string) ([]domain.Tool, error) {
	var entries []registry.Entry
	switch profile {
	case cli.ProfileShipment:
		entries = shipment.Tools(shipment.NewService(shipment.DefaultSeed()))
	case cli.ProfileResearch:
		entries = research.NewToolset(".").Tools()
	default:
		return nil, fmt.Errorf("unknown profile %q", profile)
	}
	reg, err := registry.New(entries...)
	if err != nil {
		return nil, err
	}
	return reg.Descriptors(), nil
}

func printTools(w io.Writer, tools []domain.Tool) {
	for _, t := range tools {
		fmt.Fprintf(w, "%s\n  %s\n", t.Name, t.Description)
		for _, p := range t.Parameters {
			req := ""
			if p.Required {
				req = ", required"
			}
			fmt.Fprintf(w, "    - %s (%s%s)", p.Name, p.Type, req)
			if p.Description != "" {
				fmt.Fprintf(w, ": %s", strings.TrimSpace(p.Description))
			}
			fmt.Fprintln(w)
		}
	}
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().String("profile", cli.ProfileShipment, "Assistant: shipment or research")
}
