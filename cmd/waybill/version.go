package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazriqpedia/waybill"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of waybill",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "waybill version %s\n", strings.TrimSpace(waybill.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
