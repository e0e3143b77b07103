package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pa-autofill version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pa-autofill %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
