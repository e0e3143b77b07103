package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pa-autofill/internal/folders"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List patient folders and whether they are processable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		all, err := folders.List(cfg.Paths.InputDir)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Printf("No folders found under %s\n", cfg.Paths.InputDir)
			return nil
		}

		ready := 0
		for _, pf := range all {
			if pf.Ready {
				ready++
				fmt.Printf("  %-40s ready\n", pf.Name)
			} else {
				fmt.Printf("  %-40s skipped (%s)\n", pf.Name, pf.Reason)
			}
		}
		fmt.Printf("%d folder(s), %d processable\n", len(all), ready)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
