package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pa-autofill/internal/folders"
	"github.com/joseph-ayodele/pa-autofill/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process <folder>",
	Short: "Process one patient folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		pf, err := folders.Find(cfg.Paths.InputDir, args[0])
		if err != nil {
			return err
		}

		proc, err := newProcessor(cfg, logger)
		if err != nil {
			return err
		}

		res := proc.ProcessFolder(cmd.Context(), pf)
		printResult(res)
		if res.Status == pipeline.StatusFailed {
			return fmt.Errorf("processing %s failed at %s: %s", res.Folder, res.FailedStage, res.Error)
		}
		return nil
	},
}

var processAllCmd = &cobra.Command{
	Use:   "process-all",
	Short: "Process every patient folder under the input directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
			cfg.Extraction.MaxWorkers = workers
		}
		parallel, _ := cmd.Flags().GetBool("parallel")

		proc, err := newProcessor(cfg, logger)
		if err != nil {
			return err
		}

		batch, err := proc.ProcessAll(cmd.Context(), parallel)
		if err != nil {
			return err
		}

		for _, pf := range batch.Invalid {
			fmt.Printf("  %-40s skipped (%s)\n", pf.Name, pf.Reason)
		}
		for _, res := range batch.Results {
			printResult(res)
		}

		s := batch.Summary()
		fmt.Printf("\n%d succeeded, %d failed, %d skipped in %s\n",
			s.Succeeded, s.Failed, s.Invalid, batch.Duration.Round(10*time.Millisecond))
		if s.Failed > 0 {
			return fmt.Errorf("%d folder(s) failed", s.Failed)
		}
		return nil
	},
}

func printResult(res *pipeline.ProcessingResult) {
	if res.Status == pipeline.StatusFailed {
		fmt.Printf("  %-40s FAILED at %s: %s\n", res.Folder, res.FailedStage, res.Error)
		return
	}
	filled, uncertain, missing := res.Counts()
	fmt.Printf("  %-40s done: %d filled, %d uncertain, %d missing", res.Folder, filled, uncertain, missing)
	if !res.FormFilled {
		fmt.Print(" (report only, form has no fillable fields)")
	}
	fmt.Println()
}

func init() {
	processAllCmd.Flags().Bool("parallel", false, "process folders concurrently")
	processAllCmd.Flags().Int("workers", 0, "worker pool size for --parallel")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(processAllCmd)
}
