// Package main is the entry point for the pa-autofill CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
	"github.com/joseph-ayodele/pa-autofill/internal/document"
	"github.com/joseph-ayodele/pa-autofill/internal/form"
	"github.com/joseph-ayodele/pa-autofill/internal/pipeline"
	"github.com/joseph-ayodele/pa-autofill/internal/report"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pa-autofill",
	Short: "Auto-fill prior authorization forms from referral packages",
	Long: `pa-autofill reads patient folders containing a blank prior authorization
form and a referral package, extracts structured fields from the referral
with an AI provider, fills the PA form, and writes an extraction report.

Each folder under the input directory must contain PA.pdf and
referral_package.pdf. Outputs land under the output directory, one
subdirectory per folder.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initViper)

	pf := rootCmd.PersistentFlags()
	pf.String("input-dir", "", "directory of patient folders")
	pf.String("output-dir", "", "directory for filled forms and reports")
	pf.String("provider", "", "extraction provider (openai or anthropic)")
	pf.String("openai-key", "", "OpenAI API key")
	pf.String("anthropic-key", "", "Anthropic API key")
	pf.Bool("vision", false, "attach rendered page images to extraction calls")
	pf.Bool("no-vision", false, "text-only extraction even for scanned pages")
	pf.Float32("threshold", 0, "confidence cutoff for filling a field (0-1)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text or json)")
}

func initViper() {
	viper.SetConfigName("pa-autofill")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("PA")
	viper.AutomaticEnv()
	// A config file is optional; env vars and flags cover everything.
	_ = viper.ReadInConfig()
}

// loadConfig assembles configuration in precedence order: defaults, .env,
// environment, config file, flags.
func loadConfig(cmd *cobra.Command) (*common.Config, *slog.Logger, error) {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	applyFileConfig(cfg)
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, nil, err
	}

	logger := common.NewLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func applyFileConfig(cfg *common.Config) {
	if viper.IsSet("input_dir") {
		cfg.Paths.InputDir = viper.GetString("input_dir")
	}
	if viper.IsSet("output_dir") {
		cfg.Paths.OutputDir = viper.GetString("output_dir")
	}
	if viper.IsSet("provider") {
		cfg.LLM.Provider = viper.GetString("provider")
	}
	if viper.IsSet("vision") {
		cfg.Extraction.UseVision = viper.GetBool("vision")
	}
	if viper.IsSet("threshold") {
		cfg.Extraction.ConfidenceThreshold = float32(viper.GetFloat64("threshold"))
	}
	if viper.IsSet("workers") {
		cfg.Extraction.MaxWorkers = viper.GetInt("workers")
	}
}

func applyFlags(cmd *cobra.Command, cfg *common.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input-dir") {
		cfg.Paths.InputDir, _ = flags.GetString("input-dir")
	}
	if flags.Changed("output-dir") {
		cfg.Paths.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("openai-key") {
		cfg.LLM.OpenAIKey, _ = flags.GetString("openai-key")
	}
	if flags.Changed("anthropic-key") {
		cfg.LLM.AnthropicKey, _ = flags.GetString("anthropic-key")
	}
	if flags.Changed("vision") {
		cfg.Extraction.UseVision, _ = flags.GetBool("vision")
	}
	if flags.Changed("no-vision") {
		if noVision, _ := flags.GetBool("no-vision"); noVision {
			cfg.Extraction.UseVision = false
		}
	}
	if flags.Changed("threshold") {
		cfg.Extraction.ConfidenceThreshold, _ = flags.GetFloat32("threshold")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	return nil
}

// newProcessor wires the pipeline for one run.
func newProcessor(cfg *common.Config, logger *slog.Logger) (*pipeline.Processor, error) {
	extractor, err := pipeline.NewFieldExtractor(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	docs := document.NewExtractor(document.Config{
		DPI:          cfg.Extraction.RenderDPI,
		MinTextChars: cfg.Extraction.MinTextChars,
		RenderOff:    !cfg.Extraction.UseVision,
	}, logger)
	return pipeline.NewProcessor(cfg, docs, extractor, form.NewFiller(logger), report.NewGenerator(logger), logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
