package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hieroglyphy/internal/config"
	"hieroglyphy/internal/encoder"
	"hieroglyphy/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	digitMode  bool
	numbers    string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hiero",
	Short: "hiero - encode text, numbers and scripts as ![]+(){} expressions",
	Long: `hiero rewrites input as an ECMAScript expression built only from the
characters ! + [ ] ( ) { } (plus 0-9 with --digits). Evaluating the output
reproduces the input: a string, a number, or an executed script.

Every character is derived from a handful of literals: "false", "true",
"NaN", "undefined" and "[object Object]" supply the first letters, base-36
toString the rest, and the function constructor reaches escape/unescape
for everything else.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("digits") {
			loaded.Encoder.DigitMode = digitMode
		}
		if cmd.Flags().Changed("numbers") {
			loaded.Encoder.Numbers = numbers
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logging.Initialize(cfg.Logging, logger)
		logging.Boot("config loaded from %s (digit_mode=%v numbers=%s)", configPath, cfg.Encoder.DigitMode, cfg.Encoder.Numbers)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "hiero.yaml", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&digitMode, "digits", false, "Allow 0-9 in the output (shorter output)")
	rootCmd.PersistentFlags().StringVar(&numbers, "numbers", "recursive", "Number strategy without digits: recursive or additive")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	// Encode flags
	for _, c := range []*cobra.Command{stringCmd, numberCmd, scriptCmd} {
		c.Flags().Bool("check", false, "Evaluate the output and confirm it round-trips")
	}

	// Verify flags
	verifyCmd.Flags().Int64("max-number", 0, "Upper bound of the numbers suite (default from config)")
	verifyCmd.Flags().Int("workers", 0, "Parallel evaluators (default from config)")
	verifyCmd.Flags().StringSlice("suite", nil, "Suites to run (ascii, numbers, negatives, unicode, script)")
	verifyCmd.Flags().String("battery", "", "YAML file of extra round-trip cases")

	// Table flags
	tableCmd.Flags().String("rule", "", "Only show entries derived by this rule")

	// Config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	// Add commands to root
	rootCmd.AddCommand(stringCmd)
	rootCmd.AddCommand(numberCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// currentConfig returns the loaded config, or defaults when commands run
// without the root pre-run (tests).
func currentConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// newEncoder builds an encoder from the current config.
func newEncoder() (*encoder.Encoder, error) {
	opts := currentConfig().Encoder.Options()
	opts.Logger = logging.Get(logging.CategoryDerive)
	enc, err := encoder.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build encoder: %w", err)
	}
	return enc, nil
}

func getLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
