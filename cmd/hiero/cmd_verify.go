package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hieroglyphy/internal/evaluator"
	"hieroglyphy/internal/logging"
	"hieroglyphy/internal/verify"
)

// verifyCmd runs the round-trip harness
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Evaluate encoder output in an embedded runtime and compare round trips",
	Long: `Encodes every 7-bit character, the integers 0..max-number, a few negative
integers and non-ASCII strings, plus scripts with side effects, then
evaluates each output and compares it with the input. Every output is also
checked against the output alphabet.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	c := currentConfig()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := verify.Options{
		MaxNumber: c.Verify.MaxNumber,
		Workers:   c.Verify.Workers,
		Logger:    logging.Get(logging.CategoryVerify),
	}
	if n, _ := cmd.Flags().GetInt64("max-number"); n > 0 {
		opts.MaxNumber = n
	}
	if w, _ := cmd.Flags().GetInt("workers"); w > 0 {
		opts.Workers = w
	}
	names, _ := cmd.Flags().GetStringSlice("suite")
	if len(names) == 0 {
		names = c.Verify.Suites
	}
	for _, name := range names {
		s, ok := verify.ParseSuite(name)
		if !ok {
			return fmt.Errorf("unknown suite: %s", name)
		}
		opts.Suites = append(opts.Suites, s)
	}

	batteryPath, _ := cmd.Flags().GetString("battery")
	if batteryPath == "" {
		batteryPath = c.Verify.Battery
	}
	if batteryPath != "" {
		b, err := verify.LoadBattery(batteryPath)
		if err != nil {
			return fmt.Errorf("load battery: %w", err)
		}
		opts.Battery = b
	}

	enc, err := newEncoder()
	if err != nil {
		return err
	}
	getLogger().Info("Running verification",
		zap.Bool("digit_mode", c.Encoder.DigitMode),
		zap.String("numbers", c.Encoder.Numbers))

	report, err := verify.Run(ctx, enc, evaluator.GojaFactory(c.GetEvalTimeout()), opts)
	if err != nil {
		return fmt.Errorf("verification aborted: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d checks in %v\n", report.RunID, report.Checks, report.Elapsed.Round(1e6))
	suites := append([]verify.Suite{}, verify.AllSuites...)
	for _, s := range append(suites, verify.SuiteBattery) {
		if n, ok := report.BySuite[s]; ok {
			fmt.Fprintf(out, "  %-10s %d\n", s, n)
		}
	}
	for _, f := range report.Failures {
		fmt.Fprintf(out, "FAIL [%s] %s: %s\n", f.Suite, f.Input, f.Reason)
	}
	if !report.OK() {
		return fmt.Errorf("%d of %d checks failed", len(report.Failures), report.Checks)
	}
	fmt.Fprintln(out, "all checks passed")
	return nil
}
