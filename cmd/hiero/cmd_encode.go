package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hieroglyphy/internal/evaluator"
	"hieroglyphy/internal/logging"
)

// errInvalidNumber rejects numerals that are not base-10 integers.
var errInvalidNumber = errors.New("not an integer")

// stringCmd encodes a string value
var stringCmd = &cobra.Command{
	Use:   "string [text...]",
	Short: "Encode text so the output evaluates to that string",
	Long: `Encodes the arguments joined by spaces, or stdin when no arguments are
given, as an expression evaluating to the same string.

Example:
  hiero string foo
  echo -n 'bαr' | hiero string --check`,
	RunE: runString,
}

// numberCmd encodes an integer
var numberCmd = &cobra.Command{
	Use:   "number <n>",
	Short: "Encode an integer so the output evaluates to that number",
	Args:  cobra.ExactArgs(1),
	RunE:  runNumber,
}

// scriptCmd encodes a program fragment
var scriptCmd = &cobra.Command{
	Use:   "script [file|-]",
	Short: "Encode a script so evaluating the output runs it",
	Long: `Wraps the script in the function constructor and calls it. The script is
not parsed; syntax errors surface only when the output is evaluated.

Example:
  echo 'x = 1 + 1' | hiero script --check`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func runString(cmd *cobra.Command, args []string) error {
	text, err := textInput(cmd, args)
	if err != nil {
		return err
	}
	enc, err := newEncoder()
	if err != nil {
		return err
	}
	out, err := enc.EncodeString(text)
	if err != nil {
		return err
	}
	logging.Encode("string: %d chars -> %d bytes", len([]rune(text)), len(out))

	if checkRequested(cmd) {
		res, err := evaluateOutput(cmd, out)
		if err != nil {
			return err
		}
		if res.Type != "string" || res.String != text {
			return fmt.Errorf("round trip failed: evaluated to %v (%s)", res.Value, res.Type)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "check: ok")
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runNumber(cmd *cobra.Command, args []string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", errInvalidNumber, args[0])
	}
	enc, err := newEncoder()
	if err != nil {
		return err
	}
	out, err := enc.EncodeNumber(n)
	if err != nil {
		return err
	}
	logging.Encode("number: %d -> %d bytes", n, len(out))

	if checkRequested(cmd) {
		res, err := evaluateOutput(cmd, out)
		if err != nil {
			return err
		}
		if res.Type != "number" || res.Number != float64(n) {
			return fmt.Errorf("round trip failed: evaluated to %v (%s)", res.Value, res.Type)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "check: ok")
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	var src []byte
	var err error
	if len(args) == 1 && args[0] != "-" {
		src, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
	} else {
		src, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	enc, err := newEncoder()
	if err != nil {
		return err
	}
	out, err := enc.EncodeScript(string(src))
	if err != nil {
		return err
	}
	logging.Encode("script: %d bytes -> %d bytes", len(src), len(out))

	if checkRequested(cmd) {
		if _, err := evaluateOutput(cmd, out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "check: ok")
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// textInput joins args, or reads stdin when there are none.
func textInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return joinArgs(args), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func checkRequested(cmd *cobra.Command) bool {
	check, err := cmd.Flags().GetBool("check")
	return err == nil && check
}

// evaluateOutput runs encoder output in a fresh embedded runtime.
func evaluateOutput(cmd *cobra.Command, out string) (evaluator.Result, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ev, err := evaluator.NewGoja(evaluator.WithTimeout(currentConfig().GetEvalTimeout()))
	if err != nil {
		return evaluator.Result{}, err
	}
	res, err := ev.Eval(ctx, out)
	if err != nil {
		return evaluator.Result{}, fmt.Errorf("check: %w", err)
	}
	getLogger().Debug("evaluated output", zap.String("type", res.Type), zap.Int("size", len(out)))
	logging.Eval("evaluated %d bytes to %s", len(out), res.Type)
	return res, nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
