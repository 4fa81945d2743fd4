package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hieroglyphy/internal/encoder"
)

// tableCmd prints the character cache
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the derived character cache",
	Long: `Prints every character the bootstrap derived, with the rule that produced
it and the size of its fragment. Characters reached only through the
fallback appear once something has been encoded with them.`,
	Args: cobra.NoArgs,
	RunE: runTable,
}

func runTable(cmd *cobra.Command, args []string) error {
	enc, err := newEncoder()
	if err != nil {
		return err
	}
	filter, _ := cmd.Flags().GetString("rule")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-6s %-11s %6s  %s\n", "CHAR", "RULE", "SIZE", "FRAGMENT")
	shown := 0
	for _, e := range enc.Entries() {
		if filter != "" && string(e.Rule) != filter {
			continue
		}
		fmt.Fprintf(out, "%-6s %-11s %6d  %s\n", describe(e), e.Rule, len(e.Fragment), e.Fragment)
		shown++
	}

	stats := enc.Stats()
	fmt.Fprintf(out, "\n%d entries shown, %d cached (%d bytes)\n", shown, stats.Entries, stats.Bytes)
	return nil
}

// describe renders a cache entry's character for terminal output.
func describe(e encoder.Entry) string {
	q := strconv.QuoteRune(e.Char)
	return q[1 : len(q)-1]
}
