package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/supplyline/resolve/internal/catalog"
	"github.com/supplyline/resolve/internal/match"
)

var (
	matchLimit   int
	outputFormat string
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match [name]",
	Short: "Rank catalog suppliers against a name",
	Long: `Score every supplier in the catalog against the given free-text name
and print the best candidates in descending similarity order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer cat.Close() //nolint:errcheck

		names, err := cat.Names(context.Background())
		if err != nil {
			return err
		}

		candidates, err := match.Rank(args[0], names, matchLimit)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return outputJSON(candidates)
		}
		return outputText(candidates, args[0])
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().IntVar(&matchLimit, "limit", match.DefaultLimit, "Maximum number of candidates to return")
	matchCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format (text or json)")
}

func outputJSON(candidates []match.Candidate) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(candidates)
}

func outputText(candidates []match.Candidate, query string) error {
	fmt.Printf("Query: %s\n\n", query)

	if len(candidates) == 0 {
		fmt.Println("No candidates found.")
		return nil
	}

	fmt.Printf("Found %d candidates:\n\n", len(candidates))
	for i, c := range candidates {
		fmt.Printf("%d. %s (similarity: %.2f%%)\n", i+1, c.Name, c.Score)
	}

	return nil
}
