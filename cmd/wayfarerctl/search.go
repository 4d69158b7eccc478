package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/wayfarer/internal/transport/api"
	"github.com/kailas-cloud/wayfarer/internal/usecase/retrieval"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Retrieve ranked travel knowledge",
	Long: `Embed the query (enriched with location and interests), find the nearest
snippets, drop those outside --location and rank the rest with the interest boost.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchLocation  string
	searchInterests []string
	searchTopK      int
	searchSummary   bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchLocation, "location", "", "Only return snippets for this destination")
	searchCmd.Flags().StringSliceVar(&searchInterests, "interests", nil, "Comma-separated interests, e.g. food,culture")
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 0, "Maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchSummary, "summary", false, "Print the plain-text digest only")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}

	req, err := a.Retrieval.NewRequest(strings.Join(args, " "), searchLocation, searchInterests, searchTopK)
	if err != nil {
		return err
	}
	results, err := a.Retrieval.Retrieve(cmd.Context(), &req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if searchSummary {
		fmt.Fprintln(out, retrieval.Summary(results))
		return nil
	}
	items := api.KnowledgeFromResults(results)
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(api.RetrieveResponse{Items: items, Total: len(items), Summary: retrieval.Summary(results)})
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No relevant travel knowledge found.")
		return nil
	}
	for i, it := range items {
		fmt.Fprintf(out, "%d. %s [%s] score=%.3f raw=%.3f interests=%d sentiment=%s\n",
			i+1, it.ID, it.Destination, it.Score, it.RawScore, it.InterestScore, it.Sentiment)
		if len(it.Categories) > 0 {
			fmt.Fprintf(out, "   categories: %s\n", strings.Join(it.Categories, ", "))
		}
		if it.Source.Name != "" {
			fmt.Fprintf(out, "   source: %s\n", it.Source.Name)
		}
		fmt.Fprintf(out, "   %s\n\n", truncate(it.Text, 160))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
