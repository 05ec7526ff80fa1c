package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/jmylchreest/glazecat/internal/dataset"
	"github.com/spf13/cobra"
)

type lookupOptions struct {
	limit    int
	minScore float64
}

// lookupEntry is a record and the category it came from.
type lookupEntry struct {
	category string
	record   dataset.ColorRecord
}

type lookupMatch struct {
	lookupEntry
	score float64
}

func newLookupCmd(a *app) *cobra.Command {
	opts := &lookupOptions{}

	cmd := &cobra.Command{
		Use:   "lookup <name or code>",
		Short: "Find colours by approximate name or product code",
		Long: `Rank the records of the colours CSVs by Jaro-Winkler similarity to the
query, comparing against both the colour name and the product code, and
print the best matches with their swatches.

Examples:
  glazecat lookup "robins egg"
  glazecat lookup sc-74 --limit 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, a, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 5, "maximum number of matches")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0.7, "minimum similarity (0-1)")
	return cmd
}

func runLookup(cmd *cobra.Command, a *app, opts *lookupOptions, query string) error {
	categories, err := a.selected()
	if err != nil {
		return err
	}

	var entries []lookupEntry
	for _, cat := range categories {
		records, err := dataset.LoadColors(cat.ColoursCSV)
		if err != nil {
			return fmt.Errorf("category %s: %w", cat.Name, err)
		}
		for _, r := range records {
			entries = append(entries, lookupEntry{category: cat.Name, record: r})
		}
	}

	matches := rankMatches(query, entries, opts.limit, opts.minScore)
	a.logger.Debug("lookup", "query", query, "candidates", len(entries), "matches", len(matches))
	if len(matches) == 0 {
		return fmt.Errorf("no colour matches %q", query)
	}

	table := NewTable([]string{"SCORE", "CATEGORY", "CODE", "NAME", "LEFT", "TOP"})
	for _, m := range matches {
		table.AddRow([]string{
			fmt.Sprintf("%.2f", m.score),
			m.category,
			m.record.Code,
			m.record.Name,
			labelledSwatch(m.record.Left),
			labelledSwatch(m.record.Top),
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), table.Render())
	return nil
}

// rankMatches scores entries against query and returns the best limit
// matches scoring at least minScore, best first. Ties keep input order.
func rankMatches(query string, entries []lookupEntry, limit int, minScore float64) []lookupMatch {
	q := normaliseQuery(query)
	if q == "" {
		return nil
	}

	var matches []lookupMatch
	for _, e := range entries {
		score := similarity(q, e.record)
		if score >= minScore {
			matches = append(matches, lookupMatch{lookupEntry: e, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// similarity is the better of the name and code scores. An exact code
// match always scores 1.
func similarity(q string, r dataset.ColorRecord) float64 {
	code := normaliseQuery(r.Code)
	if q == code {
		return 1
	}
	name := matchr.JaroWinkler(q, normaliseQuery(r.Name), false)
	return max(name, matchr.JaroWinkler(q, code, false))
}

func normaliseQuery(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
