package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/applaunch/internal/output"
	"github.com/blackwell-systems/applaunch/internal/ranking"
)

var (
	queryLimit int

	queryCmd = &cobra.Command{
		Use:   "query [text...]",
		Short: "Rank applications and windows against a query",
		Long: `Rank every launch candidate against the query text. Names are matched
with a fuzzy subsequence scorer and the score is lifted by how recently and
how often you launched the application.

Without text, every candidate is listed by usage alone.`,
		Example: `  # Best matches for "fx"
  applaunch query fx

  # Most used applications
  applaunch query

  # Only the top 5
  applaunch query term --limit 5`,
		RunE: runQuery,
	}
)

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "maximum results to print (default: config limit, 0 = all)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}

	tracker, err := env.loadTracker()
	if err != nil {
		return err
	}

	entries, err := env.discovery().Entries(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	limit := env.cfg.Limit
	if queryLimit > 0 {
		limit = queryLimit
	}

	results := ranking.Rank(entries, strings.Join(args, " "), tracker)
	fmt.Print(output.RenderRankedTable(ranking.Top(results, limit)))
	return nil
}
