package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/service"
)

var (
	playersAll        bool
	playersMinMatches int
)

var playersCmd = &cobra.Command{
	Use:   "players [<query>]",
	Short: "Search player names",
	Long: `List players whose name contains the query, case-insensitively. Without
a query every player is listed. Results are capped at 20 unless --all is set.
With --min-matches, players are listed with their charted match counts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlayers,
}

func init() {
	playersCmd.Flags().BoolVar(&playersAll, "all", false, "do not cap the number of results")
	playersCmd.Flags().IntVar(&playersMinMatches, "min-matches", 0, "list players with at least this many charted matches")
}

func runPlayers(cmd *cobra.Command, args []string) error {
	if playersMinMatches > 0 {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		rows, err := db.PlayersWithMinMatches(cmd.Context(), playersMinMatches)
		if err != nil {
			return err
		}
		for _, r := range rows {
			fmt.Fprintf(os.Stdout, "%5d  %s\n", r.Matches, r.Name)
		}
		fmt.Fprintf(os.Stdout, "\n(%d players)\n", len(rows))
		return nil
	}

	q := ""
	if len(args) == 1 {
		q = args[0]
	}
	return withAnalyzer(func(a *service.Analyzer) error {
		names, err := a.Players(cmd.Context(), q, playersAll)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(os.Stdout, "No players found.")
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(os.Stdout, n)
		}
		return nil
	})
}
