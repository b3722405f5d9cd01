package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/model"
)

var summaryMatch string

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display row counts, the schema version, how many points still lack a
winner, and the match count per surface. With --match, show one stored match
instead.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryMatch, "match", "", "show the stored metadata of one match ID")
}

// matchGetter looks up a single stored match.
type matchGetter interface {
	GetMatch(id string) (*model.Match, error)
}

// showMatch prints one match's stored metadata, with "—" for unknown fields.
func showMatch(w io.Writer, db matchGetter, id string) error {
	m, err := db.GetMatch(id)
	if err != nil {
		return fmt.Errorf("get match %s: %w", id, err)
	}
	if m == nil {
		return fmt.Errorf("match %q not found", id)
	}
	orDash := func(s string) string {
		if s == "" {
			return "—"
		}
		return s
	}
	bestOf := "—"
	if m.BestOf > 0 {
		bestOf = fmt.Sprint(m.BestOf)
	}
	fmt.Fprintf(w, "\n=== Match %s ===\n\n", m.ID)
	fmt.Fprintf(w, "  Date       : %s\n", m.Date.Format("2006-01-02"))
	fmt.Fprintf(w, "  Tournament : %s\n", orDash(m.Tournament))
	fmt.Fprintf(w, "  Winner     : %s (%s)\n", m.FirstPlayer, orDash(m.P1Hand))
	fmt.Fprintf(w, "  Loser      : %s (%s)\n", m.SecondPlayer, orDash(m.P2Hand))
	fmt.Fprintf(w, "  Surface    : %s\n", orDash(m.Surface))
	fmt.Fprintf(w, "  Best of    : %s\n", bestOf)
	return nil
}

func runSummary(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if summaryMatch != "" {
		return showMatch(os.Stdout, db, summaryMatch)
	}

	matches, points, shots, err := db.Counts()
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}
	if matches == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'tennismetrics import <dir>' to add some.")
		return nil
	}
	version, dirty, err := db.SchemaVersion()
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	missing, err := db.PointsMissingWinner(cmd.Context())
	if err != nil {
		return fmt.Errorf("count missing winners: %w", err)
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Database        : %s\n", dbPath)
	fmt.Fprintf(os.Stdout, "  Schema version  : %d", version)
	if dirty {
		fmt.Fprint(os.Stdout, " (dirty)")
	}
	fmt.Fprintln(os.Stdout)
	fmt.Fprintf(os.Stdout, "  Matches         : %d\n", matches)
	fmt.Fprintf(os.Stdout, "  Points          : %d\n", points)
	fmt.Fprintf(os.Stdout, "  Shots           : %d\n", shots)
	fmt.Fprintf(os.Stdout, "  Missing winners : %d\n", missing)

	surfaces, err := db.SurfaceCounts(cmd.Context())
	if err != nil {
		return fmt.Errorf("surface counts: %w", err)
	}
	names := make([]string, 0, len(surfaces))
	for s := range surfaces {
		names = append(names, s)
	}
	sort.Slice(names, func(i, j int) bool {
		if surfaces[names[i]] != surfaces[names[j]] {
			return surfaces[names[i]] > surfaces[names[j]]
		}
		return names[i] < names[j]
	})

	fmt.Fprintf(os.Stdout, "\n--- Surfaces ---\n\n")
	t := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	t.Header("SURFACE", "MATCHES", "SHARE")
	for _, s := range names {
		n := surfaces[s]
		t.Append(s, fmt.Sprint(n), fmt.Sprintf("%.0f%%", float64(n)/float64(matches)*100))
	}
	t.Render()
	return nil
}
