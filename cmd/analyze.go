package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/aggregator"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/report"
	"github.com/pable/go-tennis-metrics/internal/service"
)

// Flags shared by every per-player analysis command.
var (
	flagSurface     string
	flagFrom        string
	flagTo          string
	flagSide        string
	flagMinN        int
	flagDescriptive bool
	flagJSON        bool
)

func addFilterFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagSurface, "surface", "", "only points on this surface (Hard, Clay, Grass, Carpet)")
	c.Flags().StringVar(&flagFrom, "from", "", "only matches on or after this date (YYYY-MM-DD)")
	c.Flags().StringVar(&flagTo, "to", "", "only matches on or before this date (YYYY-MM-DD)")
	c.Flags().StringVar(&flagSide, "side", "", "only Deuce or Ad side points")
	c.Flags().BoolVar(&flagJSON, "json", false, "print JSON instead of tables")
}

func addPatternFlags(c *cobra.Command) {
	addFilterFlags(c)
	c.Flags().IntVar(&flagMinN, "min-n", 0, "minimum samples per row (default from config)")
	c.Flags().BoolVar(&flagDescriptive, "descriptive", false, "score shot outcomes instead of points won")
}

func parseFilterFlags() (model.Filter, error) {
	f := model.Filter{Surface: flagSurface}
	var err error
	if flagFrom != "" {
		if f.DateFrom, err = time.Parse("2006-01-02", flagFrom); err != nil {
			return f, fmt.Errorf("--from: want YYYY-MM-DD, got %q", flagFrom)
		}
	}
	if flagTo != "" {
		if f.DateTo, err = time.Parse("2006-01-02", flagTo); err != nil {
			return f, fmt.Errorf("--to: want YYYY-MM-DD, got %q", flagTo)
		}
	}
	side, ok := model.ParseSide(flagSide)
	if !ok {
		return f, fmt.Errorf("--side: want Deuce or Ad, got %q", flagSide)
	}
	f.Side = side
	return f, nil
}

// minNOr returns --min-n when set, else def.
func minNOr(def int) int {
	if flagMinN > 0 {
		return flagMinN
	}
	return def
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withAnalyzer opens the database and runs fn with a configured analyzer.
func withAnalyzer(fn func(a *service.Analyzer) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	a, err := newAnalyzer(db)
	if err != nil {
		return err
	}
	return fn(a)
}

// queryCommand builds a per-player command that loads the filtered query and
// hands it to show.
func queryCommand(use, short string, show func(q *aggregator.Query) error) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " <player>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFilterFlags()
			if err != nil {
				return err
			}
			return withAnalyzer(func(a *service.Analyzer) error {
				q, err := a.Query(cmd.Context(), args[0], f)
				if err != nil {
					return err
				}
				if !flagJSON {
					report.PrintHeader(os.Stdout, q.Player, q.Filter, len(q.Points), q.Baseline)
				}
				return show(q)
			})
		},
	}
	return c
}

var patternsCmd = queryCommand("patterns", "Shot-type patterns", func(q *aggregator.Query) error {
	if flagDescriptive {
		rows := q.PatternsDescriptive(minNOr(q.Params.DescriptiveMinN))
		if flagJSON {
			return printJSON(rows)
		}
		report.PrintDescriptive(os.Stdout, rows)
		return nil
	}
	rows := q.Patterns(minNOr(q.Params.MinN))
	if flagJSON {
		return printJSON(rows)
	}
	report.PrintAdjusted(os.Stdout, rows)
	return nil
})

var directionsCmd = queryCommand("directions", "Shot-type and direction patterns", func(q *aggregator.Query) error {
	if flagDescriptive {
		rows := q.DirectionsDescriptive(minNOr(q.Params.ComboMinN))
		if flagJSON {
			return printJSON(rows)
		}
		report.PrintDescriptive(os.Stdout, rows)
		return nil
	}
	rows := q.Directions(minNOr(q.Params.MinN))
	if flagJSON {
		return printJSON(rows)
	}
	report.PrintAdjusted(os.Stdout, rows)
	return nil
})

var servePlusOneCmd = queryCommand("serve-plus-one", "Serve direction and response patterns", func(q *aggregator.Query) error {
	if flagDescriptive {
		rows := q.ServePlusOneDescriptive(minNOr(q.Params.ComboMinN))
		if flagJSON {
			return printJSON(rows)
		}
		report.PrintDescriptive(os.Stdout, rows)
		return nil
	}
	rows := q.ServePlusOne(minNOr(q.Params.MinN))
	if flagJSON {
		return printJSON(rows)
	}
	fmt.Fprintf(os.Stdout, "Serve baseline: %.1f%%\n\n", q.ServeBaseline*100)
	report.PrintAdjusted(os.Stdout, rows)
	return nil
})

var serveCmd = queryCommand("serve", "Serve statistics by direction", func(q *aggregator.Query) error {
	rows := q.Serve()
	if flagJSON {
		return printJSON(rows)
	}
	report.PrintServe(os.Stdout, rows)
	return nil
})

var compareCmd = queryCommand("compare", "Shot profile in won versus lost matches", func(q *aggregator.Query) error {
	c := q.Compare(minNOr(q.Params.DescriptiveMinN))
	if flagJSON {
		return printJSON(c)
	}
	report.PrintCompare(os.Stdout, c)
	return nil
})

var insightsCmd = queryCommand("insights", "Strengths and weaknesses", func(q *aggregator.Query) error {
	in := q.Insights()
	if flagJSON {
		return printJSON(in)
	}
	report.PrintInsights(os.Stdout, "Won vs lost matches", in.Trends)
	fmt.Fprintln(os.Stdout)
	report.PrintInsights(os.Stdout, "Against baseline", in.Highlights)
	return nil
})

var sequencesCmd = queryCommand("sequences", "Winning and losing shot sequences", func(q *aggregator.Query) error {
	p := cfg.SequenceParams()
	p.MinN = minNOr(p.MinN)
	res := service.SequencesFor(q, p)
	if flagJSON {
		return printJSON(res)
	}
	fmt.Fprintln(os.Stdout, "Winning sequences")
	report.PrintSequences(os.Stdout, res.Winning)
	fmt.Fprintln(os.Stdout, "\nLosing sequences")
	report.PrintSequences(os.Stdout, res.Losing)
	return nil
})

var reportCmd = queryCommand("report", "Every pattern family for one player", func(q *aggregator.Query) error {
	r := q.Report()
	if flagJSON {
		return printJSON(r)
	}
	sections := []struct {
		title string
		print func()
	}{
		{"Shot types", func() { report.PrintAdjusted(os.Stdout, r.Patterns) }},
		{"Shot types (descriptive)", func() { report.PrintDescriptive(os.Stdout, r.PatternsDescriptive) }},
		{"Directions", func() { report.PrintAdjusted(os.Stdout, r.Directions) }},
		{"Serve", func() { report.PrintServe(os.Stdout, r.Serve) }},
		{"Serve +1", func() { report.PrintAdjusted(os.Stdout, r.ServePlusOne) }},
		{"Won vs lost matches", func() { report.PrintCompare(os.Stdout, r.Compare) }},
	}
	for _, s := range sections {
		fmt.Fprintf(os.Stdout, "--- %s ---\n\n", s.title)
		s.print()
		fmt.Fprintln(os.Stdout)
	}
	report.PrintInsights(os.Stdout, "Insights", append(r.Insights.Trends, r.Insights.Highlights...))
	fmt.Fprintf(os.Stdout, "\n(%d shots skipped for unknown categories)\n", r.Skipped)
	return nil
})

var coverageCmd = &cobra.Command{
	Use:   "coverage <player>",
	Short: "Charted matches and points by year and surface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyzer(func(a *service.Analyzer) error {
			cov, err := a.Coverage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(cov)
			}
			fmt.Fprintf(os.Stdout, "\n%s\n\n", args[0])
			report.PrintCoverage(os.Stdout, cov)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{patternsCmd, directionsCmd, servePlusOneCmd, compareCmd, sequencesCmd} {
		addPatternFlags(c)
	}
	for _, c := range []*cobra.Command{serveCmd, insightsCmd, reportCmd} {
		addFilterFlags(c)
	}
	coverageCmd.Flags().BoolVar(&flagJSON, "json", false, "print JSON instead of tables")
}
