package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/aggregator"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/report"
	"github.com/pable/go-tennis-metrics/internal/service"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellSession keeps the analyzer and the active filter between commands.
type shellSession struct {
	ctx    context.Context
	a      *service.Analyzer
	filter model.Filter
}

func runShell(cmd *cobra.Command, _ []string) error {
	return withAnalyzer(func(a *service.Analyzer) error {
		s := &shellSession{ctx: cmd.Context(), a: a}

		cGreeting.Println("tennismetrics shell")
		cMuted.Println("type 'help' or 'exit'")
		fmt.Println()

		scanner := bufio.NewScanner(os.Stdin)
		for {
			cPrompt.Print("tennis")
			if !s.filter.IsZero() {
				cMuted.Printf("[%s]", s.filterString())
			}
			cMuted.Print("> ")
			if !scanner.Scan() {
				fmt.Println()
				return nil
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			name, arg, _ := strings.Cut(line, " ")
			arg = strings.TrimSpace(arg)
			if name == "exit" || name == "quit" {
				return nil
			}
			if err := s.run(name, arg); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		}
	})
}

// shellQueries are the per-player commands; the argument is the player name.
var shellQueries = map[string]func(q *aggregator.Query){
	"patterns": func(q *aggregator.Query) { report.PrintAdjusted(os.Stdout, q.Patterns(q.Params.MinN)) },
	"directions": func(q *aggregator.Query) {
		report.PrintAdjusted(os.Stdout, q.Directions(q.Params.MinN))
	},
	"serve": func(q *aggregator.Query) { report.PrintServe(os.Stdout, q.Serve()) },
	"spo": func(q *aggregator.Query) {
		report.PrintAdjusted(os.Stdout, q.ServePlusOne(q.Params.MinN))
	},
	"compare": func(q *aggregator.Query) { report.PrintCompare(os.Stdout, q.Compare(q.Params.DescriptiveMinN)) },
	"insights": func(q *aggregator.Query) {
		in := q.Insights()
		report.PrintInsights(os.Stdout, "Won vs lost matches", in.Trends)
		report.PrintInsights(os.Stdout, "Against baseline", in.Highlights)
	},
	"sequences": func(q *aggregator.Query) {
		res := service.SequencesFor(q, cfg.SequenceParams())
		fmt.Println("Winning sequences")
		report.PrintSequences(os.Stdout, res.Winning)
		fmt.Println("Losing sequences")
		report.PrintSequences(os.Stdout, res.Losing)
	},
}

func (s *shellSession) run(name, arg string) error {
	switch name {
	case "help":
		shellHelp()
		return nil
	case "filter":
		return s.setFilter(arg)
	case "players":
		names, err := s.a.Players(s.ctx, arg, false)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cMuted.Println("No players found.")
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	case "coverage":
		if arg == "" {
			return fmt.Errorf("usage: coverage <player>")
		}
		cov, err := s.a.Coverage(s.ctx, arg)
		if err != nil {
			return err
		}
		report.PrintCoverage(os.Stdout, cov)
		return nil
	case "radar":
		if arg == "" {
			return fmt.Errorf("usage: radar <player>")
		}
		p, err := s.a.Radar(s.ctx, arg, s.filter)
		if err != nil {
			return err
		}
		report.PrintRadar(os.Stdout, s.a.RadarModel().Axes, p)
		return nil
	case "card":
		if arg == "" {
			return fmt.Errorf("usage: card <player>")
		}
		c, err := s.a.Card(s.ctx, arg)
		if err != nil {
			return err
		}
		report.PrintCard(os.Stdout, c)
		return nil
	}

	show, ok := shellQueries[name]
	if !ok {
		cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		return nil
	}
	if arg == "" {
		return fmt.Errorf("usage: %s <player>", name)
	}
	q, err := s.a.Query(s.ctx, arg, s.filter)
	if err != nil {
		return err
	}
	report.PrintHeader(os.Stdout, q.Player, q.Filter, len(q.Points), q.Baseline)
	show(q)
	return nil
}

// setFilter parses "key=value" pairs; "filter clear" resets the session filter.
func (s *shellSession) setFilter(arg string) error {
	if arg == "" {
		fmt.Println(s.filterString())
		return nil
	}
	if arg == "clear" {
		s.filter = model.Filter{}
		return nil
	}
	f := s.filter
	for _, kv := range strings.Fields(arg) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("want key=value, got %q", kv)
		}
		switch k {
		case "surface":
			f.Surface = v
		case "from", "to":
			var d time.Time
			if v != "" {
				var err error
				if d, err = time.Parse("2006-01-02", v); err != nil {
					return fmt.Errorf("%s: want YYYY-MM-DD, got %q", k, v)
				}
			}
			if k == "from" {
				f.DateFrom = d
			} else {
				f.DateTo = d
			}
		case "side":
			side, ok := model.ParseSide(v)
			if !ok {
				return fmt.Errorf("side: want Deuce or Ad, got %q", v)
			}
			f.Side = side
		default:
			return fmt.Errorf("unknown filter %q", k)
		}
	}
	s.filter = f
	return nil
}

func (s *shellSession) filterString() string {
	f := s.filter
	if f.IsZero() {
		return "no filter"
	}
	var parts []string
	if f.Surface != "" {
		parts = append(parts, "surface="+f.Surface)
	}
	if !f.DateFrom.IsZero() {
		parts = append(parts, "from="+f.DateFrom.Format("2006-01-02"))
	}
	if !f.DateTo.IsZero() {
		parts = append(parts, "to="+f.DateTo.Format("2006-01-02"))
	}
	if f.Side != model.SideAll {
		parts = append(parts, "side="+string(f.Side))
	}
	return strings.Join(parts, " ")
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"players [query]", "search player names"},
		{"coverage <player>", "charted matches by year and surface"},
		{"patterns <player>", "shot-type patterns"},
		{"directions <player>", "shot-type and direction patterns"},
		{"serve <player>", "serve statistics by direction"},
		{"spo <player>", "serve plus one patterns"},
		{"compare <player>", "won versus lost matches"},
		{"insights <player>", "strengths and weaknesses"},
		{"sequences <player>", "winning and losing shot sequences"},
		{"radar <player>", "percentile radar profile"},
		{"card <player>", "player card"},
		{"filter key=value ...", "set surface, from, to or side for the session"},
		{"filter clear", "remove the session filter"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-24s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}
