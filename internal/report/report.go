// Package report renders analysis results as terminal tables.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-tennis-metrics/internal/aggregator"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/radar"
	"github.com/pable/go-tennis-metrics/internal/sequence"
	"github.com/pable/go-tennis-metrics/internal/stats"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// Round3 rounds to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func f3(v float64) string {
	return strconv.FormatFloat(Round3(v), 'f', 3, 64)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func ci(iv stats.Interval) string {
	return fmt.Sprintf("[%s, %s]", f3(iv.Lower), f3(iv.Upper))
}

func optInt(p *int) string {
	if p == nil {
		return "—"
	}
	return strconv.Itoa(*p)
}

func optFloat(p *float64) string {
	if p == nil {
		return "—"
	}
	return f3(*p)
}

// PrintHeader prints the one-line summary above a player's tables.
func PrintHeader(w io.Writer, player string, f model.Filter, points int, baseline float64) {
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
	filter := "none"
	if len(parts) > 0 {
		filter = strings.Join(parts, " ")
	}
	fmt.Fprintf(w, "\nPlayer: %s  |  Points: %d  |  Baseline: %s  |  Filter: %s\n\n",
		player, points, pct(baseline), filter)
}

// PrintAdjusted prints baseline-adjusted pattern rows.
func PrintAdjusted(w io.Writer, rows []aggregator.AdjustedStat) {
	table := newTable(w)
	table.Header("PATTERN", "N", "WON", "WIN%", "ADJ_EFF", "WIN_CI", "CONF")
	for _, r := range rows {
		table.Append(
			r.Label(),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.PointsWon),
			pct(r.WinnerRate),
			f3(r.AdjustedEffectiveness),
			ci(r.WinnerCI),
			string(r.Confidence),
		)
	}
	table.Render()
}

// PrintDescriptive prints descriptive pattern rows.
func PrintDescriptive(w io.Writer, rows []aggregator.DescriptiveStat) {
	table := newTable(w)
	table.Header("PATTERN", "N", "W", "UE", "FE", "CONT", "WIN%", "ERR%", "EFF", "WIN_CI", "CONF")
	for _, r := range rows {
		table.Append(
			r.Label(),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Winners),
			strconv.Itoa(r.UnforcedErrors),
			strconv.Itoa(r.ForcedErrors),
			strconv.Itoa(r.Continues),
			pct(r.WinnerRate),
			pct(r.ErrorRate),
			f3(r.Effectiveness),
			ci(r.WinnerCI),
			string(r.Confidence),
		)
	}
	table.Render()
}

// PrintServe prints the per-direction serve table.
func PrintServe(w io.Writer, rows []aggregator.ServeStat) {
	table := newTable(w)
	table.Header("DIRECTION", "N", "ACES/W", "ERR", "IN_PLAY", "WIN%", "ERR%", "PTS_WON%", "ADJ_EFF", "CONF")
	for _, r := range rows {
		table.Append(
			r.Direction,
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Winners),
			strconv.Itoa(r.Errors),
			strconv.Itoa(r.InPlay),
			pct(r.WinnerRate),
			pct(r.ErrorRate),
			pct(r.PointWinRate),
			f3(r.AdjustedEffectiveness),
			string(r.Confidence),
		)
	}
	table.Render()
}

// PrintCompare prints the won-match and lost-match shot profiles side by side,
// joined on shot type. A dash marks a shot type missing from one side.
func PrintCompare(w io.Writer, c aggregator.Comparison) {
	type pair struct{ win, loss *aggregator.DescriptiveStat }
	byType := map[string]*pair{}
	var order []string
	get := func(k string) *pair {
		p, ok := byType[k]
		if !ok {
			p = &pair{}
			byType[k] = p
			order = append(order, k)
		}
		return p
	}
	for i := range c.Wins {
		get(c.Wins[i].Label()).win = &c.Wins[i]
	}
	for i := range c.Losses {
		get(c.Losses[i].Label()).loss = &c.Losses[i]
	}

	table := newTable(w)
	table.Header("SHOT", "N_WON", "EFF_WON", "N_LOST", "EFF_LOST", "DELTA")
	for _, k := range order {
		p := byType[k]
		nWon, effWon, nLost, effLost, delta := "—", "—", "—", "—", "—"
		if p.win != nil {
			nWon, effWon = strconv.Itoa(p.win.Total), f3(p.win.Effectiveness)
		}
		if p.loss != nil {
			nLost, effLost = strconv.Itoa(p.loss.Total), f3(p.loss.Effectiveness)
		}
		if p.win != nil && p.loss != nil {
			delta = f3(p.win.Effectiveness - p.loss.Effectiveness)
		}
		table.Append(k, nWon, effWon, nLost, effLost, delta)
	}
	table.Render()
}

// PrintInsights prints insights as a bulleted list.
func PrintInsights(w io.Writer, title string, in []aggregator.Insight) {
	fmt.Fprintf(w, "%s\n", title)
	if len(in) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, i := range in {
		marker := "+"
		if i.Type == aggregator.InsightWeakness {
			marker = "-"
		}
		fmt.Fprintf(w, "  %s %s: %s\n", marker, i.Title, i.Detail)
	}
}

// PrintSequences prints ranked n-grams.
func PrintSequences(w io.Writer, rows []sequence.NGram) {
	table := newTable(w)
	table.Header("#", "SEQUENCE", "N", "WIN%", "UPLIFT", "SCORE")
	for i, r := range rows {
		table.Append(
			strconv.Itoa(i+1),
			strings.Join(r.Sequence, " → "),
			strconv.Itoa(r.Total),
			pct(r.WinnerRate),
			f3(r.Uplift),
			f3(r.RankScore),
		)
	}
	table.Render()
}

// PrintRadar prints one row per axis, in axis order.
func PrintRadar(w io.Writer, axes []radar.Axis, p radar.Profile) {
	table := newTable(w)
	table.Header("AXIS", "RAW", "PCTL")
	for _, a := range axes {
		s := p.Axes[a.Key]
		table.Append(a.Label, optFloat(s.Raw), optInt(s.Percentile))
	}
	table.Render()
	status := "valid"
	if !p.Valid {
		status = "incomplete"
	}
	fmt.Fprintf(w, "%d/%d axes available (%s)\n", p.Available, len(axes), status)
}

// PrintCard prints a player card.
func PrintCard(w io.Writer, c radar.Card) {
	fmt.Fprintf(w, "\n%s  (%s)\n\n", c.FullName, c.Archetype)
	table := newTable(w)
	table.Header("ATTRIBUTE", "VALUE", "NOTE")
	for _, a := range c.Attributes {
		table.Append(a.Label, optInt(a.Value), a.Note)
	}
	table.Render()
}

// PrintCoverage prints a player's year and surface breakdown.
func PrintCoverage(w io.Writer, c model.Coverage) {
	rows := append([]model.CoverageRow(nil), c.Breakdown...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		return rows[i].Surface < rows[j].Surface
	})
	table := newTable(w)
	table.Header("YEAR", "SURFACE", "MATCHES", "POINTS")
	for _, r := range rows {
		surface := r.Surface
		if surface == "" {
			surface = "unknown"
		}
		table.Append(strconv.Itoa(r.Year), surface, strconv.Itoa(r.Matches), strconv.Itoa(r.Points))
	}
	table.Footer("TOTAL", "", strconv.Itoa(c.Totals.Matches), strconv.Itoa(c.Totals.Points))
	table.Render()
}
