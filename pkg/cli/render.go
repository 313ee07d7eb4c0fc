package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.Bold)
	labelColor   = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)

	riskColors = map[types.RiskLevel]*color.Color{
		types.RiskLevelHigh:   color.New(color.FgRed, color.Bold),
		types.RiskLevelMedium: color.New(color.FgYellow, color.Bold),
		types.RiskLevelLow:    color.New(color.FgGreen, color.Bold),
	}
)

func riskColor(level types.RiskLevel) *color.Color {
	if c, ok := riskColors[level]; ok {
		return c
	}
	return headingColor
}

func printReport(w io.Writer, report *model.Report) {
	a := report.Assessment
	if a == nil {
		return
	}

	headingColor.Fprintf(w, "Report %s", report.ID)
	if report.Source != "" {
		dimColor.Fprintf(w, " (%s)", report.Source)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "  Risk:    ")
	riskColor(a.RiskLevel).Fprintln(w, strings.ToUpper(a.RiskLevel.String()))
	printField(w, "License", a.LicenseDetermination.String())
	printField(w, "Item", report.Fields.ItemDescription)
	printField(w, "ECCN", classificationLine(report.Classification))
	printField(w, "Dest.", destinationLine(report.Destination))
	printField(w, "End user", screeningLine(report.Screening))

	if len(a.Triggers) > 0 {
		names := make([]string, len(a.Triggers))
		for i, t := range a.Triggers {
			names[i] = t.String()
		}
		printField(w, "Triggers", strings.Join(names, ", "))
	}

	printList(w, "Warnings", a.Warnings, warnColor)
	printList(w, "Actions", a.RecommendedActions, nil)

	if len(report.DegradedStages) > 0 {
		items := make([]string, len(report.DegradedStages))
		for i, d := range report.DegradedStages {
			items[i] = fmt.Sprintf("%s (%s): %s", d.Stage, d.Status, d.Reason)
		}
		printList(w, "Incomplete", items, warnColor)
	}
	fmt.Fprintln(w)
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		value = "unknown"
	}
	labelColor.Fprintf(w, "  %-9s", label+":")
	fmt.Fprintln(w, value)
}

func printList(w io.Writer, title string, items []string, c *color.Color) {
	if len(items) == 0 {
		return
	}
	labelColor.Fprintf(w, "  %s:\n", title)
	for _, item := range items {
		if c != nil {
			c.Fprintf(w, "    - %s\n", item)
		} else {
			fmt.Fprintf(w, "    - %s\n", item)
		}
	}
}

func classificationLine(r model.StageResult[*model.Classification]) string {
	c := r.Value
	if c == nil {
		return ""
	}
	line := c.Code
	if c.Entry != nil {
		line += " " + c.Entry.Description
	}
	if r.Status != types.StageStatusOK || c.Fallback {
		line += " (unverified)"
	}
	return line
}

func destinationLine(r model.StageResult[*model.DestinationControl]) string {
	if r.Value == nil || r.Value.Resolution == nil {
		return ""
	}
	res := r.Value.Resolution
	line := res.Query
	switch {
	case res.Resolved():
		line = res.Row.Destination
	case len(res.Candidates) > 0:
		line += " (ambiguous: " + strings.Join(res.Candidates, ", ") + ")"
	default:
		line += " (not in matrix)"
	}
	if res.Embargoed {
		line += " [embargoed]"
	}
	return line
}

func screeningLine(r model.StageResult[*model.ScreeningResult]) string {
	s := r.Value
	if s == nil {
		return ""
	}
	if s.Hit && s.Record != nil {
		return fmt.Sprintf("%s (listed: %s, %s)", s.Query, s.Record.Name, s.Record.Country)
	}
	return s.Query + " (no match)"
}

func printSessionSummary(w io.Writer, session *model.Session) {
	counts := session.CountByRisk()
	headingColor.Fprintf(w, "Session: %d reports", session.Len())
	for _, level := range types.AllRiskLevels() {
		fmt.Fprint(w, ", ")
		riskColor(level).Fprintf(w, "%d %s", counts[level], level)
	}
	fmt.Fprintln(w)
}

func printEntries(w io.Writer, entries []*model.ClassificationEntry) {
	if len(entries) == 0 {
		dimColor.Fprintln(w, "No matching entry")
		return
	}
	for _, e := range entries {
		headingColor.Fprint(w, e.Code)
		fmt.Fprintf(w, "  %s", e.Description)
		if len(e.ControlReasons) > 0 {
			dimColor.Fprintf(w, " [%s]", joinReasons(e.ControlReasons))
		}
		fmt.Fprintln(w)
	}
}

func printCodeDetail(w io.Writer, d *model.CodeDetail) {
	e := d.Entry
	headingColor.Fprintf(w, "%s", e.Code)
	fmt.Fprintf(w, "  %s\n", e.Description)
	printField(w, "Category", strings.TrimSpace(e.CategoryID+" "+e.CategoryTitle))
	printField(w, "Group", strings.TrimSpace(e.GroupLetter+" "+e.GroupTitle))
	printField(w, "Reasons", joinReasons(e.ControlReasons))

	fmt.Fprintf(w, "  License required for %d of %d destinations\n", len(d.Destinations), d.TotalDestinations)
	for _, l := range d.Destinations {
		fmt.Fprintf(w, "    - %s", l.Destination)
		if len(l.Columns) > 0 {
			dimColor.Fprintf(w, " (%s)", joinReasons(l.Columns))
		}
		if l.Embargoed {
			warnColor.Fprint(w, " [embargoed]")
		}
		fmt.Fprintln(w)
	}
	if len(d.UnmappedReasons) > 0 {
		warnColor.Fprintf(w, "  No matrix column for: %s\n", joinReasons(d.UnmappedReasons))
	}
}

func joinReasons(reasons []types.ControlReason) string {
	names := make([]string, len(reasons))
	for i, r := range reasons {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
