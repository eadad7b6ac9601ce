package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fti/internal/engine"
)

const barWidth = 20

// ScoreBand names the range a 0-100 score falls in.
func ScoreBand(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}

// ScoreStyle colors a score by its band.
func ScoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 60:
		return SuccessStyle
	case score >= 40:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// RenderBar draws a percentage as a fixed-width bar.
func RenderBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = math.Max(0, math.Min(100, percent))
	filled := int(math.Round(percent / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RenderBreakdown renders the composite score and its components.
func RenderBreakdown(b engine.Breakdown) string {
	if b.Degraded {
		return RenderBox("Financial Trust Index", FormatError("Score unavailable: the ledger could not be read"))
	}

	var sb strings.Builder
	headline := fmt.Sprintf("%d / 100  %s", b.Score, ScoreBand(b.Score))
	sb.WriteString(BoldStyle.Inherit(ScoreStyle(b.Score)).Render(headline))
	sb.WriteString("\n\n")

	for _, c := range b.Components {
		label := TableCellStyle.Render(fmt.Sprintf("%-24s", c.Name.Label()))
		score := int(math.Round(c.Score))
		line := fmt.Sprintf("%s%s %3d  %s", label, ScoreStyle(score).Render(RenderBar(c.Score, barWidth)), score,
			SubtleStyle.Render(fmt.Sprintf("weight %.0f%%", c.Weight)))
		if c.Origin == engine.OriginDefaulted {
			line += SubtleStyle.Render("  (default: " + c.Reason + ")")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return RenderBox("Financial Trust Index", strings.TrimRight(sb.String(), "\n"))
}

// RenderDashboard renders the current month's summary.
func RenderDashboard(d engine.Dashboard) string {
	rows := [][2]string{
		{"FTI score", ScoreStyle(d.FTIScore).Render(fmt.Sprintf("%d (%s)", d.FTIScore, ScoreBand(d.FTIScore)))},
		{"Income", money(d.MonthlyIncome)},
		{"Expenses", money(d.MonthlyExpenses)},
		{"Net flow", money(d.NetFlow)},
		{"Budget used", fmt.Sprintf("%s %d%%", RenderBar(float64(d.BudgetUsed), barWidth), d.BudgetUsed)},
		{"Avg daily spend", money(d.AvgDailySpend)},
		{"Top category", d.TopCategory},
		{"Transactions", fmt.Sprintf("%d", d.TotalTransactions)},
		{"Recurring", fmt.Sprintf("%d", d.RecurringCount)},
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(TableCellStyle.Render(fmt.Sprintf("%-16s", row[0])))
		sb.WriteString(row[1])
		sb.WriteString("\n")
	}

	if len(d.RecentTransactions) > 0 {
		sb.WriteString("\n")
		sb.WriteString(TableHeaderStyle.Render("Recent transactions"))
		sb.WriteString("\n")
		for _, t := range d.RecentTransactions {
			amount := money(t.Amount)
			if t.IsExpense() {
				amount = "-" + amount
			}
			sb.WriteString(fmt.Sprintf("%s  %-28s %-18s %12s\n",
				t.Date.Format("2006-01-02"), truncate(t.Description, 28), t.Category, amount))
		}
	}

	if d.Degraded {
		sb.WriteString("\n")
		sb.WriteString(FormatWarning("Some metrics could not be computed and show defaults"))
	}

	return RenderBox(d.Month.Label(), strings.TrimRight(sb.String(), "\n"))
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
