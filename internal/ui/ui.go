// Package ui renders engine output for the terminal. Styling only;
// all numbers come from the engines untouched.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/orrery/internal/knowledge"
	"github.com/papapumpkin/orrery/internal/ranking"
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleScore  = lipgloss.NewStyle().Bold(true)
	styleHot    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	styleWarm   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleCold   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleReason = lipgloss.NewStyle().Faint(true)
	styleLabel  = lipgloss.NewStyle().Faint(true)
	styleEdited = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// scoreStyle picks a temperature color for a priority score.
func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 70:
		return styleHot
	case score >= 40:
		return styleWarm
	default:
		return styleCold
	}
}

// RankedList renders a ranked task list, one task per block.
func RankedList(ranked []ranking.RankedTask) string {
	if len(ranked) == 0 {
		return "Nothing actionable right now.\n"
	}

	var b strings.Builder
	for i, r := range ranked {
		score := scoreStyle(r.Score).Render(fmt.Sprintf("%5.1f", r.Score))
		fmt.Fprintf(&b, "%2d. %s  %s  %s\n",
			i+1, score, styleScore.Render(r.Task.Title),
			styleLabel.Render(fmt.Sprintf("p=%.2f", r.Probability)))
		if len(r.Reasons) > 0 {
			fmt.Fprintf(&b, "      %s\n", styleReason.Render(strings.Join(r.Reasons, " · ")))
		}
	}
	return b.String()
}

// Context renders the current user context snapshot.
func Context(uc ranking.UserContext) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("current context") + "\n")
	fmt.Fprintf(&b, "  energy        %.0f/100\n", uc.Energy)
	fmt.Fprintf(&b, "  productivity  %s\n", uc.Productivity)
	fmt.Fprintf(&b, "  today         %d done, %d deferred\n", uc.CompletedToday, uc.DeferredToday)
	if uc.Calendar.Busy {
		fmt.Fprintf(&b, "  calendar      %s\n", styleWarm.Render("busy"))
	} else if uc.Calendar.NextEventIn != nil {
		fmt.Fprintf(&b, "  calendar      free, next event in %s\n", uc.Calendar.NextEventIn.Round(60e9))
	}
	return b.String()
}

// PersonalContext renders the learned-fact list.
func PersonalContext(entries []knowledge.Entry) string {
	if len(entries) == 0 {
		return "No personal context learned yet.\n"
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("personal context") + "\n")
	for _, e := range entries {
		mark := " "
		if e.UserEdited {
			mark = styleEdited.Render("✎")
		}
		fmt.Fprintf(&b, "  %s %-8s %-28s %-16s conf=%.2f seen=%d\n",
			mark, e.Category, e.Key, e.Value, e.Confidence, e.Occurrences)
	}
	return b.String()
}

// Statistics renders the stats summary.
func Statistics(s ranking.Statistics) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("statistics") + "\n")
	fmt.Fprintf(&b, "  recordings       %d\n", s.TotalRecordings)
	fmt.Fprintf(&b, "  completion rate  %.0f%%\n", s.OverallCompletionRate*100)
	if len(s.BestHours) > 0 {
		var hours []string
		for _, h := range s.BestHours {
			hours = append(hours, fmt.Sprintf("%02d:00 (%.0f%%)", h.Hour, h.Rate*100))
		}
		fmt.Fprintf(&b, "  best hours       %s\n", strings.Join(hours, ", "))
	}
	fmt.Fprintf(&b, "  learned facts    %d\n", s.PersonalContextCount)
	return b.String()
}
