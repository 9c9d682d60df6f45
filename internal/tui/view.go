package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mindmesh/console/internal/console"
	"github.com/mindmesh/console/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 2).MarginRight(1)
)

func (m Model) View() string {
	if m.view == viewLogin {
		return m.viewLogin()
	}
	return m.viewDashboard()
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MindMesh Console") + "\n\n")
	b.WriteString("Sign in to your workspace\n\n")
	b.WriteString("  " + m.email.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n\n")
	b.WriteString(dimStyle.Render("enter: sign in  tab: switch field  ctrl+c: quit") + "\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

func (m Model) viewDashboard() string {
	header := titleStyle.Render("MindMesh Dashboard")
	if m.user != nil {
		name := m.user.FullName
		if name == "" {
			name = m.user.Username
		}
		header += dimStyle.Render("  —  " + name)
	}

	consolePane := paneStyle.Render(
		titleStyle.Render("Command Console") + "\n" +
			m.transcript.View() + "\n" +
			m.input.View(),
	)
	goalsPane := paneStyle.Render(m.renderGoalsOverview())

	body := lipgloss.JoinHorizontal(lipgloss.Top, consolePane, goalsPane)

	return strings.Join([]string{
		header,
		body,
		m.renderMetricCards(),
		dimStyle.Render("enter: submit  ctrl+r: refresh goals  ctrl+l: logout  ctrl+c: quit"),
		m.renderStatusLine(),
	}, "\n")
}

func (m Model) renderStatusLine() string {
	if m.statusLine == "" {
		return ""
	}
	if m.statusFail {
		return failStyle.Render(m.statusLine)
	}
	return successStyle.Render(m.statusLine)
}

func (m Model) renderTranscript() string {
	turns := m.submitter.Transcript().Turns()
	if len(turns) == 0 {
		return dimStyle.Render(
			"What would you like to accomplish?\n" +
				`Try "Plan my product launch" or "Summarize my recent emails".`)
	}

	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case console.RoleUser:
			b.WriteString(userStyle.Render("you") + "  " + t.Content + "\n")
		case console.RoleSystem:
			b.WriteString(m.spin.View() + " " + dimStyle.Render(t.Content) + "\n")
		case console.RoleAssistant:
			icon := successStyle.Render("✔")
			if t.Status == console.TurnFailed {
				icon = failStyle.Render("✘")
			}
			b.WriteString(icon + " " + t.Content + "\n")
		}
	}
	return b.String()
}

func (m Model) renderGoalsOverview() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Goals Overview") + "\n")

	if !m.haveGoals {
		b.WriteString(m.spin.View() + dimStyle.Render(" loading goals..."))
		return b.String()
	}
	if len(m.page.Items) == 0 {
		b.WriteString("No goals yet\n")
		b.WriteString(dimStyle.Render("Type a goal into the console to get started with MindMesh"))
		return b.String()
	}

	for _, g := range m.page.Items {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			Badge(string(g.Status), StatusVariant(g.Status)),
			Badge(string(g.Priority), PriorityVariant(g.Priority)),
			truncate(g.Text, 48),
		))
		meta := "autonomy " + string(g.AutonomyLevel)
		if g.DueDate != nil {
			meta += "  due " + g.DueDate.Format("Jan 2")
		}
		if g.EstimatedHours != nil {
			meta += fmt.Sprintf("  est %.1fh", *g.EstimatedHours)
		}
		b.WriteString(dimStyle.Render("  "+meta) + "\n")
	}

	// Only offered when the server holds more than what is on screen.
	if m.page.HasMore() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("view all (%d goals)", m.page.Total)))
	}
	return b.String()
}

func (m Model) renderMetricCards() string {
	cards := metricCards(m.page)
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, cardStyle.Render(dimStyle.Render(c.Title)+"\n"+c.Value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// metricCards derives the dashboard tiles from the loaded page. Totals come
// from the server envelope; per-status counts only cover what is loaded.
func metricCards(page domain.Page[domain.Goal]) []domain.MetricCard {
	var active, completed int
	var hours float64
	for _, g := range page.Items {
		switch g.Status {
		case domain.GoalActive:
			active++
		case domain.GoalCompleted:
			completed++
			if g.ActualHours != nil {
				hours += *g.ActualHours
			} else if g.EstimatedHours != nil {
				hours += *g.EstimatedHours
			}
		}
	}
	return []domain.MetricCard{
		{Title: "Total Goals", Value: fmt.Sprintf("%d", page.Total)},
		{Title: "Active", Value: fmt.Sprintf("%d", active)},
		{Title: "Completed", Value: fmt.Sprintf("%d", completed)},
		{Title: "Hours Saved", Value: fmt.Sprintf("%.1f", hours)},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
