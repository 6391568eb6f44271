package present

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	criticalStyle = cellStyle.Foreground(lipgloss.Color("1")) // red
	highStyle     = cellStyle.Foreground(lipgloss.Color("3")) // yellow
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// severityCol is the index of Severity in Columns.
const severityCol = 2

// Table renders rows as a bordered terminal table.
func Table(rows []Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Columns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == severityCol && row >= 0 && row < len(rows) {
				switch domain.Rank(rows[row].Severity) {
				case domain.RankCritical:
					return criticalStyle
				case domain.RankHigh:
					return highStyle
				}
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(r.Cells()...)
	}
	return t.String()
}

// Summary is the one-line notice shown after analyzing a single file.
func Summary(result *domain.Result) string {
	if !result.HasVulnerabilities() {
		return okStyle.Render("No vulnerabilities found!")
	}
	return warnStyle.Render(fmt.Sprintf("Found %d vulnerabilities", result.Count()))
}
