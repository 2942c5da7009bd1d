package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/lbview/internal/listing"
	"github.com/verte-zerg/lbview/internal/model"
	"github.com/verte-zerg/lbview/internal/view"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0B050"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FBF7F"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	viewerCardStyle = cardStyle.
			BorderForeground(lipgloss.Color("#C89A3A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	pinnedStyle     = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#C89A3A"))
	pageStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0")).Padding(0, 1)
	activePageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#C89A3A")).
			Bold(true).
			Padding(0, 1)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

const (
	colRank     = 6
	colScore    = 9
	colSubject  = 6
	colAccuracy = 9
	minNameCol  = 12
	cellPadding = 1
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.confirmExport {
		return fitLines(m.renderConfirmModal(), m.width, m.height)
	}
	header := m.renderHeader()
	cards := m.renderCards()
	footer := m.renderFooter()
	pinned := m.renderPinned()

	used := lipgloss.Height(header) + lipgloss.Height(footer) + lipgloss.Height(pinned)
	if cards != "" {
		used += lipgloss.Height(cards)
	}
	bodyHeight := maxInt(1, m.height-used)
	m.setTableHeight(bodyHeight)

	parts := []string{padLines(header, m.width)}
	if cards != "" {
		parts = append(parts, padLines(cards, m.width))
	}
	parts = append(parts,
		fitLines(m.renderBody(), m.width, bodyHeight),
		padLines(pinned, m.width),
		padLines(footer, m.width),
	)
	return fitLines(strings.Join(parts, "\n"), m.width, m.height)
}

func (m *Model) renderHeader() string {
	sel := m.composer.Selection()
	q := sel.Query()
	title := titleStyle.Render("Leaderboard")
	mode := headerStyle.Render(fmt.Sprintf(" %s", m.layout.Mode))
	line1 := lipgloss.JoinHorizontal(lipgloss.Center, title, mode)

	var line2 string
	if m.typing {
		m.input.Width = maxInt(10, m.width-lipgloss.Width(m.input.Prompt)-2)
		line2 = m.input.View()
	} else {
		query := strings.TrimSpace(sel.Text)
		if query == "" {
			query = "-"
		}
		summary := fmt.Sprintf("Search: %s  Subject: %s  Sort: %s %s", query, q.Subject.Label(), q.Sort.Label(), q.Dir)
		line2 = headerStyle.Render(truncateLine(summary, m.width))
	}
	lines := []string{line1, line2}
	if m.layout.Notice != "" {
		lines = append(lines, noticeStyle.Render(truncateLine(m.layout.Notice, m.width)))
	}
	return strings.Join(lines, "\n")
}

// renderCards shows the top performers and the viewer; desktop layout only.
func (m *Model) renderCards() string {
	if !m.layout.Desktop || len(m.layout.Cards) == 0 {
		return ""
	}
	count := len(m.layout.Cards)
	cardWidth := maxInt(20, m.width/count-2)
	cards := make([]string, 0, count)
	for _, e := range m.layout.Cards {
		cards = append(cards, performerCard(e, cardWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func performerCard(e model.Entry, width int) string {
	label := "#" + strconv.Itoa(e.Rank)
	style := cardStyle
	if e.IsCurrentUser {
		label = "You  #" + strconv.Itoa(e.Rank)
		style = viewerCardStyle
	}
	inner := maxInt(1, width-4)
	content := strings.Join([]string{
		cardTitleStyle.Render(label),
		cardValueStyle.Render(truncateLine(e.Name, inner)),
		fmt.Sprintf("%s/%s", formatScore(e.OverallScore), formatScore(e.MaxScore)),
		cardTitleStyle.Render(fmt.Sprintf("P %s  C %s  M %s", formatScore(e.PhyScore), formatScore(e.ChemScore), formatScore(e.MathsScore))),
		cardTitleStyle.Render(fmt.Sprintf("Acc %.2f%%", e.Accuracy)),
	}, "\n")
	return style.Width(width - 2).Render(content)
}

func (m *Model) renderBody() string {
	switch {
	case m.layout.Loading:
		return m.spinner.View() + " Loading leaderboard..."
	case m.layout.Err != nil:
		return errorStyle.Render(fmt.Sprintf("Failed to load page %d: %v", m.layout.Page, m.layout.Err)) +
			"\n" + headerStyle.Render("Press r to retry.")
	case m.layout.Empty:
		return "No results to display."
	}
	return tableMutedStyle.Render(m.table.View())
}

func (m *Model) renderPinned() string {
	row := entryRow(m.layout.Pinned)
	cells := make([]string, len(row))
	for i, col := range m.table.Columns() {
		if i >= len(row) {
			break
		}
		cells[i] = padRight(truncateLine(row[i], col.Width), col.Width+cellPadding)
	}
	return pinnedStyle.Render(strings.TrimRight(strings.Join(cells, ""), " "))
}

func (m *Model) renderFooter() string {
	var lines []string
	if m.layout.ShowPagination {
		lines = append(lines, renderPagination(m.layout.Page, m.layout.TotalPages))
	} else {
		lines = append(lines, headerStyle.Render(fmt.Sprintf("Showing %d search results", m.layout.ResultCount)))
	}
	help := m.keys.help(m.layout.Mode == view.Search)
	if m.typing {
		help = "type to search  esc/enter: done  ctrl+c: quit"
	}
	lines = append(lines, headerStyle.Render(truncateLine(help, m.width)))
	switch {
	case m.exporting:
		lines = append(lines, m.spinner.View()+" Exporting...")
	case m.toast != "" && m.toastErr:
		lines = append(lines, errorStyle.Render(truncateLine("Export failed. "+m.toast+" (esc to dismiss)", m.width)))
	case m.toast != "":
		lines = append(lines, successStyle.Render(truncateLine(m.toast, m.width)))
	}
	return strings.Join(lines, "\n")
}

func renderPagination(current, total int) string {
	parts := []string{pageStyle.Render("<")}
	for _, p := range view.VisiblePages(current, total) {
		switch {
		case p == view.Ellipsis:
			parts = append(parts, pageStyle.Render("..."))
		case p == current:
			parts = append(parts, activePageStyle.Render(strconv.Itoa(p)))
		default:
			parts = append(parts, pageStyle.Render(strconv.Itoa(p)))
		}
	}
	parts = append(parts, pageStyle.Render(">"))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderConfirmModal() string {
	title := cardValueStyle.Render("Export all filtered results?")
	body := []string{
		title,
		"",
		"This will export a CSV of all pages with the current",
		"search, subject and sort applied.",
		"",
		headerStyle.Render("Enter/y to export / Esc/n to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func newLeaderboardTable() table.Model {
	t := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(1),
	)
	t.SetStyles(leaderboardTableStyles())
	return t
}

func tableColumns(width int) []table.Column {
	fixed := colRank + colScore + 3*colSubject + colAccuracy + 7*cellPadding
	nameWidth := maxInt(minNameCol, width-fixed)
	return []table.Column{
		{Title: "Rank", Width: colRank},
		{Title: "Name", Width: nameWidth},
		{Title: "Overall", Width: colScore},
		{Title: "Phy", Width: colSubject},
		{Title: "Chem", Width: colSubject},
		{Title: "Maths", Width: colSubject},
		{Title: "Accuracy", Width: colAccuracy},
	}
}

func leaderboardTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, cellPadding).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, cellPadding).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) updateTable() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.table.SetColumns(tableColumns(width))
	rows := make([]table.Row, 0, len(m.layout.Rows))
	for _, e := range m.layout.Rows {
		rows = append(rows, entryRow(e))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(maxInt(0, len(rows)-1))
	}
	m.table.SetWidth(width)
}

func (m *Model) setTableHeight(bodyHeight int) {
	m.table.SetHeight(maxInt(1, bodyHeight))
	viewHeight := lipgloss.Height(m.table.View())
	if viewHeight > bodyHeight {
		m.table.SetHeight(maxInt(1, m.table.Height()-(viewHeight-bodyHeight)))
	}
}

func entryRow(e model.Entry) table.Row {
	return table.Row{
		strconv.Itoa(e.Rank),
		e.Name,
		fmt.Sprintf("%s/%s", formatScore(e.OverallScore), formatScore(e.MaxScore)),
		formatScore(e.PhyScore),
		formatScore(e.ChemScore),
		formatScore(e.MathsScore),
		fmt.Sprintf("%.2f%%", e.Accuracy),
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 70))
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	return listing.Truncate(s, width)
}
