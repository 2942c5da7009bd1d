package listing

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/lbview/internal/model"
)

const (
	terminalWidthBackup = 80
	minNameWidth        = 8
)

var headers = []string{"Rank", "Name", "Overall", "Phy", "Chem", "Maths", "Accuracy"}

var rightAlign = map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true}

// Lines renders entries, then the pinned viewer row under a separator.
// Names are truncated so each line fits width; width <= 0 disables truncation.
func Lines(entries []model.Entry, pinned *model.Entry, width int) []string {
	all := entries
	if pinned != nil {
		all = append(append([]model.Entry(nil), entries...), *pinned)
	}
	nameWidth := 0
	if width > 0 {
		nameWidth = maxNameWidth(all, width)
	}

	rows := make([][]string, 0, len(all))
	for _, e := range all {
		rows = append(rows, row(e, nameWidth))
	}
	lines := formatTable(headers, rows, rightAlign)
	if pinned == nil || len(lines) == 0 {
		return lines
	}
	sepWidth := 0
	for _, l := range lines {
		if w := displayWidth(l); w > sepWidth {
			sepWidth = w
		}
	}
	last := lines[len(lines)-1]
	out := append(lines[:len(lines)-1:len(lines)-1], strings.Repeat("-", sepWidth), last)
	return out
}

// Write prints the table to w.
func Write(w io.Writer, entries []model.Entry, pinned *model.Entry, width int) error {
	for _, line := range Lines(entries, pinned, width) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// TerminalWidth returns the width of the terminal behind f, or a fallback.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func row(e model.Entry, nameWidth int) []string {
	name := e.Name
	if e.IsCurrentUser {
		name = "* " + name
	}
	if nameWidth > 0 {
		name = Truncate(name, nameWidth)
	}
	return []string{
		strconv.Itoa(e.Rank),
		name,
		fmt.Sprintf("%s/%s", number(e.OverallScore), number(e.MaxScore)),
		number(e.PhyScore),
		number(e.ChemScore),
		number(e.MathsScore),
		fmt.Sprintf("%.2f%%", e.Accuracy),
	}
}

// maxNameWidth leaves room for every other column within width.
func maxNameWidth(entries []model.Entry, width int) int {
	other := 0
	for i, h := range headers {
		if i == 1 {
			continue
		}
		colWidth := displayWidth(h)
		for _, e := range entries {
			if w := displayWidth(row(e, 0)[i]); w > colWidth {
				colWidth = w
			}
		}
		other += colWidth + 2
	}
	avail := width - other
	if avail < minNameWidth {
		return minNameWidth
	}
	return avail
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
