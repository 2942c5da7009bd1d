package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/lbview/internal/api"
	"github.com/verte-zerg/lbview/internal/corpus"
	"github.com/verte-zerg/lbview/internal/export"
	"github.com/verte-zerg/lbview/internal/fake"
	"github.com/verte-zerg/lbview/internal/model"
	"github.com/verte-zerg/lbview/internal/view"
)

var testNow = time.Date(2024, 5, 1, 10, 20, 30, 123_000_000, time.UTC)

func newTestModel(t *testing.T, cfg fake.Config, width int) (*Model, string) {
	t.Helper()
	if cfg.Records == 0 {
		cfg.Records = 60
	}
	client := api.New("http://demo.invalid/leaderboard", api.WithTransport(fake.NewTransport(cfg)))
	agg := corpus.New(client,
		corpus.WithPages(3),
		corpus.WithLimit(20),
		corpus.WithCache(corpus.NewPageCache()),
	)
	dir := t.TempDir()
	m := NewModel(Options{
		Aggregator: agg,
		Exporter:   export.New(agg),
		Composer:   view.New(view.WithTotalPages(3)),
		ExportDir:  dir,
		Now:        func() time.Time { return testNow },
	})
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: width, Height: 40})
	return m, dir
}

// drain runs cmd and feeds data messages back into the model.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatalf("too many commands")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case pageLoadedMsg, corpusLoadedMsg, exportDoneMsg:
			_, follow := m.Update(msg)
			queue = append(queue, follow)
		}
	}
}

func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestInitLoadsFirstPage(t *testing.T) {
	m, _ := newTestModel(t, fake.Config{}, 130)
	drain(t, m, m.Init())

	if m.layout.Loading || m.layout.Err != nil {
		t.Fatalf("expected loaded layout, got loading=%v err=%v", m.layout.Loading, m.layout.Err)
	}
	if len(m.layout.Rows) != 17 || m.layout.Rows[0].Rank != 4 {
		t.Fatalf("expected ranks 4-20 on desktop, got %d rows", len(m.layout.Rows))
	}
	out := m.View()
	for _, want := range []string{"Leaderboard", "Prem Raj Kumar (You)", "Accuracy"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
	if got := len(strings.Split(out, "\n")); got != 40 {
		t.Fatalf("expected view to fill 40 lines, got %d", got)
	}
}

func TestNarrowWidthKeepsTopRowsInTable(t *testing.T) {
	m, _ := newTestModel(t, fake.Config{}, 80)
	drain(t, m, m.Init())
	if len(m.layout.Rows) != 20 || m.layout.Rows[0].Rank != 1 {
		t.Fatalf("expected full first page, got %d rows", len(m.layout.Rows))
	}
	if m.renderCards() != "" {
		t.Fatalf("expected cards hidden below the desktop breakpoint")
	}
}

func TestPageNavigation(t *testing.T) {
	m, _ := newTestModel(t, fake.Config{}, 130)
	drain(t, m, m.Init())
	top := append([]model.Entry(nil), m.layout.Top...)

	drain(t, m, press(m, "right"))
	if m.composer.Page() != 2 || len(m.layout.Rows) != 20 || m.layout.Rows[0].Rank != 21 {
		t.Fatalf("expected page 2 starting at rank 21, got page %d", m.composer.Page())
	}
	for i := range top {
		if !m.layout.Top[i].SameParticipant(top[i]) {
			t.Fatalf("top performers changed on page change")
		}
	}
	drain(t, m, press(m, "h"))
	if m.composer.Page() != 1 {
		t.Fatalf("expected page 1, got %d", m.composer.Page())
	}
	if cmd := press(m, "left"); cmd != nil {
		t.Fatalf("expected no fetch before page 1")
	}
}

func TestStalePageResponseDropped(t *testing.T) {
	m, _ := newTestModel(t, fake.Config{}, 130)
	drain(t, m, m.Init())

	first := press(m, "right")
	second := press(m, "right")
	if first == nil || second == nil {
		t.Fatalf("expected page fetches")
	}
	late := first()
	m.Update(second())
	m.Update(late)

	if m.composer.Page() != 3 || m.layout.Err != nil {
		t.Fatalf("expected page 3 without error, got page %d err %v", m.composer.Page(), m.layout.Err)
	}
	if m.layout.Rows[0].Rank != 41 {
		t.Fatalf("expected page 3 rows, got rank %d", m.layout.Rows[0].Rank)
	}
}

func TestSearchAcrossCorpus(t *testing.T) {
	m, _ := newTestModel(t, fake.Config{}, 130)
	drain(t, m, m.Init())
	needle := strings.ToLower(strings.Fields(m.layout.Rows[len(m.layout.Rows)-1].Name)[0])

	drain(t, m, m.setQuery(needle))
	if m.layout.Mode != view.Search || m.layout.ResultCount == 0 {
		t.Fatalf("expected search results for %q", needle)
	}
	for _, e := range m.layout.Rows {
		if !strings.Contains(strings.ToLower(e.Name), needle) {
			t.Fatalf("result %q does not match %q", e.Name, needle)
		}
	}
	if !strings.Contains(m.View(), "search results") {
		t.Fatalf("expected result count in footer")
	}

	if cmd := m.setQuery(""); cmd != nil {
		t.Fatalf("expected leaving search to reuse the first page")
	}
	if m.layout.Mode != view.Browse || m.composer.Page() != 1 || len(m.layout.Rows) != 17 {
		t.Fatalf("expected browse page 1 after clearing search")
	}
}

func TestQueryInputFocus(t *testing.T) {
	m, _ := newTestModel(t, fake.Config{}, 130)
	drain(t, m, m.Init())

	press(m, "/")
	if !m.typing {
		t.Fatalf("expected query input focus")
	}
	press(m, "q")
	if m.composer.Mode() != view.Search || m.composer.Selection().Text != "q" {
		t.Fatalf("expected typed query, got %q", m.composer.Selection().Text)
	}
	if m.ctx.Err() != nil {
		t.Fatalf("q inside the input must not quit")
	}
	press(m, "esc")
	if m.typing {
		t.Fatalf("expected esc to leave the input")
	}
}

func TestSubjectCycleResetsPage(t *testing.T) {
	m, _ := newTestModel(t, fake.Config{}, 130)
	drain(t, m, m.Init())
	drain(t, m, press(m, "right"))

	drain(t, m, press(m, "s"))
	sel := m.composer.Selection()
	if sel.Subject != model.SubjectPhy || m.composer.Page() != 1 {
		t.Fatalf("expected physics on page 1, got %s page %d", sel.Subject, m.composer.Page())
	}
	for i := 1; i < len(m.layout.Rows); i++ {
		if m.layout.Rows[i-1].PhyScore > m.layout.Rows[i].PhyScore {
			t.Fatalf("rows not sorted by physics ascending")
		}
	}
	press(m, "d")
	if m.composer.Selection().Dir != model.Desc {
		t.Fatalf("expected direction toggle")
	}
}

func TestPageErrorShown(t *testing.T) {
	m, _ := newTestModel(t, fake.Config{FailPages: []int{1}}, 130)
	drain(t, m, m.Init())
	if m.layout.Err == nil {
		t.Fatalf("expected page error")
	}
	if !strings.Contains(m.View(), "Failed to load page 1") {
		t.Fatalf("expected error view")
	}
}

func TestExportConfirmAndSave(t *testing.T) {
	m, dir := newTestModel(t, fake.Config{FailPages: []int{2}}, 130)
	drain(t, m, m.Init())

	press(m, "e")
	if !m.confirmExport || !strings.Contains(m.View(), "Export all filtered results?") {
		t.Fatalf("expected confirmation modal")
	}
	press(m, "n")
	if m.confirmExport {
		t.Fatalf("expected modal closed")
	}

	press(m, "e")
	drain(t, m, press(m, "y"))
	if m.exporting || m.toastErr {
		t.Fatalf("expected successful export, got %q", m.toast)
	}
	if !strings.Contains(m.toast, "Exported 40 rows") || !strings.Contains(m.toast, "failed pages: 2") {
		t.Fatalf("unexpected toast %q", m.toast)
	}
	data, err := os.ReadFile(filepath.Join(dir, export.Filename(testNow)))
	if err != nil {
		t.Fatalf("expected export file: %v", err)
	}
	if !strings.HasPrefix(string(data), "Rank,Name,Overall Score") {
		t.Fatalf("unexpected export contents")
	}

	press(m, "esc")
	if m.toast != "" {
		t.Fatalf("expected toast dismissed")
	}
}

func TestQuitCancelsRequests(t *testing.T) {
	m, _ := newTestModel(t, fake.Config{}, 130)
	_ = m.Init()
	if m.pageCancel == nil {
		t.Fatalf("expected in-flight page request")
	}
	if cmd := press(m, "q"); cmd == nil {
		t.Fatalf("expected quit command")
	}
	if m.ctx.Err() == nil || m.pageCancel != nil {
		t.Fatalf("expected requests canceled on quit")
	}
}
