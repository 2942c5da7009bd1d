// Package tui provides the Bubble Tea leaderboard interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/lbview/internal/corpus"
	"github.com/verte-zerg/lbview/internal/export"
	"github.com/verte-zerg/lbview/internal/model"
	"github.com/verte-zerg/lbview/internal/view"
)

// Options wires the model to its data sources.
type Options struct {
	Aggregator *corpus.Aggregator
	Exporter   *export.Exporter
	Composer   *view.Composer
	ExportDir  string
	Now        func() time.Time
}

type pageLoadedMsg struct {
	gen     uint64
	page    int
	entries []model.Entry
	err     error
}

type corpusLoadedMsg struct {
	gen uint64
	res corpus.Result
	err error
}

type exportDoneMsg struct {
	path   string
	rows   int
	failed []int
	err    error
}

// Model implements the Bubble Tea leaderboard UI.
type Model struct {
	agg       *corpus.Aggregator
	exporter  *export.Exporter
	composer  *view.Composer
	exportDir string
	now       func() time.Time

	ctx          context.Context
	cancel       context.CancelFunc
	pageCancel   context.CancelFunc
	pageGen      uint64
	corpusCancel context.CancelFunc
	corpusGen    uint64
	exportCancel context.CancelFunc

	keys    keyMap
	input   textinput.Model
	typing  bool
	table   table.Model
	spinner spinner.Model
	layout  view.Layout

	width  int
	height int

	confirmExport bool
	exporting     bool
	toast         string
	toastErr      bool
}

// NewModel constructs a leaderboard UI model.
func NewModel(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		agg:       opts.Aggregator,
		exporter:  opts.Exporter,
		composer:  opts.Composer,
		exportDir: opts.ExportDir,
		now:       opts.Now,
		ctx:       ctx,
		cancel:    cancel,
		keys:      defaultKeyMap(),
	}
	if m.composer == nil {
		m.composer = view.New()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.input = newQueryInput()
	m.input.SetValue(m.composer.Selection().Text)
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))
	m.table = newLeaderboardTable()
	m.refresh()
	return m
}

func newQueryInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "Search: "
	input.Placeholder = "participant name"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.run(m.composer.Start()), m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.composer.SetWidth(msg.Width)
		m.refresh()
		return m, nil
	case pageLoadedMsg:
		if msg.gen == m.pageGen && m.pageCancel != nil {
			m.pageCancel()
			m.pageCancel = nil
		}
		if m.composer.ApplyPage(msg.gen, msg.page, msg.entries, msg.err) {
			m.refresh()
		}
		return m, nil
	case corpusLoadedMsg:
		if msg.gen == m.corpusGen && m.corpusCancel != nil {
			m.corpusCancel()
			m.corpusCancel = nil
		}
		if m.composer.ApplyCorpus(msg.gen, msg.res, msg.err) {
			m.refresh()
		}
		return m, nil
	case exportDoneMsg:
		m.exporting = false
		if m.exportCancel != nil {
			m.exportCancel()
			m.exportCancel = nil
		}
		m.exportFinished(msg)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		if m.confirmExport {
			return m.updateConfirm(msg)
		}
		if m.typing {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.toast != "" {
		m.toast = ""
		m.toastErr = false
		if msg.Type == tea.KeyEsc {
			return m, nil
		}
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Search):
		m.typing = true
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Subject):
		return m, m.run(m.composer.SetSubject(nextSubject(m.composer.Selection().Subject)))
	case key.Matches(msg, m.keys.Sort):
		return m, m.run(m.composer.SetSortKey(nextSortKey(m.composer.Selection().Key)))
	case key.Matches(msg, m.keys.Direction):
		return m, m.run(m.composer.SetDirection(m.composer.Selection().Dir.Toggle()))
	case key.Matches(msg, m.keys.PrevPage):
		return m, m.gotoPage(m.composer.Page() - 1)
	case key.Matches(msg, m.keys.NextPage):
		return m, m.gotoPage(m.composer.Page() + 1)
	case key.Matches(msg, m.keys.Export):
		if !m.exporting && m.exporter != nil {
			m.confirmExport = true
		}
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Leave) {
		m.typing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, tea.Batch(cmd, m.setQuery(m.input.Value()))
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirmExport = false
		return m, m.startExport()
	case key.Matches(msg, m.keys.Cancel):
		m.confirmExport = false
	}
	return m, nil
}

func (m *Model) setQuery(text string) tea.Cmd {
	if text == m.composer.Selection().Text {
		return nil
	}
	return m.run(m.composer.SetQuery(text))
}

func (m *Model) gotoPage(page int) tea.Cmd {
	req, ok := m.composer.RequestPage(page)
	if !ok {
		return nil
	}
	cmd := m.fetchPage(req)
	m.refresh()
	return cmd
}

func (m *Model) reload() tea.Cmd {
	if m.agg != nil && m.agg.Cache() != nil {
		m.agg.Cache().Flush()
	}
	return m.run(m.composer.Reload())
}

// run starts the fetches a transition asks for and cancels requests it superseded.
func (m *Model) run(t view.Transition) tea.Cmd {
	if m.pageCancel != nil && m.pageGen != m.composer.PageGen() {
		m.pageCancel()
		m.pageCancel = nil
	}
	if m.corpusCancel != nil && m.corpusGen != m.composer.CorpusGen() {
		m.corpusCancel()
		m.corpusCancel = nil
	}
	var cmds []tea.Cmd
	if t.Page != nil {
		cmds = append(cmds, m.fetchPage(*t.Page))
	}
	if t.Corpus != nil {
		cmds = append(cmds, m.fetchCorpus(*t.Corpus))
	}
	m.refresh()
	return tea.Batch(cmds...)
}

func (m *Model) fetchPage(req view.PageRequest) tea.Cmd {
	if m.pageCancel != nil {
		m.pageCancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.pageCancel = cancel
	m.pageGen = req.Gen
	agg := m.agg
	return func() tea.Msg {
		if agg == nil {
			return pageLoadedMsg{gen: req.Gen, page: req.Page, err: fmt.Errorf("no data source configured")}
		}
		entries, err := agg.FetchPage(ctx, req.Page)
		return pageLoadedMsg{gen: req.Gen, page: req.Page, entries: entries, err: err}
	}
}

func (m *Model) fetchCorpus(req view.CorpusRequest) tea.Cmd {
	if m.corpusCancel != nil {
		m.corpusCancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.corpusCancel = cancel
	m.corpusGen = req.Gen
	agg := m.agg
	return func() tea.Msg {
		if agg == nil {
			return corpusLoadedMsg{gen: req.Gen, err: fmt.Errorf("no data source configured")}
		}
		res, err := agg.Fetch(ctx)
		return corpusLoadedMsg{gen: req.Gen, res: res, err: err}
	}
}

func (m *Model) startExport() tea.Cmd {
	if m.exporter == nil || m.exporting {
		return nil
	}
	m.exporting = true
	m.toast = ""
	ctx, cancel := context.WithCancel(m.ctx)
	m.exportCancel = cancel
	exporter := m.exporter
	q := m.composer.Selection().Query()
	now := m.now()
	dir := m.exportDir
	return func() tea.Msg {
		art, err := exporter.Build(ctx, q, now)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path, err := export.Save(dir, art)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path, rows: art.Rows, failed: art.FailedPages}
	}
}

func (m *Model) exportFinished(msg exportDoneMsg) {
	if msg.err != nil {
		m.toast = msg.err.Error()
		m.toastErr = true
		return
	}
	m.toastErr = false
	m.toast = fmt.Sprintf("Exported %d rows to %s", msg.rows, msg.path)
	if len(msg.failed) > 0 {
		m.toast += ". " + corpus.Result{FailedPages: msg.failed}.Warning()
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

// Close cancels every outstanding request.
func (m *Model) Close() {
	for _, cancel := range []context.CancelFunc{m.pageCancel, m.corpusCancel, m.exportCancel} {
		if cancel != nil {
			cancel()
		}
	}
	m.pageCancel, m.corpusCancel, m.exportCancel = nil, nil, nil
	m.cancel()
}

// refresh recomposes the layout and pushes rows into the table.
func (m *Model) refresh() {
	m.layout = m.composer.Layout()
	m.updateTable()
}

func nextSubject(s model.Subject) model.Subject {
	for i, v := range model.Subjects {
		if v == s {
			return model.Subjects[(i+1)%len(model.Subjects)]
		}
	}
	return model.SubjectAll
}

func nextSortKey(k model.SortKey) model.SortKey {
	for i, v := range model.SortKeys {
		if v == k {
			return model.SortKeys[(i+1)%len(model.SortKeys)]
		}
	}
	return model.SortByRank
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(opts Options) error {
	m := NewModel(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logErrf("tui: %v\n", err)
		return fmt.Errorf("failed to run tui: %w", err)
	}
	if strings.TrimSpace(m.toast) != "" && m.toastErr {
		logErrf("%s\n", m.toast)
	}
	return nil
}
