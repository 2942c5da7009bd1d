// Package view composes leaderboard layouts for browse and search modes.
package view

import (
	"github.com/verte-zerg/lbview/internal/corpus"
	"github.com/verte-zerg/lbview/internal/model"
	"github.com/verte-zerg/lbview/internal/pipeline"
)

const (
	// TopCount is the number of top performer cards.
	TopCount = 3
	// DefaultDesktopWidth is the terminal width at which cards are shown beside the table.
	DefaultDesktopWidth = 120
)

// Mode is the composer mode.
type Mode int

// Modes.
const (
	Browse Mode = iota
	Search
)

func (m Mode) String() string {
	if m == Search {
		return "search"
	}
	return "browse"
}

// PageRequest asks the host to fetch a page. Gen identifies the request.
type PageRequest struct {
	Page int
	Gen  uint64
}

// CorpusRequest asks the host to run the aggregator. Gen identifies the request.
type CorpusRequest struct {
	Gen uint64
}

// Transition is the outcome of a control change.
type Transition struct {
	Page   *PageRequest
	Corpus *CorpusRequest
}

// Layout is everything the renderer needs for one frame.
type Layout struct {
	Mode           Mode
	Loading        bool
	Err            error
	Notice         string
	Top            []model.Entry
	Cards          []model.Entry
	Rows           []model.Entry
	Pinned         model.Entry
	Page           int
	TotalPages     int
	ShowPagination bool
	ResultCount    int
	Empty          bool
	Desktop        bool
}

// Composer holds the view state. It is not safe for concurrent use; the UI loop owns it.
type Composer struct {
	selection    model.Selection
	viewer       model.Viewer
	page         int
	totalPages   int
	desktopWidth int
	desktop      bool

	firstPage  []model.Entry
	hasFirst   bool
	current    []model.Entry
	hasCurrent bool
	corpus     corpus.Result
	hasCorpus  bool

	pageGen   uint64
	corpusGen uint64

	pageLoading   bool
	corpusLoading bool
	pageErr       error
	corpusErr     error
}

// Option configures a Composer.
type Option func(*Composer)

// WithViewer sets the pinned viewer.
func WithViewer(v model.Viewer) Option {
	return func(c *Composer) {
		c.viewer = v
	}
}

// WithTotalPages sets the page count shown by pagination.
func WithTotalPages(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.totalPages = n
		}
	}
}

// WithDesktopWidth sets the breakpoint width.
func WithDesktopWidth(w int) Option {
	return func(c *Composer) {
		if w > 0 {
			c.desktopWidth = w
		}
	}
}

// WithSelection sets the initial controls.
func WithSelection(s model.Selection) Option {
	return func(c *Composer) {
		c.selection = s
	}
}

// New returns a composer on page 1 in browse mode.
func New(opts ...Option) *Composer {
	c := &Composer{
		selection:    model.DefaultSelection(),
		viewer:       model.DefaultViewer(),
		page:         1,
		totalPages:   corpus.DefaultPages,
		desktopWidth: DefaultDesktopWidth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start returns the requests needed for the first frame.
func (c *Composer) Start() Transition {
	t := Transition{Page: c.requestPage(c.page)}
	if c.Mode() == Search {
		t.Corpus = c.requestCorpus()
	}
	return t
}

// Mode reports the current mode.
func (c *Composer) Mode() Mode {
	if c.selection.Searching() {
		return Search
	}
	return Browse
}

// Selection returns the current controls.
func (c *Composer) Selection() model.Selection {
	return c.selection
}

// Page returns the current browse page.
func (c *Composer) Page() int {
	return c.page
}

// Desktop reports whether the desktop layout is active.
func (c *Composer) Desktop() bool {
	return c.desktop
}

// SetWidth re-evaluates the desktop breakpoint.
func (c *Composer) SetWidth(width int) {
	c.desktop = width >= c.desktopWidth
}

// SetQuery changes the search text. Entering search mode requests the corpus;
// leaving it returns to page 1 using the cached first page.
func (c *Composer) SetQuery(text string) Transition {
	wasSearching := c.Mode() == Search
	c.selection.Text = text
	searching := c.Mode() == Search
	switch {
	case searching && !wasSearching:
		c.cancelPage()
		return Transition{Corpus: c.requestCorpus()}
	case !searching && wasSearching:
		c.cancelCorpus()
		return c.resetToFirstPage()
	}
	return Transition{}
}

// SetSubject changes the subject selector.
func (c *Composer) SetSubject(s model.Subject) Transition {
	c.selection.Subject = s
	return c.controlsChanged()
}

// SetSortKey changes the general sort key.
func (c *Composer) SetSortKey(k model.SortKey) Transition {
	c.selection.Key = k
	return c.controlsChanged()
}

// SetDirection changes the sort direction.
func (c *Composer) SetDirection(d model.Direction) Transition {
	c.selection.Dir = d
	return c.controlsChanged()
}

// RequestPage moves to another page. Only honored in browse mode.
func (c *Composer) RequestPage(page int) (PageRequest, bool) {
	if c.Mode() != Browse {
		return PageRequest{}, false
	}
	if page < 1 {
		page = 1
	}
	if page > c.totalPages {
		page = c.totalPages
	}
	if page == c.page && c.hasCurrent && c.pageErr == nil {
		return PageRequest{}, false
	}
	c.page = page
	return *c.requestPage(page), true
}

// Reload drops page data and asks for fresh copies of what is on screen.
func (c *Composer) Reload() Transition {
	c.hasCurrent = false
	if c.page == 1 {
		c.hasFirst = false
	}
	t := Transition{}
	if c.Mode() == Search {
		c.hasCorpus = false
		t.Corpus = c.requestCorpus()
		return t
	}
	t.Page = c.requestPage(c.page)
	return t
}

// ApplyPage stores a fetched page. Stale results are dropped and reported as false.
func (c *Composer) ApplyPage(gen uint64, page int, entries []model.Entry, err error) bool {
	if gen != c.pageGen {
		return false
	}
	c.pageLoading = false
	if err != nil {
		c.pageErr = err
		return true
	}
	c.pageErr = nil
	if page == 1 {
		c.firstPage = append([]model.Entry(nil), entries...)
		c.hasFirst = true
	}
	if page == c.page {
		c.current = append([]model.Entry(nil), entries...)
		c.hasCurrent = true
	}
	return true
}

// ApplyCorpus stores an aggregation result. Stale results are dropped and reported as false.
func (c *Composer) ApplyCorpus(gen uint64, res corpus.Result, err error) bool {
	if gen != c.corpusGen {
		return false
	}
	c.corpusLoading = false
	if err != nil {
		c.corpusErr = err
		return true
	}
	c.corpusErr = nil
	c.corpus = res
	c.hasCorpus = true
	return true
}

// PageGen returns the generation of the latest page request.
func (c *Composer) PageGen() uint64 {
	return c.pageGen
}

// CorpusGen returns the generation of the latest corpus request.
func (c *Composer) CorpusGen() uint64 {
	return c.corpusGen
}

// Layout composes the current frame.
func (c *Composer) Layout() Layout {
	pinned := c.viewer.Entry()
	l := Layout{
		Mode:       c.Mode(),
		Pinned:     pinned,
		Page:       c.page,
		TotalPages: c.totalPages,
		Desktop:    c.desktop,
	}
	q := c.selection.Query()

	if l.Mode == Search {
		l.Loading = c.corpusLoading && !c.hasCorpus
		if c.corpusErr != nil {
			l.Notice = "Search failed: " + c.corpusErr.Error()
		} else if c.hasCorpus {
			l.Notice = c.corpus.Warning()
		}
		rows := pipeline.Apply(c.corpus.Entries, q)
		l.Top = pipeline.Top(rows, TopCount)
		l.Rows = rows
		l.ResultCount = len(rows)
	} else {
		l.ShowPagination = true
		l.Loading = c.pageLoading && !c.hasCurrent
		l.Err = c.pageErr
		l.Top = pipeline.Top(c.firstPage, TopCount)
		rows := pipeline.Apply(c.current, q)
		if c.page == 1 && c.desktop {
			rows = elide(rows, l.Top)
		}
		l.Rows = rows
		l.ResultCount = len(rows)
	}

	l.Cards = append(append([]model.Entry(nil), l.Top...), pinned)
	l.Empty = !l.Loading && l.Err == nil && len(l.Rows) == 0
	return l
}

func (c *Composer) controlsChanged() Transition {
	if c.Mode() == Search {
		return Transition{}
	}
	return c.resetToFirstPage()
}

func (c *Composer) resetToFirstPage() Transition {
	if c.page == 1 && c.hasCurrent {
		return Transition{}
	}
	c.page = 1
	if c.hasFirst {
		c.cancelPage()
		c.current = append([]model.Entry(nil), c.firstPage...)
		c.hasCurrent = true
		c.pageErr = nil
		return Transition{}
	}
	return Transition{Page: c.requestPage(1)}
}

func (c *Composer) requestPage(page int) *PageRequest {
	c.pageGen++
	c.pageLoading = true
	c.pageErr = nil
	if page == 1 && c.hasFirst {
		c.current = append([]model.Entry(nil), c.firstPage...)
		c.hasCurrent = true
	} else {
		c.current = nil
		c.hasCurrent = false
	}
	return &PageRequest{Page: page, Gen: c.pageGen}
}

func (c *Composer) requestCorpus() *CorpusRequest {
	c.corpusGen++
	c.corpusLoading = true
	c.corpusErr = nil
	return &CorpusRequest{Gen: c.corpusGen}
}

// cancelPage invalidates any in-flight page request.
func (c *Composer) cancelPage() {
	c.pageGen++
	c.pageLoading = false
}

func (c *Composer) cancelCorpus() {
	c.corpusGen++
	c.corpusLoading = false
}

func elide(rows, shown []model.Entry) []model.Entry {
	if len(shown) == 0 {
		return rows
	}
	out := make([]model.Entry, 0, len(rows))
	for _, r := range rows {
		dup := false
		for _, s := range shown {
			if r.SameParticipant(s) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}
