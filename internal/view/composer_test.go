package view

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/verte-zerg/lbview/internal/corpus"
	"github.com/verte-zerg/lbview/internal/model"
)

func page(n, size int) []model.Entry {
	out := make([]model.Entry, size)
	for i := range out {
		rank := (n-1)*size + i + 1
		out[i] = model.Entry{
			Rank:         rank,
			Name:         fmt.Sprintf("user-%d", rank),
			OverallScore: float64(300 - rank),
			ChemScore:    float64(rank % 7),
			MaxScore:     model.DefaultMaxScore,
		}
	}
	return out
}

func loadFirst(t *testing.T, c *Composer) {
	t.Helper()
	tr := c.Start()
	if tr.Page == nil || tr.Page.Page != 1 {
		t.Fatalf("expected initial page 1 request, got %+v", tr)
	}
	if !c.ApplyPage(tr.Page.Gen, 1, page(1, 100), nil) {
		t.Fatalf("initial page rejected")
	}
}

func TestBrowseDesktopElidesTopPerformers(t *testing.T) {
	c := New()
	c.SetWidth(DefaultDesktopWidth)
	loadFirst(t, c)

	l := c.Layout()
	if l.Mode != Browse || !l.ShowPagination {
		t.Fatalf("expected browse layout with pagination")
	}
	if len(l.Rows) != 97 || l.Rows[0].Rank != 4 || l.Rows[96].Rank != 100 {
		t.Fatalf("expected ranks 4-100, got %d rows starting at %d", len(l.Rows), l.Rows[0].Rank)
	}
	if len(l.Cards) != 4 {
		t.Fatalf("expected 3 top cards plus viewer, got %d", len(l.Cards))
	}
	for i := 0; i < 3; i++ {
		if l.Cards[i].Rank != i+1 {
			t.Fatalf("unexpected card %d: %+v", i, l.Cards[i])
		}
	}
	if !l.Cards[3].IsCurrentUser || l.Cards[3].Rank != 73 {
		t.Fatalf("expected pinned viewer card, got %+v", l.Cards[3])
	}
	if !l.Pinned.IsCurrentUser {
		t.Fatalf("expected pinned viewer row")
	}
	for _, r := range l.Rows {
		if r.IsCurrentUser {
			t.Fatalf("viewer leaked into table rows")
		}
	}
}

func TestBrowseNarrowKeepsAllRows(t *testing.T) {
	c := New()
	c.SetWidth(80)
	loadFirst(t, c)
	if got := len(c.Layout().Rows); got != 100 {
		t.Fatalf("expected 100 rows on narrow layout, got %d", got)
	}
	c.SetWidth(200)
	if got := len(c.Layout().Rows); got != 97 {
		t.Fatalf("expected elision after resize, got %d", got)
	}
}

func TestTopPerformersStableAcrossPages(t *testing.T) {
	c := New()
	loadFirst(t, c)
	before := c.Layout().Top

	req, ok := c.RequestPage(4)
	if !ok || req.Page != 4 {
		t.Fatalf("expected page 4 request, got %+v %v", req, ok)
	}
	c.ApplyPage(req.Gen, 4, page(4, 100), nil)
	l := c.Layout()
	if !reflect.DeepEqual(before, l.Top) {
		t.Fatalf("top performers changed with page")
	}
	if l.Rows[0].Rank != 301 {
		t.Fatalf("expected page 4 rows, got rank %d", l.Rows[0].Rank)
	}
}

func TestStalePageResponseDropped(t *testing.T) {
	c := New()
	loadFirst(t, c)
	first, _ := c.RequestPage(2)
	second, _ := c.RequestPage(3)

	if c.ApplyPage(first.Gen, 2, page(2, 100), nil) {
		t.Fatalf("stale page 2 response was applied")
	}
	if !c.ApplyPage(second.Gen, 3, page(3, 100), nil) {
		t.Fatalf("current page 3 response was rejected")
	}
	if got := c.Layout().Rows[0].Rank; got != 201 {
		t.Fatalf("expected page 3 rows, got rank %d", got)
	}
}

func TestSearchModeUsesCorpus(t *testing.T) {
	c := New()
	loadFirst(t, c)

	tr := c.SetQuery("user-1")
	if tr.Corpus == nil {
		t.Fatalf("expected corpus request on entering search")
	}
	if c.Layout().Loading != true {
		t.Fatalf("expected loading while corpus is outstanding")
	}
	all := append(page(1, 100), page(2, 100)...)
	c.ApplyCorpus(tr.Corpus.Gen, corpus.Result{Entries: all, FailedPages: []int{3}}, nil)

	l := c.Layout()
	if l.Mode != Search || l.ShowPagination {
		t.Fatalf("expected search layout without pagination")
	}
	// user-1, user-10..19, user-100..199
	if l.ResultCount != 111 || len(l.Rows) != 111 {
		t.Fatalf("expected 111 results, got %d", l.ResultCount)
	}
	if len(l.Top) != 3 || l.Top[0].Rank != 1 || l.Top[1].Rank != 10 {
		t.Fatalf("unexpected search top: %+v", l.Top)
	}
	if l.Notice == "" {
		t.Fatalf("expected partial result notice")
	}

	if _, ok := c.RequestPage(2); ok {
		t.Fatalf("page change honored in search mode")
	}
	if tr := c.SetQuery("user-19"); tr.Corpus != nil || tr.Page != nil {
		t.Fatalf("refining a search must not refetch: %+v", tr)
	}
}

func TestSearchNoMatch(t *testing.T) {
	c := New()
	loadFirst(t, c)
	tr := c.SetQuery("zzzznomatch")
	c.ApplyCorpus(tr.Corpus.Gen, corpus.Result{Entries: page(1, 100)}, nil)
	l := c.Layout()
	if !l.Empty || l.ResultCount != 0 || len(l.Rows) != 0 {
		t.Fatalf("expected empty result, got %+v", l)
	}
}

func TestLeavingSearchReusesFirstPage(t *testing.T) {
	c := New()
	loadFirst(t, c)
	req, _ := c.RequestPage(5)
	c.ApplyPage(req.Gen, 5, page(5, 100), nil)

	tr := c.SetQuery("abc")
	staleGen := tr.Corpus.Gen
	tr = c.SetQuery("  ")
	if tr.Page != nil || tr.Corpus != nil {
		t.Fatalf("expected no refetch when leaving search, got %+v", tr)
	}
	if c.ApplyCorpus(staleGen, corpus.Result{}, nil) {
		t.Fatalf("corpus result applied after leaving search")
	}
	l := c.Layout()
	if l.Page != 1 || l.Rows[0].Rank != 1 {
		t.Fatalf("expected page 1 snapshot, got page %d", l.Page)
	}
}

func TestSubjectChangeResetsToFirstPage(t *testing.T) {
	c := New()
	loadFirst(t, c)
	req, _ := c.RequestPage(2)
	c.ApplyPage(req.Gen, 2, page(2, 100), nil)

	tr := c.SetSubject(model.SubjectChem)
	if tr.Page != nil {
		t.Fatalf("expected snapshot reuse, got %+v", tr)
	}
	c.SetDirection(model.Desc)
	l := c.Layout()
	if l.Page != 1 {
		t.Fatalf("expected page 1, got %d", l.Page)
	}
	for i, r := range l.Rows {
		if r.ChemScore <= 0 {
			t.Fatalf("row without chem score: %+v", r)
		}
		if i > 0 && l.Rows[i-1].ChemScore < r.ChemScore {
			t.Fatalf("chem scores not non-increasing")
		}
	}
}

func TestPageErrorBlocksTable(t *testing.T) {
	c := New()
	tr := c.Start()
	c.ApplyPage(tr.Page.Gen, 1, nil, errors.New("boom"))
	l := c.Layout()
	if l.Err == nil || l.Empty {
		t.Fatalf("expected error layout, got %+v", l)
	}
	req, ok := c.RequestPage(1)
	if !ok {
		t.Fatalf("expected retry of errored page to be honored")
	}
	c.ApplyPage(req.Gen, 1, page(1, 10), nil)
	if c.Layout().Err != nil {
		t.Fatalf("expected error cleared after successful retry")
	}
}

func TestVisiblePages(t *testing.T) {
	cases := []struct {
		current, total int
		want           []int
	}{
		{1, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, Ellipsis, 10}},
		{9, 10, []int{1, Ellipsis, 8, 9, 10}},
		{5, 10, []int{1, Ellipsis, 5, 6, Ellipsis, 10}},
	}
	for _, tc := range cases {
		if got := VisiblePages(tc.current, tc.total); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("VisiblePages(%d, %d) = %v, want %v", tc.current, tc.total, got, tc.want)
		}
	}
}
