// Package export renders leaderboard entries as CSV artifacts.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/lbview/internal/corpus"
	"github.com/verte-zerg/lbview/internal/model"
	"github.com/verte-zerg/lbview/internal/pipeline"
)

// Header is the fixed column row.
var Header = []string{
	"Rank",
	"Name",
	"Overall Score",
	"Max Score",
	"Physics",
	"Chemistry",
	"Maths",
	"Accuracy (%)",
}

// Error reports a failed export. No file is produced when it is returned.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export failed: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Source yields the corpus to export.
type Source interface {
	Fetch(ctx context.Context) (corpus.Result, error)
}

// Artifact is a rendered export.
type Artifact struct {
	Name        string
	Data        []byte
	Rows        int
	FailedPages []int
}

// Exporter builds CSV exports over the full corpus.
type Exporter struct {
	source Source
}

// New returns an Exporter reading from source.
func New(source Source) *Exporter {
	return &Exporter{source: source}
}

// Build aggregates the corpus, applies q and renders the CSV.
func (x *Exporter) Build(ctx context.Context, q model.Query, now time.Time) (Artifact, error) {
	res, err := x.source.Fetch(ctx)
	if err != nil {
		return Artifact{}, &Error{Op: "aggregate", Err: err}
	}
	rows := pipeline.Apply(res.Entries, q)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return Artifact{}, &Error{Op: "render", Err: err}
	}
	return Artifact{
		Name:        Filename(now),
		Data:        buf.Bytes(),
		Rows:        len(rows),
		FailedPages: res.FailedPages,
	}, nil
}

// WriteCSV writes the header and one row per entry.
func WriteCSV(w io.Writer, entries []model.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(Record(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record formats one entry as CSV fields.
func Record(e model.Entry) []string {
	return []string{
		strconv.Itoa(e.Rank),
		e.Name,
		formatNumber(e.OverallScore),
		formatNumber(e.MaxScore),
		formatNumber(e.PhyScore),
		formatNumber(e.ChemScore),
		formatNumber(e.MathsScore),
		strconv.FormatFloat(e.Accuracy, 'f', 2, 64),
	}
}

// Filename names an export taken at now.
func Filename(now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "leaderboard-export-" + ts + ".csv"
}

// Save writes the artifact into dir atomically and returns its path.
func Save(dir string, a Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &Error{Op: "save", Err: fmt.Errorf("failed to create export dir: %w", err)}
	}
	path := filepath.Join(dir, a.Name)
	tmpFile, err := os.CreateTemp(dir, "leaderboard-export-*.tmp")
	if err != nil {
		return "", &Error{Op: "save", Err: fmt.Errorf("failed to create temp file: %w", err)}
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(a.Data); err != nil {
		return "", &Error{Op: "save", Err: fmt.Errorf("failed to write export: %w", err)}
	}
	if err := tmpFile.Close(); err != nil {
		return "", &Error{Op: "save", Err: fmt.Errorf("failed to close export: %w", err)}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", &Error{Op: "save", Err: fmt.Errorf("failed to move export into place: %w", err)}
	}
	return path, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
