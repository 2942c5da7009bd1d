package extract

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/verte-zerg/lbview/internal/model"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

func TestEntryFullRecord(t *testing.T) {
	raw := decode(t, `{
		"rank": 4,
		"userId": {"name": "Ananya", "profilePicture": "https://img/a.png"},
		"totalMarkScored": 251,
		"accuracy": 88.456,
		"subjects": [
			{"subjectId": {"title": "Physics"}, "totalMarkScored": 80},
			{"subjectId": {"title": "CHEMISTRY"}, "totalMarkScored": 90.5},
			{"subjectId": {"title": "Mathematics"}, "totalMarkScored": 80.5}
		]
	}`)
	e := Entry(raw, 9)
	want := model.Entry{
		Rank:         4,
		Name:         "Ananya",
		OverallScore: 251,
		MaxScore:     300,
		PhyScore:     80,
		ChemScore:    90.5,
		MathsScore:   80.5,
		Accuracy:     88.456,
		Avatar:       "https://img/a.png",
	}
	if e != want {
		t.Fatalf("unexpected entry:\n got %+v\nwant %+v", e, want)
	}
}

func TestEntryMissingRankUsesIndex(t *testing.T) {
	for _, fixture := range []string{`{}`, `{"rank": null}`, `{"rank": "n/a"}`, `{"rank": 0}`} {
		e := Entry(decode(t, fixture), 6)
		if e.Rank != 7 {
			t.Fatalf("%s: expected rank 7, got %d", fixture, e.Rank)
		}
	}
	if e := Entry(decode(t, `{"rank": "12"}`), 0); e.Rank != 12 {
		t.Fatalf("expected numeric string rank 12, got %d", e.Rank)
	}
}

func TestEntryDefaults(t *testing.T) {
	e := Entry(nil, 0)
	if e.Name != model.UnknownName {
		t.Fatalf("expected Unknown name, got %q", e.Name)
	}
	if e.OverallScore != 0 || e.PhyScore != 0 || e.ChemScore != 0 || e.MathsScore != 0 || e.Accuracy != 0 {
		t.Fatalf("expected zero scores, got %+v", e)
	}
	if e.IsCurrentUser {
		t.Fatalf("extracted entries must never be the current user")
	}
	if e.Rank != 1 {
		t.Fatalf("expected rank 1, got %d", e.Rank)
	}
}

func TestEntryNonNumericCoercesToZero(t *testing.T) {
	raw := decode(t, `{
		"totalMarkScored": "lots",
		"accuracy": {"value": 3},
		"subjects": [{"subjectId": {"title": "physics"}, "totalMarkScored": "NaN"}]
	}`)
	e := Entry(raw, 0)
	for _, v := range []float64{e.OverallScore, e.Accuracy, e.PhyScore} {
		if v != 0 || math.IsNaN(v) {
			t.Fatalf("expected 0, got %v in %+v", v, e)
		}
	}
}

func TestEntrySubjectFirstMatchWins(t *testing.T) {
	raw := decode(t, `{
		"subjects": [
			{"subjectId": {"title": "Maths Paper 1"}, "totalMarkScored": 40},
			{"subjectId": {"title": "Applied Mathematics"}, "totalMarkScored": 70},
			{"subjectId": {}, "totalMarkScored": 99},
			"garbage"
		]
	}`)
	e := Entry(raw, 0)
	if e.MathsScore != 40 {
		t.Fatalf("expected first maths match 40, got %v", e.MathsScore)
	}
	if e.PhyScore != 0 || e.ChemScore != 0 {
		t.Fatalf("expected unmatched subjects to be 0, got %+v", e)
	}
}

func TestEntriesKeepsOrder(t *testing.T) {
	list, _ := decode(t, `[{"userId":{"name":"a"}},{"userId":{"name":"b"}}]`).([]any)
	entries := Entries(list)
	if len(entries) != 2 || entries[0].Name != "a" || entries[1].Name != "b" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[1].Rank != 2 {
		t.Fatalf("expected positional rank 2, got %d", entries[1].Rank)
	}
}
