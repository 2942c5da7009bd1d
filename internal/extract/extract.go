// Package extract normalizes raw leaderboard records into entries.
package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/lbview/internal/model"
)

// Substrings matched against subject titles, case-insensitively.
const (
	physicsLabel   = "phys"
	chemistryLabel = "chem"
	mathsLabel     = "math"
)

// Entries maps every record of a page to an entry.
func Entries(records []any) []model.Entry {
	out := make([]model.Entry, 0, len(records))
	for i, rec := range records {
		out = append(out, Entry(rec, i))
	}
	return out
}

// Entry converts one decoded record. index is the record's position within its page.
// Missing or malformed fields fall back to defaults; it never fails.
func Entry(raw any, index int) model.Entry {
	rec, _ := raw.(map[string]any)
	user, _ := rec["userId"].(map[string]any)
	subjects, _ := rec["subjects"].([]any)

	rank := index + 1
	if n, ok := toNumber(rec["rank"]); ok && n >= 1 {
		rank = int(n)
	}

	return model.Entry{
		Rank:         rank,
		Name:         name(user["name"]),
		OverallScore: number(rec["totalMarkScored"]),
		MaxScore:     model.DefaultMaxScore,
		PhyScore:     subjectScore(subjects, physicsLabel),
		ChemScore:    subjectScore(subjects, chemistryLabel),
		MathsScore:   subjectScore(subjects, mathsLabel),
		Accuracy:     number(rec["accuracy"]),
		Avatar:       str(user["profilePicture"]),
	}
}

func subjectScore(subjects []any, label string) float64 {
	for _, s := range subjects {
		sub, _ := s.(map[string]any)
		info, _ := sub["subjectId"].(map[string]any)
		title := strings.ToLower(str(info["title"]))
		if strings.Contains(title, label) {
			return number(sub["totalMarkScored"])
		}
	}
	return 0
}

func name(v any) string {
	switch n := v.(type) {
	case string:
		if strings.TrimSpace(n) == "" {
			return model.UnknownName
		}
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case json.Number:
		return n.String()
	case bool:
		return strconv.FormatBool(n)
	}
	return model.UnknownName
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func number(v any) float64 {
	n, _ := toNumber(v)
	return n
}

// toNumber coerces JSON scalars to a finite float. ok is false for anything else.
func toNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	case bool:
		if x {
			n = 1
		}
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
