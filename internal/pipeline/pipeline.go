// Package pipeline filters and sorts leaderboard entries.
package pipeline

import (
	"sort"
	"strings"

	"github.com/verte-zerg/lbview/internal/model"
)

// Apply filters entries by name and subject, then sorts them by the query's sort.
// The input is never modified. Viewer entries are dropped.
func Apply(entries []model.Entry, q model.Query) []model.Entry {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	subject := q.Subject
	if subject == "" {
		subject = model.SubjectAll
	}
	spec := q.Sort
	if spec == nil {
		spec = model.ResolveSort(subject, model.SortByRank)
	}

	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsCurrentUser {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Name), needle) {
			continue
		}
		if subject != model.SubjectAll && e.SubjectScore(subject) <= 0 {
			continue
		}
		out = append(out, e)
	}

	desc := q.Dir == model.Desc
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := spec.Value(out[i]), spec.Value(out[j])
		if vi != vj {
			if desc {
				return vi > vj
			}
			return vi < vj
		}
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Top returns a copy of the first n entries.
func Top(entries []model.Entry, n int) []model.Entry {
	if n <= 0 || len(entries) == 0 {
		return nil
	}
	if n > len(entries) {
		n = len(entries)
	}
	return append([]model.Entry(nil), entries[:n]...)
}
