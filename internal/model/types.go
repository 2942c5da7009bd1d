// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
)

// DefaultMaxScore is the paper total assumed for every entry.
const DefaultMaxScore = 300

// UnknownName is used when a record carries no participant name.
const UnknownName = "Unknown"

// Entry is one normalized leaderboard row.
type Entry struct {
	Rank          int
	Name          string
	OverallScore  float64
	MaxScore      float64
	PhyScore      float64
	ChemScore     float64
	MathsScore    float64
	Accuracy      float64
	Avatar        string
	IsCurrentUser bool
}

// SubjectScore returns the score for a single subject, or the overall score for SubjectAll.
func (e Entry) SubjectScore(s Subject) float64 {
	switch s {
	case SubjectPhy:
		return e.PhyScore
	case SubjectChem:
		return e.ChemScore
	case SubjectMaths:
		return e.MathsScore
	default:
		return e.OverallScore
	}
}

// SameParticipant reports whether two entries describe the same row.
func (e Entry) SameParticipant(o Entry) bool {
	return e.Rank == o.Rank && e.Name == o.Name
}

// Viewer describes the user looking at the leaderboard.
type Viewer struct {
	Name     string
	Rank     int
	Overall  float64
	MaxScore float64
	Phy      float64
	Chem     float64
	Maths    float64
	Accuracy float64
}

// DefaultViewer returns the viewer shown when nothing is configured.
func DefaultViewer() Viewer {
	return Viewer{
		Name:     "Prem Raj Kumar (You)",
		Rank:     73,
		Overall:  199,
		MaxScore: DefaultMaxScore,
		Phy:      66,
		Chem:     66,
		Maths:    67,
		Accuracy: 80.3,
	}
}

// Entry builds the synthetic pinned entry for the viewer.
func (v Viewer) Entry() Entry {
	maxScore := v.MaxScore
	if maxScore <= 0 {
		maxScore = DefaultMaxScore
	}
	return Entry{
		Rank:          v.Rank,
		Name:          v.Name,
		OverallScore:  v.Overall,
		MaxScore:      maxScore,
		PhyScore:      v.Phy,
		ChemScore:     v.Chem,
		MathsScore:    v.Maths,
		Accuracy:      v.Accuracy,
		IsCurrentUser: true,
	}
}

// Subject selects a subject column.
type Subject string

// Subjects accepted by the subject selector.
const (
	SubjectAll   Subject = "all"
	SubjectPhy   Subject = "phy"
	SubjectChem  Subject = "chem"
	SubjectMaths Subject = "maths"
)

// Subjects lists the selector values in display order.
var Subjects = []Subject{SubjectAll, SubjectPhy, SubjectChem, SubjectMaths}

// ParseSubject parses a subject selector value.
func ParseSubject(s string) (Subject, error) {
	switch Subject(strings.ToLower(strings.TrimSpace(s))) {
	case "", SubjectAll:
		return SubjectAll, nil
	case SubjectPhy:
		return SubjectPhy, nil
	case SubjectChem:
		return SubjectChem, nil
	case SubjectMaths:
		return SubjectMaths, nil
	}
	return "", fmt.Errorf("unknown subject %q (use all, phy, chem or maths)", s)
}

// Label returns the column title for the subject.
func (s Subject) Label() string {
	switch s {
	case SubjectPhy:
		return "Physics"
	case SubjectChem:
		return "Chemistry"
	case SubjectMaths:
		return "Maths"
	default:
		return "All subjects"
	}
}

// SortKey is the general sort selector used when no subject is chosen.
type SortKey string

// Sort keys.
const (
	SortByRank     SortKey = "rank"
	SortByOverall  SortKey = "overall"
	SortByAccuracy SortKey = "accuracy"
)

// SortKeys lists the sort keys in display order.
var SortKeys = []SortKey{SortByRank, SortByOverall, SortByAccuracy}

// ParseSortKey parses a sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByRank:
		return SortByRank, nil
	case SortByOverall:
		return SortByOverall, nil
	case SortByAccuracy:
		return SortByAccuracy, nil
	}
	return "", fmt.Errorf("unknown sort key %q (use rank, overall or accuracy)", s)
}

// Direction is the sort direction.
type Direction string

// Directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection parses a sort direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("unknown direction %q (use asc or desc)", s)
}

// Toggle flips the direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// SortSpec is the effective sort: one of RankSort, OverallSort, AccuracySort or SubjectSort.
type SortSpec interface {
	Value(e Entry) float64
	Label() string
	sortSpec()
}

// RankSort orders by reported rank.
type RankSort struct{}

// OverallSort orders by overall score.
type OverallSort struct{}

// AccuracySort orders by accuracy.
type AccuracySort struct{}

// SubjectSort orders by a single subject score.
type SubjectSort struct {
	Subject Subject
}

// Value implements SortSpec.
func (RankSort) Value(e Entry) float64 { return float64(e.Rank) }

// Value implements SortSpec.
func (OverallSort) Value(e Entry) float64 { return e.OverallScore }

// Value implements SortSpec.
func (AccuracySort) Value(e Entry) float64 { return e.Accuracy }

// Value implements SortSpec.
func (s SubjectSort) Value(e Entry) float64 { return e.SubjectScore(s.Subject) }

// Label implements SortSpec.
func (RankSort) Label() string { return "Rank" }

// Label implements SortSpec.
func (OverallSort) Label() string { return "Overall" }

// Label implements SortSpec.
func (AccuracySort) Label() string { return "Accuracy" }

// Label implements SortSpec.
func (s SubjectSort) Label() string { return s.Subject.Label() }

func (RankSort) sortSpec()     {}
func (OverallSort) sortSpec()  {}
func (AccuracySort) sortSpec() {}
func (SubjectSort) sortSpec()  {}

// ResolveSort picks the effective sort. A chosen subject overrides the key.
func ResolveSort(subject Subject, key SortKey) SortSpec {
	switch subject {
	case SubjectPhy, SubjectChem, SubjectMaths:
		return SubjectSort{Subject: subject}
	}
	switch key {
	case SortByOverall:
		return OverallSort{}
	case SortByAccuracy:
		return AccuracySort{}
	default:
		return RankSort{}
	}
}

// Query is the full input of the filter/sort pipeline.
type Query struct {
	Text    string
	Subject Subject
	Sort    SortSpec
	Dir     Direction
}

// Selection is the raw control state of the UI or CLI.
type Selection struct {
	Text    string
	Subject Subject
	Key     SortKey
	Dir     Direction
}

// DefaultSelection returns rank ascending over all subjects.
func DefaultSelection() Selection {
	return Selection{Subject: SubjectAll, Key: SortByRank, Dir: Asc}
}

// Query resolves the selection into a pipeline query.
func (s Selection) Query() Query {
	subject := s.Subject
	if subject == "" {
		subject = SubjectAll
	}
	dir := s.Dir
	if dir == "" {
		dir = Asc
	}
	return Query{
		Text:    s.Text,
		Subject: subject,
		Sort:    ResolveSort(subject, s.Key),
		Dir:     dir,
	}
}

// Searching reports whether the selection has a non-blank query.
func (s Selection) Searching() bool {
	return strings.TrimSpace(s.Text) != ""
}
