// Package fake serves a generated leaderboard over the scoring API contract.
package fake

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"
)

// Defaults for the generated corpus.
const (
	DefaultSeed    = 2024
	DefaultRecords = 1000
)

type subjectRecord struct {
	SubjectID struct {
		Title string `json:"title"`
	} `json:"subjectId"`
	TotalMarkScored float64 `json:"totalMarkScored"`
}

// Config controls the generated corpus.
type Config struct {
	Seed    int64
	Records int
	// SparseEvery drops optional fields from every n-th record. Zero keeps every field.
	SparseEvery int
	// FailPages answer with HTTP 500.
	FailPages []int
}

// Transport is an http.RoundTripper answering leaderboard page requests.
type Transport struct {
	records []map[string]any
	fail    map[int]bool
}

// NewTransport generates the corpus described by cfg.
func NewTransport(cfg Config) *Transport {
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.Records <= 0 {
		cfg.Records = DefaultRecords
	}
	fail := make(map[int]bool, len(cfg.FailPages))
	for _, p := range cfg.FailPages {
		fail[p] = true
	}
	return &Transport{records: generate(cfg), fail: fail}
}

// Len returns the number of generated records.
func (t *Transport) Len() int {
	return len(t.records)
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	q := req.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = 100
	}
	if t.fail[page] {
		return respond(req, http.StatusInternalServerError, []byte(`{"message":"internal error"}`)), nil
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(t.records) {
		start = len(t.records)
	}
	if end > len(t.records) {
		end = len(t.records)
	}
	body, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"results": t.records[start:end],
		},
	})
	if err != nil {
		return nil, err
	}
	return respond(req, http.StatusOK, body), nil
}

func respond(req *http.Request, status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func generate(cfg Config) []map[string]any {
	faker := gofakeit.New(cfg.Seed)
	type person struct {
		name, avatar     string
		phy, chem, maths float64
		accuracy         float64
	}
	people := make([]person, cfg.Records)
	for i := range people {
		people[i] = person{
			name:     faker.Name(),
			avatar:   faker.ImageURL(64, 64),
			phy:      float64(faker.Number(0, 100)),
			chem:     float64(faker.Number(0, 100)),
			maths:    float64(faker.Number(0, 100)),
			accuracy: float64(faker.Number(3000, 9999)) / 100,
		}
	}
	sort.SliceStable(people, func(i, j int) bool {
		return people[i].phy+people[i].chem+people[i].maths > people[j].phy+people[j].chem+people[j].maths
	})

	out := make([]map[string]any, len(people))
	for i, p := range people {
		rec := map[string]any{
			"rank":            i + 1,
			"totalMarkScored": p.phy + p.chem + p.maths,
			"accuracy":        p.accuracy,
			"userId": map[string]any{
				"name":           p.name,
				"profilePicture": p.avatar,
			},
			"subjects": []subjectRecord{
				subject("Physics", p.phy),
				subject("Chemistry", p.chem),
				subject("Mathematics", p.maths),
			},
		}
		if cfg.SparseEvery > 0 && (i+1)%cfg.SparseEvery == 0 {
			delete(rec, "rank")
			delete(rec, "subjects")
			rec["userId"] = map[string]any{}
		}
		out[i] = rec
	}
	return out
}

func subject(title string, score float64) subjectRecord {
	var s subjectRecord
	s.SubjectID.Title = title
	s.TotalMarkScored = score
	return s
}
