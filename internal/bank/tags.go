package bank

import (
	"sort"

	"github.com/polisure/certprep-backend/internal/model"
)

// AllTags lists every distinct tag in the pool, sorted. Semicolon-joined
// multi-tags contribute each part separately.
func AllTags(pool []model.Question) []string {
	seen := make(map[string]bool)
	for _, q := range pool {
		for _, t := range q.Tags() {
			seen[t] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// FilterByTags keeps questions carrying at least one of the picked tags.
// An empty pick returns the pool unchanged.
func FilterByTags(pool []model.Question, picked []string) []model.Question {
	want := make(map[string]bool, len(picked))
	for _, t := range picked {
		if t != "" {
			want[t] = true
		}
	}
	if len(want) == 0 {
		return pool
	}

	out := make([]model.Question, 0, len(pool))
	for _, q := range pool {
		for _, t := range q.Tags() {
			if want[t] {
				out = append(out, q)
				break
			}
		}
	}
	return out
}

// QualifyIDs rewrites every question's ID to carry its workbook and sheet
// provenance. Row IDs are only unique within one sheet, so a pool merged
// from several imports needs the qualified form to keep answer maps and
// by-ID lookups from collapsing distinct questions.
func QualifyIDs(pool []model.Question) []model.Question {
	out := make([]model.Question, len(pool))
	for i, q := range pool {
		q.ID = q.SourceFile + "#" + q.SourceSheet + "#" + q.ID
		out[i] = q
	}
	return out
}

// Gradable keeps only questions with a usable gold answer; papers are always
// assembled from this subset.
func Gradable(pool []model.Question) []model.Question {
	out := make([]model.Question, 0, len(pool))
	for _, q := range pool {
		if q.Gradable() {
			out = append(out, q)
		}
	}
	return out
}
