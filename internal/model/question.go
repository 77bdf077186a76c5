package model

import (
	"encoding/json"
	"sort"
)

// QuestionType distinguishes single-answer from multiple-answer questions.
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "SINGLE"
	QuestionTypeMultiple QuestionType = "MULTIPLE"
)

// Choice is one answer option of a question. Label is the position letter
// (A-E); Text is the displayed option text.
type Choice struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// LabelSet is a set of choice labels. It marshals as a sorted JSON array so
// persisted answers are stable regardless of insertion order.
type LabelSet map[string]bool

// NewLabelSet builds a LabelSet from the given labels.
func NewLabelSet(labels ...string) LabelSet {
	s := make(LabelSet, len(labels))
	for _, l := range labels {
		if l != "" {
			s[l] = true
		}
	}
	return s
}

// Labels returns the members in sorted order.
func (s LabelSet) Labels() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Equal reports exact set equality.
func (s LabelSet) Equal(other LabelSet) bool {
	if len(s) != len(other) {
		return false
	}
	for l := range s {
		if !other[l] {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every member of s is also in other.
func (s LabelSet) SubsetOf(other LabelSet) bool {
	for l := range s {
		if !other[l] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array of labels.
func (s LabelSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Labels())
}

// UnmarshalJSON decodes an array of labels into the set.
func (s *LabelSet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewLabelSet(labels...)
	return nil
}

// Question is the canonical question record produced by the bank normalizer.
// Once produced for a given load it is treated as immutable; the option
// shuffler returns a fresh copy rather than mutating in place.
type Question struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Type        QuestionType `json:"type"`
	Choices     []Choice     `json:"choices"`
	Answer      LabelSet     `json:"answer"`
	Explanation string       `json:"explanation,omitempty"`
	ImageRef    string       `json:"image_ref,omitempty"`
	// Tag holds zero or more semicolon-joined chapter/topic labels.
	Tag string `json:"tag,omitempty"`
	// Provenance, preserved for audit only.
	SourceFile  string `json:"source_file,omitempty"`
	SourceSheet string `json:"source_sheet,omitempty"`
}

// ChoiceLabels returns the label set spanned by the question's choices.
func (q Question) ChoiceLabels() LabelSet {
	s := make(LabelSet, len(q.Choices))
	for _, c := range q.Choices {
		s[c.Label] = true
	}
	return s
}

// Gradable reports whether the question carries a usable gold answer.
// Questions without one are kept in the pool for browsing but are excluded
// from papers.
func (q Question) Gradable() bool {
	return len(q.Answer) > 0
}

// Tags splits the semicolon-joined tag string into its trimmed parts.
func (q Question) Tags() []string {
	return SplitTags(q.Tag)
}
