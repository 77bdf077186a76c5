package exam

import (
	"errors"
	"fmt"
	"time"

	"github.com/polisure/certprep-backend/internal/paper"
)

type PassMode string

const (
	PassModeSingle      PassMode = "SINGLE"
	PassModeTotalAndMin PassMode = "TOTAL_AND_MIN"
)

const (
	FailReasonBelowThreshold    = "score below passing threshold"
	FailReasonInsufficientTotal = "insufficient total"
	FailReasonSectionBelowFloor = "section below floor"
)

var ErrInvalidSpec = errors.New("invalid exam specification")

// PassRule decides pass or fail over the ordered per-section scores.
type PassRule struct {
	Mode        PassMode `json:"mode"`
	PassScore   int      `json:"pass_score,omitempty"`
	PassTotal   int      `json:"pass_total,omitempty"`
	PassMinEach int      `json:"pass_min_each,omitempty"`
}

// Evaluate returns the verdict and, on failure, a reason. Under
// TOTAL_AND_MIN an insufficient total is reported before a section
// below the floor.
func (r PassRule) Evaluate(sectionScores []int) (bool, string) {
	total := 0
	minEach := 0
	for i, s := range sectionScores {
		total += s
		if i == 0 || s < minEach {
			minEach = s
		}
	}

	switch r.Mode {
	case PassModeSingle:
		if total >= r.PassScore {
			return true, ""
		}
		return false, FailReasonBelowThreshold
	case PassModeTotalAndMin:
		if total < r.PassTotal {
			return false, FailReasonInsufficientTotal
		}
		if minEach < r.PassMinEach {
			return false, FailReasonSectionBelowFloor
		}
		return true, ""
	default:
		return false, fmt.Sprintf("unknown pass mode %q", r.Mode)
	}
}

func (r PassRule) validate() error {
	switch r.Mode {
	case PassModeSingle:
		if r.PassScore <= 0 {
			return fmt.Errorf("%w: SINGLE rule needs a positive pass_score", ErrInvalidSpec)
		}
	case PassModeTotalAndMin:
		if r.PassTotal <= 0 || r.PassMinEach <= 0 {
			return fmt.Errorf("%w: TOTAL_AND_MIN rule needs positive pass_total and pass_min_each", ErrInvalidSpec)
		}
	default:
		return fmt.Errorf("%w: unknown pass mode %q", ErrInvalidSpec, r.Mode)
	}
	return nil
}

// SectionSpec describes one timed section of a mock exam. A nil
// ChapterWeights samples the section uniformly; a non-nil map must be
// a valid percentage table. TagChapters maps question tags onto the
// weight table's chapter IDs; left nil, tags are used as chapter IDs
// directly.
type SectionSpec struct {
	Name           string             `json:"name"`
	QuestionCount  int                `json:"question_count"`
	TimeLimit      time.Duration      `json:"time_limit"`
	ChapterWeights map[string]float64 `json:"chapter_weights,omitempty"`
	TagChapters    map[string]string  `json:"tag_chapters,omitempty"`
}

// MockSpec is the full recipe for one certification's mock exam.
type MockSpec struct {
	CertType string        `json:"cert_type"`
	Subject  string        `json:"subject"`
	Sections []SectionSpec `json:"sections"`
	Rule     PassRule      `json:"rule"`
}

// Validate rejects structurally broken specs. It never downgrades a
// declared weight table to uniform sampling.
func (m MockSpec) Validate() error {
	if m.CertType == "" {
		return fmt.Errorf("%w: missing cert type", ErrInvalidSpec)
	}
	if len(m.Sections) == 0 {
		return fmt.Errorf("%w: %s has no sections", ErrInvalidSpec, m.CertType)
	}
	for _, s := range m.Sections {
		if s.Name == "" {
			return fmt.Errorf("%w: %s has an unnamed section", ErrInvalidSpec, m.CertType)
		}
		if s.QuestionCount <= 0 {
			return fmt.Errorf("%w: section %s has question count %d", ErrInvalidSpec, s.Name, s.QuestionCount)
		}
		if s.TimeLimit <= 0 {
			return fmt.Errorf("%w: section %s has time limit %s", ErrInvalidSpec, s.Name, s.TimeLimit)
		}
		if s.ChapterWeights != nil {
			if err := paper.ValidateWeights(s.ChapterWeights); err != nil {
				return fmt.Errorf("%w: section %s: %v", ErrInvalidSpec, s.Name, err)
			}
		}
	}
	return m.Rule.validate()
}
