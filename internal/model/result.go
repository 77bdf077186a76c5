package model

import (
	"time"

	"github.com/google/uuid"
)

// GradedRow is the per-question outcome of grading one submitted answer.
type GradedRow struct {
	QuestionID  string       `json:"question_id"`
	Tag         string       `json:"tag,omitempty"`
	Text        string       `json:"text"`
	Type        QuestionType `json:"type"`
	Choices     []Choice     `json:"choices"`
	Submitted   LabelSet     `json:"submitted"`
	Gold        LabelSet     `json:"gold"`
	Explanation string       `json:"explanation,omitempty"`
	Correct     bool         `json:"correct"`
}

// SectionResult is the score of one completed section.
type SectionResult struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// Result is the final outcome of one exam attempt. It is produced exactly
// once per finalized attempt and never mutated after creation.
type Result struct {
	AttemptID    uuid.UUID       `json:"attempt_id"`
	AgentID      int             `json:"agent_id"`
	CertType     string          `json:"cert_type"`
	Mode         string          `json:"mode"` // "practice" or "mock"
	ScorePercent int             `json:"score_percent"`
	CorrectCount int             `json:"correct_count"`
	TotalCount   int             `json:"total_count"`
	Sections     []SectionResult `json:"sections"`
	TotalScore   int             `json:"total_score"`
	Passed       bool            `json:"passed"`
	// FailReason is empty when Passed is true or no pass rule applies.
	FailReason      string      `json:"fail_reason,omitempty"`
	DurationSeconds int         `json:"duration_seconds"`
	WrongItems      []GradedRow `json:"wrong_items"`
	FinishedAt      time.Time   `json:"finished_at"`
}

// SectionScores returns the ordered per-section score map as name/score pairs.
func (r *Result) SectionScores() map[string]int {
	m := make(map[string]int, len(r.Sections))
	for _, s := range r.Sections {
		m[s.Name] = s.Score
	}
	return m
}
