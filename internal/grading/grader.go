package grading

import (
	"errors"
	"math"

	"github.com/polisure/certprep-backend/internal/model"
)

var ErrEmptyPaper = errors.New("cannot grade an empty paper")

// Report is the outcome of grading one paper. ScorePercent is rounded
// to the nearest integer.
type Report struct {
	Rows         []model.GradedRow
	CorrectCount int
	TotalCount   int
	ScorePercent int
}

// Wrong returns the rows the candidate missed, in paper order.
func (r Report) Wrong() []model.GradedRow {
	var out []model.GradedRow
	for _, row := range r.Rows {
		if !row.Correct {
			out = append(out, row)
		}
	}
	return out
}

// Grade scores every question on the paper against the submitted
// answers. A question with no submission counts as wrong; submissions
// for question IDs outside the paper are ignored.
func Grade(paper model.Paper, submitted map[string]model.LabelSet) (Report, error) {
	if len(paper) == 0 {
		return Report{}, ErrEmptyPaper
	}

	rep := Report{
		Rows:       make([]model.GradedRow, len(paper)),
		TotalCount: len(paper),
	}
	for i, q := range paper {
		row := GradeQuestion(q, submitted[q.ID])
		if row.Correct {
			rep.CorrectCount++
		}
		rep.Rows[i] = row
	}
	rep.ScorePercent = int(math.Round(float64(rep.CorrectCount) / float64(rep.TotalCount) * 100))
	return rep, nil
}

// GradeQuestion scores one question by exact set match: every correct
// label submitted, no extra label submitted. Partial credit is never
// awarded.
func GradeQuestion(q model.Question, answer model.LabelSet) model.GradedRow {
	return model.GradedRow{
		QuestionID:  q.ID,
		Tag:         q.Tag,
		Text:        q.Text,
		Type:        q.Type,
		Choices:     q.Choices,
		Submitted:   answer,
		Gold:        q.Answer,
		Explanation: q.Explanation,
		Correct:     q.Answer.Equal(answer),
	}
}
