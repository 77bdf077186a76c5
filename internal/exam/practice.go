package exam

import (
	"fmt"

	"github.com/polisure/certprep-backend/internal/grading"
	"github.com/polisure/certprep-backend/internal/model"
)

// Practice is the untimed step-through variant: one paper, one
// question at a time, immediate feedback, no pass rule. Like Session
// it assumes single-writer access.
type Practice struct {
	paper   model.Paper
	cursor  int
	graded  map[string]model.GradedRow
	correct int
}

func NewPractice(p model.Paper) (*Practice, error) {
	if len(p) == 0 {
		return nil, grading.ErrEmptyPaper
	}
	return &Practice{
		paper:  p,
		graded: make(map[string]model.GradedRow, len(p)),
	}, nil
}

func (p *Practice) Len() int    { return len(p.paper) }
func (p *Practice) Cursor() int { return p.cursor }

// Current returns the question under the cursor.
func (p *Practice) Current() model.Question {
	return p.paper[p.cursor]
}

// Graded returns the feedback row for the current question, if it has
// been answered.
func (p *Practice) Graded() (model.GradedRow, bool) {
	row, ok := p.graded[p.Current().ID]
	return row, ok
}

// SubmitCurrent grades the current question immediately. Re-submitting
// replaces the previous attempt's feedback and adjusts the running
// correct count.
func (p *Practice) SubmitCurrent(answer model.LabelSet) model.GradedRow {
	q := p.Current()
	if prev, ok := p.graded[q.ID]; ok && prev.Correct {
		p.correct--
	}
	row := grading.GradeQuestion(q, answer)
	if row.Correct {
		p.correct++
	}
	p.graded[q.ID] = row
	return row
}

func (p *Practice) Next() error {
	if p.cursor+1 >= len(p.paper) {
		return fmt.Errorf("already at the last question")
	}
	p.cursor++
	return nil
}

func (p *Practice) Prev() error {
	if p.cursor == 0 {
		return fmt.Errorf("already at the first question")
	}
	p.cursor--
	return nil
}

// Progress reports answered and correct counts so far.
func (p *Practice) Progress() (answered, correct int) {
	return len(p.graded), p.correct
}

// Summary grades the whole paper against everything answered so far,
// for an end-of-practice recap.
func (p *Practice) Summary() model.Result {
	wrong := make([]model.GradedRow, 0)
	for _, q := range p.paper {
		if row, ok := p.graded[q.ID]; ok && !row.Correct {
			wrong = append(wrong, row)
		}
	}
	return model.Result{
		Mode:         "practice",
		ScorePercent: roundPercent(p.correct, len(p.paper)),
		CorrectCount: p.correct,
		TotalCount:   len(p.paper),
		WrongItems:   wrong,
	}
}
