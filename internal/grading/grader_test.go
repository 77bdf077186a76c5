package grading

import (
	"errors"
	"testing"

	"github.com/polisure/certprep-backend/internal/model"
)

func question(id string, qtype model.QuestionType, answer ...string) model.Question {
	return model.Question{
		ID:   id,
		Text: "prompt " + id,
		Type: qtype,
		Choices: []model.Choice{
			{Label: "A", Text: "a"}, {Label: "B", Text: "b"},
			{Label: "C", Text: "c"}, {Label: "D", Text: "d"},
		},
		Answer: model.NewLabelSet(answer...),
	}
}

func TestGradeQuestion_ExactSetMatch(t *testing.T) {
	tests := []struct {
		name      string
		q         model.Question
		submitted model.LabelSet
		correct   bool
	}{
		{"single right", question("1", model.QuestionTypeSingle, "B"), model.NewLabelSet("B"), true},
		{"single wrong", question("1", model.QuestionTypeSingle, "B"), model.NewLabelSet("C"), false},
		{"single unanswered", question("1", model.QuestionTypeSingle, "B"), nil, false},
		{"multiple exact", question("2", model.QuestionTypeMultiple, "A", "C"), model.NewLabelSet("C", "A"), true},
		{"multiple missing one", question("2", model.QuestionTypeMultiple, "A", "C"), model.NewLabelSet("A"), false},
		{"multiple extra one", question("2", model.QuestionTypeMultiple, "A", "C"), model.NewLabelSet("A", "C", "D"), false},
		{"multiple disjoint", question("2", model.QuestionTypeMultiple, "A", "C"), model.NewLabelSet("B", "D"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := GradeQuestion(tc.q, tc.submitted)
			if row.Correct != tc.correct {
				t.Errorf("Correct = %v, want %v", row.Correct, tc.correct)
			}
			if !row.Gold.Equal(tc.q.Answer) {
				t.Errorf("Gold = %v, want %v", row.Gold.Labels(), tc.q.Answer.Labels())
			}
		})
	}
}

func TestGrade(t *testing.T) {
	paper := model.Paper{
		question("1", model.QuestionTypeSingle, "A"),
		question("2", model.QuestionTypeSingle, "B"),
		question("3", model.QuestionTypeMultiple, "A", "D"),
	}

	t.Run("score and rows", func(t *testing.T) {
		rep, err := Grade(paper, map[string]model.LabelSet{
			"1": model.NewLabelSet("A"),
			"2": model.NewLabelSet("C"),
			"3": model.NewLabelSet("A", "D"),
		})
		if err != nil {
			t.Fatal(err)
		}
		if rep.CorrectCount != 2 || rep.TotalCount != 3 {
			t.Errorf("counts = %d/%d, want 2/3", rep.CorrectCount, rep.TotalCount)
		}
		if rep.ScorePercent != 67 {
			t.Errorf("score = %d, want 67", rep.ScorePercent)
		}
		wrong := rep.Wrong()
		if len(wrong) != 1 || wrong[0].QuestionID != "2" {
			t.Errorf("wrong rows = %v", wrong)
		}
	})

	t.Run("unanswered questions count as wrong", func(t *testing.T) {
		rep, err := Grade(paper, nil)
		if err != nil {
			t.Fatal(err)
		}
		if rep.CorrectCount != 0 || rep.ScorePercent != 0 {
			t.Errorf("got %d correct, score %d", rep.CorrectCount, rep.ScorePercent)
		}
	})

	t.Run("stray submissions ignored", func(t *testing.T) {
		rep, err := Grade(paper, map[string]model.LabelSet{
			"1":       model.NewLabelSet("A"),
			"2":       model.NewLabelSet("B"),
			"3":       model.NewLabelSet("A", "D"),
			"phantom": model.NewLabelSet("A"),
		})
		if err != nil {
			t.Fatal(err)
		}
		if rep.CorrectCount != 3 || rep.ScorePercent != 100 {
			t.Errorf("got %d correct, score %d", rep.CorrectCount, rep.ScorePercent)
		}
		if rep.TotalCount != 3 {
			t.Errorf("total = %d, want 3", rep.TotalCount)
		}
	})

	t.Run("empty paper errors", func(t *testing.T) {
		if _, err := Grade(nil, nil); !errors.Is(err, ErrEmptyPaper) {
			t.Errorf("err = %v, want ErrEmptyPaper", err)
		}
	})

	t.Run("rounding", func(t *testing.T) {
		// 1 of 7 correct is 14.28..., rounds to 14; 6 of 7 is 85.7,
		// rounds to 86.
		p := model.Paper{}
		sub := map[string]model.LabelSet{}
		for i := 0; i < 7; i++ {
			id := string(rune('a' + i))
			p = append(p, question(id, model.QuestionTypeSingle, "A"))
			if i < 6 {
				sub[id] = model.NewLabelSet("A")
			}
		}
		rep, _ := Grade(p, sub)
		if rep.ScorePercent != 86 {
			t.Errorf("score = %d, want 86", rep.ScorePercent)
		}
	})
}
