package paper

import (
	"math/rand"
	"testing"

	"github.com/polisure/certprep-backend/internal/model"
)

func fourChoice(answer ...string) model.Question {
	return model.Question{
		ID:   "q1",
		Text: "pick",
		Choices: []model.Choice{
			{Label: "A", Text: "alpha"},
			{Label: "B", Text: "beta"},
			{Label: "C", Text: "gamma"},
			{Label: "D", Text: "delta"},
		},
		Answer: model.NewLabelSet(answer...),
	}
}

func TestShuffleOptions_AnswerFollowsText(t *testing.T) {
	orig := fourChoice("B")
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		got := ShuffleOptions(orig, rng)

		if len(got.Choices) != 4 {
			t.Fatalf("seed %d: %d choices", seed, len(got.Choices))
		}
		for i, c := range got.Choices {
			if c.Label != positionLabel(i) {
				t.Fatalf("seed %d: label at %d is %q", seed, i, c.Label)
			}
		}
		labels := got.Answer.Labels()
		if len(labels) != 1 {
			t.Fatalf("seed %d: answer %v", seed, labels)
		}
		for _, c := range got.Choices {
			if c.Label == labels[0] && c.Text != "beta" {
				t.Errorf("seed %d: answer points at %q, want beta", seed, c.Text)
			}
		}
	}
}

func TestShuffleOptions_DuplicateTexts(t *testing.T) {
	// Two options share the same text. Only the originally correct one
	// may carry the answer after shuffling, which ordinal remapping
	// guarantees regardless of text collisions.
	q := model.Question{
		ID:   "dup",
		Text: "pick",
		Choices: []model.Choice{
			{Label: "A", Text: "same"},
			{Label: "B", Text: "same"},
			{Label: "C", Text: "other"},
		},
		Answer: model.NewLabelSet("A"),
	}
	for seed := int64(0); seed < 50; seed++ {
		got := ShuffleOptions(q, rand.New(rand.NewSource(seed)))
		if len(got.Answer) != 1 {
			t.Fatalf("seed %d: answer cardinality %d", seed, len(got.Answer))
		}
	}
}

func TestShuffleOptions_MultipleAnswer(t *testing.T) {
	orig := fourChoice("A", "C")
	got := ShuffleOptions(orig, rand.New(rand.NewSource(3)))
	if len(got.Answer) != 2 {
		t.Fatalf("answer cardinality = %d, want 2", len(got.Answer))
	}
	wantTexts := map[string]bool{"alpha": true, "gamma": true}
	for _, c := range got.Choices {
		if got.Answer[c.Label] && !wantTexts[c.Text] {
			t.Errorf("answer label %s points at %q", c.Label, c.Text)
		}
	}
}

func TestShuffleOptions_Deterministic(t *testing.T) {
	a := ShuffleOptions(fourChoice("D"), rand.New(rand.NewSource(42)))
	b := ShuffleOptions(fourChoice("D"), rand.New(rand.NewSource(42)))
	for i := range a.Choices {
		if a.Choices[i] != b.Choices[i] {
			t.Fatalf("same seed diverged at choice %d", i)
		}
	}
	if !a.Answer.Equal(b.Answer) {
		t.Errorf("same seed produced answers %v and %v", a.Answer.Labels(), b.Answer.Labels())
	}
}

func TestShuffleOptions_OriginalUntouched(t *testing.T) {
	orig := fourChoice("B")
	ShuffleOptions(orig, rand.New(rand.NewSource(1)))
	if orig.Choices[0].Text != "alpha" || !orig.Answer["B"] {
		t.Error("input question mutated")
	}
}
