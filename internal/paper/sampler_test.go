package paper

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/polisure/certprep-backend/internal/model"
)

func buildPool(counts map[string]int) []model.Question {
	var pool []model.Question
	i := 0
	for _, tag := range []string{"ch1", "ch2", "ch3", "misc"} {
		for j := 0; j < counts[tag]; j++ {
			i++
			pool = append(pool, model.Question{
				ID:   fmt.Sprintf("q%d", i),
				Text: fmt.Sprintf("question %d", i),
				Tag:  tag,
				Choices: []model.Choice{
					{Label: "A", Text: "a"}, {Label: "B", Text: "b"},
				},
				Answer: model.NewLabelSet("A"),
			})
		}
	}
	return pool
}

func TestUniform(t *testing.T) {
	pool := buildPool(map[string]int{"ch1": 10, "ch2": 10})

	t.Run("draws without replacement", func(t *testing.T) {
		s := New(rand.NewSource(1))
		paper, err := s.Uniform(pool, 8, Options{RandomOrder: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(paper) != 8 {
			t.Fatalf("paper size = %d, want 8", len(paper))
		}
		seen := map[string]bool{}
		for _, q := range paper {
			if seen[q.ID] {
				t.Errorf("question %s drawn twice", q.ID)
			}
			seen[q.ID] = true
		}
	})

	t.Run("zero count takes whole pool", func(t *testing.T) {
		s := New(rand.NewSource(1))
		paper, err := s.Uniform(pool, 0, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if len(paper) != len(pool) {
			t.Errorf("paper size = %d, want %d", len(paper), len(pool))
		}
	})

	t.Run("oversized count takes whole pool", func(t *testing.T) {
		s := New(rand.NewSource(1))
		paper, err := s.Uniform(pool, 500, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if len(paper) != len(pool) {
			t.Errorf("paper size = %d, want %d", len(paper), len(pool))
		}
	})

	t.Run("fixed order preserved without random flag", func(t *testing.T) {
		s := New(rand.NewSource(1))
		paper, _ := s.Uniform(pool, 0, Options{})
		for i, q := range paper {
			if q.ID != pool[i].ID {
				t.Fatalf("order changed at %d: %s vs %s", i, q.ID, pool[i].ID)
			}
		}
	})

	t.Run("empty pool errors", func(t *testing.T) {
		s := New(rand.NewSource(1))
		if _, err := s.Uniform(nil, 5, Options{}); !errors.Is(err, ErrEmptyPool) {
			t.Errorf("err = %v, want ErrEmptyPool", err)
		}
	})

	t.Run("answerless questions never drawn", func(t *testing.T) {
		mixed := append(buildPool(map[string]int{"ch1": 3}), model.Question{
			ID: "blank", Text: "no key",
			Choices: []model.Choice{{Label: "A", Text: "a"}, {Label: "B", Text: "b"}},
		})
		s := New(rand.NewSource(1))
		paper, err := s.Uniform(mixed, 0, Options{})
		if err != nil {
			t.Fatal(err)
		}
		for _, q := range paper {
			if q.ID == "blank" {
				t.Error("answerless question drawn into paper")
			}
		}
	})

	t.Run("same seed reproduces paper", func(t *testing.T) {
		a, _ := New(rand.NewSource(9)).Uniform(pool, 8, Options{RandomOrder: true, ShuffleOptions: true})
		b, _ := New(rand.NewSource(9)).Uniform(pool, 8, Options{RandomOrder: true, ShuffleOptions: true})
		for i := range a {
			if a[i].ID != b[i].ID {
				t.Fatalf("seeded draws diverged at %d", i)
			}
		}
	})
}

func TestStratified(t *testing.T) {
	pool := buildPool(map[string]int{"ch1": 40, "ch2": 40, "ch3": 40, "misc": 40})

	countByTag := func(p model.Paper) map[string]int {
		out := map[string]int{}
		for _, q := range p {
			out[q.Tag]++
		}
		return out
	}

	t.Run("respects rounded weights", func(t *testing.T) {
		s := New(rand.NewSource(7))
		paper, err := s.Stratified(pool, 20, map[string]float64{"ch1": 50, "ch2": 30, "ch3": 20}, nil, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if len(paper) != 20 {
			t.Fatalf("paper size = %d, want 20", len(paper))
		}
		got := countByTag(paper)
		want := map[string]int{"ch1": 10, "ch2": 6, "ch3": 4}
		for ch, n := range want {
			if got[ch] != n {
				t.Errorf("chapter %s got %d questions, want %d", ch, got[ch], n)
			}
		}
	})

	t.Run("backfills short chapters from the rest of the pool", func(t *testing.T) {
		short := buildPool(map[string]int{"ch1": 2, "ch2": 40, "misc": 40})
		s := New(rand.NewSource(7))
		paper, err := s.Stratified(short, 20, map[string]float64{"ch1": 50, "ch2": 50}, nil, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if len(paper) != 20 {
			t.Fatalf("paper size = %d, want 20", len(paper))
		}
		got := countByTag(paper)
		if got["ch1"] != 2 {
			t.Errorf("short chapter contributed %d, want its whole 2", got["ch1"])
		}
	})

	t.Run("exact size despite rounding overshoot", func(t *testing.T) {
		// Weights 33.5/33.5/33 on a 10-question paper round to 3+3+3,
		// one short. The paper must still land exactly on n.
		s := New(rand.NewSource(7))
		paper, err := s.Stratified(pool, 10, map[string]float64{"ch1": 33.5, "ch2": 33.5, "ch3": 33}, nil, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if len(paper) != 10 {
			t.Errorf("paper size = %d, want 10", len(paper))
		}
	})

	t.Run("tag lookup routes tags into chapters", func(t *testing.T) {
		// Two tags feed one chapter; a tag outside the lookup is
		// unweighted even though it matches a chapter ID by name.
		lookup := map[string]string{
			"ch1": "law",
			"ch2": "law",
			"ch3": "practice",
		}
		weights := map[string]float64{"law": 60, "practice": 40}

		s := New(rand.NewSource(7))
		paper, err := s.Stratified(pool, 20, weights, lookup, Options{})
		if err != nil {
			t.Fatal(err)
		}
		got := countByTag(paper)
		if law := got["ch1"] + got["ch2"]; law != 12 {
			t.Errorf("law chapter got %d questions, want 12", law)
		}
		if got["ch3"] != 8 {
			t.Errorf("practice chapter got %d questions, want 8", got["ch3"])
		}
	})

	t.Run("pool smaller than paper clamps to the pool", func(t *testing.T) {
		small := buildPool(map[string]int{"ch1": 3})
		s := New(rand.NewSource(7))
		paper, err := s.Stratified(small, 20, map[string]float64{"ch1": 100}, nil, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if len(paper) != 3 {
			t.Errorf("paper size = %d, want the whole pool of 3", len(paper))
		}
	})

	t.Run("rounding overshoot trims chapters at random", func(t *testing.T) {
		// Weights 50/50 on a 5-question paper round to 3+3, one over.
		// Across seeds the dropped question must come from either
		// chapter, not always the same one.
		even := buildPool(map[string]int{"ch1": 10, "ch2": 10})
		weights := map[string]float64{"ch1": 50, "ch2": 50}
		trimmed := map[string]bool{}
		for seed := int64(0); seed < 50; seed++ {
			s := New(rand.NewSource(seed))
			paper, err := s.Stratified(even, 5, weights, nil, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if len(paper) != 5 {
				t.Fatalf("seed %d: paper size = %d, want 5", seed, len(paper))
			}
			got := countByTag(paper)
			for _, ch := range []string{"ch1", "ch2"} {
				if got[ch] == 2 {
					trimmed[ch] = true
				}
			}
		}
		if !trimmed["ch1"] || !trimmed["ch2"] {
			t.Errorf("trim only ever hit %v, want both chapters over 50 seeds", trimmed)
		}
	})

	t.Run("same seed reproduces paper", func(t *testing.T) {
		weights := map[string]float64{"ch1": 50, "ch2": 50}
		a, _ := New(rand.NewSource(11)).Stratified(pool, 30, weights, nil, Options{RandomOrder: true})
		b, _ := New(rand.NewSource(11)).Stratified(pool, 30, weights, nil, Options{RandomOrder: true})
		for i := range a {
			if a[i].ID != b[i].ID {
				t.Fatalf("seeded draws diverged at %d", i)
			}
		}
	})
}

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights map[string]float64
		wantErr bool
	}{
		{"valid", map[string]float64{"a": 60, "b": 40}, false},
		{"nil", nil, true},
		{"empty", map[string]float64{}, true},
		{"negative", map[string]float64{"a": 120, "b": -20}, true},
		{"zero weight", map[string]float64{"a": 100, "b": 0}, true},
		{"sum short", map[string]float64{"a": 50, "b": 30}, true},
		{"sum over", map[string]float64{"a": 80, "b": 40}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateWeights(tc.weights)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateWeights(%v) err = %v, wantErr %v", tc.weights, err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidWeights) {
				t.Errorf("err %v does not wrap ErrInvalidWeights", err)
			}
		})
	}
}
