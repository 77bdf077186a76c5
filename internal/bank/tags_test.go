package bank

import (
	"reflect"
	"testing"

	"github.com/polisure/certprep-backend/internal/model"
)

func poolFixture() []model.Question {
	return []model.Question{
		{ID: "1", Text: "a", Tag: "契約;法規", Answer: model.NewLabelSet("A")},
		{ID: "2", Text: "b", Tag: "法規", Answer: model.NewLabelSet("B")},
		{ID: "3", Text: "c", Tag: "稅務", Answer: model.NewLabelSet("A")},
		{ID: "4", Text: "d", Tag: "契約"},
	}
}

func TestAllTags(t *testing.T) {
	got := AllTags(poolFixture())
	want := []string{"契約", "法規", "稅務"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllTags = %v, want %v", got, want)
	}
}

func TestFilterByTags(t *testing.T) {
	tests := []struct {
		name   string
		picked []string
		want   []string
	}{
		{"empty pick keeps pool", nil, []string{"1", "2", "3", "4"}},
		{"single tag", []string{"稅務"}, []string{"3"}},
		{"multi-valued tag matches any part", []string{"契約"}, []string{"1", "4"}},
		{"union of picks", []string{"法規", "稅務"}, []string{"1", "2", "3"}},
		{"unknown tag yields empty", []string{"missing"}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterByTags(poolFixture(), tc.picked)
			ids := make([]string, 0, len(got))
			for _, q := range got {
				ids = append(ids, q.ID)
			}
			if len(ids) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(ids, tc.want) {
				t.Errorf("FilterByTags(%v) = %v, want %v", tc.picked, ids, tc.want)
			}
		})
	}
}

func TestGradable(t *testing.T) {
	got := Gradable(poolFixture())
	if len(got) != 3 {
		t.Fatalf("Gradable kept %d questions, want 3", len(got))
	}
	for _, q := range got {
		if len(q.Answer) == 0 {
			t.Errorf("answerless question %s survived", q.ID)
		}
	}
}

func TestQualifyIDs(t *testing.T) {
	// Two workbooks both number their rows from 1; a merged pool must
	// keep the colliding rows apart.
	merged := []model.Question{
		{ID: "1", Text: "from first file", SourceFile: "a.xlsx", SourceSheet: "Sheet1", Answer: model.NewLabelSet("A")},
		{ID: "1", Text: "from second file", SourceFile: "b.xlsx", SourceSheet: "Sheet1", Answer: model.NewLabelSet("B")},
		{ID: "1", Text: "from second sheet", SourceFile: "b.xlsx", SourceSheet: "Sheet2", Answer: model.NewLabelSet("A")},
	}

	got := QualifyIDs(merged)
	seen := make(map[string]bool, len(got))
	for _, q := range got {
		if seen[q.ID] {
			t.Errorf("qualified ID %s still collides", q.ID)
		}
		seen[q.ID] = true
	}
	if got[0].ID != "a.xlsx#Sheet1#1" {
		t.Errorf("qualified ID = %s, want a.xlsx#Sheet1#1", got[0].ID)
	}
	// The input pool is left untouched.
	if merged[0].ID != "1" {
		t.Errorf("input pool mutated: ID = %s", merged[0].ID)
	}
}
