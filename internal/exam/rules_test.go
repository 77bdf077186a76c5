package exam

import (
	"errors"
	"testing"
	"time"
)

func TestPassRule_TotalAndMin(t *testing.T) {
	rule := PassRule{Mode: PassModeTotalAndMin, PassTotal: 140, PassMinEach: 60}

	tests := []struct {
		name       string
		scores     []int
		passed     bool
		failReason string
	}{
		{"comfortable pass", []int{80, 65}, true, ""},
		{"section below floor", []int{80, 55}, false, FailReasonSectionBelowFloor},
		{"insufficient total", []int{70, 65}, false, FailReasonInsufficientTotal},
		{"total checked before floor", []int{75, 55}, false, FailReasonInsufficientTotal},
		{"exact boundary", []int{80, 60}, true, ""},
		{"total exactly at threshold", []int{70, 70}, true, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			passed, reason := rule.Evaluate(tc.scores)
			if passed != tc.passed {
				t.Errorf("passed = %v, want %v", passed, tc.passed)
			}
			if reason != tc.failReason {
				t.Errorf("reason = %q, want %q", reason, tc.failReason)
			}
		})
	}
}

func TestPassRule_Single(t *testing.T) {
	rule := PassRule{Mode: PassModeSingle, PassScore: 70}

	if passed, _ := rule.Evaluate([]int{69}); passed {
		t.Error("69 passed, want fail")
	}
	if passed, reason := rule.Evaluate([]int{70}); !passed || reason != "" {
		t.Errorf("70: passed=%v reason=%q, want pass", passed, reason)
	}
}

func TestMockSpec_Validate(t *testing.T) {
	valid := MockSpec{
		CertType: "life",
		Sections: []SectionSpec{
			{Name: "s1", QuestionCount: 50, TimeLimit: time.Hour},
		},
		Rule: PassRule{Mode: PassModeSingle, PassScore: 70},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	mutate := func(fn func(*MockSpec)) MockSpec {
		m := valid
		m.Sections = append([]SectionSpec(nil), valid.Sections...)
		fn(&m)
		return m
	}

	tests := []struct {
		name string
		spec MockSpec
	}{
		{"no sections", mutate(func(m *MockSpec) { m.Sections = nil })},
		{"no cert type", mutate(func(m *MockSpec) { m.CertType = "" })},
		{"zero question count", mutate(func(m *MockSpec) { m.Sections[0].QuestionCount = 0 })},
		{"zero time limit", mutate(func(m *MockSpec) { m.Sections[0].TimeLimit = 0 })},
		{"unknown rule mode", mutate(func(m *MockSpec) { m.Rule.Mode = "MAYBE" })},
		{"single rule without score", mutate(func(m *MockSpec) { m.Rule.PassScore = 0 })},
		{"weights not summing to 100", mutate(func(m *MockSpec) {
			m.Sections[0].ChapterWeights = map[string]float64{"a": 50, "b": 30}
		})},
		{"declared but empty weights", mutate(func(m *MockSpec) {
			m.Sections[0].ChapterWeights = map[string]float64{}
		})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("err = %v, want ErrInvalidSpec", err)
			}
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	specs := c.List()
	if len(specs) != 3 {
		t.Fatalf("catalog has %d specs, want 3", len(specs))
	}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			t.Errorf("catalog spec %s invalid: %v", s.CertType, err)
		}
	}

	life, ok := c.Get("life")
	if !ok {
		t.Fatal("life cert missing")
	}
	if len(life.Sections) != 2 || life.Sections[0].QuestionCount != 100 || life.Sections[1].QuestionCount != 50 {
		t.Errorf("life sections = %+v", life.Sections)
	}
	if life.Sections[0].Name != "保險法規" || life.Sections[1].Name != "保險實務" {
		t.Errorf("life section names = %q, %q; the 100-question slot belongs to 保險法規",
			life.Sections[0].Name, life.Sections[1].Name)
	}
	if life.Rule.Mode != PassModeTotalAndMin || life.Rule.PassTotal != 140 || life.Rule.PassMinEach != 60 {
		t.Errorf("life rule = %+v", life.Rule)
	}

	fc, _ := c.Get("foreign-currency")
	if fc.Rule.Mode != PassModeSingle || fc.Rule.PassScore != 70 {
		t.Errorf("foreign-currency rule = %+v", fc.Rule)
	}
	if len(fc.Sections) != 1 || fc.Sections[0].TimeLimit != 60*time.Minute {
		t.Errorf("foreign-currency sections = %+v", fc.Sections)
	}
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	spec := MockSpec{
		CertType: "life",
		Sections: []SectionSpec{{Name: "s", QuestionCount: 10, TimeLimit: time.Hour}},
		Rule:     PassRule{Mode: PassModeSingle, PassScore: 70},
	}
	if _, err := NewCatalog(spec, spec); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("err = %v, want ErrInvalidSpec", err)
	}
}
