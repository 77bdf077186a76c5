package bank

import (
	"reflect"
	"testing"

	"github.com/polisure/certprep-backend/internal/model"
)

func TestNormalize_AliasResolution(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantID  string
		wantTxt string
	}{
		{
			name: "canonical english headers",
			rec: Record{
				"ID": "Q7", "Question": "What is a premium?",
				"OptionA": "first", "OptionB": "second", "Answer": "A",
			},
			wantID:  "Q7",
			wantTxt: "What is a premium?",
		},
		{
			name: "chinese headers",
			rec: Record{
				"題號": "12", "題目": "保險費是什麼？",
				"選項一": "甲", "選項二": "乙", "答案": "1",
			},
			wantID:  "12",
			wantTxt: "保險費是什麼？",
		},
		{
			name: "qp export headers",
			rec: Record{
				"qp_id": "33", "qp_title": "prompt",
				"qp_a1": "x", "qp_a2": "y", "qp_right": "2",
			},
			wantID:  "33",
			wantTxt: "prompt",
		},
		{
			name: "arabic numeral option headers",
			rec: Record{
				"編號": "5", "題幹": "q",
				"選項1": "one", "選項2": "two", "標準答案": "B",
			},
			wantID:  "5",
			wantTxt: "q",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			qs, stats := Normalize(RecordSet{Sheet: "s", Records: []Record{tc.rec}}, "f.xlsx")
			if stats.Rejected != 0 || len(qs) != 1 {
				t.Fatalf("expected 1 accepted question, got %d accepted %d rejected", len(qs), stats.Rejected)
			}
			if qs[0].ID != tc.wantID {
				t.Errorf("ID = %q, want %q", qs[0].ID, tc.wantID)
			}
			if qs[0].Text != tc.wantTxt {
				t.Errorf("Text = %q, want %q", qs[0].Text, tc.wantTxt)
			}
		})
	}
}

func TestNormalize_HeaderCanonicalization(t *testing.T) {
	// Headers with embedded whitespace and newlines must collide with their
	// clean variants.
	rec := Record{
		" ID ":      "1",
		"題 目":       "text",
		"Option\nA": "a",
		"OptionB ":  "b",
		"Answer":    "A",
	}
	qs, stats := Normalize(RecordSet{Sheet: "s", Records: []Record{rec}}, "")
	if stats.Accepted != 1 {
		t.Fatalf("accepted = %d, want 1 (rejected %d)", stats.Accepted, stats.Rejected)
	}
	if got := qs[0].Answer.Labels(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("answer = %v, want [A]", got)
	}
}

func TestNormalize_SequenceIDWhenMissing(t *testing.T) {
	recs := []Record{
		{"Question": "first", "OptionA": "a", "OptionB": "b", "Answer": "A"},
		{"Question": "second", "OptionA": "a", "OptionB": "b", "Answer": "B"},
	}
	qs, _ := Normalize(RecordSet{Sheet: "s", Records: recs}, "")
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].ID != "1" || qs[1].ID != "2" {
		t.Errorf("IDs = %q,%q, want 1,2", qs[0].ID, qs[1].ID)
	}
}

func TestDecodeAnswerValue(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A", []string{"A"}},
		{"ab", []string{"A", "B"}},
		{"2", []string{"B"}},
		{"2.0", []string{"B"}},
		{"(3)", []string{"C"}},
		{"（4）", []string{"D"}},
		{"一", []string{"A"}},
		{"二,四", []string{"B", "D"}},
		{"1、3", []string{"A", "C"}},
		{" B ", []string{"B"}},
		{"", nil},
		{"X", nil},
		{"1X", nil},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got := decodeAnswerValue(tc.in).Labels()
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("decodeAnswerValue(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_StarMarkerAnswers(t *testing.T) {
	t.Run("marker recovers missing answer column", func(t *testing.T) {
		rec := Record{
			"題目": "q", "選項一": "＊對的", "選項二": "錯的", "選項三": "*也對的",
		}
		qs, _ := Normalize(RecordSet{Sheet: "s", Records: []Record{rec}}, "")
		if len(qs) != 1 {
			t.Fatal("question rejected")
		}
		q := qs[0]
		if got := q.Answer.Labels(); !reflect.DeepEqual(got, []string{"A", "C"}) {
			t.Errorf("answer = %v, want [A C]", got)
		}
		// Markers must be stripped from displayed text.
		if q.Choices[0].Text != "對的" || q.Choices[2].Text != "也對的" {
			t.Errorf("markers not stripped: %+v", q.Choices)
		}
		if q.Type != model.QuestionTypeMultiple {
			t.Errorf("type = %s, want MULTIPLE", q.Type)
		}
	})

	t.Run("marker scan runs when answer column is a null marker", func(t *testing.T) {
		rec := Record{
			"題目": "q", "Answer": "nan", "選項一": "*yes", "選項二": "no",
		}
		qs, _ := Normalize(RecordSet{Sheet: "s", Records: []Record{rec}}, "")
		if len(qs) != 1 {
			t.Fatal("question rejected")
		}
		if got := qs[0].Answer.Labels(); !reflect.DeepEqual(got, []string{"A"}) {
			t.Errorf("answer = %v, want [A]", got)
		}
	})

	t.Run("explicit answer wins over markers", func(t *testing.T) {
		rec := Record{
			"題目": "q", "Answer": "B", "選項一": "*starred", "選項二": "plain",
		}
		qs, _ := Normalize(RecordSet{Sheet: "s", Records: []Record{rec}}, "")
		if got := qs[0].Answer.Labels(); !reflect.DeepEqual(got, []string{"B"}) {
			t.Errorf("answer = %v, want [B]", got)
		}
		if qs[0].Choices[0].Text != "starred" {
			t.Errorf("marker not stripped from non-answer option: %q", qs[0].Choices[0].Text)
		}
	})
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"no question text", Record{"OptionA": "a", "OptionB": "b", "Answer": "A"}},
		{"empty question text", Record{"Question": "  ", "OptionA": "a", "OptionB": "b"}},
		{"single choice", Record{"Question": "q", "OptionA": "a", "Answer": "A"}},
		{"answer outside choices", Record{"Question": "q", "OptionA": "a", "OptionB": "b", "Answer": "D"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			qs, stats := Normalize(RecordSet{Sheet: "s", Records: []Record{tc.rec}}, "")
			if len(qs) != 0 || stats.Rejected != 1 {
				t.Errorf("expected rejection, got %d accepted %d rejected", len(qs), stats.Rejected)
			}
		})
	}
}

func TestNormalize_BatchContinuesPastBadRows(t *testing.T) {
	recs := []Record{
		{"Question": "good one", "OptionA": "a", "OptionB": "b", "Answer": "A"},
		{"OptionA": "a", "OptionB": "b"}, // no text
		{"Question": "good two", "OptionA": "a", "OptionB": "b", "Answer": "B"},
	}
	qs, stats := Normalize(RecordSet{Sheet: "s", Records: recs}, "")
	if stats.Accepted != 2 || stats.Rejected != 1 {
		t.Fatalf("stats = %+v, want 2 accepted 1 rejected", stats)
	}
	if qs[0].Text != "good one" || qs[1].Text != "good two" {
		t.Errorf("unexpected surviving rows: %v", qs)
	}
}

func TestNormalize_TagAndProvenance(t *testing.T) {
	t.Run("explicit tag column", func(t *testing.T) {
		rec := Record{"Question": "q", "OptionA": "a", "OptionB": "b", "Answer": "A", "章節": "保險契約"}
		qs, _ := Normalize(RecordSet{Sheet: "第一章", Records: []Record{rec}}, "bank.xlsx")
		if qs[0].Tag != "保險契約" {
			t.Errorf("tag = %q, want 保險契約", qs[0].Tag)
		}
	})

	t.Run("sheet name fallback tag", func(t *testing.T) {
		rec := Record{"Question": "q", "OptionA": "a", "OptionB": "b", "Answer": "A"}
		qs, _ := Normalize(RecordSet{Sheet: "第一章", Records: []Record{rec}}, "bank.xlsx")
		if qs[0].Tag != "第一章" {
			t.Errorf("tag = %q, want sheet fallback 第一章", qs[0].Tag)
		}
		if qs[0].SourceFile != "bank.xlsx" || qs[0].SourceSheet != "第一章" {
			t.Errorf("provenance = %q/%q", qs[0].SourceFile, qs[0].SourceSheet)
		}
	})
}

func TestNormalize_TypeResolution(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want model.QuestionType
	}{
		{"explicit MC", Record{"Question": "q", "OptionA": "a", "OptionB": "b", "Answer": "A", "題型": "MC"}, model.QuestionTypeMultiple},
		{"explicit SC wins over multi answer", Record{"Question": "q", "OptionA": "a", "OptionB": "b", "Answer": "AB", "Type": "sc"}, model.QuestionTypeSingle},
		{"derived multiple", Record{"Question": "q", "OptionA": "a", "OptionB": "b", "Answer": "AB"}, model.QuestionTypeMultiple},
		{"derived single", Record{"Question": "q", "OptionA": "a", "OptionB": "b", "Answer": "B"}, model.QuestionTypeSingle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			qs, _ := Normalize(RecordSet{Sheet: "s", Records: []Record{tc.rec}}, "")
			if len(qs) != 1 {
				t.Fatal("question rejected")
			}
			if qs[0].Type != tc.want {
				t.Errorf("type = %s, want %s", qs[0].Type, tc.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := []Record{
		{"題目": "q1", "選項一": "*a", "選項二": "b", "章節": "契約"},
		{"Question": "q2", "OptionA": "a", "OptionB": "b", "OptionC": "c", "Answer": "2"},
	}
	first, _ := Normalize(RecordSet{Sheet: "sheet", Records: raw}, "f.xlsx")

	// Rebuild canonical records from the normalized pool and run again.
	again := make([]Record, len(first))
	for i, q := range first {
		rec := Record{"ID": q.ID, "Question": q.Text, "Answer": joinLabels(q.Answer), "Tag": q.Tag}
		for _, c := range q.Choices {
			rec["Option"+c.Label] = c.Text
		}
		if q.Explanation != "" {
			rec["Explanation"] = q.Explanation
		}
		again[i] = rec
	}
	second, stats := Normalize(RecordSet{Sheet: "sheet", Records: again}, "f.xlsx")
	if stats.Rejected != 0 {
		t.Fatalf("re-normalization rejected %d rows", stats.Rejected)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func joinLabels(s model.LabelSet) string {
	out := ""
	for _, l := range s.Labels() {
		out += l
	}
	return out
}

func TestNormalize_InvariantsHold(t *testing.T) {
	recs := []Record{
		{"題目": "q1", "選項一": "a", "選項二": "b", "答案": "(2)"},
		{"Question": "q2", "OptionA": "a", "OptionB": "b", "OptionC": "c", "Answer": "一"},
		{"Question": "q3", "qp_a1": "a", "qp_a2": "*b", "qp_a3": "c"},
	}
	qs, _ := Normalize(RecordSet{Sheet: "s", Records: recs}, "")
	for _, q := range qs {
		if len(q.Choices) < 2 {
			t.Errorf("question %s has %d choices", q.ID, len(q.Choices))
		}
		if !q.Answer.SubsetOf(q.ChoiceLabels()) {
			t.Errorf("question %s answer %v escapes choices", q.ID, q.Answer.Labels())
		}
	}
}
