package bank

import (
	"strconv"
	"strings"

	"github.com/polisure/certprep-backend/internal/model"
)

// Column alias tables, in priority order. The canonical English name comes
// first so normalizing an already-canonical export resolves to itself; the
// remaining aliases cover the column-naming conventions seen across the
// certification bank files (Chinese headers and qp_* exports included).
var (
	idAliases          = []string{"ID", "編號", "題目編號", "題號", "qp_id"}
	textAliases        = []string{"Question", "題目", "題幹", "題目內容", "qp_title", "問題"}
	imageAliases       = []string{"Image", "圖片", "圖檔"}
	answerAliases      = []string{"Answer", "正確選項", "答案", "標準答案", "qp_right", "CorrectAnswer"}
	explanationAliases = []string{"Explanation", "解答說明", "解析", "詳解", "qp_explain"}
	tagAliases         = []string{"Tag", "章節", "分類", "科目", "AI分類章節", "qp_ch"}
	typeAliases        = []string{"Type", "題型"}
)

// optionSlots maps each option label to its column aliases, again with the
// canonical name first. Both the Chinese numeral-word form (選項一) and the
// Arabic-numeral form (選項1) appear in the wild.
var optionSlots = []struct {
	label   string
	aliases []string
}{
	{"A", []string{"OptionA", "選項一", "選項1", "A", "qp_a1", "答案選項1"}},
	{"B", []string{"OptionB", "選項二", "選項2", "B", "qp_a2", "答案選項2"}},
	{"C", []string{"OptionC", "選項三", "選項3", "C", "qp_a3", "答案選項3"}},
	{"D", []string{"OptionD", "選項四", "選項4", "D", "qp_a4", "答案選項4"}},
	{"E", []string{"OptionE", "選項五", "選項5", "E", "qp_a5", "答案選項5"}},
}

// answerCodeToLabel maps numeric and Chinese-numeral answer codes to the
// corresponding option label. Letters A-E map to themselves.
var answerCodeToLabel = map[rune]string{
	'1': "A", '2': "B", '3': "C", '4': "D", '5': "E",
	'一': "A", '二': "B", '三': "C", '四': "D", '五': "E",
	'A': "A", 'B': "B", 'C': "C", 'D': "D", 'E': "E",
}

// answerMarkers are the glyphs that flag a correct option inline in its cell
// (half-width and full-width star).
var answerMarkers = []string{"*", "＊"}

// NormalizeStats counts the outcome of one normalization batch.
type NormalizeStats struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// Normalize converts the raw rows of one sheet into canonical questions.
// Malformed rows are dropped and counted, never failing the batch. The
// operation is deterministic and idempotent: re-normalizing rows built from
// canonical questions yields an identical pool.
func Normalize(set RecordSet, sourceFile string) ([]model.Question, NormalizeStats) {
	questions := make([]model.Question, 0, len(set.Records))
	var stats NormalizeStats

	for i, raw := range set.Records {
		rec := raw.Canonicalized()

		q, ok := normalizeRecord(rec, i)
		if !ok {
			stats.Rejected++
			continue
		}

		if q.Tag == "" {
			q.Tag = strings.TrimSpace(set.Sheet)
		}
		q.SourceFile = strings.TrimSpace(sourceFile)
		q.SourceSheet = strings.TrimSpace(set.Sheet)

		questions = append(questions, q)
		stats.Accepted++
	}

	return questions, stats
}

// NormalizeAll runs Normalize over every sheet of a workbook and merges the
// resulting pools.
func NormalizeAll(sets []RecordSet, sourceFile string) ([]model.Question, NormalizeStats) {
	var pool []model.Question
	var total NormalizeStats
	for _, set := range sets {
		qs, stats := Normalize(set, sourceFile)
		pool = append(pool, qs...)
		total.Accepted += stats.Accepted
		total.Rejected += stats.Rejected
	}
	return pool, total
}

func normalizeRecord(rec Record, seq int) (model.Question, bool) {
	var q model.Question

	// ID: alias lookup, else a 1-based sequence number local to the batch.
	if id, ok := rec.Get(idAliases...); ok {
		q.ID = trimFloatSuffix(id)
	} else {
		q.ID = strconv.Itoa(seq + 1)
	}

	// A row without resolvable question text is rejected outright.
	text, ok := rec.Get(textAliases...)
	if !ok {
		return model.Question{}, false
	}
	q.Text = text

	if img, ok := rec.Get(imageAliases...); ok {
		q.ImageRef = img
	}

	// Resolve option cells before answers: the marker scan needs the raw
	// cell text, and marker stripping feeds the displayed choice text.
	optTexts := make(map[string]string, len(optionSlots))
	for _, slot := range optionSlots {
		if v, ok := rec.Get(slot.aliases...); ok {
			optTexts[slot.label] = v
		}
	}

	// Answer resolution, strategy (a): explicit answer column.
	answer := model.LabelSet{}
	if raw, ok := rec.Get(answerAliases...); ok {
		answer = decodeAnswerValue(raw)
	}

	// Strategy (b): in-text markers. Runs whenever (a) produced nothing
	// usable, recovering answers that (a) silently dropped.
	if len(answer) == 0 {
		for _, slot := range optionSlots {
			if hasMarker(optTexts[slot.label]) {
				answer[slot.label] = true
			}
		}
	}

	// Markers are display noise either way; strip them from every option.
	for label, txt := range optTexts {
		optTexts[label] = stripMarker(txt)
	}

	// Pack choices in label order, keeping only populated slots.
	for _, slot := range optionSlots {
		if txt := optTexts[slot.label]; !cellEmpty(txt) {
			q.Choices = append(q.Choices, model.Choice{Label: slot.label, Text: txt})
		}
	}
	if len(q.Choices) < 2 {
		return model.Question{}, false
	}

	// An answer referencing labels outside the packed choices is malformed.
	if !answer.SubsetOf(q.ChoiceLabels()) {
		return model.Question{}, false
	}
	q.Answer = answer

	if exp, ok := rec.Get(explanationAliases...); ok {
		q.Explanation = exp
	}
	if tag, ok := rec.Get(tagAliases...); ok {
		q.Tag = tag
	}

	q.Type = resolveType(rec, answer)

	return q, true
}

// decodeAnswerValue normalizes an explicit answer cell into a label set.
// Handles letter codes ("B", "AB"), numeric codes ("2", "2.0", "(2)"),
// Chinese numerals ("二") and common separators. Returns an empty set when
// nothing decodable remains, so the marker scan can take over.
func decodeAnswerValue(raw string) model.LabelSet {
	s := strings.ToUpper(strings.TrimSpace(raw))

	// Surrounding brackets, both half- and full-width.
	for _, b := range []string{"(", ")", "（", "）", "[", "]", "【", "】"} {
		s = strings.ReplaceAll(s, b, "")
	}
	s = trimFloatSuffix(s)

	// Separators between multi-answer codes.
	for _, sep := range []string{",", "、", ";", "；", " ", "　"} {
		s = strings.ReplaceAll(s, sep, "")
	}

	set := model.LabelSet{}
	for _, r := range s {
		label, ok := answerCodeToLabel[r]
		if !ok {
			// One undecodable rune poisons the whole value; better to
			// fall back to the marker scan than to guess.
			return model.LabelSet{}
		}
		set[label] = true
	}
	return set
}

// trimFloatSuffix undoes float-formatted integers ("2.0" → "2") produced by
// spreadsheet numeric cells.
func trimFloatSuffix(s string) string {
	return strings.TrimSuffix(s, ".0")
}

func hasMarker(cell string) bool {
	t := strings.TrimSpace(cell)
	for _, m := range answerMarkers {
		if strings.HasPrefix(t, m) {
			return true
		}
	}
	return false
}

func stripMarker(cell string) string {
	t := strings.TrimSpace(cell)
	for changed := true; changed; {
		changed = false
		for _, m := range answerMarkers {
			if strings.HasPrefix(t, m) {
				t = strings.TrimSpace(strings.TrimPrefix(t, m))
				changed = true
			}
		}
	}
	return t
}

// resolveType uses an explicit type column when present, otherwise derives
// the type from the answer cardinality.
func resolveType(rec Record, answer model.LabelSet) model.QuestionType {
	if raw, ok := rec.Get(typeAliases...); ok {
		switch strings.ToUpper(strings.TrimSpace(raw)) {
		case "MULTIPLE", "MC", "複選", "複選題", "多選":
			return model.QuestionTypeMultiple
		case "SINGLE", "SC", "單選", "單選題":
			return model.QuestionTypeSingle
		}
	}
	if len(answer) > 1 {
		return model.QuestionTypeMultiple
	}
	return model.QuestionTypeSingle
}
