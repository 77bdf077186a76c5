package model

// Paper is the ordered, sampled, possibly option-shuffled set of questions
// presented for one exam attempt or section. It is a value object: created
// once per attempt and never mutated afterwards.
type Paper []Question

// QuestionByID finds a question on the paper by its ID.
func (p Paper) QuestionByID(id string) (Question, bool) {
	for _, q := range p {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// IDs returns the question IDs in paper order.
func (p Paper) IDs() []string {
	ids := make([]string, len(p))
	for i, q := range p {
		ids[i] = q.ID
	}
	return ids
}

// PaperQuestion is a question as sent to the client: the gold answer and
// explanation are withheld until the section is graded.
type PaperQuestion struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Choices  []Choice     `json:"choices"`
	ImageRef string       `json:"image_ref,omitempty"`
	Tag      string       `json:"tag,omitempty"`
}

// ForClient strips answers and explanations from the paper.
func (p Paper) ForClient() []PaperQuestion {
	out := make([]PaperQuestion, len(p))
	for i, q := range p {
		out[i] = PaperQuestion{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Choices:  q.Choices,
			ImageRef: q.ImageRef,
			Tag:      q.Tag,
		}
	}
	return out
}
