package paper

import (
	"math/rand"

	"github.com/polisure/certprep-backend/internal/model"
)

// ShuffleOptions returns a copy of q with its choices permuted and
// relabeled A, B, C... in the new order. The answer set is remapped by
// ordinal position, so duplicate option texts cannot corrupt it.
func ShuffleOptions(q model.Question, rng *rand.Rand) model.Question {
	out := q
	n := len(q.Choices)
	if n < 2 {
		return out
	}

	perm := rng.Perm(n)
	choices := make([]model.Choice, n)
	answer := make(model.LabelSet, len(q.Answer))
	for pos, orig := range perm {
		label := positionLabel(pos)
		choices[pos] = model.Choice{Label: label, Text: q.Choices[orig].Text}
		if q.Answer[q.Choices[orig].Label] {
			answer[label] = true
		}
	}

	out.Choices = choices
	out.Answer = answer
	return out
}

func positionLabel(pos int) string {
	return string(rune('A' + pos))
}
