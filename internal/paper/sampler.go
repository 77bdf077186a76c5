package paper

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/polisure/certprep-backend/internal/model"
)

var (
	ErrEmptyPool      = errors.New("question pool is empty")
	ErrInvalidWeights = errors.New("invalid chapter weights")
)

// Options controls how a sampled paper is presented.
type Options struct {
	RandomOrder    bool
	ShuffleOptions bool
}

// Sampler draws papers from a question pool. All randomness flows
// through the injected source, so a fixed seed reproduces a paper.
type Sampler struct {
	rng *rand.Rand
}

func New(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Sampler{rng: rand.New(src)}
}

// Uniform draws n questions without replacement. n <= 0 or n larger
// than the gradable pool takes the whole pool.
func (s *Sampler) Uniform(pool []model.Question, n int, opts Options) (model.Paper, error) {
	gradable := filterGradable(pool)
	if len(gradable) == 0 {
		return nil, ErrEmptyPool
	}

	picked := make([]model.Question, len(gradable))
	copy(picked, gradable)
	if opts.RandomOrder || (n > 0 && n < len(picked)) {
		s.rng.Shuffle(len(picked), func(i, j int) {
			picked[i], picked[j] = picked[j], picked[i]
		})
	}
	if n > 0 && n < len(picked) {
		picked = picked[:n]
	}

	return s.finish(picked, opts), nil
}

// Stratified draws n questions split across chapters according to
// weights. Each weight is a percentage of n; per-chapter counts are
// rounded, then the paper is trimmed or backfilled from unweighted
// questions to land exactly on n. n <= 0 or n larger than the
// gradable pool takes the whole pool. Weights must be positive and
// sum to 100.
//
// tagChapters maps question tags to chapter IDs; a nil map uses each
// tag itself as its chapter. Questions resolving to no weighted
// chapter land in an unweighted bucket that backfill draws from
// first.
func (s *Sampler) Stratified(pool []model.Question, n int, weights map[string]float64, tagChapters map[string]string, opts Options) (model.Paper, error) {
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	gradable := filterGradable(pool)
	if len(gradable) == 0 {
		return nil, ErrEmptyPool
	}
	if n <= 0 || n > len(gradable) {
		n = len(gradable)
	}

	chapters := make([]string, 0, len(weights))
	for ch := range weights {
		chapters = append(chapters, ch)
	}
	sort.Strings(chapters)

	buckets := make(map[string][]model.Question, len(chapters))
	var others []model.Question
	for _, q := range gradable {
		ch, ok := matchChapter(q, weights, tagChapters)
		if ok {
			buckets[ch] = append(buckets[ch], q)
		} else {
			others = append(others, q)
		}
	}

	picked := make([]model.Question, 0, n)
	var leftovers []model.Question
	for _, ch := range chapters {
		bucket := buckets[ch]
		s.rng.Shuffle(len(bucket), func(i, j int) {
			bucket[i], bucket[j] = bucket[j], bucket[i]
		})
		want := int(math.Round(float64(n) * weights[ch] / 100))
		if want > len(bucket) {
			want = len(bucket)
		}
		picked = append(picked, bucket[:want]...)
		leftovers = append(leftovers, bucket[want:]...)
	}

	if len(picked) > n {
		// Rounding overflow: drop the excess at random, not from
		// whichever chapter happened to be appended last.
		s.rng.Shuffle(len(picked), func(i, j int) {
			picked[i], picked[j] = picked[j], picked[i]
		})
		picked = picked[:n]
	}
	if len(picked) < n {
		s.rng.Shuffle(len(others), func(i, j int) {
			others[i], others[j] = others[j], others[i]
		})
		fill := append(others, leftovers...)
		picked = append(picked, fill[:n-len(picked)]...)
	}

	return s.finish(picked, opts), nil
}

// ValidateWeights rejects nil, empty, non-positive, and badly summed
// weight tables.
func ValidateWeights(weights map[string]float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: no chapters", ErrInvalidWeights)
	}
	sum := 0.0
	for ch, w := range weights {
		if w <= 0 {
			return fmt.Errorf("%w: chapter %q has weight %v", ErrInvalidWeights, ch, w)
		}
		sum += w
	}
	if math.Abs(sum-100) > 1e-6 {
		return fmt.Errorf("%w: weights sum to %v, want 100", ErrInvalidWeights, sum)
	}
	return nil
}

func (s *Sampler) finish(picked []model.Question, opts Options) model.Paper {
	if opts.RandomOrder {
		s.rng.Shuffle(len(picked), func(i, j int) {
			picked[i], picked[j] = picked[j], picked[i]
		})
	}
	out := make(model.Paper, len(picked))
	for i, q := range picked {
		if opts.ShuffleOptions {
			q = ShuffleOptions(q, s.rng)
		}
		out[i] = q
	}
	return out
}

func matchChapter(q model.Question, weights map[string]float64, tagChapters map[string]string) (string, bool) {
	for _, tag := range q.Tags() {
		ch := tag
		if tagChapters != nil {
			mapped, ok := tagChapters[tag]
			if !ok {
				continue
			}
			ch = mapped
		}
		if _, ok := weights[ch]; ok {
			return ch, true
		}
	}
	return "", false
}

func filterGradable(pool []model.Question) []model.Question {
	out := make([]model.Question, 0, len(pool))
	for _, q := range pool {
		if q.Gradable() {
			out = append(out, q)
		}
	}
	return out
}
