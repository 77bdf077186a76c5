package exam

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polisure/certprep-backend/internal/grading"
	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/paper"
)

type State string

const (
	StateIdle             State = "IDLE"
	StateSectionActive    State = "SECTION_ACTIVE"
	StateSectionSubmitted State = "SECTION_SUBMITTED"
	StateFinalized        State = "FINALIZED"
)

var (
	ErrNoActiveSection  = errors.New("no section in progress")
	ErrSectionActive    = errors.New("a section is already in progress")
	ErrSectionsRemain   = errors.New("sections remain to be taken")
	ErrAlreadyFinalized = errors.New("session already finalized")
	ErrUnknownQuestion  = errors.New("question is not on the current paper")
)

// Session drives one mock-exam attempt through its sections. It is
// safe for concurrent use: the timer feed polls CheckExpiry from its
// own goroutine while handlers record answers, so every state access
// goes through one mutex. Time is polled through the injected clock,
// never through background timers.
type Session struct {
	spec    MockSpec
	sampler *paper.Sampler
	clock   func() time.Time

	mu           sync.Mutex
	attemptID    uuid.UUID
	state        State
	sectionIdx   int
	paper        model.Paper
	answers      map[string]model.LabelSet
	startedAt    time.Time
	sectionStart time.Time
	sections     []model.SectionResult
	wrongItems   []model.GradedRow
	result       *model.Result
}

type SessionOption func(*Session)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.clock = now }
}

func NewSession(spec MockSpec, sampler *paper.Sampler, opts ...SessionOption) (*Session, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		sampler = paper.New(nil)
	}
	s := &Session{
		spec:      spec,
		sampler:   sampler,
		clock:     time.Now,
		attemptID: uuid.New(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Spec is fixed at construction and needs no lock.
func (s *Session) Spec() MockSpec { return s.spec }

// ID returns the attempt's identifier. Reset rotates it.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SectionIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sectionIdx
}

func (s *Session) Paper() model.Paper {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paper
}

// CurrentSection returns the spec of the section the session is on.
func (s *Session) CurrentSection() (SectionSpec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSection()
}

func (s *Session) currentSection() (SectionSpec, bool) {
	if s.sectionIdx >= len(s.spec.Sections) {
		return SectionSpec{}, false
	}
	return s.spec.Sections[s.sectionIdx], true
}

func (s *Session) HasMoreSections() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sectionIdx < len(s.spec.Sections)
}

// SectionResults returns the results of the sections submitted so far.
func (s *Session) SectionResults() []model.SectionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sectionResults()
}

func (s *Session) sectionResults() []model.SectionResult {
	out := make([]model.SectionResult, len(s.sections))
	copy(out, s.sections)
	return out
}

// StartSection samples the current section's paper from pool and
// starts its timer. Valid from IDLE and, while sections remain, from
// SECTION_SUBMITTED.
func (s *Session) StartSection(pool []model.Question) (model.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle, StateSectionSubmitted:
	case StateSectionActive:
		return nil, ErrSectionActive
	default:
		return nil, ErrAlreadyFinalized
	}
	sec, ok := s.currentSection()
	if !ok {
		return nil, fmt.Errorf("all %d sections already taken", len(s.spec.Sections))
	}

	opts := paper.Options{RandomOrder: true, ShuffleOptions: true}
	var (
		p   model.Paper
		err error
	)
	if sec.ChapterWeights != nil {
		p, err = s.sampler.Stratified(pool, sec.QuestionCount, sec.ChapterWeights, sec.TagChapters, opts)
	} else {
		p, err = s.sampler.Uniform(pool, sec.QuestionCount, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("sampling section %s: %w", sec.Name, err)
	}

	now := s.clock()
	if s.state == StateIdle {
		s.startedAt = now
	}
	s.paper = p
	s.answers = make(map[string]model.LabelSet, len(p))
	s.sectionStart = now
	s.state = StateSectionActive
	return p, nil
}

// SetAnswer records the candidate's current pick for one question.
// Passing an empty set clears it.
func (s *Session) SetAnswer(questionID string, labels model.LabelSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSectionActive {
		return ErrNoActiveSection
	}
	if _, ok := s.paper.QuestionByID(questionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if len(labels) == 0 {
		delete(s.answers, questionID)
		return nil
	}
	s.answers[questionID] = labels
	return nil
}

// Answers returns a copy of the submitted-answer map.
func (s *Session) Answers() map[string]model.LabelSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.LabelSet, len(s.answers))
	for id, ls := range s.answers {
		out[id] = ls
	}
	return out
}

// Remaining reports the time left on the active section's clock,
// floored at zero.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSectionActive {
		return 0
	}
	sec, _ := s.currentSection()
	left := sec.TimeLimit - s.clock().Sub(s.sectionStart)
	if left < 0 {
		return 0
	}
	return left
}

// Submit grades the active section and advances the section index.
func (s *Session) Submit() (model.SectionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submit()
}

func (s *Session) submit() (model.SectionResult, error) {
	if s.state != StateSectionActive {
		return model.SectionResult{}, ErrNoActiveSection
	}
	sec, _ := s.currentSection()

	rep, err := grading.Grade(s.paper, s.answers)
	if err != nil {
		return model.SectionResult{}, fmt.Errorf("grading section %s: %w", sec.Name, err)
	}

	res := model.SectionResult{
		Name:    sec.Name,
		Score:   rep.ScorePercent,
		Correct: rep.CorrectCount,
		Total:   rep.TotalCount,
	}
	s.sections = append(s.sections, res)
	s.wrongItems = append(s.wrongItems, rep.Wrong()...)
	s.sectionIdx++
	s.state = StateSectionSubmitted
	return res, nil
}

// CheckExpiry auto-submits the active section once its time limit has
// elapsed. It reports whether this call submitted the section. Outside
// SECTION_ACTIVE it is a no-op, so polling after expiry can never
// double-submit.
func (s *Session) CheckExpiry() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSectionActive {
		return false, nil
	}
	sec, _ := s.currentSection()
	if s.clock().Sub(s.sectionStart) < sec.TimeLimit {
		return false, nil
	}
	if _, err := s.submit(); err != nil {
		return false, err
	}
	return true, nil
}

// Finalize evaluates the pass rule over all section results and builds
// the attempt's Result. The second return value is true only on the
// call that produced the result, so the caller persists exactly once.
// Repeat calls return the cached result.
func (s *Session) Finalize() (model.Result, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinalized {
		return *s.result, false, nil
	}
	if s.state != StateSectionSubmitted {
		return model.Result{}, false, ErrNoActiveSection
	}
	if s.sectionIdx < len(s.spec.Sections) {
		return model.Result{}, false, fmt.Errorf("%w: %d of %d taken", ErrSectionsRemain, s.sectionIdx, len(s.spec.Sections))
	}

	scores := make([]int, len(s.sections))
	totalScore, correct, total := 0, 0, 0
	for i, sec := range s.sections {
		scores[i] = sec.Score
		totalScore += sec.Score
		correct += sec.Correct
		total += sec.Total
	}
	passed, failReason := s.spec.Rule.Evaluate(scores)

	now := s.clock()
	res := model.Result{
		AttemptID:       s.attemptID,
		CertType:        s.spec.CertType,
		Mode:            "mock",
		ScorePercent:    roundPercent(correct, total),
		CorrectCount:    correct,
		TotalCount:      total,
		Sections:        s.sectionResults(),
		TotalScore:      totalScore,
		Passed:          passed,
		FailReason:      failReason,
		DurationSeconds: int(now.Sub(s.startedAt).Seconds()),
		WrongItems:      s.wrongItems,
		FinishedAt:      now,
	}
	s.result = &res
	s.state = StateFinalized
	return res, true, nil
}

// Reset abandons the attempt from any state and returns to IDLE under
// a fresh attempt ID. Nothing about the abandoned attempt is graded or
// retained.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attemptID = uuid.New()
	s.state = StateIdle
	s.sectionIdx = 0
	s.paper = nil
	s.answers = nil
	s.startedAt = time.Time{}
	s.sectionStart = time.Time{}
	s.sections = nil
	s.wrongItems = nil
	s.result = nil
}

func roundPercent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(correct)/float64(total)*100 + 0.5)
}
