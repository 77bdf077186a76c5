package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/polisure/certprep-backend/internal/bank"
	"github.com/polisure/certprep-backend/internal/exam"
	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/paper"
)

var ErrNoPracticeSession = errors.New("no practice session in progress")

// PracticeService runs untimed step-through drills. One session per agent,
// held in memory; starting a new drill replaces the old one.
type PracticeService struct {
	banks *BankService
	log   zerolog.Logger

	mu       sync.Mutex
	sessions map[int]*exam.Practice
	papers   map[int]model.Paper
}

func NewPracticeService(banks *BankService, log zerolog.Logger) *PracticeService {
	return &PracticeService{
		banks:    banks,
		log:      log.With().Str("component", "practice_service").Logger(),
		sessions: make(map[int]*exam.Practice),
		papers:   make(map[int]model.Paper),
	}
}

// Start samples a uniform paper from the tag-filtered pool and begins a new
// drill for the agent. count <= 0 drills the whole filtered pool.
func (s *PracticeService) Start(ctx context.Context, agentID int, certType string, tags []string, count int) (model.Paper, error) {
	pool, err := s.banks.FilteredPool(ctx, certType, tags)
	if err != nil {
		return nil, err
	}

	sampler := paper.New(rand.NewSource(time.Now().UnixNano()))
	p, err := sampler.Uniform(pool, count, paper.Options{RandomOrder: true, ShuffleOptions: true})
	if err != nil {
		return nil, err
	}

	practice, err := exam.NewPractice(p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[agentID] = practice
	s.papers[agentID] = p
	s.mu.Unlock()

	s.log.Info().
		Int("agent_id", agentID).
		Str("cert_type", certType).
		Strs("tags", tags).
		Int("questions", len(p)).
		Msg("practice started")
	return p, nil
}

// Current returns the question under the cursor plus any feedback already
// given for it.
func (s *PracticeService) Current(agentID int) (model.Question, *model.GradedRow, error) {
	p, err := s.session(agentID)
	if err != nil {
		return model.Question{}, nil, err
	}
	q := p.Current()
	if row, ok := p.Graded(); ok {
		return q, &row, nil
	}
	return q, nil, nil
}

// Submit grades the current question immediately and returns the feedback.
func (s *PracticeService) Submit(agentID int, answer model.LabelSet) (model.GradedRow, error) {
	p, err := s.session(agentID)
	if err != nil {
		return model.GradedRow{}, err
	}
	return p.SubmitCurrent(answer), nil
}

// Next advances the cursor.
func (s *PracticeService) Next(agentID int) error {
	p, err := s.session(agentID)
	if err != nil {
		return err
	}
	return p.Next()
}

// Prev moves the cursor back.
func (s *PracticeService) Prev(agentID int) error {
	p, err := s.session(agentID)
	if err != nil {
		return err
	}
	return p.Prev()
}

// Progress reports answered/correct counts and position.
func (s *PracticeService) Progress(agentID int) (answered, correct, cursor, total int, err error) {
	p, err := s.session(agentID)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	answered, correct = p.Progress()
	return answered, correct, p.Cursor(), p.Len(), nil
}

// Finish returns the drill recap and ends the session.
func (s *PracticeService) Finish(agentID int) (model.Result, error) {
	p, err := s.session(agentID)
	if err != nil {
		return model.Result{}, err
	}
	summary := p.Summary()
	summary.AgentID = agentID

	s.mu.Lock()
	delete(s.sessions, agentID)
	delete(s.papers, agentID)
	s.mu.Unlock()
	return summary, nil
}

// Gradable reports how many questions of a filtered pool can appear on a
// paper, for the client to bound its count picker.
func (s *PracticeService) Gradable(ctx context.Context, certType string, tags []string) (int, error) {
	pool, err := s.banks.FilteredPool(ctx, certType, tags)
	if err != nil {
		return 0, err
	}
	return len(bank.Gradable(pool)), nil
}

func (s *PracticeService) session(agentID int) (*exam.Practice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.sessions[agentID]
	if !ok {
		return nil, ErrNoPracticeSession
	}
	return p, nil
}
