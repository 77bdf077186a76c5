package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/polisure/certprep-backend/internal/config"
	"github.com/polisure/certprep-backend/internal/exam"
	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/paper"
)

var (
	ErrUnknownCertType = errors.New("unknown cert type")
	ErrNoActiveAttempt = errors.New("no mock attempt in progress")
	ErrAttemptActive   = errors.New("a mock attempt is already in progress")
)

// ResultPayload is the queue message handed to the result worker.
type ResultPayload struct {
	AgentID int          `json:"agent_id"`
	Result  model.Result `json:"result"`
}

// PaperPayload is the queue message handed to the paper audit worker.
type PaperPayload struct {
	AttemptID   string    `json:"attempt_id"`
	AgentID     int       `json:"agent_id"`
	CertType    string    `json:"cert_type"`
	SectionIdx  int       `json:"section_idx"`
	QuestionIDs []string  `json:"question_ids"`
	SampledAt   time.Time `json:"sampled_at"`
}

// MockStatus is a snapshot of an attempt for the client.
type MockStatus struct {
	AttemptID      string                `json:"attempt_id"`
	CertType       string                `json:"cert_type"`
	State          exam.State            `json:"state"`
	SectionIndex   int                   `json:"section_index"`
	SectionCount   int                   `json:"section_count"`
	SectionName    string                `json:"section_name,omitempty"`
	RemainingSecs  int                   `json:"remaining_seconds"`
	SectionResults []model.SectionResult `json:"section_results"`
}

// MockService owns the live mock-exam sessions: one per agent, in memory,
// with answers autosaved to Redis so a dropped connection doesn't lose an
// attempt's inputs. Finalized results go to a Redis queue for the result
// worker to persist.
type MockService struct {
	catalog *exam.Catalog
	banks   *BankService
	rdb     *redis.Client
	ttl     time.Duration
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[int]*exam.Session
}

func NewMockService(catalog *exam.Catalog, banks *BankService, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *MockService {
	return &MockService{
		catalog:  catalog,
		banks:    banks,
		rdb:      rdb,
		ttl:      cfg.AutosaveTTL,
		log:      log.With().Str("component", "mock_service").Logger(),
		sessions: make(map[int]*exam.Session),
	}
}

// Specs lists the mock-exam recipes for the client's cert picker.
func (s *MockService) Specs() []exam.MockSpec {
	return s.catalog.List()
}

// Start creates a fresh attempt for the agent. The first section begins
// only on StartSection, matching the client's instruction screen flow.
func (s *MockService) Start(ctx context.Context, agentID int, certType string) (*MockStatus, error) {
	spec, ok := s.catalog.Get(certType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCertType, certType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, exists := s.sessions[agentID]; exists && sess.State() != exam.StateFinalized {
		return nil, ErrAttemptActive
	}

	sess, err := exam.NewSession(spec, paper.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return nil, err
	}
	s.sessions[agentID] = sess

	s.log.Info().
		Int("agent_id", agentID).
		Str("cert_type", certType).
		Str("attempt_id", sess.ID().String()).
		Msg("mock attempt started")
	return s.statusLocked(sess), nil
}

// StartSection samples the paper for the current section and starts its
// clock. The sampled paper is queued for the audit worker.
func (s *MockService) StartSection(ctx context.Context, agentID int) ([]model.PaperQuestion, *MockStatus, error) {
	sess, err := s.session(agentID)
	if err != nil {
		return nil, nil, err
	}

	pool, err := s.banks.Pool(ctx, sess.Spec().CertType)
	if err != nil {
		return nil, nil, err
	}

	sectionIdx := sess.SectionIndex()
	p, err := sess.StartSection(pool)
	if err != nil {
		return nil, nil, err
	}

	s.queuePaper(ctx, sess, agentID, sectionIdx, p)
	return p.ForClient(), s.status(sess), nil
}

// Autosave records one answer in the session and mirrors it to Redis.
func (s *MockService) Autosave(ctx context.Context, agentID int, questionID string, labels model.LabelSet) error {
	sess, err := s.session(agentID)
	if err != nil {
		return err
	}
	if err := sess.SetAnswer(questionID, labels); err != nil {
		return err
	}

	key := config.CacheKey.AttemptAnswersKey(sess.ID().String())
	raw, _ := json.Marshal(labels)
	pipe := s.rdb.Pipeline()
	if len(labels) == 0 {
		pipe.HDel(ctx, key, questionID)
	} else {
		pipe.HSet(ctx, key, questionID, raw)
	}
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		// The in-memory session still holds the answer; autosave is a
		// recovery buffer, not the source of truth.
		s.log.Warn().Err(err).Str("attempt_id", sess.ID().String()).Msg("autosave failed")
	}
	return nil
}

// SubmitSection grades the active section.
func (s *MockService) SubmitSection(ctx context.Context, agentID int) (model.SectionResult, *MockStatus, error) {
	sess, err := s.session(agentID)
	if err != nil {
		return model.SectionResult{}, nil, err
	}
	res, err := sess.Submit()
	if err != nil {
		return model.SectionResult{}, nil, err
	}
	return res, s.status(sess), nil
}

// CheckExpiry polls the active section's timer, auto-submitting when it has
// run out. The websocket timer feed calls this on every tick.
func (s *MockService) CheckExpiry(ctx context.Context, agentID int) (bool, *MockStatus, error) {
	sess, err := s.session(agentID)
	if err != nil {
		return false, nil, err
	}
	fired, err := sess.CheckExpiry()
	if err != nil {
		return false, nil, err
	}
	if fired {
		s.log.Info().
			Int("agent_id", agentID).
			Str("attempt_id", sess.ID().String()).
			Msg("section auto-submitted on expiry")
	}
	return fired, s.status(sess), nil
}

// Status snapshots the agent's attempt.
func (s *MockService) Status(agentID int) (*MockStatus, error) {
	sess, err := s.session(agentID)
	if err != nil {
		return nil, err
	}
	return s.status(sess), nil
}

// Finalize evaluates the pass rule and, exactly once per attempt, queues the
// result for persistence and drops the autosave buffer.
func (s *MockService) Finalize(ctx context.Context, agentID int) (model.Result, error) {
	sess, err := s.session(agentID)
	if err != nil {
		return model.Result{}, err
	}

	res, first, err := sess.Finalize()
	if err != nil {
		return model.Result{}, err
	}
	res.AgentID = agentID

	if first {
		raw, _ := json.Marshal(ResultPayload{AgentID: agentID, Result: res})
		if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
			s.log.Error().Err(err).Str("attempt_id", res.AttemptID.String()).Msg("result enqueue failed")
		}
		s.rdb.Del(ctx, config.CacheKey.AttemptAnswersKey(res.AttemptID.String()))

		s.log.Info().
			Int("agent_id", agentID).
			Str("attempt_id", res.AttemptID.String()).
			Bool("passed", res.Passed).
			Int("total_score", res.TotalScore).
			Msg("mock attempt finalized")
	}
	return res, nil
}

// Reset abandons the agent's attempt and clears its autosave buffer.
func (s *MockService) Reset(ctx context.Context, agentID int) error {
	sess, err := s.session(agentID)
	if err != nil {
		return err
	}
	s.rdb.Del(ctx, config.CacheKey.AttemptAnswersKey(sess.ID().String()))
	sess.Reset()

	s.mu.Lock()
	delete(s.sessions, agentID)
	s.mu.Unlock()
	return nil
}

func (s *MockService) session(agentID int) (*exam.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[agentID]
	if !ok {
		return nil, ErrNoActiveAttempt
	}
	return sess, nil
}

func (s *MockService) queuePaper(ctx context.Context, sess *exam.Session, agentID, sectionIdx int, p model.Paper) {
	raw, _ := json.Marshal(PaperPayload{
		AttemptID:   sess.ID().String(),
		AgentID:     agentID,
		CertType:    sess.Spec().CertType,
		SectionIdx:  sectionIdx,
		QuestionIDs: p.IDs(),
		SampledAt:   time.Now(),
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistPapersQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", sess.ID().String()).Msg("paper enqueue failed")
	}
}

func (s *MockService) status(sess *exam.Session) *MockStatus {
	return s.statusLocked(sess)
}

func (s *MockService) statusLocked(sess *exam.Session) *MockStatus {
	st := &MockStatus{
		AttemptID:      sess.ID().String(),
		CertType:       sess.Spec().CertType,
		State:          sess.State(),
		SectionIndex:   sess.SectionIndex(),
		SectionCount:   len(sess.Spec().Sections),
		RemainingSecs:  int(sess.Remaining().Seconds()),
		SectionResults: sess.SectionResults(),
	}
	if sec, ok := sess.CurrentSection(); ok {
		st.SectionName = sec.Name
	}
	return st
}
