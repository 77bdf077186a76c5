package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/repository"
)

// HistoryService serves an agent's persisted exam attempts.
type HistoryService struct {
	resultRepo *repository.ResultRepository
	log        zerolog.Logger
}

func NewHistoryService(resultRepo *repository.ResultRepository, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		resultRepo: resultRepo,
		log:        log.With().Str("component", "history_service").Logger(),
	}
}

// List retrieves an agent's attempts, newest first.
func (s *HistoryService) List(ctx context.Context, agentID, page, perPage int) ([]model.Result, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.resultRepo.ListByAgent(ctx, agentID, perPage, (page-1)*perPage)
}

// Get retrieves one attempt with its wrong items.
func (s *HistoryService) Get(ctx context.Context, agentID int, attemptID uuid.UUID) (*model.Result, error) {
	return s.resultRepo.GetByAttemptID(ctx, agentID, attemptID)
}
