package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/polisure/certprep-backend/internal/bank"
	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/repository"
)

var ErrBankNotFound = errors.New("no bank loaded for cert type")

// BankService imports .xlsx question banks and serves merged pools. Pools
// are cached in memory after the first load; imports invalidate the cache.
type BankService struct {
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger

	mu    sync.RWMutex
	pools map[string][]model.Question
}

func NewBankService(questionRepo *repository.QuestionRepository, log zerolog.Logger) *BankService {
	return &BankService{
		questionRepo: questionRepo,
		log:          log.With().Str("component", "bank_service").Logger(),
		pools:        make(map[string][]model.Question),
	}
}

// ImportFile normalizes one workbook and replaces any previous import of the
// same file under the given certification.
func (s *BankService) ImportFile(ctx context.Context, certType, path string) (*model.Bank, error) {
	sets, err := bank.ReadWorkbookFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", path, err)
	}

	sourceFile := filepath.Base(path)
	questions, stats := bank.NormalizeAll(sets, sourceFile)
	if len(questions) == 0 {
		return nil, fmt.Errorf("workbook %s yielded no usable questions (%d rejected)", sourceFile, stats.Rejected)
	}

	b := &model.Bank{
		CertType:      certType,
		Subject:       strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile)),
		SourceFile:    sourceFile,
		RejectedCount: stats.Rejected,
	}
	if err := s.questionRepo.ReplaceBank(ctx, b, questions); err != nil {
		return nil, fmt.Errorf("persist bank: %w", err)
	}

	s.invalidate(certType)

	s.log.Info().
		Str("cert_type", certType).
		Str("file", sourceFile).
		Int("accepted", stats.Accepted).
		Int("rejected", stats.Rejected).
		Msg("bank imported")
	return b, nil
}

// ImportDir imports every .xlsx file under dir/<certType>/ for each
// certification subdirectory.
func (s *BankService) ImportDir(ctx context.Context, dir string) ([]model.Bank, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read bank dir: %w", err)
	}

	var banks []model.Bank
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		certType := e.Name()
		files, err := filepath.Glob(filepath.Join(dir, certType, "*.xlsx"))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			// Excel lock files start with ~$ and are not workbooks.
			if strings.HasPrefix(filepath.Base(f), "~$") {
				continue
			}
			b, err := s.ImportFile(ctx, certType, f)
			if err != nil {
				s.log.Error().Err(err).Str("file", f).Msg("import failed, continuing")
				continue
			}
			banks = append(banks, *b)
		}
	}
	return banks, nil
}

// Pool returns the merged question pool for one certification, including
// answerless questions. Callers that build papers filter those out.
func (s *BankService) Pool(ctx context.Context, certType string) ([]model.Question, error) {
	s.mu.RLock()
	pool, ok := s.pools[certType]
	s.mu.RUnlock()
	if ok {
		return pool, nil
	}

	pool, err := s.questionRepo.PoolByCertType(ctx, certType)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBankNotFound, certType)
	}
	// Row IDs restart per sheet; the merged pool needs qualified ones.
	pool = bank.QualifyIDs(pool)

	s.mu.Lock()
	s.pools[certType] = pool
	s.mu.Unlock()
	return pool, nil
}

// Tags returns the sorted distinct tags of a certification's pool.
func (s *BankService) Tags(ctx context.Context, certType string) ([]string, error) {
	pool, err := s.Pool(ctx, certType)
	if err != nil {
		return nil, err
	}
	return bank.AllTags(pool), nil
}

// FilteredPool returns the pool narrowed to the picked tags. An empty pick
// returns the whole pool.
func (s *BankService) FilteredPool(ctx context.Context, certType string, tags []string) ([]model.Question, error) {
	pool, err := s.Pool(ctx, certType)
	if err != nil {
		return nil, err
	}
	filtered := bank.FilterByTags(pool, tags)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s with tags %v", ErrBankNotFound, certType, tags)
	}
	return filtered, nil
}

// ListBanks returns the import summaries.
func (s *BankService) ListBanks(ctx context.Context) ([]model.Bank, error) {
	return s.questionRepo.ListBanks(ctx)
}

// DeleteBank removes one imported bank and drops every cached pool, since
// the bank's cert type is not known here.
func (s *BankService) DeleteBank(ctx context.Context, id uuid.UUID) error {
	if err := s.questionRepo.DeleteBank(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.pools = make(map[string][]model.Question)
	s.mu.Unlock()
	return nil
}

func (s *BankService) invalidate(certType string) {
	s.mu.Lock()
	delete(s.pools, certType)
	s.mu.Unlock()
}
