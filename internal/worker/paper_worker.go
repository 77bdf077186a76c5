package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/polisure/certprep-backend/internal/config"
	"github.com/polisure/certprep-backend/internal/service"
)

const (
	PaperBatchSize    = 50
	PaperBatchTimeout = 2 * time.Second
	PaperPollTimeout  = 1 * time.Second
)

// PaperWorker records which questions each attempt's sections were dealt,
// for post-hoc auditing of sampled papers.
type PaperWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewPaperWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *PaperWorker {
	return &PaperWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "paper_worker").Logger(),
	}
}

func (w *PaperWorker) Start(ctx context.Context) {
	w.log.Info().Msg("PaperWorker started")

	batch := make([]*service.PaperPayload, 0, PaperBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= PaperBatchSize || time.Since(lastFlush) >= PaperBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, PaperPollTimeout, config.WorkerKey.PersistPapersQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p service.PaperPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *PaperWorker) flushSafe(ctx context.Context, batch []*service.PaperPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsertPapers(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk paper insert failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistPapersQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL INSERT using UNNEST + alias
// ----------------------------------------------------------------

func (w *PaperWorker) bulkInsertPapers(ctx context.Context, batch []*service.PaperPayload) error {
	n := len(batch)

	attemptIDs := make([]uuid.UUID, 0, n)
	agents := make([]int, 0, n)
	certTypes := make([]string, 0, n)
	sections := make([]int, 0, n)
	questionIDs := make([]string, 0, n)
	sampledAts := make([]time.Time, 0, n)

	for _, p := range batch {
		aID, err := uuid.Parse(p.AttemptID)
		if err != nil {
			return err
		}
		qids, err := json.Marshal(p.QuestionIDs)
		if err != nil {
			return err
		}
		attemptIDs = append(attemptIDs, aID)
		agents = append(agents, p.AgentID)
		certTypes = append(certTypes, p.CertType)
		sections = append(sections, p.SectionIdx)
		questionIDs = append(questionIDs, string(qids))
		sampledAts = append(sampledAts, p.SampledAt)
	}

	query := `
		INSERT INTO attempt_papers
			(attempt_id, agent_id, cert_type, section_idx, question_ids, sampled_at)
		SELECT u.attempt_id, u.agent_id, u.cert_type, u.section_idx,
		       u.question_ids::jsonb, u.sampled_at
		FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::text[],
			$4::int[],
			$5::text[],
			$6::timestamptz[]
		) AS u (attempt_id, agent_id, cert_type, section_idx, question_ids, sampled_at)
		ON CONFLICT (attempt_id, section_idx) DO NOTHING
	`

	_, err := w.pool.Exec(ctx, query, attemptIDs, agents, certTypes, sections, questionIDs, sampledAts)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single insert
// ----------------------------------------------------------------

func (w *PaperWorker) persistSingle(ctx context.Context, p *service.PaperPayload) error {
	aID, err := uuid.Parse(p.AttemptID)
	if err != nil {
		return err
	}
	qids, err := json.Marshal(p.QuestionIDs)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`INSERT INTO attempt_papers
			(attempt_id, agent_id, cert_type, section_idx, question_ids, sampled_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6)
		 ON CONFLICT (attempt_id, section_idx) DO NOTHING`,
		aID, p.AgentID, p.CertType, p.SectionIdx, string(qids), p.SampledAt,
	)
	return err
}
