package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/polisure/certprep-backend/internal/config"
	"github.com/polisure/certprep-backend/internal/repository"
	"github.com/polisure/certprep-backend/internal/service"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker drains finalized attempts off the Redis queue and persists
// them. The attempt_id unique constraint absorbs replays, so a crashed
// worker can safely requeue.
type ResultWorker struct {
	resultRepo *repository.ResultRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		resultRepo: repository.NewResultRepository(pool),
		rdb:        rdb,
		log:        log.With().Str("component", "result_worker").Logger(),
	}
}

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*service.ResultPayload, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p service.ResultPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// flushSafe persists each attempt, requeueing on transient failure.
// Inserts stay per-attempt because every attempt carries its own wrong-item
// rows inside one transaction.
func (w *ResultWorker) flushSafe(ctx context.Context, batch []*service.ResultPayload) {
	for _, p := range batch {
		err := w.resultRepo.Insert(ctx, p.AgentID, &p.Result)
		if err == nil {
			continue
		}
		if errors.Is(err, repository.ErrDuplicateAttempt) {
			w.log.Debug().
				Str("attempt_id", p.Result.AttemptID.String()).
				Msg("attempt already persisted, dropping replay")
			continue
		}

		w.log.Error().Err(err).
			Str("attempt_id", p.Result.AttemptID.String()).
			Msg("persist failed — requeueing")
		raw, _ := json.Marshal(p)
		w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
	}
}
