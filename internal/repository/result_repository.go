package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polisure/certprep-backend/internal/model"
)

var ErrDuplicateAttempt = errors.New("attempt already persisted")

// ResultRepository handles finalized exam attempts and their wrong items.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert writes one finalized attempt and its wrong items in a transaction.
// The attempt_id unique constraint makes the write idempotent: a replayed
// attempt returns ErrDuplicateAttempt instead of double-writing.
func (r *ResultRepository) Insert(ctx context.Context, agentID int, res *model.Result) error {
	sections, err := json.Marshal(res.Sections)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO exam_records
			(attempt_id, agent_id, cert_type, mode, score_percent, correct_count,
			 total_count, section_scores, total_score, passed, fail_reason,
			 duration_seconds, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		res.AttemptID, agentID, res.CertType, res.Mode, res.ScorePercent,
		res.CorrectCount, res.TotalCount, sections, res.TotalScore, res.Passed,
		nullIfEmpty(res.FailReason), res.DurationSeconds, res.FinishedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateAttempt
		}
		return fmt.Errorf("insert record: %w", err)
	}

	if err := bulkInsertWrongItems(ctx, tx, res.AttemptID, res.WrongItems); err != nil {
		return fmt.Errorf("insert wrong items: %w", err)
	}

	return tx.Commit(ctx)
}

func bulkInsertWrongItems(ctx context.Context, tx pgx.Tx, attemptID uuid.UUID, items []model.GradedRow) error {
	n := len(items)
	if n == 0 {
		return nil
	}

	positions := make([]int, n)
	qids := make([]string, n)
	tags := make([]string, n)
	texts := make([]string, n)
	submitted := make([]string, n)
	gold := make([]string, n)
	explanations := make([]string, n)

	for i, row := range items {
		sj, err := json.Marshal(row.Submitted)
		if err != nil {
			return err
		}
		gj, err := json.Marshal(row.Gold)
		if err != nil {
			return err
		}
		positions[i] = i
		qids[i] = row.QuestionID
		tags[i] = row.Tag
		texts[i] = row.Text
		submitted[i] = string(sj)
		gold[i] = string(gj)
		explanations[i] = row.Explanation
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO wrong_items
			(attempt_id, position, qid, tag, question_text, submitted, gold, explanation)
		SELECT $1, u.position, u.qid, u.tag, u.question_text,
		       u.submitted::jsonb, u.gold::jsonb, u.explanation
		FROM UNNEST(
			$2::int[],
			$3::text[],
			$4::text[],
			$5::text[],
			$6::text[],
			$7::text[],
			$8::text[]
		) AS u (position, qid, tag, question_text, submitted, gold, explanation)
	`, attemptID, positions, qids, tags, texts, submitted, gold, explanations)
	return err
}

// ListByAgent retrieves an agent's attempt history, newest first, without
// wrong items.
func (r *ResultRepository) ListByAgent(ctx context.Context, agentID, limit, offset int) ([]model.Result, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_records WHERE agent_id = $1`, agentID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT attempt_id, cert_type, mode, score_percent, correct_count,
		       total_count, section_scores, total_score, passed,
		       COALESCE(fail_reason, ''), duration_seconds, finished_at
		FROM exam_records
		WHERE agent_id = $1
		ORDER BY finished_at DESC
		LIMIT $2 OFFSET $3`, agentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var (
			res      model.Result
			sections []byte
		)
		if err := rows.Scan(&res.AttemptID, &res.CertType, &res.Mode,
			&res.ScorePercent, &res.CorrectCount, &res.TotalCount, &sections,
			&res.TotalScore, &res.Passed, &res.FailReason,
			&res.DurationSeconds, &res.FinishedAt); err != nil {
			return nil, 0, err
		}
		res.AgentID = agentID
		if err := json.Unmarshal(sections, &res.Sections); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}

// GetByAttemptID retrieves one attempt including its wrong items.
func (r *ResultRepository) GetByAttemptID(ctx context.Context, agentID int, attemptID uuid.UUID) (*model.Result, error) {
	res := &model.Result{AgentID: agentID}
	var sections []byte
	err := r.pool.QueryRow(ctx, `
		SELECT attempt_id, cert_type, mode, score_percent, correct_count,
		       total_count, section_scores, total_score, passed,
		       COALESCE(fail_reason, ''), duration_seconds, finished_at
		FROM exam_records
		WHERE agent_id = $1 AND attempt_id = $2`, agentID, attemptID,
	).Scan(&res.AttemptID, &res.CertType, &res.Mode, &res.ScorePercent,
		&res.CorrectCount, &res.TotalCount, &sections, &res.TotalScore,
		&res.Passed, &res.FailReason, &res.DurationSeconds, &res.FinishedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sections, &res.Sections); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT qid, tag, question_text, submitted, gold, explanation
		FROM wrong_items
		WHERE attempt_id = $1
		ORDER BY position`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row       model.GradedRow
			submitted []byte
			gold      []byte
		)
		if err := rows.Scan(&row.QuestionID, &row.Tag, &row.Text, &submitted, &gold, &row.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(submitted, &row.Submitted); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(gold, &row.Gold); err != nil {
			return nil, err
		}
		res.WrongItems = append(res.WrongItems, row)
	}
	return res, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
