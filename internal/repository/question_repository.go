package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polisure/certprep-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ReplaceBank atomically swaps a bank's question set: any previous import of
// the same cert type and source file is removed, then the bank row and its
// questions are inserted in one transaction.
func (r *QuestionRepository) ReplaceBank(ctx context.Context, b *model.Bank, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM banks WHERE cert_type = $1 AND source_file = $2`,
		b.CertType, b.SourceFile)
	if err != nil {
		return fmt.Errorf("delete previous import: %w", err)
	}

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO banks (id, cert_type, subject, source_file, question_count, rejected_count)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING imported_at`,
		b.ID, b.CertType, b.Subject, b.SourceFile, len(questions), b.RejectedCount,
	).Scan(&b.ImportedAt)
	if err != nil {
		return fmt.Errorf("insert bank: %w", err)
	}
	b.QuestionCount = len(questions)

	if err := bulkInsertQuestions(ctx, tx, b.ID, questions); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}

	return tx.Commit(ctx)
}

func bulkInsertQuestions(ctx context.Context, tx pgx.Tx, bankID uuid.UUID, questions []model.Question) error {
	n := len(questions)
	if n == 0 {
		return nil
	}

	qids := make([]string, n)
	texts := make([]string, n)
	types := make([]string, n)
	choices := make([][]byte, n)
	answers := make([][]byte, n)
	explanations := make([]string, n)
	imageRefs := make([]string, n)
	tags := make([]string, n)
	sheets := make([]string, n)

	for i, q := range questions {
		cj, err := json.Marshal(q.Choices)
		if err != nil {
			return err
		}
		aj, err := json.Marshal(q.Answer)
		if err != nil {
			return err
		}
		qids[i] = q.ID
		texts[i] = q.Text
		types[i] = string(q.Type)
		choices[i] = cj
		answers[i] = aj
		explanations[i] = q.Explanation
		imageRefs[i] = q.ImageRef
		tags[i] = q.Tag
		sheets[i] = q.SourceSheet
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO questions
			(bank_id, qid, question_text, question_type, choices, answer,
			 explanation, image_ref, tag, source_sheet)
		SELECT $1, u.qid, u.question_text, u.question_type, u.choices::jsonb, u.answer::jsonb,
		       u.explanation, u.image_ref, u.tag, u.source_sheet
		FROM UNNEST(
			$2::text[],
			$3::text[],
			$4::text[],
			$5::text[],
			$6::text[],
			$7::text[],
			$8::text[],
			$9::text[],
			$10::text[]
		) AS u (qid, question_text, question_type, choices, answer,
		        explanation, image_ref, tag, source_sheet)
	`, bankID, qids, texts, types, byteSlicesToText(choices), byteSlicesToText(answers),
		explanations, imageRefs, tags, sheets)
	return err
}

func byteSlicesToText(in [][]byte) []string {
	out := make([]string, len(in))
	for i, b := range in {
		out[i] = string(b)
	}
	return out
}

// ListBanks retrieves the import summaries, newest first.
func (r *QuestionRepository) ListBanks(ctx context.Context) ([]model.Bank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, cert_type, subject, source_file, question_count, rejected_count, imported_at
		 FROM banks ORDER BY imported_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []model.Bank
	for rows.Next() {
		var b model.Bank
		if err := rows.Scan(&b.ID, &b.CertType, &b.Subject, &b.SourceFile,
			&b.QuestionCount, &b.RejectedCount, &b.ImportedAt); err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// PoolByCertType retrieves the merged question pool across every bank
// imported for one certification.
func (r *QuestionRepository) PoolByCertType(ctx context.Context, certType string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT q.qid, q.question_text, q.question_type, q.choices, q.answer,
		       q.explanation, q.image_ref, q.tag, b.source_file, q.source_sheet
		FROM questions q
		JOIN banks b ON b.id = q.bank_id
		WHERE b.cert_type = $1
		ORDER BY b.source_file, q.id`, certType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []model.Question
	for rows.Next() {
		var (
			q       model.Question
			choices []byte
			answer  []byte
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.Type, &choices, &answer,
			&q.Explanation, &q.ImageRef, &q.Tag, &q.SourceFile, &q.SourceSheet); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(choices, &q.Choices); err != nil {
			return nil, fmt.Errorf("question %s choices: %w", q.ID, err)
		}
		if err := json.Unmarshal(answer, &q.Answer); err != nil {
			return nil, fmt.Errorf("question %s answer: %w", q.ID, err)
		}
		pool = append(pool, q)
	}
	return pool, rows.Err()
}

// DeleteBank removes one imported bank and its questions.
func (r *QuestionRepository) DeleteBank(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM banks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
