package model

import (
	"time"

	"github.com/google/uuid"
)

// Bank is one imported question-bank workbook, e.g. the regulations bank of
// a certification type.
type Bank struct {
	ID            uuid.UUID `json:"id"`
	CertType      string    `json:"cert_type"`
	Subject       string    `json:"subject"`
	SourceFile    string    `json:"source_file"`
	QuestionCount int       `json:"question_count"`
	RejectedCount int       `json:"rejected_count"`
	ImportedAt    time.Time `json:"imported_at"`
}
