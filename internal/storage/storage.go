// Package storage defines the persistence interface for transcripts, statements and cases.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/oralarg/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// TranscriptFilter narrows ListTranscripts. Zero values mean no filter.
type TranscriptFilter struct {
	Term        int
	FlaggedOnly bool
	Offset      int
	Limit       int
}

// Storage defines persistence operations. Every Upsert is keyed on the
// record's natural key and sets the record's ID; calling it twice with the
// same key never creates a second row.
type Storage interface {
	// Transcript operations
	UpsertTranscript(ctx context.Context, t *models.Transcript) error
	GetTranscript(ctx context.Context, id int64) (*models.Transcript, error)
	HasTranscript(ctx context.Context, term int, fileName string) (bool, error)
	ListTranscripts(ctx context.Context, f TranscriptFilter) ([]*models.Transcript, error)
	DeleteTranscript(ctx context.Context, term int, fileName string) (int64, error)

	// Statement and paragraph operations
	UpsertStatement(ctx context.Context, s *models.Statement) error
	GetStatement(ctx context.Context, id int64) (*models.Statement, error)
	ListStatements(ctx context.Context, transcriptID int64) ([]*models.Statement, error)
	UpsertParagraph(ctx context.Context, p *models.Paragraph) error

	// Red flags
	UpsertRedFlag(ctx context.Context, f *models.RedFlag) error
	ListRedFlags(ctx context.Context, transcriptID int64) ([]*models.RedFlag, error)

	// Case operations
	UpsertCase(ctx context.Context, c *models.Case) (bool, error)
	ListCases(ctx context.Context) ([]*models.Case, error)
	LinkCase(ctx context.Context, caseID, transcriptID int64) error

	// Stats
	Stats(ctx context.Context) (*models.Stats, error)

	Close() error
}
