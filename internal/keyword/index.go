// Package keyword provides full-text search over what was said in argument statements.
package keyword

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/oralarg/internal/models"
)

// SearchOptions narrows a statement search. Nil means no filters.
type SearchOptions struct {
	// Speaker restricts hits to one speaker label, e.g. "JUSTICE SCALIA". Case-insensitive.
	Speaker string
	// Side restricts hits to "petitioner" or "respondent".
	Side string
	// Term restricts hits to one argument term (year). Zero means any.
	Term int
	// Phrase requires the query terms to appear adjacent.
	Phrase bool
	// FuzzyEnabled enables fuzzy matching; OCR'd transcripts are full of near misses.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance for fuzzy matching (1 or 2).
	Fuzziness int
}

// StatementIndex defines statement indexing and search.
type StatementIndex interface {
	Index(ctx context.Context, doc *StatementDoc) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error)
	Delete(ctx context.Context, statementID int64) error
	DeleteTranscript(ctx context.Context, transcriptID int64) error
	DocCount() (uint64, error)
	Close() error
}

// StatementDoc is the searchable view of one stored statement.
type StatementDoc struct {
	StatementID  int64
	TranscriptID int64
	Term         int
	Docket       string
	FileName     string
	Speaker      string
	Side         string
	Justice      bool
	Content      string
}

// NewStatementDoc builds the index document for a stored statement of t.
func NewStatementDoc(t *models.Transcript, s *models.Statement) *StatementDoc {
	return &StatementDoc{
		StatementID:  s.ID,
		TranscriptID: t.ID,
		Term:         t.Term,
		Docket:       t.Docket,
		FileName:     t.FileName,
		Speaker:      s.Speaker,
		Side:         s.Side(),
		Justice:      s.SpeakerIsJustice(),
		Content:      s.FullText(),
	}
}

// Result is a single statement search hit.
type Result struct {
	StatementID  int64    `json:"statement_id"`
	TranscriptID int64    `json:"transcript_id"`
	Term         int      `json:"term"`
	FileName     string   `json:"file_name"`
	Speaker      string   `json:"speaker"`
	Side         string   `json:"side"`
	Score        float64  `json:"score"`
	Fragments    []string `json:"fragments,omitempty"`
}

const docIDPrefix = "stmt:"

func docID(statementID int64) string {
	return docIDPrefix + strconv.FormatInt(statementID, 10)
}

func parseDocID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, docIDPrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad statement doc id %q: %w", id, err)
	}
	return n, nil
}
