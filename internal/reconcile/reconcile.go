// Package reconcile links case records to transcripts by normalized docket
// and reports how much of each side is covered.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hyperjump/oralarg/internal/docket"
	"github.com/hyperjump/oralarg/internal/models"
	"github.com/hyperjump/oralarg/internal/storage"
	"go.uber.org/zap"
)

// Coverage summarizes how many cases have a transcript and vice versa.
type Coverage struct {
	Cases                int64   `json:"cases"`
	CasesWithTranscript  int64   `json:"cases_with_transcript"`
	CasePercent          float64 `json:"case_percent"`
	Transcripts          int64   `json:"transcripts"`
	TranscriptsWithCases int64   `json:"transcripts_with_cases"`
	TranscriptPercent    float64 `json:"transcript_percent"`
	LinkedThisRun        int     `json:"linked_this_run"`
}

// Reconcile links every case whose normalized docket matches a transcript's.
// When several transcripts share a docket the one argued in the case's term
// wins, otherwise the most recently stored. Blank dockets never match.
func Reconcile(ctx context.Context, store storage.Storage, logger *zap.Logger) (*Coverage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	transcripts, err := store.ListTranscripts(ctx, storage.TranscriptFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	byDocket := make(map[string][]*models.Transcript)
	for _, t := range transcripts {
		d, err := docket.Normalize(t.Docket)
		if err != nil {
			continue
		}
		byDocket[d] = append(byDocket[d], t)
	}

	cases, err := store.ListCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	linked := 0
	for _, c := range cases {
		d, err := docket.Normalize(c.Docket)
		if errors.Is(err, docket.ErrEmptyDocket) {
			continue
		}
		t := pick(byDocket[d], c.Term)
		if t == nil || (c.TranscriptID != nil && *c.TranscriptID == t.ID) {
			continue
		}
		if err := store.LinkCase(ctx, c.ID, t.ID); err != nil {
			return nil, fmt.Errorf("failed to link case %s: %w", c.VoteID, err)
		}
		linked++
		logger.Debug("linked case", zap.String("vote_id", c.VoteID), zap.String("docket", d),
			zap.String("transcript", t.FileName))
	}

	cov, err := CoverageStats(ctx, store)
	if err != nil {
		return nil, err
	}
	cov.LinkedThisRun = linked
	cov.Log(logger)
	return cov, nil
}

func pick(candidates []*models.Transcript, term int) *models.Transcript {
	var best *models.Transcript
	for _, t := range candidates {
		if t.Term == term {
			return t
		}
		if best == nil || t.ID > best.ID {
			best = t
		}
	}
	return best
}

// CoverageStats reads the current coverage from the store.
func CoverageStats(ctx context.Context, store storage.Storage) (*Coverage, error) {
	st, err := store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	return &Coverage{
		Cases:                st.Cases,
		CasesWithTranscript:  st.CasesWithTranscript,
		CasePercent:          percent(st.CasesWithTranscript, st.Cases),
		Transcripts:          st.Transcripts,
		TranscriptsWithCases: st.TranscriptsWithCases,
		TranscriptPercent:    percent(st.TranscriptsWithCases, st.Transcripts),
	}, nil
}

// percent rounds part/total to two decimals; an empty total is 0.
func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// Log writes both coverage figures at info level.
func (c *Coverage) Log(logger *zap.Logger) {
	logger.Info("case coverage",
		zap.Int64("cases", c.Cases),
		zap.Int64("with_transcript", c.CasesWithTranscript),
		zap.Float64("percent", c.CasePercent))
	logger.Info("transcript coverage",
		zap.Int64("transcripts", c.Transcripts),
		zap.Int64("with_case", c.TranscriptsWithCases),
		zap.Float64("percent", c.TranscriptPercent))
}
