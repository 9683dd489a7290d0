// Package ingest turns transcript files into stored statements, paragraphs and red flags.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/oralarg/internal/docket"
	"github.com/hyperjump/oralarg/internal/extract"
	"github.com/hyperjump/oralarg/internal/keyword"
	"github.com/hyperjump/oralarg/internal/models"
	"github.com/hyperjump/oralarg/internal/storage"
	"github.com/hyperjump/oralarg/internal/transcript"
	"go.uber.org/zap"
)

// ErrNotTermDir is returned when a file does not live directly under a four-digit term directory.
var ErrNotTermDir = errors.New("parent directory is not a term")

// Ingester parses transcripts and persists the result.
type Ingester struct {
	storage      storage.Storage
	extractor    extract.TextExtractor
	keywordIndex keyword.StatementIndex // optional
	extensions   []string               // optional; nil means extract.Supported
	logger       *zap.Logger
}

// IngesterOption configures an Ingester.
type IngesterOption func(*Ingester)

// WithLogger sets the logger used for red flags, per-document counts and skips.
func WithLogger(l *zap.Logger) IngesterOption {
	return func(in *Ingester) { in.logger = l }
}

// WithKeywordIndex makes every stored statement searchable.
func WithKeywordIndex(idx keyword.StatementIndex) IngesterOption {
	return func(in *Ingester) { in.keywordIndex = idx }
}

// WithExtensions restricts which files ProcessFile accepts, e.g. []string{".pdf"}.
func WithExtensions(exts []string) IngesterOption {
	return func(in *Ingester) { in.extensions = exts }
}

// NewIngester creates an ingester. extractor may be nil, in which case files are read as plain text.
func NewIngester(store storage.Storage, extractor extract.TextExtractor, opts ...IngesterOption) *Ingester {
	in := &Ingester{
		storage:   store,
		extractor: extractor,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.extractor == nil {
		in.extractor = extract.NewExtractor()
	}
	return in
}

// ProcessDocument parses text and stores the transcript identified by
// (term, docketHint, fileName) with its statements, paragraphs and red flags.
// It returns the stored transcript and the number of red flags. Running it
// twice on the same input leaves the store unchanged. When a write fails after
// the transcript row was stored, the transcript is removed again so a later
// run processes it from scratch.
func (in *Ingester) ProcessDocument(ctx context.Context, fileName string, term int, docketHint, text string) (*models.Transcript, int, error) {
	t := &models.Transcript{
		RawText:  text,
		Term:     term,
		Docket:   docketHint,
		FileName: fileName,
	}
	if err := in.storage.UpsertTranscript(ctx, t); err != nil {
		return nil, 0, fmt.Errorf("failed to store transcript: %w", err)
	}

	result := transcript.Parse(text)
	if err := in.storeResult(ctx, t, result); err != nil {
		in.discard(ctx, t)
		return nil, 0, err
	}
	return t, len(result.Flags), nil
}

func (in *Ingester) storeResult(ctx context.Context, t *models.Transcript, result *transcript.Result) error {
	for _, flag := range result.Flags {
		in.logger.Info("red flag",
			zap.String("file", t.FileName), zap.Int("term", t.Term), zap.String("flag", flag))
		if err := in.storage.UpsertRedFlag(ctx, &models.RedFlag{TranscriptID: t.ID, Gloss: flag}); err != nil {
			return fmt.Errorf("failed to store red flag: %w", err)
		}
		t.RedFlags = append(t.RedFlags, flag)
	}

	for _, side := range [][]transcript.Statement{result.Petitioner, result.Respondent} {
		for seq, parsed := range side {
			st, err := in.storeStatement(ctx, t, seq, parsed)
			if err != nil {
				return err
			}
			t.Statements = append(t.Statements, st)
		}
	}
	return nil
}

// discard removes a partially stored transcript and its index documents.
// Children go with it through the schema's cascading deletes.
func (in *Ingester) discard(ctx context.Context, t *models.Transcript) {
	ctx = context.WithoutCancel(ctx)
	id, err := in.storage.DeleteTranscript(ctx, t.Term, t.FileName)
	if err != nil {
		in.logger.Error("failed to remove partially stored transcript",
			zap.String("file", t.FileName), zap.Int("term", t.Term), zap.Error(err))
		return
	}
	if id != 0 && in.keywordIndex != nil {
		if err := in.keywordIndex.DeleteTranscript(ctx, id); err != nil {
			in.logger.Warn("failed to remove partially indexed transcript",
				zap.String("file", t.FileName), zap.Error(err))
		}
	}
}

func (in *Ingester) storeStatement(ctx context.Context, t *models.Transcript, seq int, parsed transcript.Statement) (*models.Statement, error) {
	st := &models.Statement{
		TranscriptID:        t.ID,
		Sequence:            seq,
		Speaker:             models.SanitizeASCII(parsed.Speaker),
		EndedByInterruption: parsed.EndedByInterruption,
		IncludesLaughter:    parsed.IncludesLaughter,
		EndsWithQuestion:    parsed.EndsWithQuestion,
		SpeakerIsPetitioner: parsed.IsPetitionerSide(),
		SpeakerIsRespondent: parsed.IsRespondentSide(),
	}
	if err := in.storage.UpsertStatement(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to store statement: %w", err)
	}
	for pos, text := range parsed.Paragraphs {
		p := &models.Paragraph{StatementID: st.ID, Position: pos, Gloss: strings.TrimSpace(models.SanitizeASCII(text))}
		if err := in.storage.UpsertParagraph(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to store paragraph: %w", err)
		}
		if p.Position == pos {
			st.Paragraphs = append(st.Paragraphs, p.Gloss)
		}
	}
	if in.keywordIndex != nil {
		if err := in.keywordIndex.Index(ctx, keyword.NewStatementDoc(t, st)); err != nil {
			return nil, fmt.Errorf("failed to index statement: %w", err)
		}
	}
	return st, nil
}

// FileResult describes what ProcessFile did with one file.
type FileResult struct {
	Path         string   `json:"path"`
	Term         int      `json:"term"`
	FileName     string   `json:"file_name"`
	Docket       string   `json:"docket"`
	TranscriptID int64    `json:"transcript_id,omitempty"`
	Statements   int      `json:"statements"`
	Flags        []string `json:"flags,omitempty"`
	Skipped      bool     `json:"skipped"`
}

// ProcessFile extracts and processes one transcript file. The term comes from
// the parent directory name and the docket from the file name. Files already
// stored under the same term and file name are skipped.
func (in *Ingester) ProcessFile(ctx context.Context, path string) (*FileResult, error) {
	term, fileName, err := in.locate(path)
	if err != nil {
		return nil, err
	}
	res := &FileResult{Path: path, Term: term, FileName: fileName}

	exists, err := in.storage.HasTranscript(ctx, term, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check transcript: %w", err)
	}
	if exists {
		in.logger.Debug("skipping processed transcript", zap.String("path", path))
		res.Skipped = true
		return res, nil
	}

	d, n := docket.FromFileName(fileName)
	switch {
	case n == 0:
		in.logger.Info("no docket in file name", zap.String("file", fileName))
	case n > 1:
		in.logger.Warn("multiple dockets in file name",
			zap.String("file", fileName), zap.Int("matches", n), zap.String("using", d))
	}
	res.Docket = d

	text := extract.TextOrEmpty(in.extractor, path, in.logger)
	t, flags, err := in.ProcessDocument(ctx, fileName, term, d, text)
	if err != nil {
		return nil, err
	}
	res.TranscriptID = t.ID
	res.Statements = len(t.Statements)
	res.Flags = t.RedFlags
	in.logger.Info("processed transcript",
		zap.String("file", fileName), zap.Int("term", term), zap.Int("statements", res.Statements),
		zap.Int("red_flags", flags))
	return res, nil
}

// ReprocessFile forgets any stored copy of path and processes it again.
func (in *Ingester) ReprocessFile(ctx context.Context, path string) (*FileResult, error) {
	if err := in.DeleteFile(ctx, path); err != nil {
		return nil, err
	}
	return in.ProcessFile(ctx, path)
}

// DeleteFile removes the transcript stored for path, if any, from storage and the keyword index.
func (in *Ingester) DeleteFile(ctx context.Context, path string) error {
	term, fileName, err := in.locate(path)
	if err != nil {
		return err
	}
	id, err := in.storage.DeleteTranscript(ctx, term, fileName)
	if err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	if id == 0 {
		return nil
	}
	if in.keywordIndex != nil {
		if err := in.keywordIndex.DeleteTranscript(ctx, id); err != nil {
			return fmt.Errorf("failed to delete from keyword index: %w", err)
		}
	}
	in.logger.Info("deleted transcript", zap.String("file", fileName), zap.Int("term", term))
	return nil
}

// Accepts reports whether path has an extension this ingester processes.
func (in *Ingester) Accepts(path string) bool {
	if len(in.extensions) > 0 {
		return extensionAllowed(filepath.Ext(path), in.extensions)
	}
	return extract.Supported(path)
}

func (in *Ingester) locate(path string) (int, string, error) {
	fileName := filepath.Base(path)
	if !in.Accepts(path) {
		return 0, "", fmt.Errorf("extension %q not in allowed list", filepath.Ext(path))
	}
	term, ok := ParseTerm(filepath.Base(filepath.Dir(path)))
	if !ok {
		return 0, "", fmt.Errorf("%s: %w", path, ErrNotTermDir)
	}
	return term, fileName, nil
}

// Summary reports a ProcessAll run.
type Summary struct {
	RunID      string `json:"run_id"`
	Processed  int    `json:"processed"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Flagged    int    `json:"flagged"`
	Statements int    `json:"statements"`
}

// ProcessAll processes every file of every group. A file that fails is logged
// and counted; the run continues. Only context cancellation stops it early.
func (in *Ingester) ProcessAll(ctx context.Context, groups []TermGroup) (*Summary, error) {
	sum := &Summary{RunID: uuid.New().String()}
	logger := in.logger.With(zap.String("run_id", sum.RunID))
	for _, g := range groups {
		logger.Info("processing term", zap.Int("term", g.Term), zap.Int("files", len(g.Files)))
		for _, path := range g.Files {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			res, err := in.ProcessFile(ctx, path)
			if err != nil {
				sum.Failed++
				logger.Error("failed to process transcript", zap.String("path", path), zap.Error(err))
				continue
			}
			if res.Skipped {
				sum.Skipped++
				continue
			}
			sum.Processed++
			sum.Statements += res.Statements
			if len(res.Flags) > 0 {
				sum.Flagged++
			}
		}
	}
	logger.Info("processing finished",
		zap.Int("processed", sum.Processed), zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed), zap.Int("flagged", sum.Flagged))
	return sum, nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
