// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/oralarg/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Docket is NOT NULL so the unique index treats unknown dockets as equal.
func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS transcripts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		raw_text TEXT NOT NULL DEFAULT '',
		term INTEGER NOT NULL,
		docket TEXT NOT NULL DEFAULT '',
		file_name TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_transcripts_key ON transcripts(term, docket, file_name);
	CREATE INDEX IF NOT EXISTS idx_transcripts_file ON transcripts(term, file_name);

	CREATE TABLE IF NOT EXISTS statements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transcript_id INTEGER NOT NULL,
		side TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		speaker TEXT NOT NULL,
		ended_by_interruption BOOLEAN NOT NULL DEFAULT 0,
		includes_laughter BOOLEAN NOT NULL DEFAULT 0,
		ends_with_question BOOLEAN NOT NULL DEFAULT 0,
		speaker_is_petitioner BOOLEAN NOT NULL DEFAULT 0,
		speaker_is_respondent BOOLEAN NOT NULL DEFAULT 0,
		FOREIGN KEY (transcript_id) REFERENCES transcripts(id) ON DELETE CASCADE
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_statements_key ON statements(transcript_id, side, sequence);

	CREATE TABLE IF NOT EXISTS paragraphs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		statement_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		gloss TEXT NOT NULL,
		FOREIGN KEY (statement_id) REFERENCES statements(id) ON DELETE CASCADE
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_paragraphs_key ON paragraphs(statement_id, gloss);

	CREATE TABLE IF NOT EXISTS red_flags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transcript_id INTEGER NOT NULL,
		gloss TEXT NOT NULL,
		FOREIGN KEY (transcript_id) REFERENCES transcripts(id) ON DELETE CASCADE
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_red_flags_key ON red_flags(transcript_id, gloss);

	CREATE TABLE IF NOT EXISTS cases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vote_id TEXT NOT NULL UNIQUE,
		decision_type INTEGER NOT NULL DEFAULT 0,
		term INTEGER NOT NULL DEFAULT 0,
		decision_date DATE,
		docket TEXT NOT NULL DEFAULT '',
		chief_justice TEXT NOT NULL DEFAULT '',
		transcript_id INTEGER,
		FOREIGN KEY (transcript_id) REFERENCES transcripts(id) ON DELETE SET NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cases_docket ON cases(docket);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertTranscript returns the existing row for (term, docket, file name) or creates it.
// An existing transcript is left unchanged.
func (s *SQLiteStorage) UpsertTranscript(ctx context.Context, t *models.Transcript) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO transcripts (raw_text, term, docket, file_name, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(term, docket, file_name) DO UPDATE SET term = excluded.term
		 RETURNING id`,
		t.RawText, t.Term, t.Docket, t.FileName, time.Now().UTC(),
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert transcript %s: %w", t.FileName, err)
	}
	return s.db.QueryRowContext(ctx,
		`SELECT created_at FROM transcripts WHERE id = ?`, t.ID,
	).Scan(&t.CreatedAt)
}

// GetTranscript returns a transcript by ID with statements, paragraphs and red flags loaded.
func (s *SQLiteStorage) GetTranscript(ctx context.Context, id int64) (*models.Transcript, error) {
	var t models.Transcript
	err := s.db.QueryRowContext(ctx,
		`SELECT id, raw_text, term, docket, file_name, created_at
		 FROM transcripts WHERE id = ?`, id,
	).Scan(&t.ID, &t.RawText, &t.Term, &t.Docket, &t.FileName, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transcript %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if t.Statements, err = s.ListStatements(ctx, id); err != nil {
		return nil, err
	}
	flags, err := s.ListRedFlags(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, f := range flags {
		t.RedFlags = append(t.RedFlags, f.Gloss)
	}
	return &t, nil
}

// HasTranscript reports whether a transcript with this term and file name is stored.
func (s *SQLiteStorage) HasTranscript(ctx context.Context, term int, fileName string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM transcripts WHERE term = ? AND file_name = ?)`,
		term, fileName,
	).Scan(&exists)
	return exists, err
}

// ListTranscripts returns transcripts without raw text or children, ordered by term then file name.
// RedFlags is populated so callers can tell well-formed transcripts apart.
func (s *SQLiteStorage) ListTranscripts(ctx context.Context, f TranscriptFilter) ([]*models.Transcript, error) {
	var (
		where []string
		args  []any
	)
	if f.Term != 0 {
		where = append(where, "t.term = ?")
		args = append(args, f.Term)
	}
	if f.FlaggedOnly {
		where = append(where, "EXISTS (SELECT 1 FROM red_flags r WHERE r.transcript_id = t.id)")
	}
	query := `SELECT t.id, t.term, t.docket, t.file_name, t.created_at FROM transcripts t`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.term, t.file_name"
	if f.Limit > 0 || f.Offset > 0 {
		limit := f.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Transcript
	byID := make(map[int64]*models.Transcript)
	for rows.Next() {
		var t models.Transcript
		if err := rows.Scan(&t.ID, &t.Term, &t.Docket, &t.FileName, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
		byID[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	flagRows, err := s.db.QueryContext(ctx, `SELECT transcript_id, gloss FROM red_flags ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer flagRows.Close()
	for flagRows.Next() {
		var (
			id    int64
			gloss string
		)
		if err := flagRows.Scan(&id, &gloss); err != nil {
			return nil, err
		}
		if t, ok := byID[id]; ok {
			t.RedFlags = append(t.RedFlags, gloss)
		}
	}
	return out, flagRows.Err()
}

// DeleteTranscript removes a transcript and everything it owns, returning its ID
// or 0 when nothing matched. Linked cases are unlinked.
func (s *SQLiteStorage) DeleteTranscript(ctx context.Context, term int, fileName string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM transcripts WHERE term = ? AND file_name = ? RETURNING id`, term, fileName,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// UpsertStatement stores a statement keyed by (transcript, side, sequence).
// Speaker and flags of an existing row are refreshed.
func (s *SQLiteStorage) UpsertStatement(ctx context.Context, st *models.Statement) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO statements (transcript_id, side, sequence, speaker,
		   ended_by_interruption, includes_laughter, ends_with_question,
		   speaker_is_petitioner, speaker_is_respondent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(transcript_id, side, sequence) DO UPDATE SET
		   speaker = excluded.speaker,
		   ended_by_interruption = excluded.ended_by_interruption,
		   includes_laughter = excluded.includes_laughter,
		   ends_with_question = excluded.ends_with_question
		 RETURNING id`,
		st.TranscriptID, st.Side(), st.Sequence, st.Speaker,
		st.EndedByInterruption, st.IncludesLaughter, st.EndsWithQuestion,
		st.SpeakerIsPetitioner, st.SpeakerIsRespondent,
	).Scan(&st.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert statement %d/%s/%d: %w", st.TranscriptID, st.Side(), st.Sequence, err)
	}
	return nil
}

const statementColumns = `id, transcript_id, sequence, speaker, ended_by_interruption,
	includes_laughter, ends_with_question, speaker_is_petitioner, speaker_is_respondent`

func scanStatement(sc interface{ Scan(...any) error }) (*models.Statement, error) {
	var st models.Statement
	err := sc.Scan(&st.ID, &st.TranscriptID, &st.Sequence, &st.Speaker, &st.EndedByInterruption,
		&st.IncludesLaughter, &st.EndsWithQuestion, &st.SpeakerIsPetitioner, &st.SpeakerIsRespondent)
	return &st, err
}

// GetStatement returns a statement by ID with its paragraphs.
func (s *SQLiteStorage) GetStatement(ctx context.Context, id int64) (*models.Statement, error) {
	st, err := scanStatement(s.db.QueryRowContext(ctx,
		`SELECT `+statementColumns+` FROM statements WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("statement %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT gloss FROM paragraphs WHERE statement_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var gloss string
		if err := rows.Scan(&gloss); err != nil {
			return nil, err
		}
		st.Paragraphs = append(st.Paragraphs, gloss)
	}
	return st, rows.Err()
}

// ListStatements returns a transcript's statements, petitioner side first, each with paragraphs.
func (s *SQLiteStorage) ListStatements(ctx context.Context, transcriptID int64) ([]*models.Statement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+statementColumns+` FROM statements WHERE transcript_id = ?
		 ORDER BY CASE side WHEN 'petitioner' THEN 0 ELSE 1 END, sequence`,
		transcriptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Statement
	byID := make(map[int64]*models.Statement)
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
		byID[st.ID] = st
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pRows, err := s.db.QueryContext(ctx,
		`SELECT p.statement_id, p.gloss FROM paragraphs p
		 JOIN statements st ON st.id = p.statement_id
		 WHERE st.transcript_id = ? ORDER BY p.statement_id, p.position`,
		transcriptID,
	)
	if err != nil {
		return nil, err
	}
	defer pRows.Close()
	for pRows.Next() {
		var (
			id    int64
			gloss string
		)
		if err := pRows.Scan(&id, &gloss); err != nil {
			return nil, err
		}
		if st, ok := byID[id]; ok {
			st.Paragraphs = append(st.Paragraphs, gloss)
		}
	}
	return out, pRows.Err()
}

// UpsertParagraph stores a paragraph keyed by (statement, text). A repeated
// text keeps its first position.
func (s *SQLiteStorage) UpsertParagraph(ctx context.Context, p *models.Paragraph) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO paragraphs (statement_id, position, gloss) VALUES (?, ?, ?)
		 ON CONFLICT(statement_id, gloss) DO UPDATE SET gloss = excluded.gloss
		 RETURNING id, position`,
		p.StatementID, p.Position, p.Gloss,
	).Scan(&p.ID, &p.Position)
	if err != nil {
		return fmt.Errorf("failed to upsert paragraph for statement %d: %w", p.StatementID, err)
	}
	return nil
}

// UpsertRedFlag records a flag once per (transcript, message).
func (s *SQLiteStorage) UpsertRedFlag(ctx context.Context, f *models.RedFlag) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO red_flags (transcript_id, gloss) VALUES (?, ?)
		 ON CONFLICT(transcript_id, gloss) DO UPDATE SET gloss = excluded.gloss
		 RETURNING id`,
		f.TranscriptID, f.Gloss,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert red flag for transcript %d: %w", f.TranscriptID, err)
	}
	return nil
}

// ListRedFlags returns a transcript's flags in the order they were raised.
func (s *SQLiteStorage) ListRedFlags(ctx context.Context, transcriptID int64) ([]*models.RedFlag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transcript_id, gloss FROM red_flags WHERE transcript_id = ? ORDER BY id`,
		transcriptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RedFlag
	for rows.Next() {
		var f models.RedFlag
		if err := rows.Scan(&f.ID, &f.TranscriptID, &f.Gloss); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// UpsertCase inserts a case unless its vote ID is already stored. It reports
// whether a row was created; either way c.ID is set.
func (s *SQLiteStorage) UpsertCase(ctx context.Context, c *models.Case) (bool, error) {
	var date any
	if c.DecisionDate != nil {
		date = c.DecisionDate.Format("2006-01-02")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cases (vote_id, decision_type, term, decision_date, docket, chief_justice)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(vote_id) DO NOTHING`,
		c.VoteID, c.DecisionType, c.Term, date, c.Docket, c.ChiefJustice,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert case %s: %w", c.VoteID, err)
	}
	n, _ := res.RowsAffected()
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM cases WHERE vote_id = ?`, c.VoteID,
	).Scan(&c.ID); err != nil {
		return false, fmt.Errorf("failed to read case %s: %w", c.VoteID, err)
	}
	return n > 0, nil
}

// ListCases returns all cases ordered by vote ID.
func (s *SQLiteStorage) ListCases(ctx context.Context) ([]*models.Case, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vote_id, decision_type, term, decision_date, docket, chief_justice, transcript_id
		 FROM cases ORDER BY vote_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Case
	for rows.Next() {
		var (
			c            models.Case
			date         sql.NullTime
			transcriptID sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.VoteID, &c.DecisionType, &c.Term, &date,
			&c.Docket, &c.ChiefJustice, &transcriptID); err != nil {
			return nil, err
		}
		if date.Valid {
			d := date.Time
			c.DecisionDate = &d
		}
		if transcriptID.Valid {
			id := transcriptID.Int64
			c.TranscriptID = &id
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// LinkCase points a case at a transcript.
func (s *SQLiteStorage) LinkCase(ctx context.Context, caseID, transcriptID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cases SET transcript_id = ? WHERE id = ?`, transcriptID, caseID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("case %d: %w", caseID, ErrNotFound)
	}
	return nil
}

// Stats returns row counts across all tables.
func (s *SQLiteStorage) Stats(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM transcripts),
		(SELECT COUNT(DISTINCT transcript_id) FROM red_flags),
		(SELECT COUNT(*) FROM statements),
		(SELECT COUNT(*) FROM paragraphs),
		(SELECT COUNT(*) FROM red_flags),
		(SELECT COUNT(*) FROM cases),
		(SELECT COUNT(*) FROM cases WHERE transcript_id IS NOT NULL),
		(SELECT COUNT(DISTINCT transcript_id) FROM cases WHERE transcript_id IS NOT NULL)`,
	).Scan(&st.Transcripts, &st.FlaggedTranscripts, &st.Statements, &st.Paragraphs,
		&st.RedFlags, &st.Cases, &st.CasesWithTranscript, &st.TranscriptsWithCases)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
