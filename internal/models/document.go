// Package models defines core data structures for transcripts, statements, red flags and cases.
package models

import (
	"strings"
	"time"
)

// Transcript is one oral-argument document. It is unique by (Term, Docket, FileName);
// Docket is empty when it could not be derived from the file name.
type Transcript struct {
	ID        int64     `json:"id" db:"id"`
	RawText   string    `json:"raw_text,omitempty" db:"raw_text"`
	Term      int       `json:"term" db:"term"`
	Docket    string    `json:"docket" db:"docket"`
	FileName  string    `json:"file_name" db:"file_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Statements []*Statement `json:"statements,omitempty" db:"-"`
	RedFlags   []string     `json:"red_flags,omitempty" db:"-"`
}

// IsWellFormed reports whether the transcript has no red flags. RedFlags must be loaded.
func (t *Transcript) IsWellFormed() bool {
	return len(t.RedFlags) == 0
}

// PetitionerStatements returns the loaded statements made in the petitioner section.
func (t *Transcript) PetitionerStatements() []*Statement {
	var out []*Statement
	for _, s := range t.Statements {
		if s.SpeakerIsPetitioner {
			out = append(out, s)
		}
	}
	return out
}

// RespondentStatements returns the loaded statements made in the respondent section.
func (t *Transcript) RespondentStatements() []*Statement {
	var out []*Statement
	for _, s := range t.Statements {
		if s.SpeakerIsRespondent {
			out = append(out, s)
		}
	}
	return out
}

// FullText joins petitioner then respondent statements with blank lines.
func (t *Transcript) FullText() string {
	var parts []string
	for _, s := range t.PetitionerStatements() {
		parts = append(parts, s.FullText())
	}
	for _, s := range t.RespondentStatements() {
		parts = append(parts, s.FullText())
	}
	return strings.Join(parts, "\n\n")
}

// Statement is a contiguous block of speech by one speaker within one section.
// Sequence is its position within the section and, with the side, its natural key.
type Statement struct {
	ID                  int64  `json:"id" db:"id"`
	TranscriptID        int64  `json:"transcript_id" db:"transcript_id"`
	Sequence            int    `json:"sequence" db:"sequence"`
	Speaker             string `json:"speaker" db:"speaker"`
	EndedByInterruption bool   `json:"ended_by_interruption" db:"ended_by_interruption"`
	IncludesLaughter    bool   `json:"includes_laughter" db:"includes_laughter"`
	EndsWithQuestion    bool   `json:"ends_with_question" db:"ends_with_question"`
	SpeakerIsPetitioner bool   `json:"speaker_is_petitioner" db:"speaker_is_petitioner"`
	SpeakerIsRespondent bool   `json:"speaker_is_respondent" db:"speaker_is_respondent"`

	Paragraphs []string `json:"paragraphs,omitempty" db:"-"`
}

// SpeakerIsJustice reports whether the speaker is a member of the Court.
// Older transcripts label every bench question "QUESTION".
func (s *Statement) SpeakerIsJustice() bool {
	return strings.HasPrefix(s.Speaker, "JUSTICE") ||
		strings.HasPrefix(s.Speaker, "CHIEF JUSTICE") ||
		s.Speaker == "QUESTION"
}

// Side returns "petitioner", "respondent" or "" when neither flag is set.
func (s *Statement) Side() string {
	switch {
	case s.SpeakerIsPetitioner:
		return "petitioner"
	case s.SpeakerIsRespondent:
		return "respondent"
	default:
		return ""
	}
}

// FullText joins the statement's paragraphs with blank lines.
func (s *Statement) FullText() string {
	return strings.Join(s.Paragraphs, "\n\n")
}

// Paragraph is one normalized utterance fragment owned by a statement.
type Paragraph struct {
	ID          int64  `json:"id" db:"id"`
	StatementID int64  `json:"statement_id" db:"statement_id"`
	Position    int    `json:"position" db:"position"`
	Gloss       string `json:"gloss" db:"gloss"`
}

// RedFlag records a single heuristic failure for a transcript.
type RedFlag struct {
	ID           int64  `json:"id" db:"id"`
	TranscriptID int64  `json:"transcript_id" db:"transcript_id"`
	Gloss        string `json:"gloss" db:"gloss"`
}

// SanitizeASCII drops every non-ASCII rune from s.
func SanitizeASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
