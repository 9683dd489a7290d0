package models

import "time"

// Case is one row of the Supreme Court Database case-centered docket export.
// VoteID is unique; TranscriptID is set by reconciliation.
type Case struct {
	ID           int64      `json:"id" db:"id"`
	VoteID       string     `json:"vote_id" db:"vote_id"`
	DecisionType int        `json:"decision_type" db:"decision_type"`
	Term         int        `json:"term" db:"term"`
	DecisionDate *time.Time `json:"decision_date,omitempty" db:"decision_date"`
	Docket       string     `json:"docket" db:"docket"`
	ChiefJustice string     `json:"chief_justice" db:"chief_justice"`
	TranscriptID *int64     `json:"transcript_id,omitempty" db:"transcript_id"`
}

// HasTranscript reports whether the case has been linked to a transcript.
func (c *Case) HasTranscript() bool {
	return c.TranscriptID != nil
}

// IsWellFormed reports whether the case has the fields needed for analysis.
func (c *Case) IsWellFormed() bool {
	return c.VoteID != "" && c.DecisionDate != nil
}

// Stats summarizes what is stored.
type Stats struct {
	Transcripts          int64 `json:"transcripts"`
	FlaggedTranscripts   int64 `json:"flagged_transcripts"`
	Statements           int64 `json:"statements"`
	Paragraphs           int64 `json:"paragraphs"`
	RedFlags             int64 `json:"red_flags"`
	Cases                int64 `json:"cases"`
	CasesWithTranscript  int64 `json:"cases_with_transcript"`
	TranscriptsWithCases int64 `json:"transcripts_with_cases"`
}
