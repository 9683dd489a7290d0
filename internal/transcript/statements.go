package transcript

import "strings"

// LaughterMarker is the stage direction recorded when the courtroom laughs.
const LaughterMarker = "(Laughter.)"

// Statement is a run of paragraphs spoken by one speaker within one section.
type Statement struct {
	Speaker             string
	Paragraphs          []string
	Side                Section
	EndedByInterruption bool
	EndsWithQuestion    bool
	IncludesLaughter    bool
}

// IsPetitionerSide reports whether the statement came from the petitioner section.
func (s *Statement) IsPetitionerSide() bool { return s.Side == SectionPetitioner }

// IsRespondentSide reports whether the statement came from the respondent section.
func (s *Statement) IsRespondentSide() bool { return s.Side == SectionRespondent }

// statementScan is the accumulator for CoalesceStatements.
type statementScan struct {
	side       Section
	open       *Statement
	prev       string
	hasPrev    bool
	statements []Statement
}

// close finalizes the open statement, inferring how it ended from the
// paragraph seen just before the speaker change.
func (s *statementScan) close() {
	if s.open == nil {
		return
	}
	if s.hasPrev {
		last := strings.TrimSpace(s.prev)
		if strings.HasSuffix(last, " --") {
			s.open.EndedByInterruption = true
		} else if strings.HasSuffix(last, "?") {
			s.open.EndsWithQuestion = true
		}
	}
	s.statements = append(s.statements, *s.open)
	s.open = nil
}

func (s *statementScan) step(paragraph string) {
	if speaker, ok := SpeakerPrefix(paragraph); ok {
		s.close()
		paragraph = strings.TrimSpace(speakerRe.ReplaceAllString(paragraph, ""))
		s.open = &Statement{
			Speaker:    speaker,
			Paragraphs: []string{paragraph},
			Side:       s.side,
		}
	} else if s.open != nil {
		if paragraph == LaughterMarker {
			s.open.IncludesLaughter = true
		} else {
			s.open.Paragraphs = append(s.open.Paragraphs, paragraph)
		}
	}
	s.prev = paragraph
	s.hasPrev = true
}

// CoalesceStatements groups paragraphs into per-speaker statements tagged with
// side. Paragraphs before the first speaker are discarded and "(Laughter.)"
// marks the open statement instead of becoming content.
//
// Interruption and question endings are only inferred when a following
// speaker change closes a statement; the final statement of the list keeps
// its default flags.
func CoalesceStatements(paragraphs []string, side Section) []Statement {
	s := statementScan{side: side}
	for _, p := range paragraphs {
		s.step(p)
	}
	if s.open != nil {
		s.statements = append(s.statements, *s.open)
	}
	return s.statements
}
