// Package cli formats command output for the oralarg CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperjump/oralarg/internal/ingest"
	"github.com/hyperjump/oralarg/internal/keyword"
	"github.com/hyperjump/oralarg/internal/models"
	"github.com/hyperjump/oralarg/internal/reconcile"
	"github.com/hyperjump/oralarg/pkg/utils"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one line per record.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DisplaySpeaker turns a transcript speaker label into title case:
// "CHIEF JUSTICE ROBERTS" becomes "Chief Justice Roberts".
func DisplaySpeaker(speaker string) string {
	return cases.Title(language.English).String(speaker)
}

// WriteSearchResults writes statement search results to w in the given format.
func WriteSearchResults(w io.Writer, response *keyword.Response, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%.4f\n", r.StatementID, r.Term, r.FileName, r.Speaker, r.Score)
		}
		return nil
	}

	fmt.Fprintf(w, "\nFound %d statements in %dms", response.Total, response.QueryTime)
	if response.AutoFuzzy {
		fmt.Fprint(w, " (no exact matches; showing fuzzy matches)")
	}
	fmt.Fprint(w, "\n\n")
	for i, r := range response.Results {
		fmt.Fprintf(w, "%d. %s, %s side (%d %s) | Score: %.4f | Statement: %d\n",
			i+1, DisplaySpeaker(r.Speaker), r.Side, r.Term, r.FileName, r.Score, r.StatementID)
		for _, frag := range r.Fragments {
			fmt.Fprintf(w, "   %s\n", utils.Truncate(plainFragment(frag), 300))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// plainFragment replaces highlight markup with asterisks for terminals.
func plainFragment(s string) string {
	s = strings.ReplaceAll(s, "<mark>", "*")
	s = strings.ReplaceAll(s, "</mark>", "*")
	return strings.Join(strings.Fields(s), " ")
}

// WriteTranscript writes one transcript with its statements.
func WriteTranscript(w io.Writer, t *models.Transcript, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, t)
	case OutputCompact:
		for _, s := range t.Statements {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Side(), s.Sequence, s.Speaker, TruncateWords(s.FullText(), 12))
		}
		return nil
	}

	fmt.Fprintf(w, "Transcript %d: %s (term %d, docket %s)\n", t.ID, t.FileName, t.Term, docketOrDash(t.Docket))
	if t.IsWellFormed() {
		fmt.Fprintln(w, "No red flags.")
	} else {
		fmt.Fprintf(w, "Red flags (%d):\n", len(t.RedFlags))
		for _, f := range t.RedFlags {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	writeSide(w, "PETITIONER", t.PetitionerStatements())
	writeSide(w, "RESPONDENT", t.RespondentStatements())
	return nil
}

func writeSide(w io.Writer, title string, statements []*models.Statement) {
	if len(statements) == 0 {
		return
	}
	fmt.Fprintf(w, "\n=== %s (%d statements) ===\n", title, len(statements))
	for _, s := range statements {
		var marks []string
		if s.EndsWithQuestion {
			marks = append(marks, "question")
		}
		if s.EndedByInterruption {
			marks = append(marks, "interrupted")
		}
		if s.IncludesLaughter {
			marks = append(marks, "laughter")
		}
		fmt.Fprintf(w, "\n[%d] %s", s.Sequence, DisplaySpeaker(s.Speaker))
		if len(marks) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(marks, ", "))
		}
		fmt.Fprintln(w)
		for _, p := range s.Paragraphs {
			fmt.Fprintf(w, "    %s\n", p)
		}
	}
}

// WriteTranscripts writes a transcript listing.
func WriteTranscripts(w io.Writer, transcripts []*models.Transcript, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if transcripts == nil {
			transcripts = []*models.Transcript{}
		}
		return WriteJSON(w, transcripts)
	case OutputCompact:
		for _, t := range transcripts {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\n", t.ID, t.Term, t.Docket, t.FileName, len(t.RedFlags))
		}
		return nil
	}
	rows := make([][]string, 0, len(transcripts))
	for _, t := range transcripts {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			strconv.Itoa(t.Term),
			docketOrDash(t.Docket),
			t.FileName,
			strconv.Itoa(len(t.RedFlags)),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Term", "Docket", "File", "Red flags"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight},
	))
	return nil
}

// WriteSummary writes the result of a processing run.
func WriteSummary(w io.Writer, sum *ingest.Summary, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, sum)
	}
	fmt.Fprintf(w, "processed %d, skipped %d, failed %d, flagged %d, statements %d (run %s)\n",
		sum.Processed, sum.Skipped, sum.Failed, sum.Flagged, sum.Statements, sum.RunID)
	return nil
}

// WriteCoverage writes reconciliation coverage.
func WriteCoverage(w io.Writer, cov *reconcile.Coverage, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, cov)
	case OutputCompact:
		fmt.Fprintf(w, "cases %d/%d %.2f%%\ttranscripts %d/%d %.2f%%\n",
			cov.CasesWithTranscript, cov.Cases, cov.CasePercent,
			cov.TranscriptsWithCases, cov.Transcripts, cov.TranscriptPercent)
		return nil
	}
	fmt.Fprintln(w, renderTable(
		[]string{"", "Total", "Linked", "Coverage"},
		[][]string{
			{"Cases", strconv.FormatInt(cov.Cases, 10), strconv.FormatInt(cov.CasesWithTranscript, 10), fmt.Sprintf("%.2f%%", cov.CasePercent)},
			{"Transcripts", strconv.FormatInt(cov.Transcripts, 10), strconv.FormatInt(cov.TranscriptsWithCases, 10), fmt.Sprintf("%.2f%%", cov.TranscriptPercent)},
		},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
	if cov.LinkedThisRun > 0 {
		fmt.Fprintf(w, "linked this run: %d\n", cov.LinkedThisRun)
	}
	return nil
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

func docketOrDash(d string) string {
	if d == "" {
		return "-"
	}
	return d
}
