// Package transcripttest builds synthetic oral-argument transcripts for tests.
package transcripttest

import (
	"fmt"
	"strings"
)

// Rounds is the number of question/answer exchanges on each side of Sample.
const Rounds = 12

// Expected statement counts for Sample.
const (
	PetitionerStatements = 1 + 2*Rounds
	RespondentStatements = 1 + 2*Rounds + 1
)

// page accumulates numbered transcript lines the way the PDF text layer
// renders them: a line number, four spaces, then the text.
type page struct {
	lines []string
	n     int
}

func (p *page) raw(s string) { p.lines = append(p.lines, s) }

func (p *page) line(s string) {
	p.n++
	p.lines = append(p.lines, fmt.Sprintf("%d    %s", p.n, s))
	if p.n%25 == 0 {
		p.raw("")
		p.raw(fmt.Sprintf("%d", p.n/25))
		p.raw("\fAlderson Reporting Company")
		p.raw("1111 Fourteenth Street, N.W.")
	}
}

// indented writes a line that opens a new paragraph.
func (p *page) indented(s string) { p.line("      " + s) }

// Sample returns a well-formed transcript: a cover page, the proceedings
// marker, a petitioner argument and a respondent argument, closed by the
// submission phrase. It yields no red flags.
func Sample() string {
	var p page
	p.raw("Official - Subject to Final Review")
	p.raw("IN THE SUPREME COURT OF THE UNITED STATES")
	p.raw("APPEARANCES:")
	p.raw("PAUL SMITH, ESQ., Washington, D.C.; on behalf of")
	p.raw("the Petitioners.")
	p.raw("C O N T E N T S")
	p.raw("ORAL ARGUMENT OF PAUL SMITH")
	p.raw("ON BEHALF OF THE PETITIONERS")
	p.raw("")
	p.raw("P R O C E E D I N G S")
	p.raw("")
	p.raw("(10:04 a.m.)")
	p.line("CHIEF JUSTICE ROBERTS: We'll hear argument first")
	p.line("this morning in Case 11-182.")
	p.indented("Mr. Smith.")
	p.line("ORAL ARGUMENT OF PAUL SMITH")
	p.line("ON BEHALF OF THE PETITIONERS")
	p.line("MR. SMITH: Mr. Chief Justice, and may it please the")
	p.line("Court: This case concerns the interpretation of a")
	for i := 1; i <= Rounds; i++ {
		p.indented("JUSTICE GINSBURG: Is that really the question")
		p.line(fmt.Sprintf("presented in case %d?", i))
		p.indented("MR. SMITH: Yes, Your Honor, it is, and the")
		p.line("answer is straight-")
		p.line("forward --")
	}
	p.indented("(Laughter.)")
	p.line("ORAL ARGUMENT OF JANE JONES")
	p.line("ON BEHALF OF THE RESPONDENT")
	p.line("MS. JONES: Mr. Chief Justice, and may it please the")
	p.line("Court:")
	for i := 1; i <= Rounds; i++ {
		p.indented(fmt.Sprintf("JUSTICE BREYER: What about example %d?", i))
		p.indented("MS. JONES: That example fails for the same")
		p.line("reason.")
	}
	p.indented("CHIEF JUSTICE ROBERTS: Thank you, counsel.")
	p.line("(Whereupon, at 11:03 a.m., the case in the")
	p.line("above-entitled matter was submitted.)")
	return strings.Join(p.lines, "\n")
}

// SampleWithoutEnd returns Sample with the closing phrase removed.
func SampleWithoutEnd() string {
	s := Sample()
	i := strings.LastIndex(s, "\n")
	s = s[:i]
	i = strings.LastIndex(s, "\n")
	return s[:i]
}
