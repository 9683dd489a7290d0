// Package transcript segments extracted oral-argument text into sections,
// paragraphs and per-speaker statements, collecting red flags whenever the
// text does not have the expected shape.
package transcript

import (
	"regexp"
	"strings"
)

// BoilerplateLines are court-reporter letterhead strings that appear on every
// page of a transcript and carry no argument content.
var BoilerplateLines = []string{
	"ALDERSON REPORTING COMPANY, INC.",
	"1111 FOURTEENTH STREET, N.W.",
	"SUITE 400",
	"WASHINGTON, D.C. 20005",
	"(202)289-2260",
	"(800) FOR DEPO",
	"Alderson Reporting Company",
	"Official",
}

// StartLines are the spaced-out "PROCEEDINGS" headings that open the argument,
// including the misspelled variant seen in older transcripts.
var StartLines = []string{
	"P R O C E E D I N G S",
	"P R O C E D I N G S",
	"P  R  O  C  E  E  D  I  N  G  S",
	"P  R  O  C  E  D  I  N  G  S",
}

var (
	looseBoilerplateRe  = regexp.MustCompile(`(?i)` + alternation(BoilerplateLines))
	strictBoilerplateRe = regexp.MustCompile(`(?i)^` + alternation(BoilerplateLines) + `$`)
	startLineRe         = regexp.MustCompile(alternation(StartLines))
	pageNumberRe        = regexp.MustCompile(`^ *\d+ *$`)
	timestampRe         = regexp.MustCompile(`^\(\d?\d:\d\d [ap]\.m\.\)`)
	pageNumberPrefixRe  = regexp.MustCompile(`^ *\d+(?: {4}|\t)`)
)

// encodingRepairs fixes punctuation mangled by PDF extraction. The first pair
// must stay ahead of the single-character rules so the dash sequence is seen whole.
var encodingRepairs = strings.NewReplacer(
	"\u00c2\u00a0\u00c2\u00ad\u00c2\u00ad", " -- ",
	"\u00c2", " ",
	"\u00a0", "",
	"\u00ad", "",
	"\f", "",
	"\u00e2\u0080\u0099", "'",
	"\u2019", "'",
	`\'`, "'",
)

func alternation(lines []string) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = "(?:" + regexp.QuoteMeta(l) + ")"
	}
	return "(?:" + strings.Join(parts, "|") + ")"
}

// RepairEncoding applies the fixed set of punctuation repairs to raw extracted text.
func RepairEncoding(text string) string {
	return encodingRepairs.Replace(text)
}

// IsStartLine reports whether line contains one of the proceedings markers.
func IsStartLine(line string) bool {
	return startLineRe.MatchString(line)
}

// IsBoilerplateLine reports whether the trimmed line is exactly a boilerplate string.
func IsBoilerplateLine(line string) bool {
	return strictBoilerplateRe.MatchString(strings.TrimSpace(line))
}

// ContainsBoilerplate reports whether text contains a boilerplate string anywhere.
func ContainsBoilerplate(text string) bool {
	return looseBoilerplateRe.MatchString(text)
}

// lineScan is the accumulator for ClassifyLines.
type lineScan struct {
	inBody bool
	skip   int
	body   []string
}

func (s *lineScan) step(line string) {
	if s.skip > 0 {
		s.skip--
		return
	}
	if IsStartLine(line) {
		s.inBody = true
		s.skip = 1
		return
	}
	if !s.inBody || !keepBodyLine(line) {
		return
	}
	s.body = append(s.body, pageNumberPrefixRe.ReplaceAllString(line, ""))
}

func keepBodyLine(line string) bool {
	if line == "" {
		return false
	}
	if IsBoilerplateLine(line) {
		return false
	}
	if pageNumberRe.MatchString(line) {
		return false
	}
	return !timestampRe.MatchString(strings.TrimSpace(line))
}

// ClassifyLines repairs the encoding of text, finds the start of the
// proceedings and returns the body lines that follow it with boilerplate, page
// numbers and timestamps removed. When no start marker is found the body is
// empty and a red flag is returned.
func ClassifyLines(text string) (body []string, flags []string) {
	var s lineScan
	for _, line := range strings.Split(RepairEncoding(text), "\n") {
		s.step(line)
	}
	if !s.inBody {
		return nil, []string{FlagNoStartPhrase}
	}
	return s.body, nil
}
