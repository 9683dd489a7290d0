package transcript

import (
	"fmt"
	"regexp"
)

// Section identifies which side's argument a line belongs to.
type Section int

const (
	// SectionNone is the scan state before any section header has been seen.
	SectionNone Section = iota
	SectionPetitioner
	SectionRespondent
)

// String returns the lowercase side name used in flags and logs.
func (s Section) String() string {
	switch s {
	case SectionPetitioner:
		return "petitioner"
	case SectionRespondent:
		return "respondent"
	default:
		return "none"
	}
}

// MinSectionLines is the fewest lines a section may have before it is flagged.
const MinSectionLines = 25

var (
	petitionerHeaderRe = regexp.MustCompile(`ON  ?BEHALF  ?OF  ?(?:THE  ?)?(?:PETITIONER|APPELANT)S?`)
	respondentHeaderRe = regexp.MustCompile(`ON  ?BEHALF  ?OF  ?(?:THE  ?)?RES?PONDENTS?`)
	bareHeaderRe       = regexp.MustCompile(`^[A-Z .]+$`)

	// Closing phrases tolerate the misspellings of "Whereupon" seen in the corpus.
	endPhraseRes = []*regexp.Regexp{
		regexp.MustCompile(` *[(\[] ?Where?u?pon,?  ?at  ?\d\d?[:;]\d\d(?:  ?o'clock)?(?:  ?(?:[ap]\.m\.?|noon))? ?,?  ?the`),
		regexp.MustCompile(` *[(\[] ?Where?u?pon,?  ?at  ?the  ?case  ?was  ?submitted`),
		regexp.MustCompile(` *[(\[] ?Where?u?pon,?  ?the  ?case  ?in  ?the  ?above-(?:en)?titled`),
	}
)

// Sections holds the body lines split by side.
type Sections struct {
	Petitioner []string
	Respondent []string
	// HitEnd is true when a closing phrase terminated the scan.
	HitEnd bool
}

// IsEndPhrase reports whether line matches one of the closing phrases.
func IsEndPhrase(line string) bool {
	for _, re := range endPhraseRes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// sectionScan is the accumulator for SplitSections.
type sectionScan struct {
	current Section
	out     Sections
}

// step consumes one line and reports whether scanning should continue.
func (s *sectionScan) step(line string) bool {
	switch {
	case petitionerHeaderRe.MatchString(line):
		s.current = SectionPetitioner
	case respondentHeaderRe.MatchString(line):
		s.current = SectionRespondent
	case IsEndPhrase(line):
		s.out.HitEnd = true
		return false
	case bareHeaderRe.MatchString(line):
		// bare headings such as "REBUTTAL ARGUMENT OF"
	case s.current == SectionPetitioner:
		s.out.Petitioner = append(s.out.Petitioner, line)
	case s.current == SectionRespondent:
		s.out.Respondent = append(s.out.Respondent, line)
	}
	return true
}

// SplitSections partitions body lines into petitioner and respondent lines.
// Header lines and bare all-caps lines are discarded, lines before the first
// header are dropped and the scan stops at the first closing phrase.
func SplitSections(lines []string) (Sections, []string) {
	var s sectionScan
	for _, line := range lines {
		if !s.step(line) {
			break
		}
	}
	var flags []string
	if !s.out.HitEnd {
		flags = append(flags, FlagNoEndPhrase)
	}
	return s.out, flags
}

// CheckSectionLengths flags each side with fewer than MinSectionLines lines.
func CheckSectionLengths(s Sections) []string {
	var flags []string
	if n := len(s.Petitioner); n < MinSectionLines {
		flags = append(flags, fmt.Sprintf(FlagShortSectionFmt, n, SectionPetitioner))
	}
	if n := len(s.Respondent); n < MinSectionLines {
		flags = append(flags, fmt.Sprintf(FlagShortSectionFmt, n, SectionRespondent))
	}
	return flags
}
