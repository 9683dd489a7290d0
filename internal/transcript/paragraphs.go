package transcript

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	speakerRe    = regexp.MustCompile(`^ *([A-Z. ]+):`)
	multiSpaceRe = regexp.MustCompile(` +`)
)

// SpeakerPrefix returns the speaker name at the start of text, if any.
func SpeakerPrefix(text string) (string, bool) {
	m := speakerRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NormalizeParagraph collapses runs of spaces into a single space.
func NormalizeParagraph(p string) string {
	return multiSpaceRe.ReplaceAllString(p, " ")
}

func startsWithSpace(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return line != "" && unicode.IsSpace(r)
}

// joinSeparator returns the text to place between a paragraph and its next
// continuation line. A trailing hyphen glued to a word is a line-break
// hyphenation and gets no space; a free-standing dash does.
func joinSeparator(paragraph string) string {
	if !strings.HasSuffix(paragraph, "-") {
		return " "
	}
	if len(paragraph) > 1 && paragraph[len(paragraph)-2] == ' ' {
		return " "
	}
	return ""
}

// paragraphScan is the accumulator for CoalesceParagraphs.
type paragraphScan struct {
	current    *strings.Builder
	paragraphs []string
}

func (s *paragraphScan) flush() {
	if s.current != nil {
		s.paragraphs = append(s.paragraphs, s.current.String())
	}
}

func (s *paragraphScan) step(line string) {
	if s.current == nil || startsWithSpace(line) || speakerRe.MatchString(line) {
		s.flush()
		s.current = &strings.Builder{}
		s.current.WriteString(strings.TrimSpace(line))
		return
	}
	s.current.WriteString(joinSeparator(s.current.String()))
	s.current.WriteString(strings.TrimSpace(line))
}

// CoalesceParagraphs merges continuation lines into paragraphs. A line opens a
// new paragraph when it is the first line, starts with whitespace or starts
// with a speaker prefix. Finished paragraphs have their spaces collapsed and
// any paragraph containing boilerplate is flagged but kept.
func CoalesceParagraphs(lines []string) (paragraphs []string, flags []string) {
	var s paragraphScan
	for _, line := range lines {
		s.step(line)
	}
	s.flush()

	paragraphs = make([]string, len(s.paragraphs))
	for i, p := range s.paragraphs {
		paragraphs[i] = NormalizeParagraph(p)
	}
	for _, p := range paragraphs {
		if ContainsBoilerplate(p) {
			flags = append(flags, fmt.Sprintf(FlagBoilerplateFmt, p))
		}
	}
	return paragraphs, flags
}
