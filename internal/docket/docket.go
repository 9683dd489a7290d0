// Package docket canonicalizes docket identifiers so transcripts and case
// records from different sources can be joined.
package docket

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyDocket is returned when there is no docket to normalize.
var ErrEmptyDocket = errors.New("empty docket")

var (
	applicationPrefixRe = regexp.MustCompile(`^A-`)
	// Original-jurisdiction and motion qualifiers, each after a space and an optional comma.
	qualifierSuffixRe = regexp.MustCompile(`,? (?:ORIG|ORIG\.|Orig\.|Original|\(Original\)|M|orig\.|ORIG ORIG)$`)
	fileNameDocketRe  = regexp.MustCompile(`(\d\d-\d+)(?:_[^.]+)?(?:\[Reargued\])?\.pdf`)
)

// Normalize trims raw, strips one leading "A-" and one trailing qualifier
// such as ", Orig." or " M". Matching is case-sensitive.
func Normalize(raw string) (string, error) {
	d := strings.TrimSpace(raw)
	if d == "" {
		return "", ErrEmptyDocket
	}
	d = applicationPrefixRe.ReplaceAllString(d, "")
	return qualifierSuffixRe.ReplaceAllString(d, ""), nil
}

// FromFileName extracts the docket from a transcript file name such as
// "11-182_5h26.pdf" or "09-1227[Reargued].pdf". It returns the first match
// and how many were found; zero matches yields "".
func FromFileName(name string) (string, int) {
	matches := fileNameDocketRe.FindAllStringSubmatch(name, -1)
	if len(matches) == 0 {
		return "", 0
	}
	return matches[0][1], len(matches)
}
