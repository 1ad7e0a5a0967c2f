// Package difflib aligns texts with the pmezard/go-difflib sequence matcher.
package difflib

import (
	"github.com/fwojciec/pagewatch"
	godifflib "github.com/pmezard/go-difflib/difflib"
)

// Compile-time interface verification.
var _ pagewatch.Aligner = (*Aligner)(nil)

// Aligner aligns texts by matching their code points with a
// difflib.SequenceMatcher. Autojunk is disabled and no element is junk, so
// the result equals that of match.Aligner.
type Aligner struct{}

// NewAligner creates a new difflib-backed Aligner.
func NewAligner() *Aligner {
	return &Aligner{}
}

// Align returns the alignment of old and new.
func (a *Aligner) Align(old, new string) pagewatch.Alignment {
	return pagewatch.NewAlignment(old, new, a.Runs(old, new))
}

// Runs returns the matching blocks of old and new, ending with the
// zero-length sentinel.
func (a *Aligner) Runs(old, new string) []pagewatch.MatchRun {
	m := godifflib.NewMatcherWithJunk(Tokenize(old), Tokenize(new), false, nil)
	blocks := m.GetMatchingBlocks()
	runs := make([]pagewatch.MatchRun, 0, len(blocks))
	for _, b := range blocks {
		runs = append(runs, pagewatch.MatchRun{OldStart: b.A, NewStart: b.B, Length: b.Size})
	}
	return runs
}

// Tokenize splits s into one token per code point.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, len(s))
	for _, r := range s {
		tokens = append(tokens, string(r))
	}
	return tokens
}
