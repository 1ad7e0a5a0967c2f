// Package pagewatch provides domain types for detecting and rendering changes
// between snapshots of monitored content.
package pagewatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAlignment is returned when an Alignment breaks its shape invariants.
var ErrInvalidAlignment = errors.New("invalid alignment")

// MatchRun is a maximal run of code points common to both texts.
type MatchRun struct {
	OldStart int // Offset in the old text, in code points
	NewStart int // Offset in the new text, in code points
	Length   int // Zero only for the terminating sentinel
}

// Alignment is the structural alignment of an old and a new text.
//
// Matched holds the common parts (taken from the old text). ChangedOld and
// ChangedNew hold the parts between consecutive matches that were removed from
// the old text and added in the new text. Matched always has exactly one more
// element than either changed slice.
type Alignment struct {
	Runs       []MatchRun
	Matched    []string
	ChangedOld []string
	ChangedNew []string
}

// Aligner computes the alignment between two texts.
type Aligner interface {
	Align(old, new string) Alignment
}

// NewAlignment derives the matched and changed parts of old and new from runs.
// Runs must be ordered, non-overlapping, and terminated by the zero-length
// sentinel run at (len(old), len(new)).
func NewAlignment(old, new string, runs []MatchRun) Alignment {
	o, n := []rune(old), []rune(new)
	framed := frame(runs)

	oldPos := forOld(framed)
	newPos := forNew(framed)

	a := Alignment{
		Runs:       runs,
		Matched:    make([]string, 0, len(oldPos.matched)),
		ChangedOld: make([]string, 0, len(oldPos.changed)),
		ChangedNew: make([]string, 0, len(newPos.changed)),
	}
	for _, s := range oldPos.matched {
		a.Matched = append(a.Matched, string(o[s.start:s.end]))
	}
	for _, s := range oldPos.changed {
		a.ChangedOld = append(a.ChangedOld, string(o[s.start:s.end]))
	}
	for _, s := range newPos.changed {
		a.ChangedNew = append(a.ChangedNew, string(n[s.start:s.end]))
	}
	return a
}

// span is a half-open range of code point offsets.
type span struct {
	start, end int
}

// positions holds the matched and changed spans of one side of an alignment.
type positions struct {
	matched []span
	changed []span
}

func forOld(runs []MatchRun) positions {
	return sidePositions(runs, func(r MatchRun) int { return r.OldStart })
}

func forNew(runs []MatchRun) positions {
	return sidePositions(runs, func(r MatchRun) int { return r.NewStart })
}

// sidePositions computes matched spans from each run and changed spans as the
// gaps between the end of one run and the start of the next.
func sidePositions(runs []MatchRun, start func(MatchRun) int) positions {
	var p positions
	for i, r := range runs {
		s := start(r)
		p.matched = append(p.matched, span{s, s + r.Length})
		if i > 0 {
			p.changed = append(p.changed, span{p.matched[i-1].end, s})
		}
	}
	return p
}

// frame normalizes runs so that every code point falls inside a matched or a
// changed span. A leading empty run anchors a gap at the start of either text,
// and the sentinel is dropped when nothing remains between it and the last run.
func frame(runs []MatchRun) []MatchRun {
	framed := make([]MatchRun, 0, len(runs)+1)
	if len(runs) == 0 || runs[0].OldStart != 0 || runs[0].NewStart != 0 {
		framed = append(framed, MatchRun{})
	}
	for _, r := range runs {
		if r.Length == 0 && len(framed) > 0 {
			last := framed[len(framed)-1]
			if last.OldStart+last.Length == r.OldStart && last.NewStart+last.Length == r.NewStart {
				continue
			}
		}
		framed = append(framed, r)
	}
	return framed
}

// Validate checks the shape invariants of the alignment.
func (a Alignment) Validate() error {
	if len(a.Matched) == 0 {
		return fmt.Errorf("%w: no matched parts", ErrInvalidAlignment)
	}
	if len(a.ChangedOld) != len(a.Matched)-1 || len(a.ChangedNew) != len(a.Matched)-1 {
		return fmt.Errorf("%w: %d matched, %d removed, %d added parts",
			ErrInvalidAlignment, len(a.Matched), len(a.ChangedOld), len(a.ChangedNew))
	}
	for i := 1; i < len(a.Runs); i++ {
		prev, cur := a.Runs[i-1], a.Runs[i]
		if cur.OldStart < prev.OldStart+prev.Length || cur.NewStart < prev.NewStart+prev.Length {
			return fmt.Errorf("%w: run %d overlaps run %d", ErrInvalidAlignment, i, i-1)
		}
	}
	return nil
}

// Changes returns the changed pairs in document order.
func (a Alignment) Changes() []Change {
	changes := make([]Change, 0, len(a.ChangedOld))
	for i := range a.ChangedOld {
		changes = append(changes, Change{Removed: a.ChangedOld[i], Added: a.ChangedNew[i]})
	}
	return changes
}

// Change is one pair of removed and added text between two matched parts.
type Change struct {
	Removed string
	Added   string
}

// Old reassembles the old text from matched and removed parts.
func (a Alignment) Old() string {
	return a.join(a.ChangedOld)
}

// New reassembles the new text from matched and added parts.
func (a Alignment) New() string {
	return a.join(a.ChangedNew)
}

func (a Alignment) join(changed []string) string {
	var sb strings.Builder
	for i, m := range a.Matched {
		sb.WriteString(m)
		if i < len(changed) {
			sb.WriteString(changed[i])
		}
	}
	return sb.String()
}

// Segment represents a portion of text within a rendered delta.
type Segment struct {
	Text string      // The text content of this segment
	Kind SegmentKind // Whether the text is shared, added or removed
}

// SegmentKind represents the role of a segment in a delta.
type SegmentKind int

// Segment kinds.
const (
	SegmentMatched SegmentKind = iota
	SegmentAdded
	SegmentRemoved
)

// Segments returns the non-empty parts of the alignment in document order:
// each matched part followed by the added and then the removed text of the
// change that follows it.
func (a Alignment) Segments() []Segment {
	segs := make([]Segment, 0, len(a.Matched)*3)
	add := func(text string, kind SegmentKind) {
		if text != "" {
			segs = append(segs, Segment{Text: text, Kind: kind})
		}
	}
	for i, m := range a.Matched {
		add(m, SegmentMatched)
		if i < len(a.ChangedNew) {
			add(a.ChangedNew[i], SegmentAdded)
			add(a.ChangedOld[i], SegmentRemoved)
		}
	}
	return segs
}
