// Package match implements the recursive longest-match sequence aligner.
package match

import (
	"sort"

	"github.com/fwojciec/pagewatch"
)

// Compile-time interface verification.
var _ pagewatch.Aligner = (*Aligner)(nil)

// Aligner aligns texts at code point granularity by repeatedly taking the
// longest common contiguous run and recursing on the regions around it.
// No element is ever treated as junk.
type Aligner struct{}

// NewAligner creates a new Aligner.
func NewAligner() *Aligner {
	return &Aligner{}
}

// Align returns the alignment of old and new.
func (a *Aligner) Align(old, new string) pagewatch.Alignment {
	return pagewatch.NewAlignment(old, new, Runs([]rune(old), []rune(new)))
}

// Runs returns the matching runs of a and b in increasing order, with
// adjacent runs merged and a zero-length sentinel at (len(a), len(b)).
func Runs(a, b []rune) []pagewatch.MatchRun {
	m := newMatcher(a, b)

	type region struct{ alo, ahi, blo, bhi int }
	var found []pagewatch.MatchRun
	queue := []region{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		r := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		run := m.longest(r.alo, r.ahi, r.blo, r.bhi)
		if run.Length == 0 {
			continue
		}
		found = append(found, run)
		if r.alo < run.OldStart && r.blo < run.NewStart {
			queue = append(queue, region{r.alo, run.OldStart, r.blo, run.NewStart})
		}
		if end, nend := run.OldStart+run.Length, run.NewStart+run.Length; end < r.ahi && nend < r.bhi {
			queue = append(queue, region{end, r.ahi, nend, r.bhi})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].OldStart != found[j].OldStart {
			return found[i].OldStart < found[j].OldStart
		}
		return found[i].NewStart < found[j].NewStart
	})

	runs := make([]pagewatch.MatchRun, 0, len(found)+1)
	for _, r := range found {
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			if last.OldStart+last.Length == r.OldStart && last.NewStart+last.Length == r.NewStart {
				last.Length += r.Length
				continue
			}
		}
		runs = append(runs, r)
	}
	return append(runs, pagewatch.MatchRun{OldStart: len(a), NewStart: len(b)})
}

// matcher indexes the positions of every code point of b.
type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

// longest finds the longest run common to a[alo:ahi] and b[blo:bhi]. Ties
// go to the run starting earliest in a, then earliest in b.
func (m *matcher) longest(alo, ahi, blo, bhi int) pagewatch.MatchRun {
	best := pagewatch.MatchRun{OldStart: alo, NewStart: blo}
	// j2len[j] is the length of the run ending at a[i-1] and b[j].
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := make(map[int]int, len(j2len))
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.Length {
				best = pagewatch.MatchRun{OldStart: i - k + 1, NewStart: j - k + 1, Length: k}
			}
		}
		j2len = next
	}
	return best
}
