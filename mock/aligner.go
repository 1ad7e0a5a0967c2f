package mock

import "github.com/fwojciec/pagewatch"

// Compile-time interface verification.
var _ pagewatch.Aligner = (*Aligner)(nil)

// Aligner is a mock implementation of pagewatch.Aligner.
type Aligner struct {
	AlignFn func(old, new string) pagewatch.Alignment
}

func (a *Aligner) Align(old, new string) pagewatch.Alignment {
	return a.AlignFn(old, new)
}
