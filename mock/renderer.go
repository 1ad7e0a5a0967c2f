package mock

import "github.com/fwojciec/pagewatch"

// Compile-time interface verification.
var _ pagewatch.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of pagewatch.Renderer.
type Renderer struct {
	RenderFn func(d pagewatch.Delta) (string, error)
}

func (r *Renderer) Render(d pagewatch.Delta) (string, error) {
	return r.RenderFn(d)
}
