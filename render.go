package pagewatch

import (
	"errors"
	"fmt"
)

// ErrCapabilityUnavailable is returned by a renderer whose output requires a
// capability the runtime lacks, such as terminal color support.
var ErrCapabilityUnavailable = errors.New("renderer capability unavailable")

// ErrUnknownRenderKind is returned when no renderer is registered for a kind.
var ErrUnknownRenderKind = errors.New("unknown render kind")

// RenderKind selects a delta rendering format.
type RenderKind int

// Render kinds.
const (
	RenderPlainText RenderKind = iota
	RenderTerminal
	RenderNotificationHTML
	RenderEmailHTML
)

// String returns the configuration name of the render kind.
func (k RenderKind) String() string {
	switch k {
	case RenderPlainText:
		return "plain"
	case RenderTerminal:
		return "terminal"
	case RenderNotificationHTML:
		return "notification"
	case RenderEmailHTML:
		return "email"
	default:
		return "unknown"
	}
}

// ParseRenderKind returns the render kind with the given configuration name.
func ParseRenderKind(s string) (RenderKind, error) {
	for _, k := range []RenderKind{RenderPlainText, RenderTerminal, RenderNotificationHTML, RenderEmailHTML} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRenderKind, s)
}

// Delta is everything a renderer needs: the alignment plus the task context
// shown by the richer formats.
type Delta struct {
	Alignment   Alignment
	TaskName    string
	StatusLabel string
	TargetURL   string
	ContentType string
}

// Renderer renders a delta into a string.
type Renderer interface {
	Render(d Delta) (string, error)
}

// RenderWithFallback renders d with r, substituting fallback when r reports
// ErrCapabilityUnavailable. Any other error is returned unchanged.
func RenderWithFallback(r, fallback Renderer, d Delta) (string, error) {
	out, err := r.Render(d)
	if errors.Is(err, ErrCapabilityUnavailable) {
		return fallback.Render(d)
	}
	return out, err
}

// Renderers dispatches rendering by kind.
type Renderers map[RenderKind]Renderer

// Render renders d in the given format. Kinds other than plain text fall back
// to the plain text renderer when their capability is unavailable.
func (rs Renderers) Render(kind RenderKind, d Delta) (string, error) {
	r, ok := rs[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRenderKind, kind)
	}
	if kind == RenderPlainText {
		return r.Render(d)
	}
	fallback, ok := rs[RenderPlainText]
	if !ok {
		fallback = &PlainTextRenderer{}
	}
	return RenderWithFallback(r, fallback, d)
}
