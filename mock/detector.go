package mock

import "github.com/fwojciec/pagewatch"

// Compile-time interface verification.
var _ pagewatch.ContentDetector = (*ContentDetector)(nil)

// ContentDetector is a mock implementation of pagewatch.ContentDetector.
type ContentDetector struct {
	DetectFn func(mimeType, content string) string
}

func (d *ContentDetector) Detect(mimeType, content string) string {
	return d.DetectFn(mimeType, content)
}
