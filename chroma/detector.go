// Package chroma detects the language of fetched content using the chroma
// lexer registry.
package chroma

import (
	"mime"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/pagewatch"
)

// Compile-time interface verification.
var _ pagewatch.ContentDetector = (*Detector)(nil)

// genericMIMETypes say nothing about the content. Some lexers claim them
// anyway, so they are never matched against the registry.
var genericMIMETypes = map[string]bool{
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

// Detector detects content languages using chroma.
type Detector struct{}

// NewDetector creates a new chroma-based content detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the language name for the given MIME type, falling back to
// analysing the content itself. Returns an empty string if the language
// cannot be determined.
func (d *Detector) Detect(mimeType, content string) string {
	// Strip parameters such as charset
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	} else {
		mimeType, _, _ = strings.Cut(mimeType, ";")
		mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	}

	if mimeType != "" && !genericMIMETypes[mimeType] {
		if lexer := lexers.MatchMimeType(mimeType); lexer != nil {
			return lexer.Config().Name
		}
	}

	if strings.TrimSpace(content) == "" {
		return ""
	}
	lexer := lexers.Analyse(content)
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
