package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/pagewatch"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html/charset"
)

// Compile-time interface verification.
var _ pagewatch.Extractor = (*Extractor)(nil)

// MaxBodySize is the default cap on the number of bytes read from a response.
const MaxBodySize = 8 << 20

// Extraction errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrInvalidJSON      = errors.New("response is not valid JSON")
	ErrPathNotFound     = errors.New("json path not found")
	ErrBodyTooLarge     = errors.New("response body too large")
)

// Extractor fetches a task's URL and narrows the response to the monitored
// content.
type Extractor struct {
	// MaxBody is the largest response body accepted, in bytes.
	MaxBody int64

	client   *retryablehttp.Client
	detector pagewatch.ContentDetector
	now      func() time.Time
}

// NewExtractor creates an Extractor that fetches with client and labels
// content with detector.
func NewExtractor(client *retryablehttp.Client, detector pagewatch.ContentDetector) *Extractor {
	return &Extractor{MaxBody: MaxBodySize, client: client, detector: detector, now: time.Now}
}

// Extract fetches the task's URL. When the task has a JSON path, only the
// selected value is kept; when it strips HTML, only the visible text is kept.
func (e *Extractor) Extract(ctx context.Context, task pagewatch.Task) (*pagewatch.Snapshot, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", task.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch %s: %w: %s", task.URL, ErrUnexpectedStatus, resp.Status)
	}

	mimeType := resp.Header.Get("Content-Type")
	content, err := e.readBody(resp.Body, mimeType)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", task.URL, err)
	}

	switch {
	case task.JSONPath != "":
		content, err = selectJSON(content, task.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", task.URL, err)
		}
		mimeType = ""
	case task.StripHTML:
		content, err = Text(content)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", task.URL, err)
		}
		mimeType = "text/plain"
	}

	return &pagewatch.Snapshot{
		TaskName:    task.DisplayName(),
		TargetURL:   task.URL,
		Content:     content,
		ContentType: e.detector.Detect(mimeType, content),
		FetchedAt:   e.now(),
	}, nil
}

// readBody reads at most MaxBody bytes and decodes them to UTF-8 using the
// charset declared by contentType or sniffed from the body.
func (e *Extractor) readBody(r io.Reader, contentType string) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r, e.MaxBody+1))
	if err != nil {
		return "", err
	}
	if int64(len(body)) > e.MaxBody {
		return "", fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, e.MaxBody)
	}

	decoded, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	text, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return string(text), nil
}

func selectJSON(content, path string) (string, error) {
	if !gjson.Valid(content) {
		return "", ErrInvalidJSON
	}
	result := gjson.Get(content, path)
	if !result.Exists() {
		return "", fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return result.String(), nil
}
