package pagewatch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/url"
	"time"
)

// ErrNoTasks is returned when a run is started without any tasks.
var ErrNoTasks = errors.New("no tasks configured")

// MinInterval is the shortest interval considered polite towards a target.
const MinInterval = 60 * time.Second

// Task describes one monitored resource.
type Task struct {
	Name       string        `json:"name" toml:"name" mapstructure:"name"`
	URL        string        `json:"url" toml:"url" mapstructure:"url"`
	Interval   time.Duration `json:"interval" toml:"interval" mapstructure:"interval"`
	MaxRounds  int           `json:"max_rounds" toml:"max_rounds" mapstructure:"max_rounds"` // 0 means unbounded
	JSONPath   string        `json:"json_path,omitempty" toml:"json_path,omitempty" mapstructure:"json_path"`
	StripHTML  bool          `json:"strip_html,omitempty" toml:"strip_html,omitempty" mapstructure:"strip_html"`
	ResetCache bool          `json:"reset_cache,omitempty" toml:"reset_cache,omitempty" mapstructure:"reset_cache"`
}

// DisplayName returns the task name, or a name derived from the URL host
// when the task has none.
func (t Task) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	u, err := url.Parse(t.URL)
	if err != nil || u.Host == "" {
		return "Monitor"
	}
	return "Monitor @ " + u.Host
}

// TaskKey returns a stable, filesystem-safe identifier for a task name.
func TaskKey(name string) string {
	// SHA-1 is used for naming only.
	sum := sha1.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}

// Snapshot is one captured observation of monitored content.
type Snapshot struct {
	TaskName    string    `json:"task_name"`
	TargetURL   string    `json:"target_url"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Extractor produces the current snapshot for a task.
type Extractor interface {
	Extract(ctx context.Context, task Task) (*Snapshot, error)
}

// SnapshotCache stores the most recent snapshots of each task.
type SnapshotCache interface {
	// Latest returns the newest snapshot for the task, or nil if none exists.
	Latest(ctx context.Context, taskName string) (*Snapshot, error)
	// Store saves s as the newest snapshot, evicting versions beyond the
	// cache's retention depth.
	Store(ctx context.Context, s *Snapshot) error
	// Reset removes all snapshots of the task.
	Reset(ctx context.Context, taskName string) error
}

// SnapshotHistory lists the retained snapshots of a task.
type SnapshotHistory interface {
	// History returns the retained snapshots from oldest to newest.
	History(ctx context.Context, taskName string) ([]*Snapshot, error)
}

// ContentDetector determines the content language of fetched text.
type ContentDetector interface {
	// Detect returns a language name such as "JSON" or "HTML" for the given
	// MIME type and content, or an empty string if it cannot be determined.
	Detect(mimeType, content string) string
}

// Event is one monitoring round's outcome, handed to every notifier.
type Event struct {
	Task       Task
	Round      int
	RoundID    string
	Comparison Comparison
	Snapshot   *Snapshot
}

// Delta returns the render input for the event.
func (e Event) Delta() Delta {
	d := Delta{
		TaskName:    e.Task.DisplayName(),
		StatusLabel: e.Comparison.Label(),
		TargetURL:   e.Task.URL,
	}
	if e.Comparison.Alignment != nil {
		d.Alignment = *e.Comparison.Alignment
	}
	if e.Snapshot != nil {
		d.ContentType = e.Snapshot.ContentType
	}
	return d
}

// Notifier delivers round outcomes over one channel. Delivery failures are
// handled by the notifier; a returned error is reported but never stops
// monitoring.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}
