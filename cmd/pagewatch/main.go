package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	lg "github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/pagewatch"
	"github.com/fwojciec/pagewatch/bubbletea"
	"github.com/fwojciec/pagewatch/chroma"
	"github.com/fwojciec/pagewatch/difflib"
	pwfs "github.com/fwojciec/pagewatch/fs"
	"github.com/fwojciec/pagewatch/html"
	pwhttp "github.com/fwojciec/pagewatch/http"
	"github.com/fwojciec/pagewatch/lipgloss"
	"github.com/fwojciec/pagewatch/match"
	"github.com/fwojciec/pagewatch/monitor"
	"github.com/fwojciec/pagewatch/sqlite"
	pwzap "github.com/fwojciec/pagewatch/zap"
	"go.uber.org/zap"
)

const usage = `usage: pagewatch <command> [flags]

Commands:
  run      Monitor the configured tasks
  diff     Compare two files and print the delta
  history  Print the changes between the cached snapshots of a task
  init     Write a sample configuration file`

// ErrUsage is returned when the command line cannot be understood.
var ErrUsage = errors.New(usage)

// App encapsulates the application logic for testing.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	// Terminal is the lipgloss renderer for the output terminal.
	Terminal *lg.Renderer

	// Logger overrides the logger built from configuration.
	Logger *zap.SugaredLogger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &App{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Terminal: lg.NewRenderer(os.Stdout),
	}
	return app.Run(ctx, os.Args[1:])
}

// Run dispatches args to a subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	switch args[0] {
	case "run":
		return a.runMonitor(ctx, args[1:])
	case "diff":
		return a.runDiff(args[1:])
	case "history":
		return a.runHistory(ctx, args[1:])
	case "init":
		return a.runInit(args[1:])
	default:
		return fmt.Errorf("unknown command %q\n\n%w", args[0], ErrUsage)
	}
}

func (a *App) runMonitor(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	configPath := fs.String("config", "", "Path to the configuration file (default: ./pagewatch.toml)")
	url := fs.String("url", "", "Monitor this URL in addition to the configured tasks")
	name := fs.String("name", "", "Name of the --url task")
	interval := fs.Duration("interval", pagewatch.MinInterval, "Interval between rounds of the --url task")
	rounds := fs.Int("rounds", 0, "Number of rounds of the --url task (0 runs until interrupted)")
	jsonPath := fs.String("json-path", "", "Monitor only this JSON path of the --url response")
	stripHTML := fs.Bool("strip-html", false, "Monitor only the visible text of the --url page")
	reset := fs.Bool("reset", false, "Discard cached snapshots of the --url task before the first round")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	tasks, err := cfg.PageTasks()
	if err != nil {
		return err
	}
	if *url != "" {
		tasks = append(tasks, pagewatch.Task{
			Name:       *name,
			URL:        *url,
			Interval:   *interval,
			MaxRounds:  *rounds,
			JSONPath:   *jsonPath,
			StripHTML:  *stripHTML,
			ResetCache: *reset,
		})
	}
	if len(tasks) == 0 {
		return pagewatch.ErrNoTasks
	}

	logger := a.Logger
	if logger == nil {
		logger, err = pwzap.NewLogger(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		defer logger.Sync()
	}

	cache, closeCache, err := openCache(cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	client := pwhttp.NewClient(logger)
	theme := lipgloss.ThemeFor(a.Terminal)
	terminal := lipgloss.NewTerminalRenderer(a.Terminal, theme)

	var notifiers []pagewatch.Notifier
	for _, n := range cfg.Notifiers {
		switch n {
		case "console":
			if cfg.UI == "tui" {
				continue
			}
			notifiers = append(notifiers, pwzap.NewConsoleNotifier(logger, terminal, a.Stdout))
		case "webhook":
			notifiers = append(notifiers, pwhttp.NewWebhookNotifier(client, cfg.Webhook.URL, &html.NotificationRenderer{}, logger))
		case "outbox":
			notifiers = append(notifiers, pwfs.NewOutbox(cfg.Outbox.Dir, &html.EmailRenderer{}, logger))
		}
	}

	runner := &monitor.Runner{
		Extractor: pwhttp.NewExtractor(client, chroma.NewDetector()),
		Cache:     cache,
		Comparer:  pagewatch.NewComparer(newAligner(cfg.Aligner)),
		Notifiers: notifiers,
		Logger:    logger,
		Workers:   cfg.Workers,
	}

	if cfg.UI != "tui" {
		return runner.Run(ctx, tasks)
	}
	model := bubbletea.NewModel(tasks,
		bubbletea.WithRenderer(a.Terminal),
		bubbletea.WithTheme(theme),
		bubbletea.WithDeltaRenderer(terminal),
	)
	return bubbletea.NewDashboard(model).Run(ctx, func(ctx context.Context, n pagewatch.Notifier) error {
		runner.Notifiers = append(runner.Notifiers, n)
		return runner.Run(ctx, tasks)
	})
}

func (a *App) runDiff(args []string) error {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	format := fs.String("format", "terminal", "Output format: plain, terminal, notification or email")
	aligner := fs.String("aligner", "builtin", "Aligner: builtin or difflib")
	name := fs.String("name", "", "Task name shown by the HTML formats")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("diff needs OLD_FILE and NEW_FILE\n\n%w", ErrUsage)
	}
	kind, err := pagewatch.ParseRenderKind(*format)
	if err != nil {
		return err
	}

	oldPath, newPath := fs.Arg(0), fs.Arg(1)
	old, err := os.ReadFile(oldPath)
	if err != nil {
		return err
	}
	cur, err := os.ReadFile(newPath)
	if err != nil {
		return err
	}

	previous := string(old)
	comparison := pagewatch.NewComparer(newAligner(*aligner)).Compare(&previous, string(cur))
	if comparison.Status != pagewatch.StatusChanged {
		fmt.Fprintln(a.Stdout, comparison.Label())
		return nil
	}

	taskName := *name
	if taskName == "" {
		taskName = filepath.Base(newPath)
	}
	out, err := a.renderers().Render(kind, pagewatch.Delta{
		Alignment:   *comparison.Alignment,
		TaskName:    taskName,
		StatusLabel: comparison.Label(),
		TargetURL:   newPath,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, out)
	return nil
}

func (a *App) runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	configPath := fs.String("config", "", "Path to the configuration file (default: ./pagewatch.toml)")
	format := fs.String("format", "terminal", "Output format: plain, terminal, notification or email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("history needs TASK_NAME\n\n%w", ErrUsage)
	}
	kind, err := pagewatch.ParseRenderKind(*format)
	if err != nil {
		return err
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}

	logger := a.Logger
	if logger == nil {
		logger, err = pwzap.NewLogger(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}
		defer logger.Sync()
	}
	cache, closeCache, err := openCache(cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	name := fs.Arg(0)
	snapshots, err := cache.History(ctx, name)
	if err != nil {
		return fmt.Errorf("load history of %q: %w", name, err)
	}
	if len(snapshots) < 2 {
		fmt.Fprintf(a.Stdout, "%s: %d cached snapshot(s), nothing to compare\n", name, len(snapshots))
		return nil
	}

	comparer := pagewatch.NewComparer(newAligner(cfg.Aligner))
	renderers := a.renderers()
	changes := 0
	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		comparison := comparer.Compare(&prev.Content, cur.Content)
		if comparison.Status != pagewatch.StatusChanged {
			continue
		}
		out, err := renderers.Render(kind, pagewatch.Delta{
			Alignment:   *comparison.Alignment,
			TaskName:    name,
			StatusLabel: comparison.Label(),
			TargetURL:   cur.TargetURL,
			ContentType: cur.ContentType,
		})
		if err != nil {
			return err
		}
		changes++
		fmt.Fprintf(a.Stdout, "== %s\n%s\n", cur.FetchedAt.Format(time.RFC3339), out)
	}
	if changes == 0 {
		fmt.Fprintf(a.Stdout, "%s: no changes among %d cached snapshots\n", name, len(snapshots))
	}
	return nil
}

func (a *App) renderers() pagewatch.Renderers {
	return pagewatch.Renderers{
		pagewatch.RenderPlainText:        &pagewatch.PlainTextRenderer{},
		pagewatch.RenderTerminal:         lipgloss.NewTerminalRenderer(a.Terminal, lipgloss.ThemeFor(a.Terminal)),
		pagewatch.RenderNotificationHTML: &html.NotificationRenderer{},
		pagewatch.RenderEmailHTML:        &html.EmailRenderer{},
	}
}

func (a *App) runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := DefaultConfigName
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if err := WriteConfig(SampleConfig(), path, *force); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Wrote %s\n", path)
	return nil
}

func newAligner(name string) pagewatch.Aligner {
	if name == "difflib" {
		return difflib.NewAligner()
	}
	return match.NewAligner()
}

// snapshotStore is a snapshot cache that also lists retained snapshots.
type snapshotStore interface {
	pagewatch.SnapshotCache
	pagewatch.SnapshotHistory
}

// openCache opens the configured snapshot cache. The returned function
// releases its resources.
func openCache(cfg CacheConfig, logger *zap.SugaredLogger) (snapshotStore, func() error, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = pwfs.DefaultCacheDir()
	}
	if cfg.Backend != "sqlite" {
		return pwfs.NewSnapshotCache(dir, cfg.Versions, logger), func() error { return nil }, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	db, err := sqlite.Open(filepath.Join(dir, "snapshots.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot database: %w", err)
	}
	return sqlite.NewSnapshotCache(db, cfg.Versions, logger), db.Close, nil
}
