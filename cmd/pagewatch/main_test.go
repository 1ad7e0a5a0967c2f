package main_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/pagewatch"
	main "github.com/fwojciec/pagewatch/cmd/pagewatch"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(profile termenv.Profile) (*main.App, *bytes.Buffer) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	var stdout bytes.Buffer
	return &main.App{
		Stdout:   &stdout,
		Stderr:   io.Discard,
		Terminal: r,
		Logger:   zap.NewNop().Sugar(),
	}, &stdout
}

func TestApp_Run_Usage(t *testing.T) {
	t.Parallel()

	app, _ := newApp(termenv.Ascii)

	assert.ErrorIs(t, app.Run(context.Background(), nil), main.ErrUsage)
	assert.ErrorIs(t, app.Run(context.Background(), []string{"watch"}), main.ErrUsage)
}

func TestApp_Run_Diff(t *testing.T) {
	t.Parallel()

	t.Run("prints numbered changes as plain text", func(t *testing.T) {
		t.Parallel()

		app, stdout := newApp(termenv.Ascii)
		old := writeFile(t, "old.txt", "hello world")
		cur := writeFile(t, "new.txt", "hello there")

		err := app.Run(context.Background(), []string{"diff", "--format", "plain", old, cur})

		require.NoError(t, err)
		expected := "Change #1\n---\nAdded:   'the'\nRemoved: 'wo'\n" +
			"\n" +
			"Change #2\n---\nAdded:   'e'\nRemoved: 'ld'\n" +
			"\n"
		assert.Equal(t, expected, stdout.String())
	})

	t.Run("difflib aligner agrees with the builtin aligner", func(t *testing.T) {
		t.Parallel()

		builtin, builtinOut := newApp(termenv.Ascii)
		difflib, difflibOut := newApp(termenv.Ascii)
		old := writeFile(t, "old.json", `{"price": 10, "stock": 3}`)
		cur := writeFile(t, "new.json", `{"price": 12, "stock": 0}`)

		require.NoError(t, builtin.Run(context.Background(), []string{"diff", "--format", "plain", old, cur}))
		require.NoError(t, difflib.Run(context.Background(), []string{"diff", "--format", "plain", "--aligner", "difflib", old, cur}))

		assert.Equal(t, builtinOut.String(), difflibOut.String())
	})

	t.Run("reports unchanged files", func(t *testing.T) {
		t.Parallel()

		app, stdout := newApp(termenv.TrueColor)
		old := writeFile(t, "old.txt", "same")
		cur := writeFile(t, "new.txt", "same")

		err := app.Run(context.Background(), []string{"diff", old, cur})

		require.NoError(t, err)
		assert.Equal(t, "UNCHANGED\n", stdout.String())
	})

	t.Run("colors terminal output", func(t *testing.T) {
		t.Parallel()

		app, stdout := newApp(termenv.TrueColor)
		old := writeFile(t, "old.txt", "price: 10")
		cur := writeFile(t, "new.txt", "price: 12")

		err := app.Run(context.Background(), []string{"diff", old, cur})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "\x1b[")
		assert.NotContains(t, stdout.String(), "Change #1")
	})

	t.Run("falls back to plain text without color support", func(t *testing.T) {
		t.Parallel()

		app, stdout := newApp(termenv.Ascii)
		old := writeFile(t, "old.txt", "price: 10")
		cur := writeFile(t, "new.txt", "price: 12")

		err := app.Run(context.Background(), []string{"diff", "--format", "terminal", old, cur})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Change #1")
		assert.NotContains(t, stdout.String(), "\x1b[")
	})

	t.Run("renders an email document", func(t *testing.T) {
		t.Parallel()

		app, stdout := newApp(termenv.Ascii)
		old := writeFile(t, "old.txt", "price: 10")
		cur := writeFile(t, "new.txt", "price: 12")

		err := app.Run(context.Background(), []string{"diff", "--format", "email", "--name", "prices", old, cur})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "<!DOCTYPE html>")
		assert.Contains(t, stdout.String(), "<h2>prices</h2>")
		assert.Contains(t, stdout.String(), `<span style="background-color:#cfc">2</span>`)
	})

	t.Run("renders a notification fragment", func(t *testing.T) {
		t.Parallel()

		app, stdout := newApp(termenv.Ascii)
		old := writeFile(t, "old.txt", "price: 10")
		cur := writeFile(t, "new.txt", "price: 12")

		err := app.Run(context.Background(), []string{"diff", "--format", "notification", old, cur})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "<b>CHANGES DETECTED</b>")
		assert.Contains(t, stdout.String(), `<font color="green">2</font>`)
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		t.Parallel()

		app, _ := newApp(termenv.Ascii)
		old := writeFile(t, "old.txt", "a")
		cur := writeFile(t, "new.txt", "b")

		err := app.Run(context.Background(), []string{"diff", "--format", "pdf", old, cur})

		assert.ErrorIs(t, err, pagewatch.ErrUnknownRenderKind)
	})

	t.Run("requires two files", func(t *testing.T) {
		t.Parallel()

		app, _ := newApp(termenv.Ascii)

		err := app.Run(context.Background(), []string{"diff", writeFile(t, "old.txt", "a")})

		assert.ErrorIs(t, err, main.ErrUsage)
	})
}

func TestApp_Run_Init(t *testing.T) {
	t.Parallel()

	app, stdout := newApp(termenv.Ascii)
	path := filepath.Join(t.TempDir(), "pagewatch.toml")

	require.NoError(t, app.Run(context.Background(), []string{"init", path}))

	assert.Equal(t, "Wrote "+path+"\n", stdout.String())
	cfg, err := main.LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Tasks, 1)

	assert.Error(t, app.Run(context.Background(), []string{"init", path}), "existing files are kept")
	assert.NoError(t, app.Run(context.Background(), []string{"init", "--force", path}))
}

// pageServer serves "price: 10" on the first request and "price: 12" after.
func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if hits.Add(1) == 1 {
			fmt.Fprint(w, "price: 10")
			return
		}
		fmt.Fprint(w, "price: 12")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestApp_Run_Monitor(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{"fs", "sqlite"} {
		t.Run(backend+" cache", func(t *testing.T) {
			t.Parallel()

			srv := pageServer(t)
			outbox := filepath.Join(t.TempDir(), "outbox")
			config := writeFile(t, "pagewatch.toml", fmt.Sprintf(`
notifiers = ["console", "outbox"]
workers = 1

[cache]
backend = %q
dir = %q

[outbox]
dir = %q

[[tasks]]
name = "prices"
url = %q
interval = "1ms"
max_rounds = 3
`, backend, t.TempDir(), outbox, srv.URL))
			app, stdout := newApp(termenv.Ascii)

			err := app.Run(context.Background(), []string{"run", "--config", config})

			require.NoError(t, err)
			assert.Equal(t, "Change #1\n---\nAdded:   '2'\nRemoved: '0'\n\n", stdout.String())
			entries, err := os.ReadDir(outbox)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "only the changed round reaches the outbox")
		})
	}

	t.Run("monitors a url given by flag", func(t *testing.T) {
		t.Parallel()

		srv := pageServer(t)
		config := writeFile(t, "pagewatch.toml", fmt.Sprintf("[cache]\ndir = %q\n", t.TempDir()))
		app, stdout := newApp(termenv.Ascii)

		err := app.Run(context.Background(), []string{
			"run", "--config", config, "--url", srv.URL, "--interval", "1ms", "--rounds", "2",
		})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Added:   '2'")
	})

	t.Run("requires tasks", func(t *testing.T) {
		t.Parallel()

		config := writeFile(t, "pagewatch.toml", "")
		app, _ := newApp(termenv.Ascii)

		err := app.Run(context.Background(), []string{"run", "--config", config})

		assert.ErrorIs(t, err, pagewatch.ErrNoTasks)
	})
}

func TestApp_Run_History(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{"fs", "sqlite"} {
		t.Run("prints the changes between cached snapshots with the "+backend+" cache", func(t *testing.T) {
			t.Parallel()

			srv := pageServer(t)
			config := writeFile(t, "pagewatch.toml", fmt.Sprintf(`
[cache]
backend = %q
dir = %q

[[tasks]]
name = "prices"
url = %q
interval = "1ms"
max_rounds = 3
`, backend, t.TempDir(), srv.URL))
			app, stdout := newApp(termenv.Ascii)
			require.NoError(t, app.Run(context.Background(), []string{"run", "--config", config}))
			stdout.Reset()

			err := app.Run(context.Background(), []string{"history", "--config", config, "--format", "plain", "prices"})

			require.NoError(t, err)
			assert.Regexp(t, `^== \d{4}-\d{2}-\d{2}T\S+\nChange #1\n---\nAdded:   '2'\nRemoved: '0'\n\n$`, stdout.String())
		})
	}

	t.Run("reports tasks without enough snapshots", func(t *testing.T) {
		t.Parallel()

		config := writeFile(t, "pagewatch.toml", fmt.Sprintf("[cache]\ndir = %q\n", t.TempDir()))
		app, stdout := newApp(termenv.Ascii)

		err := app.Run(context.Background(), []string{"history", "--config", config, "prices"})

		require.NoError(t, err)
		assert.Equal(t, "prices: 0 cached snapshot(s), nothing to compare\n", stdout.String())
	})

	t.Run("reports unchanged snapshots", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "price: 10")
		}))
		t.Cleanup(srv.Close)
		config := writeFile(t, "pagewatch.toml", fmt.Sprintf("[cache]\ndir = %q\n", t.TempDir()))
		app, stdout := newApp(termenv.Ascii)
		require.NoError(t, app.Run(context.Background(), []string{
			"run", "--config", config, "--url", srv.URL, "--name", "prices", "--interval", "1ms", "--rounds", "2",
		}))
		stdout.Reset()

		err := app.Run(context.Background(), []string{"history", "--config", config, "prices"})

		require.NoError(t, err)
		assert.Equal(t, "prices: no changes among 2 cached snapshots\n", stdout.String())
	})

	t.Run("requires a task name", func(t *testing.T) {
		t.Parallel()

		app, _ := newApp(termenv.Ascii)

		err := app.Run(context.Background(), []string{"history"})

		assert.ErrorIs(t, err, main.ErrUsage)
	})
}
