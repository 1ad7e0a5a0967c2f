// Package bubbletea provides a terminal dashboard for running monitors using
// the Bubble Tea framework.
package bubbletea

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/pagewatch"
)

// tabWidth is the number of columns between tab stops.
const tabWidth = 8

// EventMsg carries a monitoring round outcome into the dashboard.
type EventMsg struct {
	Event pagewatch.Event
}

// taskRow is the dashboard state of one task.
type taskRow struct {
	name        string
	url         string
	label       string
	round       int
	checkedAt   time.Time
	contentType string
	delta       string
}

// Model is the Bubble Tea model of the monitoring dashboard. It lists every
// task with its latest status and shows the most recent delta of the selected
// task in a scrollable viewport.
type Model struct {
	rows     []taskRow
	index    map[string]int
	selected int

	deltaRenderer pagewatch.Renderer
	fallback      pagewatch.Renderer

	viewport   viewport.Model
	keymap     KeyMap
	styles     pagewatch.Styles
	renderer   *lipgloss.Renderer
	width      int
	height     int
	ready      bool
	pendingKey string
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	renderer      *lipgloss.Renderer
	theme         pagewatch.Theme
	deltaRenderer pagewatch.Renderer
}

// WithRenderer sets a custom lipgloss renderer for the model.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.renderer = r
	}
}

// WithTheme sets the theme for the task list.
func WithTheme(t pagewatch.Theme) ModelOption {
	return func(cfg *modelConfig) {
		cfg.theme = t
	}
}

// WithDeltaRenderer sets the renderer used for deltas. Plain text is used when
// it is unset or reports an unavailable capability.
func WithDeltaRenderer(r pagewatch.Renderer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.deltaRenderer = r
	}
}

// NewModel creates a dashboard listing the given tasks.
func NewModel(tasks []pagewatch.Task, opts ...ModelOption) Model {
	cfg := &modelConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var styles pagewatch.Styles
	if cfg.theme != nil {
		styles = cfg.theme.Styles()
	}
	fallback := &pagewatch.PlainTextRenderer{}
	deltaRenderer := cfg.deltaRenderer
	if deltaRenderer == nil {
		deltaRenderer = fallback
	}

	m := Model{
		index:         make(map[string]int),
		deltaRenderer: deltaRenderer,
		fallback:      fallback,
		keymap:        DefaultKeyMap(),
		styles:        styles,
		renderer:      cfg.renderer,
	}
	for _, t := range tasks {
		m.addRow(t)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pendingKey == "g" && key.Matches(msg, m.keymap.GotoTop) {
			m.viewport.GotoTop()
			m.pendingKey = ""
			return m, nil
		}
		if key.Matches(msg, m.keymap.GotoTop) {
			m.pendingKey = "g"
			return m, nil
		}
		m.pendingKey = ""

		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.GotoBottom):
			m.viewport.GotoBottom()
		case key.Matches(msg, m.keymap.HalfPageUp):
			m.viewport.HalfPageUp()
		case key.Matches(msg, m.keymap.HalfPageDown):
			m.viewport.HalfPageDown()
		case key.Matches(msg, m.keymap.Up):
			m.viewport.ScrollUp(1)
		case key.Matches(msg, m.keymap.Down):
			m.viewport.ScrollDown(1)
		case key.Matches(msg, m.keymap.NextTask):
			m.selectTask(m.selected + 1)
		case key.Matches(msg, m.keymap.PrevTask):
			m.selectTask(m.selected - 1)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.viewportHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.viewportHeight()
		}
		m.refreshViewport()
		return m, nil

	case EventMsg:
		m.apply(msg.Event)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerStyle := styleFromColorPair(m.styles.Header, m.renderer)
	mutedStyle := styleFromColorPair(m.styles.Muted, m.renderer)

	var sb strings.Builder
	for i, row := range m.rows {
		marker := "  "
		if i == m.selected {
			marker = "▸ "
		}
		line := marker + row.name + "  " + headerStyle.Render(row.label)
		if row.round > 0 {
			line += mutedStyle.Render(fmt.Sprintf("  round %d  %s", row.round, row.checkedAt.Format(time.TimeOnly)))
		}
		if row.contentType != "" {
			line += mutedStyle.Render("  [" + row.contentType + "]")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("─", max(m.width, 1))))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.statusBar())
	return sb.String()
}

// apply records the outcome of a round, adding a row for tasks the dashboard
// has not seen yet.
func (m *Model) apply(e pagewatch.Event) {
	i, ok := m.index[e.Task.DisplayName()]
	if !ok {
		i = m.addRow(e.Task)
		if m.ready {
			m.viewport.Height = m.viewportHeight()
		}
	}

	row := &m.rows[i]
	row.label = e.Comparison.Label()
	row.round = e.Round
	if e.Snapshot != nil && !e.Snapshot.FetchedAt.IsZero() {
		row.checkedAt = e.Snapshot.FetchedAt
	} else {
		row.checkedAt = time.Now()
	}
	if e.Snapshot != nil && e.Snapshot.ContentType != "" {
		row.contentType = e.Snapshot.ContentType
	}
	if e.Comparison.Status == pagewatch.StatusChanged {
		out, err := pagewatch.RenderWithFallback(m.deltaRenderer, m.fallback, e.Delta())
		if err != nil {
			out = "Rendering failed: " + err.Error()
		}
		row.delta = expandTabs(out)
	}

	if i == m.selected {
		m.refreshViewport()
	}
}

func (m *Model) addRow(t pagewatch.Task) int {
	name := t.DisplayName()
	m.rows = append(m.rows, taskRow{name: name, url: t.URL, label: "WAITING"})
	m.index[name] = len(m.rows) - 1
	return len(m.rows) - 1
}

// selectTask moves the selection to task i, wrapping around the list.
func (m *Model) selectTask(i int) {
	if len(m.rows) == 0 {
		return
	}
	m.selected = (i%len(m.rows) + len(m.rows)) % len(m.rows)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	content := "No changes detected yet."
	if len(m.rows) > 0 && m.rows[m.selected].delta != "" {
		content = m.rows[m.selected].delta
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// viewportHeight is the terminal height left after the task list, the
// separator and the status bar.
func (m Model) viewportHeight() int {
	return max(m.height-len(m.rows)-2, 1)
}

func (m Model) statusBar() string {
	style := styleFromColorPair(m.styles.Muted, m.renderer)
	if len(m.rows) == 0 {
		return style.Render("no tasks")
	}
	row := m.rows[m.selected]
	left := fmt.Sprintf(" %d/%d %s", m.selected+1, len(m.rows), row.url)
	right := fmt.Sprintf("%d%% ", int(m.viewport.ScrollPercent()*100))
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return style.Render(left + strings.Repeat(" ", gap) + right)
}

// expandTabs converts tab characters to spaces using 8-column tab stops.
// Columns restart at every newline.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var sb strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			next := (col/tabWidth + 1) * tabWidth
			sb.WriteString(strings.Repeat(" ", next-col))
			col = next
		case '\n':
			sb.WriteRune(r)
			col = 0
		default:
			sb.WriteRune(r)
			col += lipgloss.Width(string(r))
		}
	}
	return sb.String()
}

func styleFromColorPair(cp pagewatch.ColorPair, renderer *lipgloss.Renderer) lipgloss.Style {
	var style lipgloss.Style
	if renderer != nil {
		style = renderer.NewStyle()
	} else {
		style = lipgloss.NewStyle()
	}
	if cp.Foreground != "" {
		style = style.Foreground(lipgloss.Color(cp.Foreground))
	}
	if cp.Background != "" {
		style = style.Background(lipgloss.Color(cp.Background))
	}
	return style
}
