package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rendis/gridplaces/internal/config"
	"github.com/rendis/gridplaces/internal/engine/geo"
	"github.com/rendis/gridplaces/internal/engine/pipeline"
	"github.com/rendis/gridplaces/internal/logging"
	"github.com/rendis/gridplaces/internal/model"
	"github.com/rendis/gridplaces/internal/session"
	"github.com/rendis/gridplaces/internal/tui/components"
	"github.com/rendis/gridplaces/internal/tui/styles"
)

const logTailLines = 8

// sharedState holds the running task. It lives behind a pointer so it
// survives bubbletea's value copies.
type sharedState struct {
	mu   sync.Mutex
	task *pipeline.Task
	sess *session.Session
}

func (s *sharedState) setTask(t *pipeline.Task, sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task, s.sess = t, sess
}

func (s *sharedState) getTask() *pipeline.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

// usage returns the API requests sent so far and how many hit a rate limit.
func (s *sharedState) usage() (requests, rateLimits int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return 0, 0
	}
	return s.sess.Client.Requests(), s.sess.Client.RateLimits()
}

// ProgressModel runs one scan and renders its live counters.
type ProgressModel struct {
	params  model.RunParams
	cfg     *config.Config
	tiles   progress.Model
	details progress.Model
	grid    components.GridView
	buffer  *logging.Buffer
	shared  *sharedState

	snap        pipeline.Snapshot
	logTail     []string
	done        bool
	confirmQuit bool
	result      *pipeline.Result
	err         error
	width       int
	height      int
}

type progressTickMsg time.Time

type scanStartedMsg struct{}

type scanCompleteMsg struct {
	Result *pipeline.Result
	Err    error
}

// ScanFinished is emitted once a run has written its table.
type ScanFinished struct {
	Output string
	Rows   int
}

func NewProgressModel(msg StartScanMsg, cfg *config.Config) ProgressModel {
	bar := func() progress.Model {
		return progress.New(progress.WithDefaultGradient(), progress.WithWidth(50))
	}
	grid := components.NewGridView(30, 8)
	grid.SetGrid(msg.Params.BBox, geo.GenerateGrid(msg.Params.BBox, msg.Params.LatSteps, msg.Params.LonSteps))

	return ProgressModel{
		params:  msg.Params,
		cfg:     cfg,
		tiles:   bar(),
		details: bar(),
		grid:    grid,
		buffer:  logging.NewBuffer(logging.DefaultBufferLines),
		shared:  &sharedState{},
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.startScan(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

func (m ProgressModel) startScan() tea.Cmd {
	shared := m.shared
	params := m.params
	cfg := m.cfg
	buf := m.buffer

	return func() tea.Msg {
		if cfg == nil {
			loaded, err := config.Load()
			if err != nil {
				return scanCompleteMsg{Err: err}
			}
			cfg = loaded
		}
		sess, err := session.New(context.Background(), cfg, params, session.Options{Buffer: buf})
		if err != nil {
			return scanCompleteMsg{Err: err}
		}
		shared.setTask(pipeline.Start(context.Background(), sess.Pipeline, params), sess)
		return scanStartedMsg{}
	}
}

// waitScan blocks on the task and closes the session once it ends.
func (m ProgressModel) waitScan() tea.Cmd {
	shared := m.shared
	return func() tea.Msg {
		task := shared.getTask()
		res, err := task.Wait()
		shared.mu.Lock()
		sess := shared.sess
		shared.mu.Unlock()
		sess.Close()
		return scanCompleteMsg{Result: res, Err: err}
	}
}

func (m *ProgressModel) cancel() {
	if task := m.shared.getTask(); task != nil {
		task.Cancel()
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case "esc":
			if m.done {
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			if m.confirmQuit {
				m.cancel()
				return m, func() tea.Msg { return NavigateToHome{} }
			}
			m.confirmQuit = true
			return m, nil
		case "enter":
			if m.done {
				return m, func() tea.Msg { return NavigateToRecent{} }
			}
			if m.confirmQuit {
				m.confirmQuit = false
				return m, nil
			}
		}
		if m.confirmQuit {
			m.confirmQuit = false
		}
	case scanStartedMsg:
		return m, m.waitScan()
	case progressTickMsg:
		m.refresh()
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case scanCompleteMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		m.refresh()
		if m.err == nil && m.result != nil {
			out, rows := m.result.Output, m.result.Rows
			return m, func() tea.Msg { return ScanFinished{Output: out, Rows: rows} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	var pModel tea.Model
	pModel, cmd = m.tiles.Update(msg)
	m.tiles = pModel.(progress.Model)
	return m, cmd
}

func (m *ProgressModel) refresh() {
	if task := m.shared.getTask(); task != nil {
		m.snap = task.Stats()
		m.grid.SetDone(m.snap.TilesDone)
		lines := task.Log()
		m.logTail = lines[max(0, len(lines)-logTailLines):]
		return
	}
	m.logTail = m.buffer.Tail(logTailLines)
}

func (m ProgressModel) View() string {
	var b strings.Builder

	what := m.params.Keyword
	if what == "" {
		what = m.params.PlaceType
	}
	b.WriteString(styles.Title.Render(fmt.Sprintf("Scanning %q in %s", what, m.params.BBox)))
	b.WriteString("\n\n")

	statsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Padding(0, 1).
		Width(34).
		Render(m.renderStats())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, statsBox, "  ", m.grid.View()))
	b.WriteString("\n\n")

	b.WriteString(styles.Label.Render("Tiles"))
	b.WriteString(m.tiles.ViewAs(ratio(m.snap.TilesDone, m.snap.TilesTotal)))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render("Details"))
	b.WriteString(m.details.ViewAs(ratio(m.snap.DetailsDone, m.snap.DetailsTotal)))
	b.WriteString("\n\n")

	if len(m.logTail) > 0 {
		logStyle := lipgloss.NewStyle().Foreground(styles.Muted)
		width := max(40, m.width-8)
		for _, line := range m.logTail {
			if len(line) > width {
				line = line[:width]
			}
			b.WriteString(logStyle.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	switch {
	case m.done:
		b.WriteString(m.renderOutcome())
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter recent tables • esc back"))
	case m.confirmQuit:
		b.WriteString(styles.ErrorText.Render("Press ESC again to stop the scan and go back"))
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("esc confirm stop • any key continue"))
	default:
		b.WriteString(styles.StatusBar.Render("esc cancel • ctrl+c quit"))
	}

	return b.String()
}

func (m ProgressModel) renderOutcome() string {
	if m.err != nil {
		if errors.Is(m.err, context.Canceled) {
			return styles.ErrorText.Render("Scan cancelled, nothing was written")
		}
		return styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err))
	}
	res := m.result
	color, headline := styles.Success, "Complete!"
	if res.Status == pipeline.StatusPartial {
		color, headline = styles.Warning, "Complete with skips"
	}
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render(
		fmt.Sprintf("%s %s rows (%s new, %s duplicates dropped)", headline,
			humanize.Comma(int64(res.Rows)), humanize.Comma(int64(res.NewRows)),
			humanize.Comma(int64(res.Duplicates)))))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("Output: " + res.Output))
	return sb.String()
}

func (m ProgressModel) renderStats() string {
	var sb strings.Builder
	s := m.snap
	elapsed := s.Elapsed.Truncate(time.Second)

	statLabel := lipgloss.NewStyle().Foreground(styles.Muted).Width(12)
	statVal := lipgloss.NewStyle().Foreground(styles.Text).Bold(true)
	warnVal := lipgloss.NewStyle().Foreground(styles.Warning).Bold(true)

	row := func(label, value string, style lipgloss.Style) {
		sb.WriteString(statLabel.Render(label))
		sb.WriteString(style.Render(value))
		sb.WriteString("\n")
	}

	row("Stage:", s.State.String(), statVal)
	row("Tiles:", fmt.Sprintf("%d/%d", s.TilesDone, s.TilesTotal), statVal)
	row("IDs:", humanize.Comma(int64(s.IDsFound)), statVal)
	row("Details:", fmt.Sprintf("%d/%d", s.DetailsDone, s.DetailsTotal), statVal)
	if s.PriorRows > 0 {
		row("Prior rows:", humanize.Comma(int64(s.PriorRows)), statVal)
	}
	if skipped := s.TilesSkipped + s.DetailsSkipped; skipped > 0 {
		row("Skipped:", fmt.Sprintf("%d", skipped), warnVal)
	}
	requests, rl := m.shared.usage()
	row("Requests:", humanize.Comma(requests), statVal)
	if rl > 0 {
		row("Rate lim:", fmt.Sprintf("%d", rl), warnVal)
	}
	row("Elapsed:", elapsed.String(), statVal)

	if done := s.TilesDone; s.State == pipeline.StateSearch && done > 0 && elapsed > 0 {
		rate := float64(done) / elapsed.Seconds()
		remaining := float64(s.TilesTotal-done) / rate
		eta := time.Duration(remaining * float64(time.Second)).Truncate(time.Second)
		row("Search ETA:", "~"+eta.String(), statVal)
	}

	return sb.String()
}

func ratio(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total)
}
