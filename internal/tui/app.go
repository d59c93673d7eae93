package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rendis/gridplaces/internal/config"
	"github.com/rendis/gridplaces/internal/model"
	"github.com/rendis/gridplaces/internal/tui/views"
)

type viewID int

const (
	viewHome viewID = iota
	viewSearch
	viewProgress
	viewRecent
)

// App is the root bubbletea model.
type App struct {
	currentView viewID
	width       int
	height      int
	cfg         *config.Config
	defaults    config.Profile
	home        views.HomeModel
	search      views.SearchModel
	progress    views.ProgressModel
	recent      views.RecentModel
}

// NewApp builds the root model. The form is prefilled from defaults; cfg
// may be nil, in which case each scan loads it from the environment.
func NewApp(cfg *config.Config, defaults config.Profile) App {
	if cfg != nil && cfg.Language != "" {
		defaults.Language = cfg.Language
	}
	return App{
		currentView: viewHome,
		cfg:         cfg,
		defaults:    defaults,
		home:        views.NewHomeModel(),
	}
}

func (a App) Init() tea.Cmd {
	return a.home.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && a.currentView != viewProgress {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case views.NavigateToSearch:
		p := a.defaults
		if msg.Output != "" {
			p.Output = msg.Output
			p.Mode = model.ModeAppend
		}
		a.currentView = viewSearch
		a.search = views.NewSearchModel(p)
		return a, a.search.Init()
	case views.NavigateToHome:
		a.currentView = viewHome
		return a, nil
	case views.StartScanMsg:
		a.currentView = viewProgress
		a.defaults = msg.Profile
		a.progress = views.NewProgressModel(msg, a.cfg)
		return a, tea.Batch(a.progress.Init(), a.sizeCmd())
	case views.ScanFinished:
		SaveRecent(msg.Output, msg.Rows)
		return a, nil
	case views.NavigateToRecent:
		a.currentView = viewRecent
		var entries []views.RecentEntry
		for _, e := range LoadRecent() {
			entries = append(entries, views.RecentEntry{
				Path:     e.Path,
				OpenedAt: e.OpenedAt,
				Rows:     e.Rows,
			})
		}
		a.recent = views.NewRecentModel(entries)
		return a, a.recent.Init()
	}

	var cmd tea.Cmd
	var m tea.Model
	switch a.currentView {
	case viewHome:
		m, cmd = a.home.Update(msg)
		a.home = m.(views.HomeModel)
	case viewSearch:
		m, cmd = a.search.Update(msg)
		a.search = m.(views.SearchModel)
	case viewProgress:
		m, cmd = a.progress.Update(msg)
		a.progress = m.(views.ProgressModel)
	case viewRecent:
		m, cmd = a.recent.Update(msg)
		a.recent = m.(views.RecentModel)
	}

	return a, cmd
}

func (a App) View() string {
	var content string
	switch a.currentView {
	case viewHome:
		content = a.home.View()
	case viewSearch:
		content = a.search.View()
	case viewProgress:
		content = a.progress.View()
	case viewRecent:
		content = a.recent.View()
	}

	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// sizeCmd sends a WindowSizeMsg so newly created views get the current terminal size.
func (a App) sizeCmd() tea.Cmd {
	w, h := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

// Run starts the TUI. A missing .env or API key is reported when a scan
// starts, not here.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = nil
	}
	p := tea.NewProgram(NewApp(cfg, config.DefaultProfile()), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
