package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rendis/gridplaces/internal/tui/styles"
)

type RecentEntry struct {
	Path     string
	OpenedAt time.Time
	Rows     int
}

type RecentModel struct {
	entries []RecentEntry
	cursor  int
}

func NewRecentModel(entries []RecentEntry) RecentModel {
	return RecentModel{entries: entries}
}

func (m RecentModel) Init() tea.Cmd {
	return nil
}

func (m RecentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.entries) {
				path := m.entries[m.cursor].Path
				return m, func() tea.Msg { return NavigateToSearch{Output: path} }
			}
		case "esc":
			return m, func() tea.Msg { return NavigateToHome{} }
		}
	}
	return m, nil
}

func (m RecentModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Recent Tables"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("No recent tables"))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("esc back"))
		return styles.Border.Render(b.String())
	}

	for i, entry := range m.entries {
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}

		name := filepath.Base(entry.Path)
		nameStr := style.Render(name)
		if _, err := os.Stat(entry.Path); os.IsNotExist(err) {
			nameStr = lipgloss.NewStyle().Foreground(styles.Error).Strikethrough(true).Render(name)
		}

		detail := lipgloss.NewStyle().Foreground(styles.Muted).Render(
			fmt.Sprintf("  %s  %s rows  %s", filepath.Dir(entry.Path),
				humanize.Comma(int64(entry.Rows)), humanize.Time(entry.OpenedAt)))

		b.WriteString(fmt.Sprintf("%s%s\n%s\n", cursor, nameStr, detail))
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("enter append to table • esc back"))

	return styles.Border.Render(b.String())
}

// NavigateToRecent signals navigation to the recent tables view.
type NavigateToRecent struct{}
