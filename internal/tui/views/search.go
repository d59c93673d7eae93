package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rendis/gridplaces/internal/config"
	"github.com/rendis/gridplaces/internal/model"
	"github.com/rendis/gridplaces/internal/tui/styles"
)

// Field indices. fieldInput and fieldWrite are toggles, not text inputs.
const (
	fieldInput = iota
	fieldKeyword
	fieldPlaceType
	fieldURL
	fieldSWLat
	fieldSWLon
	fieldNELat
	fieldNELon
	fieldLatSteps
	fieldLonSteps
	fieldRadius
	fieldLanguage
	fieldOutput
	fieldWrite
	fieldCount
)

// SearchModel is the scan form. Submitting it resolves a profile into
// RunParams; nothing downstream reads the form.
type SearchModel struct {
	inputs  []textinput.Model
	base    config.Profile
	input   config.InputMode
	write   model.Mode
	focused int
	err     string
}

func NewSearchModel(p config.Profile) SearchModel {
	inputs := make([]textinput.Model, fieldCount)
	inputs[fieldInput] = textinput.New()
	inputs[fieldWrite] = textinput.New()

	inputs[fieldKeyword] = newInput("restaurant", p.Keyword, 40)
	inputs[fieldPlaceType] = newInput("optional: cafe, lodging...", p.PlaceType, 30)
	inputs[fieldURL] = newInput("https://www.google.com/maps/search/pizza/@48.85,2.35,14z", p.URL, 60)
	inputs[fieldSWLat] = newInput("48.81", formatFloat(p.BBox.SWLat), 12)
	inputs[fieldSWLon] = newInput("2.22", formatFloat(p.BBox.SWLon), 12)
	inputs[fieldNELat] = newInput("48.90", formatFloat(p.BBox.NELat), 12)
	inputs[fieldNELon] = newInput("2.47", formatFloat(p.BBox.NELon), 12)
	inputs[fieldLatSteps] = newInput("10", strconv.Itoa(p.LatSteps), 5)
	inputs[fieldLonSteps] = newInput("10", strconv.Itoa(p.LonSteps), 5)
	inputs[fieldRadius] = newInput("1500", strconv.Itoa(p.RadiusMeters), 8)
	inputs[fieldLanguage] = newInput("en", p.Language, 5)
	inputs[fieldOutput] = newInput("results.csv", p.Output, 50)

	input := p.InputMode
	if input == "" {
		input = config.InputBounds
	}
	write := p.Mode
	if write == "" {
		write = model.ModeCreate
	}

	return SearchModel{
		inputs:  inputs,
		base:    p,
		input:   input,
		write:   write,
		focused: fieldInput,
	}
}

func newInput(placeholder, value string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	if width > 0 {
		ti.Width = width
	}
	if value != "" && value != "0" {
		ti.SetValue(value)
	}
	return ti
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isToggle(idx int) bool {
	return idx == fieldInput || idx == fieldWrite
}

func (m SearchModel) Init() tea.Cmd {
	return nil
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return NavigateToHome{} }
		case "down", "tab":
			m.err = ""
			return m, m.focusNext()
		case "up", "shift+tab":
			m.err = ""
			return m, m.focusPrev()
		case "enter":
			if cmd := m.submit(); cmd != nil {
				return m, cmd
			}
			return m, nil
		case "left", "right":
			switch m.focused {
			case fieldInput:
				if m.input == config.InputBounds {
					m.input = config.InputURL
				} else {
					m.input = config.InputBounds
				}
				return m, nil
			case fieldWrite:
				if m.write == model.ModeCreate {
					m.write = model.ModeAppend
				} else {
					m.write = model.ModeCreate
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if !isToggle(m.focused) {
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	}
	return m, cmd
}

func (m *SearchModel) focus(idx int) tea.Cmd {
	if !isToggle(m.focused) {
		m.inputs[m.focused].Blur()
	}
	m.focused = idx
	if isToggle(idx) {
		return nil
	}
	m.inputs[idx].Focus()
	return textinput.Blink
}

func (m *SearchModel) focusNext() tea.Cmd {
	idx := m.skipField(m.focused+1, 1)
	if idx >= fieldCount {
		idx = fieldInput
	}
	return m.focus(idx)
}

func (m *SearchModel) focusPrev() tea.Cmd {
	idx := m.skipField(m.focused-1, -1)
	if idx < 0 {
		idx = fieldWrite
	}
	return m.focus(idx)
}

// skipField steps over the fields the current input mode hides.
func (m *SearchModel) skipField(idx, dir int) int {
	for idx > fieldInput && idx < fieldWrite {
		if m.hidden(idx) {
			idx += dir
			continue
		}
		break
	}
	return idx
}

func (m SearchModel) hidden(idx int) bool {
	switch idx {
	case fieldURL:
		return m.input != config.InputURL
	case fieldSWLat, fieldSWLon, fieldNELat, fieldNELon:
		return m.input != config.InputBounds
	}
	return false
}

// profile reads the form over the base profile so fields the form does not
// show (area, sheet settings) carry through.
func (m SearchModel) profile() (config.Profile, error) {
	p := m.base
	p.InputMode = m.input
	p.Mode = m.write
	p.Keyword = m.value(fieldKeyword)
	p.PlaceType = m.value(fieldPlaceType)
	p.URL = m.value(fieldURL)
	p.Language = m.value(fieldLanguage)
	p.Output = m.value(fieldOutput)

	if m.input == config.InputBounds {
		coords := []struct {
			idx  int
			name string
			dst  *float64
		}{
			{fieldSWLat, "SW latitude", &p.BBox.SWLat},
			{fieldSWLon, "SW longitude", &p.BBox.SWLon},
			{fieldNELat, "NE latitude", &p.BBox.NELat},
			{fieldNELon, "NE longitude", &p.BBox.NELon},
		}
		for _, c := range coords {
			v, err := strconv.ParseFloat(m.value(c.idx), 64)
			if err != nil {
				return p, fmt.Errorf("%s must be a number", c.name)
			}
			*c.dst = v
		}
	}

	ints := []struct {
		idx  int
		name string
		dst  *int
	}{
		{fieldLatSteps, "Lat steps", &p.LatSteps},
		{fieldLonSteps, "Lon steps", &p.LonSteps},
		{fieldRadius, "Radius", &p.RadiusMeters},
	}
	for _, c := range ints {
		v, err := strconv.Atoi(m.value(c.idx))
		if err != nil {
			return p, fmt.Errorf("%s must be a whole number", c.name)
		}
		*c.dst = v
	}
	return p, nil
}

func (m SearchModel) value(idx int) string {
	return strings.TrimSpace(m.inputs[idx].Value())
}

func (m *SearchModel) submit() tea.Cmd {
	p, err := m.profile()
	if err != nil {
		m.err = err.Error()
		return nil
	}
	params, err := p.RunParams()
	if err != nil {
		m.err = err.Error()
		return nil
	}
	return func() tea.Msg {
		return StartScanMsg{Params: params, Profile: p}
	}
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("New Scan") + "\n\n")

	b.WriteString(m.renderToggle("Input:", fieldInput,
		[2]string{"Bounds", "Maps URL"}, m.input == config.InputBounds))
	b.WriteString("\n")

	b.WriteString(m.renderField("Keyword:", fieldKeyword))
	b.WriteString(m.renderField("Place type:", fieldPlaceType))

	if m.input == config.InputURL {
		b.WriteString(m.renderField("Maps URL:", fieldURL))
	} else {
		b.WriteString(m.renderField("SW lat:", fieldSWLat))
		b.WriteString(m.renderField("SW lon:", fieldSWLon))
		b.WriteString(m.renderField("NE lat:", fieldNELat))
		b.WriteString(m.renderField("NE lon:", fieldNELon))
	}

	b.WriteString("\n")
	b.WriteString(m.renderField("Lat steps:", fieldLatSteps))
	b.WriteString(m.renderField("Lon steps:", fieldLonSteps))
	b.WriteString(m.renderField("Radius (m):", fieldRadius))
	if m.focused == fieldLatSteps || m.focused == fieldLonSteps || m.focused == fieldRadius {
		hint := lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("  each tile costs up to 3 search requests; a tile returns at most 60 places")
		b.WriteString(hint + "\n")
	}
	b.WriteString(m.renderField("Language:", fieldLanguage))
	b.WriteString(m.renderField("Output:", fieldOutput))
	b.WriteString(m.renderToggle("Write:", fieldWrite,
		[2]string{"Create", "Append"}, m.write == model.ModeCreate))

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorText.Render("  " + m.err))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.StatusBar.Render("enter start • tab next • ←→ toggle • esc back"))

	return styles.Border.Render(b.String())
}

func (m SearchModel) renderToggle(label string, idx int, opts [2]string, first bool) string {
	active := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(styles.Muted)

	a, b := inactive.Render(opts[0]), active.Render("< "+opts[1]+" >")
	if first {
		a, b = active.Render("< "+opts[0]+" >"), inactive.Render(opts[1])
	}
	line := fmt.Sprintf("%s  %s   %s", styles.Label.Render(label), a, b)
	if m.focused == idx {
		line += lipgloss.NewStyle().Foreground(styles.Secondary).Render(" ←→")
	}
	return line + "\n"
}

func (m SearchModel) renderField(label string, idx int) string {
	return fmt.Sprintf("%s %s\n", styles.Label.Render(label), m.inputs[idx].View())
}

// Messages
type NavigateToHome struct{}

// StartScanMsg carries a validated run from the form to the progress view.
type StartScanMsg struct {
	Params  model.RunParams
	Profile config.Profile
}
