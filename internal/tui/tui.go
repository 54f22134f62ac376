// Package tui renders the interactive side-panel demo: the visible views
// of one location on the left, comment threads on the right.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/dock/internal/core/views"
	"github.com/colonyops/dock/internal/dock"
)

const maxEventLog = 5

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Collapse key.Binding
	Hide     key.Binding
	ShowAll  key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Collapse, k.Hide, k.ShowAll, k.MoveUp, k.MoveDown, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Collapse: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "collapse")),
	Hide:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hide")),
	ShowAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "show all")),
	MoveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
	MoveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the bubbletea model for the dock demo.
type Model struct {
	app      *dock.App
	location views.Location

	coll  *views.Collection
	model *views.PersistentModel

	cursor   int
	width    int
	height   int
	events   []string
	comments viewport.Model
	help     help.Model
	rendered bool
}

// New builds the TUI model over the given location's persisted view model.
func New(app *dock.App, location views.Location) *Model {
	coll, vm := app.OpenViews(location)

	m := &Model{
		app:      app,
		location: location,
		coll:     coll,
		model:    vm,
		comments: viewport.New(0, 0),
		help:     help.New(),
	}

	// The event log demonstrates the minimal-diff contract: one line per
	// emitted add/remove/move.
	vm.OnDidAdd(func(e views.AddEvent) {
		m.logEvent(fmt.Sprintf("add %s at %d", e.Descriptor.ID, e.Index))
	})
	vm.OnDidRemove(func(e views.RemoveEvent) {
		m.logEvent(fmt.Sprintf("remove %s at %d", e.Descriptor.ID, e.Index))
	})
	vm.OnDidMove(func(e views.MoveEvent) {
		m.logEvent(fmt.Sprintf("move %s %d→%d", e.From.Descriptor.ID, e.From.Index, e.To.Index))
	})

	return m
}

// Close persists the layout and releases subscriptions.
func (m *Model) Close() error {
	err := m.model.Close()
	m.coll.Close()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutComments()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}

		case key.Matches(msg, keys.Collapse):
			if d, ok := m.current(); ok {
				collapsed, err := m.model.IsCollapsed(d.ID)
				if err == nil {
					err = m.model.SetCollapsed(d.ID, !collapsed)
				}
				m.reportErr(err)
			}

		case key.Matches(msg, keys.Hide):
			if d, ok := m.current(); ok {
				m.reportErr(m.model.SetVisible(d.ID, false))
				m.clampCursor()
			}

		case key.Matches(msg, keys.ShowAll):
			for _, d := range m.model.Descriptors() {
				if !d.CanToggleVisibility {
					continue
				}
				if visible, err := m.model.IsVisible(d.ID); err == nil && !visible {
					m.reportErr(m.model.SetVisible(d.ID, true))
				}
			}

		case key.Matches(msg, keys.MoveUp):
			m.moveCurrent(-1)

		case key.Matches(msg, keys.MoveDown):
			m.moveCurrent(1)
		}
	}

	var cmd tea.Cmd
	m.comments, cmd = m.comments.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading…"
	}

	sidebarWidth := m.width / 3
	if sidebarWidth < 24 {
		sidebarWidth = 24
	}

	sidebar := sidebarStyle.Width(sidebarWidth).Render(m.renderViews(sidebarWidth))
	panel := panelStyle.Width(m.width - sidebarWidth - 6).Render(m.comments.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, panel)

	var footer strings.Builder
	for _, e := range m.events {
		footer.WriteString(eventStyle.Render(e) + "\n")
	}
	footer.WriteString(m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("dock — %s", m.location)),
		body,
		footer.String(),
	)
}

func (m *Model) renderViews(width int) string {
	visible := m.visible()
	if len(visible) == 0 {
		return mutedStyle.Render("no visible views")
	}

	var b strings.Builder
	for i, d := range visible {
		marker := "▾"
		if collapsed, err := m.model.IsCollapsed(d.ID); err == nil && collapsed {
			marker = "▸"
		}

		line := fmt.Sprintf("%s %s", marker, d.Name)
		if !d.CanToggleVisibility {
			line += mutedStyle.Render(" (pinned)")
		}
		if i == m.cursor {
			line = cursorStyle.Width(width - 2).Render(line)
		}
		b.WriteString(line + "\n")
	}

	hidden := len(m.model.Descriptors()) - len(visible)
	if hidden > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("… %d hidden", hidden)))
	}
	return b.String()
}

func (m *Model) layoutComments() {
	panelWidth := m.width - m.width/3 - 8
	if panelWidth < 20 {
		panelWidth = 20
	}
	m.comments.Width = panelWidth
	m.comments.Height = m.height - 8

	if m.rendered {
		return
	}
	m.rendered = true
	m.comments.SetContent(m.renderComments(panelWidth))
}

// renderComments renders every thread's markdown once; comment bodies are
// authored as markdown.
func (m *Model) renderComments(width int) string {
	cm := m.app.Comments
	if !cm.HasThreads() {
		return mutedStyle.Render(cm.Message())
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Warn().Err(err).Msg("glamour renderer unavailable, using plain text")
	}

	var b strings.Builder
	for _, r := range cm.Resources() {
		b.WriteString(titleStyle.Render(r.ID) + "\n")
		for _, node := range r.Threads {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("line %d — %s", node.Range.StartLine, node.Comment.Author)) + "\n")
			b.WriteString(renderMarkdown(renderer, node.Comment.Body))
			for _, reply := range node.Replies {
				b.WriteString(mutedStyle.Render("  ↳ "+reply.Author) + "\n")
				b.WriteString(renderMarkdown(renderer, reply.Body))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderMarkdown(renderer *glamour.TermRenderer, body string) string {
	if renderer == nil {
		return body + "\n"
	}
	out, err := renderer.Render(body)
	if err != nil {
		return body + "\n"
	}
	return out
}

func (m *Model) visible() []views.Descriptor {
	return m.model.VisibleDescriptors()
}

func (m *Model) current() (views.Descriptor, bool) {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return views.Descriptor{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) moveCurrent(delta int) {
	visible := m.visible()
	target := m.cursor + delta
	if m.cursor < 0 || m.cursor >= len(visible) || target < 0 || target >= len(visible) {
		return
	}
	m.reportErr(m.model.Move(visible[m.cursor].ID, visible[target].ID))
	m.cursor = target
}

func (m *Model) clampCursor() {
	if n := len(m.visible()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	} else if n == 0 {
		m.cursor = 0
	}
}

func (m *Model) logEvent(line string) {
	m.events = append(m.events, line)
	if len(m.events) > maxEventLog {
		m.events = m.events[len(m.events)-maxEventLog:]
	}
}

func (m *Model) reportErr(err error) {
	if err == nil {
		return
	}
	log.Error().Err(err).Msg("view operation failed")
	m.logEvent("error: " + err.Error())
}

// Run starts the program and persists the layout when it exits.
func Run(app *dock.App, location views.Location) error {
	m := New(app, location)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	if err := m.Close(); err != nil {
		log.Error().Err(err).Msg("persist view layout")
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}
