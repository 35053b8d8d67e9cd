// Package tui renders a terminal session as an interactive bubbletea
// program.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/HendryAvila/labos/internal/command"
	"github.com/HendryAvila/labos/internal/session"
	"github.com/HendryAvila/labos/internal/terminal"
)

// Terminal is the session the model drives. *terminal.Terminal implements it.
type Terminal interface {
	Submit(ctx context.Context, line string) terminal.Output
	Prompt() string
	Banner() []terminal.Entry
}

type outputMsg struct {
	out terminal.Output
}

type theme struct {
	header  lipgloss.Style
	command lipgloss.Style
	output  lipgloss.Style
	system  lipgloss.Style
	effect  lipgloss.Style
	footer  lipgloss.Style
}

func newTheme() theme {
	mint := lipgloss.Color("#05ffa1")
	muted := lipgloss.Color("#7f8c98")
	return theme{
		header:  lipgloss.NewStyle().Foreground(mint).Bold(true).Padding(0, 1),
		command: lipgloss.NewStyle().Foreground(mint),
		output:  lipgloss.NewStyle().Foreground(lipgloss.Color("#e6edf3")),
		system:  lipgloss.NewStyle().Foreground(muted),
		effect:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd166")).Bold(true),
		footer:  lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
	}
}

// Model is the bubbletea model of one terminal session.
type Model struct {
	ctx      context.Context
	term     Terminal
	input    textinput.Model
	log      viewport.Model
	spinner  spinner.Model
	theme    theme
	entries  []terminal.Entry
	recall   []string
	recallAt int
	pending  int
	ready    bool
}

// New creates a Model. ctx bounds every submitted line.
func New(ctx context.Context, term Terminal) Model {
	input := textinput.New()
	input.Prompt = term.Prompt() + " "
	input.CharLimit = session.MaxQueryChars + len("ask ")
	input.Placeholder = `help, projects, search <query> or ask <question>`
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	log := viewport.New(0, 0)
	log.MouseWheelEnabled = true

	return Model{
		ctx:     ctx,
		term:    term,
		input:   input,
		log:     log,
		spinner: sp,
		theme:   newTheme(),
		entries: term.Banner(),
	}
}

// Entries returns the current display lines.
func (m Model) Entries() []terminal.Entry { return m.entries }

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.log.Width = msg.Width
		m.log.Height = max(msg.Height-3, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			m.recall = append(m.recall, line)
			m.recallAt = len(m.recall)
			m.pending++
			return m, m.submit(line)
		case tea.KeyUp:
			if m.recallAt > 0 {
				m.recallAt--
				m.input.SetValue(m.recall[m.recallAt])
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyDown:
			if m.recallAt < len(m.recall)-1 {
				m.recallAt++
				m.input.SetValue(m.recall[m.recallAt])
			} else {
				m.recallAt = len(m.recall)
				m.input.Reset()
			}
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}

	case outputMsg:
		m.pending = max(m.pending-1, 0)
		m.apply(msg.out)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(line string) tea.Cmd {
	return func() tea.Msg {
		return outputMsg{out: m.term.Submit(m.ctx, line)}
	}
}

// apply merges one output into the display.
func (m *Model) apply(out terminal.Output) {
	if out.Superseded {
		return
	}
	if out.Cleared {
		m.entries = append([]terminal.Entry(nil), out.Entries...)
	} else {
		m.entries = append(m.entries, out.Entries...)
	}
	if line := effectLine(out.Action); line != "" {
		m.entries = append(m.entries, terminal.Entry{Kind: terminal.KindSystem, Text: line})
	}
	m.refresh()
}

// effectLine describes a navigation effect the text terminal cannot
// perform itself.
func effectLine(a command.Action) string {
	switch a.Kind {
	case command.ActionNavigate:
		return "-> app " + a.Href
	case command.ActionExternal:
		return "-> link " + a.Href
	case command.ActionMailto:
		return "-> mail " + strings.TrimPrefix(a.Href, "mailto:")
	case command.ActionTel:
		return "-> call " + strings.TrimPrefix(a.Href, "tel:")
	}
	return ""
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	lines := make([]string, len(m.entries))
	for i, e := range m.entries {
		lines[i] = m.style(e).Render(e.Text)
	}
	m.log.SetContent(strings.Join(lines, "\n"))
	m.log.GotoBottom()
}

func (m Model) style(e terminal.Entry) lipgloss.Style {
	switch {
	case strings.HasPrefix(e.Text, "-> "):
		return m.theme.effect
	case e.Kind == terminal.KindCommand:
		return m.theme.command
	case e.Kind == terminal.KindSystem:
		return m.theme.system
	default:
		return m.theme.output
	}
}

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}
	header := m.theme.header.Render(strings.TrimSuffix(m.term.Prompt(), ":~$") + " OS terminal")
	footer := m.theme.footer.Render("enter submit · up/down recall · pgup/pgdn scroll · esc quit")
	if m.pending > 0 {
		footer = m.theme.footer.Render(fmt.Sprintf("%s working (%d pending)", m.spinner.View(), m.pending))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.log.View(), m.input.View(), footer)
}

// Run starts the program on the current terminal and blocks until the
// user quits.
func Run(ctx context.Context, term Terminal) error {
	_, err := tea.NewProgram(New(ctx, term), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
