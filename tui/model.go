// Package tui is an interactive terminal window to change the decimal places
// of a security.
package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/etnz/moredecimal"
)

// Model is the bubbletea model of the decimal changer window.
type Model struct {
	ctx      context.Context
	session  *moredecimal.Session
	panel    *panel
	onCommit func() error

	securities []moredecimal.Security
	cursor     int

	// Components
	input    textinput.Model
	viewport viewport.Model

	width  int
	height int
	err    error
}

// New creates the window model for book. onCommit, if not nil, is called after
// every successful commit.
func New(ctx context.Context, book moredecimal.Book, catalog moredecimal.Catalog, onCommit func() error) (Model, error) {
	p := &panel{}
	session := moredecimal.NewSession(book, catalog, p)
	securities, err := session.Securities(ctx)
	if err != nil {
		return Model{}, fmt.Errorf("listing securities: %w", err)
	}

	input := textinput.New()
	input.Prompt = "Decimal places: "
	input.CharLimit = 2
	input.Width = 4
	input.Focus()

	m := Model{
		ctx:        ctx,
		session:    session,
		panel:      p,
		onCommit:   onCommit,
		securities: securities,
		input:      input,
		viewport:   viewport.New(80, 10),
	}
	m.selectSecurity(0)
	return m, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := len(m.securities) + 6
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = max(msg.Height-headerHeight-4, 3)
		m.refreshLog()
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	}
	if m.panel.disabled {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up":
		m.selectSecurity(m.cursor - 1)
	case "down":
		m.selectSecurity(m.cursor + 1)
	case "enter":
		if m.panel.stage {
			m.stage()
		}
	case "ctrl+s":
		if m.panel.commit {
			m.commit()
		}
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	default:
		if msg.Type == tea.KeyRunes && !isDigits(msg.Runes) {
			return m, nil
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.targetChanged()
		}
		return m, cmd
	}
	return m, nil
}

// selectSecurity moves the cursor to security i and resets the target to its
// current decimal places.
func (m *Model) selectSecurity(i int) {
	if len(m.securities) == 0 {
		return
	}
	m.cursor = min(max(i, 0), len(m.securities)-1)
	m.input.SetValue(strconv.Itoa(m.securities[m.cursor].Decimals))
	m.input.CursorEnd()
	m.session.Changer().Forget()
	m.panel.EnableStage(false)
	m.panel.EnableCommit(false)
}

// targetChanged drops what was staged for the previous target and enables
// staging when the new target differs from the current decimal places.
func (m *Model) targetChanged() {
	m.session.Changer().Forget()
	m.panel.EnableCommit(false)
	if len(m.securities) == 0 {
		return
	}
	n, err := strconv.Atoi(m.input.Value())
	m.panel.EnableStage(err == nil && n != m.securities[m.cursor].Decimals)
}

func (m *Model) stage() {
	m.panel.security = m.securities[m.cursor].Name
	m.panel.target = m.input.Value()
	m.session.Stage(m.ctx)
	m.refreshLog()
}

func (m *Model) commit() {
	if _, err := m.session.Commit(m.ctx); err == nil {
		if m.onCommit != nil {
			if err := m.onCommit(); err != nil {
				m.err = err
				m.panel.AddText(err.Error())
			}
		}
		if securities, err := m.session.Securities(m.ctx); err == nil {
			m.securities = securities
		}
	}
	m.refreshLog()
}

func (m *Model) refreshLog() {
	m.viewport.SetContent(strings.Join(m.panel.log, "\n"))
	m.viewport.GotoBottom()
}

func isDigits(runes []rune) bool {
	for _, r := range runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(runes) > 0
}

// View renders the window
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Change decimal places"))
	b.WriteString("\n")

	if len(m.securities) == 0 {
		b.WriteString(disabledStyle.Render("No security to change."))
		b.WriteString("\n")
	}
	for i, s := range m.securities {
		line := fmt.Sprintf("  %-20s %2d", s.Name, s.Decimals)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line[2:])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("   ")
	b.WriteString(button("enter", "Stage", m.panel.stage))
	b.WriteString("  ")
	b.WriteString(button("ctrl+s", "Commit", m.panel.commit))
	b.WriteString("\n")

	b.WriteString(logStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	help := "↑/↓ select • digits set decimal places • esc quit"
	if m.panel.disabled {
		help = "changes committed • esc quit"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func button(key, label string, enabled bool) string {
	text := fmt.Sprintf("[%s] %s", key, label)
	if enabled {
		return enabledStyle.Render(text)
	}
	return disabledStyle.Render(text)
}

// Run runs the window until the user quits. The standard logger is silenced
// while the window is displayed: errors are shown in the window log.
func Run(m Model) error {
	return withLogOutput(io.Discard, func() error {
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err := p.Run()
		return err
	})
}

// withLogOutput redirects the standard logger to w while fn runs.
func withLogOutput(w io.Writer, fn func() error) error {
	old := log.Writer()
	log.SetOutput(w)
	defer log.SetOutput(old)
	return fn()
}

var _ tea.Model = Model{}
