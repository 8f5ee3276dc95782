// Package tui implements the interactive terminal front end for a group chat
// session. Built on bubbletea (Elm architecture): a viewport shows the
// conversation transcript, a textinput collects the human's turn, and a
// spinner marks the agent currently composing a reply.
//
// The turn engine runs on its own goroutine and talks to the TUI only
// through messages: [Presenter.Render] forwards history snapshots into the
// program, and [Observer] forwards per-agent progress events. Human input
// flows the other way over a channel the engine blocks on in
// [Presenter.AwaitInput].
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// snapshotMsg carries a fresh copy of the conversation into the program.
type snapshotMsg struct {
	messages []protocol.Message
}

// thinkingMsg marks an agent as composing a reply; an empty name clears the
// indicator.
type thinkingMsg struct {
	agent string
}

// sessionDoneMsg tells the program the engine has terminated, with the
// engine's exit error if any.
type sessionDoneMsg struct {
	err error
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	theme     Theme
	title     string
	humanName string

	transcript viewport.Model
	input      textinput.Model
	spinner    spinner.Model

	messages []protocol.Message
	thinking string
	status   string

	inputs chan<- string
	cancel func()
	closed bool

	width  int
	height int
	ready  bool
}

// NewModel creates the chat screen. Text the human submits is delivered on
// inputs; the channel is closed when the screen shuts down so the engine's
// input wait unblocks. cancel, if non-nil, is invoked on the quit path to
// cancel the session context, cutting short an in-flight agent call.
func NewModel(title, humanName string, inputs chan<- string, cancel func()) Model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.Placeholder = "Say something (exit, quit, or bye to leave)"
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		theme:      DefaultTheme(),
		title:      title,
		humanName:  humanName,
		transcript: viewport.New(0, 0),
		input:      input,
		spinner:    sp,
		inputs:     inputs,
		cancel:     cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case snapshotMsg:
		m.messages = msg.messages
		m.renderTranscript()
		m.transcript.GotoBottom()

	case thinkingMsg:
		m.thinking = msg.agent

	case sessionDoneMsg:
		m.thinking = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("session ended with error: %v", msg.err)
		}
		m.closeInputs()
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderTranscript()
		m.transcript.GotoBottom()
		m.ready = true

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			// Cancelling the session context aborts an in-flight agent
			// call; closing the channel unblocks the input wait. The
			// engine terminates, persists, and sessionDoneMsg quits the
			// program.
			m.closeInputs()
			if m.cancel != nil {
				m.cancel()
			}
			m.status = "shutting down"
			return m, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				break
			}
			if m.submit(text) {
				m.input.Reset()
			} else {
				m.status = "agents are still replying, hold on"
			}
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit hands text to the engine without blocking the event loop. Reports
// false when the engine is not waiting for input.
func (m *Model) submit(text string) bool {
	if m.closed {
		return false
	}
	select {
	case m.inputs <- text:
		return true
	default:
		return false
	}
}

func (m *Model) closeInputs() {
	if !m.closed {
		m.closed = true
		close(m.inputs)
	}
}

func (m *Model) resize() {
	// header + thinking line + input box (3 rows with border) + footer
	chrome := 1 + 1 + 3 + 1
	m.transcript.Width = m.width - 2
	m.transcript.Height = max(m.height-chrome-1, 3)
	m.input.Width = max(m.width-8, 20)
}

func (m *Model) renderTranscript() {
	if m.transcript.Width <= 0 {
		return
	}

	body := m.theme.Body.Width(m.transcript.Width)
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.formatMessage(msg, body))
	}
	m.transcript.SetContent(b.String())
}

func (m *Model) formatMessage(msg protocol.Message, body lipgloss.Style) string {
	stamp := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04:05"))
	sender := m.theme.SenderStyle(msg.Sender, m.humanName).Render(msg.Sender)
	return body.Render(fmt.Sprintf("%s %s: %s", stamp, sender, msg.Content))
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.theme.Header.Render(m.title)

	thinking := " "
	if m.thinking != "" {
		thinking = m.theme.Thinking.Render(
			fmt.Sprintf("%s %s is thinking", m.spinner.View(), m.thinking))
	}

	input := m.theme.InputBox.Width(max(m.width-4, 20)).Render(m.input.View())

	footer := m.theme.Footer.Render("enter: send · esc/ctrl+c: leave · pgup/pgdn: scroll")
	if m.status != "" {
		footer = m.theme.Footer.Render(m.status)
	}

	out := lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.transcript.View(),
		thinking,
		input,
		footer,
	)
	return m.theme.Root.Render(out)
}
