// Package tui is the terminal surface of ChatSphere: the same session,
// controller and input sources as the web page, driven by key bindings.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/chatsphere/pkg/conversation"
	"github.com/papercomputeco/chatsphere/pkg/input"
	"github.com/papercomputeco/chatsphere/pkg/session"
	"github.com/papercomputeco/chatsphere/pkg/turn"
)

// BusyText is shown while a turn is waiting on the backend.
const BusyText = "Generating response..."

// chrome is the number of lines around the transcript viewport.
const chrome = 6

// turnDoneMsg carries the result of a typed turn.
type turnDoneMsg struct {
	outcome turn.Outcome
}

// speakDoneMsg carries the result of a spoken turn.
type speakDoneMsg struct {
	outcome turn.Outcome
	err     error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	inputs  *input.Sources
	persona string

	styles   Styles
	renderer *glamour.TermRenderer
	rendered rendererKey

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width  int
	height int

	// busy blocks input while a turn or a recording runs.
	busy     bool
	busyText string
}

type rendererKey struct {
	theme session.Theme
	width int
}

// New builds the chat model for sess.
func New(ctx context.Context, sess *session.Session, inputs *input.Sources) Model {
	ti := textinput.New()
	ti.Placeholder = "Please enter your queries..."
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctx:      ctx,
		sess:     sess,
		inputs:   inputs,
		persona:  inputs.Controller().Persona(),
		styles:   NewStyles(sess.Theme()),
		viewport: viewport.New(80, 20),
		input:    ti,
		spinner:  sp,
		width:    80,
		height:   20 + chrome,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case turnDoneMsg:
		m.busy = false
		m.input.Focus()
		m.refresh()
		return m, nil

	case speakDoneMsg:
		m.busy = false
		m.input.Focus()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		text := m.input.Value()
		m.input.Reset()
		m.sess.TakeNotice()
		if strings.TrimSpace(text) == "" {
			m.sess.ClearPending()
			return m, nil
		}
		m.startBusy(BusyText)
		return m, tea.Batch(m.spinner.Tick, m.submit(text))

	case "ctrl+t":
		m.sess.ToggleTheme()
		m.styles = NewStyles(m.sess.Theme())
		m.refresh()
		return m, nil

	case "ctrl+r":
		m.sess.Reset()
		m.sess.TakeNotice()
		m.refresh()
		return m, nil

	case "ctrl+s":
		m.sess.TakeNotice()
		if !m.inputs.SpeechAvailable() {
			m.sess.Notify(session.NoticeWarning, input.MsgUnavailable)
			return m, nil
		}
		m.startBusy(input.MsgListening)
		return m, tea.Batch(m.spinner.Tick, m.speak())

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.sess.SetPending(m.input.Value())
	return m, cmd
}

func (m *Model) startBusy(text string) {
	m.busy = true
	m.busyText = text
	m.input.Blur()
}

func (m Model) submit(text string) tea.Cmd {
	ctx, sess, inputs := m.ctx, m.sess, m.inputs
	return func() tea.Msg {
		return turnDoneMsg{outcome: inputs.SubmitText(ctx, sess, text)}
	}
}

func (m Model) speak() tea.Cmd {
	ctx, sess, inputs := m.ctx, m.sess, m.inputs
	return func() tea.Msg {
		outcome, err := inputs.Speak(ctx, sess)
		return speakDoneMsg{outcome: outcome, err: err}
	}
}

// refresh re-renders the transcript and scrolls to the newest entry.
func (m *Model) refresh() {
	m.ensureRenderer()

	var b strings.Builder
	for _, u := range m.sess.Conversation.Utterances() {
		b.WriteString(m.renderUtterance(u))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) ensureRenderer() {
	key := rendererKey{theme: m.sess.Theme(), width: m.width}
	if m.renderer != nil && key == m.rendered {
		return
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(string(key.theme)),
		glamour.WithWordWrap(max(key.width-4, 20)),
	)
	if err != nil {
		// Fall back to plain text.
		r = nil
	}
	m.renderer = r
	m.rendered = key
}

func (m Model) renderUtterance(u conversation.Utterance) string {
	name := "You"
	if u.Sender == conversation.Assistant {
		name = m.persona
	}
	header := fmt.Sprintf("%s %s %s",
		u.Sender.Glyph(),
		m.styles.Sender.Render(name),
		m.styles.Timestamp.Render("["+u.Clock()+"]"),
	)

	body := u.Text
	if u.Sender == conversation.Assistant && m.renderer != nil {
		if out, err := m.renderer.Render(u.Text); err == nil {
			body = strings.Trim(out, "\n")
		}
	}

	return m.styles.Block.Width(max(m.width-2, 10)).Render(header + "\n" + body)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("💬 %s: Your AI-Powered Conversational Assistant", m.persona)))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if n := m.sess.Notice(); n != nil {
		b.WriteString(m.styles.Notices[n.Level].Render(n.Text))
	}
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.spinner.View() + " " + m.styles.Busy.Render(m.busyText))
	}
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(ansi.Truncate(m.helpLine(), m.width, "…")))

	return b.String()
}

func (m Model) helpLine() string {
	keys := []string{
		"enter send",
		"ctrl+t theme (" + m.sess.Theme().Toggle().Label() + ")",
		"ctrl+r 🗑️ reset",
	}
	if m.inputs.SpeechAvailable() {
		keys = append(keys, "ctrl+s 🎙️ speak")
	}
	keys = append(keys, "esc quit")
	return strings.Join(keys, " • ")
}

// Busy reports whether input is currently blocked.
func (m Model) Busy() bool {
	return m.busy
}

// Run starts the program in the alternate screen and blocks until it exits.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
