// Package tui is the interactive chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lvyanru/weather-apiserver/internal/cli/client"
	"github.com/lvyanru/weather-apiserver/internal/cli/types"
)

const (
	defaultInputWidth      = 100
	defaultViewportWidth   = 100
	defaultViewportHeight  = 30
	defaultWindowWidth     = 100
	defaultWindowHeight    = 40
	inputCharLimit         = 4000
	inputHeightReserved    = 2
	statusHeightReserved   = 3
	minContentHeight       = 10
	sessionIDDisplayLength = 8
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

type streamState int

const (
	streamIdle streamState = iota
	streamStreaming
)

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	model chatModel
}

// NewChatProgram creates a new chat program instance
func NewChatProgram(apiClient *client.APIClient, sessionID, userID string) *ChatProgram {
	return &ChatProgram{model: initialModel(apiClient, sessionID, userID)}
}

// Run starts the chat TUI program
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// chatModel is the Bubble Tea model containing all chat interface state
type chatModel struct {
	apiClient *client.APIClient
	sessionID string
	userID    string

	input       textinput.Model
	contentView viewport.Model

	state    streamState
	content  *strings.Builder // pointer, Builder must not be copied
	progress string           // "3/5" while chunks arrive

	eventCh <-chan types.StreamEvent
	errCh   <-chan error

	err error

	width  int
	height int
}

func initialModel(apiClient *client.APIClient, sessionID, userID string) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask about the weather..."
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultInputWidth
	input.Prompt = ""

	contentViewport := viewport.New(defaultViewportWidth, defaultViewportHeight)
	contentViewport.SetContent("")

	return chatModel{
		apiClient:   apiClient,
		sessionID:   sessionID,
		userID:      userID,
		input:       input,
		contentView: contentViewport,
		state:       streamIdle,
		content:     &strings.Builder{},
		width:       defaultWindowWidth,
		height:      defaultWindowHeight,
	}
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

type (
	streamInitMsg struct {
		eventCh <-chan types.StreamEvent
		errCh   <-chan error
	}
	streamEventMsg struct{ event types.StreamEvent }
	streamErrMsg   struct{ err error }
	streamDoneMsg  struct{}
)

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyPress(msg)...)

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case streamInitMsg:
		m.state = streamStreaming
		m.eventCh = msg.eventCh
		m.errCh = msg.errCh
		cmds = append(cmds, waitForEvent(m.eventCh, m.errCh))

	case streamEventMsg:
		m.handleEvent(msg.event)
		cmds = append(cmds, waitForEvent(m.eventCh, m.errCh))

	case streamErrMsg:
		m.err = msg.err
		m.state = streamIdle
		m.eventCh, m.errCh = nil, nil
		m.refreshContent()

	case streamDoneMsg:
		m.finishStream()
	}

	if m.state != streamStreaming {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *chatModel) handleKeyPress(msg tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		cmds = append(cmds, tea.Quit)

	case tea.KeyEnter:
		if m.state != streamStreaming {
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.startStreaming(text)
				cmds = append(cmds, m.initStream(text))
			}
		}

	case tea.KeyUp:
		m.contentView.LineUp(1)

	case tea.KeyDown:
		m.contentView.LineDown(1)

	case tea.KeyPgUp:
		m.contentView.ViewUp()

	case tea.KeyPgDown:
		m.contentView.ViewDown()
	}

	return cmds
}

func (m *chatModel) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := msg.Height - inputHeightReserved - statusHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	m.contentView.Width = msg.Width
	m.contentView.Height = contentHeight
	m.input.Width = msg.Width - 3

	m.refreshContent()
}

func (m *chatModel) startStreaming(text string) {
	m.input.Reset()
	m.err = nil
	m.progress = ""

	m.content.WriteString("\n")
	m.content.WriteString(boldStyle.Render("You"))
	m.content.WriteString("\n")
	m.content.WriteString(text)
	m.content.WriteString("\n\n")
	m.content.WriteString(accentStyle.Render("Assistant"))
	m.content.WriteString("\n")

	m.state = streamStreaming
	m.refreshContent()
}

func (m *chatModel) finishStream() {
	m.state = streamIdle
	m.eventCh, m.errCh = nil, nil
	m.progress = ""
	m.refreshContent()
}

func (m *chatModel) initStream(prompt string) tea.Cmd {
	return func() tea.Msg {
		eventCh, errCh, err := m.apiClient.ChatStreaming(context.Background(), m.sessionID, m.userID, prompt)
		if err != nil {
			return streamErrMsg{err: err}
		}
		return streamInitMsg{eventCh: eventCh, errCh: errCh}
	}
}

func waitForEvent(eventCh <-chan types.StreamEvent, errCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				return streamDoneMsg{}
			}
			return streamEventMsg{event: ev}
		case err, ok := <-errCh:
			if !ok {
				return streamDoneMsg{}
			}
			if err != nil {
				return streamErrMsg{err: err}
			}
			return streamDoneMsg{}
		}
	}
}

// handleEvent folds one typed protocol event into the view. Chunk content is
// appended verbatim; start, metadata, and ping events only drive the status
// line.
func (m *chatModel) handleEvent(ev types.StreamEvent) {
	switch ev.Type {
	case types.EventChunk:
		if ev.Chunk != nil {
			m.content.WriteString(ev.Chunk.Content)
			if ev.Chunk.IsLastChunk {
				m.content.WriteString("\n")
			}
		}
		if ev.Progress != nil && ev.Total != nil {
			m.progress = fmt.Sprintf("%d/%d", *ev.Progress, *ev.Total)
		}

	case types.EventError:
		if ev.Error != nil {
			m.err = fmt.Errorf("%s: %s", ev.Error.Code, ev.Error.Message)
		} else {
			m.err = fmt.Errorf("stream failed")
		}

	case types.EventComplete:
		m.progress = ""
	}

	m.refreshContent()
}

func (m *chatModel) refreshContent() {
	display := m.content.String()
	if m.err != nil {
		display += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.width > 0 {
		display = wrapText(display, m.width)
	}

	m.contentView.SetContent(display)
	m.contentView.GotoBottom()
}

// wrapText wraps long lines on rune display width.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	var result strings.Builder

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.WriteString(wrapLine(line, maxWidth))
	}

	return result.String()
}

func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0

	for _, r := range line {
		runeW := runewidth.RuneWidth(r)

		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
			currentWidth = 0
		}

		currentLine.WriteRune(r)
		currentWidth += runeW
	}

	if currentLine.Len() > 0 {
		result.WriteString(currentLine.String())
	}

	return result.String()
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	shortID := m.sessionID
	if len(shortID) > sessionIDDisplayLength {
		shortID = shortID[:sessionIDDisplayLength]
	}
	status := dimStyle.Render(fmt.Sprintf("session %s", shortID))
	if m.state == streamStreaming {
		if m.progress != "" {
			status += dimStyle.Render(fmt.Sprintf(" • receiving %s...", m.progress))
		} else {
			status += dimStyle.Render(" • thinking...")
		}
	}

	content := m.contentView.View()

	var inputView string
	if m.state == streamStreaming {
		inputView = dimStyle.Render("> waiting for answer...")
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	help := ""
	if m.state != streamStreaming {
		help = dimStyle.Render("Enter send • ↑↓ scroll • Esc quit")
	}

	parts := []string{status, "", content, "", inputView}
	if help != "" {
		parts = append(parts, help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
