package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/improv-engine/pkg/session"
)

const PlaceHolderText = "Perform your scene here..."

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	hostStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// ConsoleUI is the BubbleTea model that runs the show.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config    *ConsoleConfig
	client    *http.Client
	sessionID uuid.UUID
	state     *session.State
	viewport  viewport.Model
	textarea  textarea.Model
	ready     bool
	width     int
	height    int
	loading   bool

	// Transient host lines that live outside the transcript.
	reaction string
	closing  string
	status   string
	err      error
}

type sceneMsg struct {
	scene *session.Round
	err   error
}

type performMsg struct {
	reaction string
	err      error
}

type advanceMsg struct {
	resp *advanceResponse
	err  error
}

type stateMsg struct {
	state *session.State
	err   error
}

type savedMsg struct {
	name string
	err  error
}

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, created *createSessionResponse) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	vp := viewport.New(50, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		config:    cfg,
		client:    client,
		sessionID: created.ID,
		state:     created.State,
		textarea:  ta,
		viewport:  vp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.fetchScene(), textarea.Blink)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 4
		m.viewport.Height = m.height - 7
		m.textarea.SetWidth(m.width - 6)
		m.ready = true
		m.writeContent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				m.textarea.Reset()
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.status = "The host is watching your performance..."
			m.err = nil
			m.writeContent()
			return m, m.perform(input)
		}

	case sceneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		}
		return m.refresh()

	case performMsg:
		m.loading = false
		m.status = ""
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.reaction = msg.reaction
			m.status = "Say /next for the next scene."
		}
		return m.refresh()

	case advanceMsg:
		m.loading = false
		m.status = ""
		m.reaction = ""
		if msg.err != nil {
			m.err = msg.err
		} else if msg.resp.Done {
			m.closing = msg.resp.Closing
			m.status = "The show is over. /restart to play again, /quit to leave."
		}
		return m.refresh()

	case stateMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.state = msg.state
		}
		m.writeContent()

	case savedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = fmt.Sprintf("Session saved as %q.", msg.name)
		}
		m.writeContent()
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	switch parts[0] {
	case "/quit":
		return m, tea.Quit

	case "/next":
		m.loading = true
		m.writeContent()
		return m, m.advance()

	case "/save":
		if len(parts) < 2 {
			m.err = fmt.Errorf("usage: /save <name>")
			m.writeContent()
			return m, nil
		}
		m.loading = true
		return m, m.save(parts[1])

	case "/restart":
		var seed *int64
		if len(parts) > 1 {
			v, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				m.err = fmt.Errorf("usage: /restart [seed]")
				m.writeContent()
				return m, nil
			}
			seed = &v
		}
		m.loading = true
		m.reaction = ""
		m.closing = ""
		return m, m.restart(seed)

	case "/copy":
		if err := clipboard.WriteAll(m.transcriptText()); err != nil {
			m.err = fmt.Errorf("failed to copy transcript: %w", err)
		} else {
			m.status = "Transcript copied to clipboard."
		}
		m.writeContent()
		return m, nil

	case "/help":
		m.status = "Commands: /next /save <name> /restart [seed] /copy /quit"
		m.writeContent()
		return m, nil

	default:
		m.err = fmt.Errorf("unknown command %q (try /help)", parts[0])
		m.writeContent()
		return m, nil
	}
}

func (m ConsoleUI) refresh() (tea.Model, tea.Cmd) {
	return m, m.fetchState()
}

func (m *ConsoleUI) transcriptText() string {
	if m.state == nil {
		return ""
	}
	var sb strings.Builder
	for _, entry := range m.state.StoryHistory {
		fmt.Fprintf(&sb, "%s: %s\n", entry.Speaker, entry.Text)
	}
	return sb.String()
}

func (m *ConsoleUI) writeContent() {
	if !m.ready {
		return
	}
	width := m.viewport.Width - 4

	var content strings.Builder
	content.WriteString(titleStyle.Render("IMPROV BATTLE") + "\n\n")
	if m.state != nil {
		content.WriteString(fmt.Sprintf("Round %d of %d · phase: %s\n\n",
			min(m.state.CurrentRound+1, m.state.MaxRounds), m.state.MaxRounds, m.state.Phase))
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(width-2, 1))) + "\n\n")

	if m.state != nil {
		for _, entry := range m.state.StoryHistory {
			switch entry.Speaker {
			case session.SpeakerHost:
				content.WriteString(hostStyle.Render("Host: ") + wordwrap.String(entry.Text, width-6) + "\n\n")
			case session.SpeakerPlayer:
				content.WriteString(playerStyle.Render("You: ") + wordwrap.String(entry.Text, width-6) + "\n\n")
			}
		}
	}

	if m.reaction != "" {
		content.WriteString(hostStyle.Render("Host: ") + wordwrap.String(m.reaction, width-6) + "\n\n")
	}
	if m.closing != "" {
		content.WriteString(hostStyle.Render("Host: ") + wordwrap.String(m.closing, width-6) + "\n\n")
	}
	if m.loading {
		content.WriteString(statusStyle.Render("...") + "\n")
	}
	if m.status != "" {
		content.WriteString(statusStyle.Render(m.status) + "\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Setting the stage..."
	}
	return fmt.Sprintf("%s\n\n%s", m.viewport.View(), m.textarea.View())
}

// Commands

func (m ConsoleUI) fetchScene() tea.Cmd {
	return func() tea.Msg {
		scene, err := getScene(m.client, m.config.APIBaseURL, m.sessionID)
		return sceneMsg{scene: scene, err: err}
	}
}

func (m ConsoleUI) fetchState() tea.Cmd {
	return func() tea.Msg {
		state, err := getSessionState(m.client, m.config.APIBaseURL, m.sessionID)
		return stateMsg{state: state, err: err}
	}
}

func (m ConsoleUI) perform(text string) tea.Cmd {
	return func() tea.Msg {
		resp, err := performScene(m.client, m.config.APIBaseURL, m.sessionID, text)
		if err != nil {
			return performMsg{err: err}
		}
		return performMsg{reaction: resp.Reaction}
	}
}

func (m ConsoleUI) advance() tea.Cmd {
	return func() tea.Msg {
		resp, err := advanceSession(m.client, m.config.APIBaseURL, m.sessionID)
		return advanceMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) restart(seed *int64) tea.Cmd {
	return func() tea.Msg {
		if _, err := restartSession(m.client, m.config.APIBaseURL, m.sessionID, seed); err != nil {
			return stateMsg{err: err}
		}
		// Announce the first scene of the restarted show.
		scene, err := getScene(m.client, m.config.APIBaseURL, m.sessionID)
		return sceneMsg{scene: scene, err: err}
	}
}

func (m ConsoleUI) save(name string) tea.Cmd {
	return func() tea.Msg {
		err := saveSession(m.client, m.config.APIBaseURL, m.sessionID, name)
		return savedMsg{name: name, err: err}
	}
}
