package chatcmder

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const chatLongDesc string = `Chat with a running elicitd server from the terminal.

Keys:
  enter    send the message
  ctrl+g   generate the SRS document from the conversation so far
  ctrl+n   start a new session
  esc      quit

Examples:
  elicit chat
  elicit chat --server http://localhost:5000`

const chatShortDesc string = "Terminal chat client for the elicitation server"

type chatCommander struct {
	serverURL string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:5000", "elicitd server URL")

	return cmd
}

func (c *chatCommander) run() error {
	client, err := newAPIClient(strings.TrimRight(c.serverURL, "/"))
	if err != nil {
		return err
	}

	program := tea.NewProgram(newChatModel(client), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}

	return nil
}

var (
	youStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Messages delivered back into the update loop by API commands.
type (
	replyMsg   struct{ text string }
	specMsg    struct{ filename string }
	sessionMsg struct{ id string }
	apiErrMsg  struct{ err error }
)

type chatModel struct {
	client   *apiClient
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	lines    []string
	waiting  bool
	status   string
	ready    bool
}

func newChatModel(client *apiClient) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Describe your software project or requirement..."
	ta.Prompt = "┃ "
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{
		client:   client,
		textarea: ta,
		spinner:  sp,
		status:   "connected — enter to send, ctrl+g for SRS, ctrl+n for new session, esc to quit",
	}
}

func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := m.textarea.Height() + 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.textarea.SetWidth(msg.Width)
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.waiting {
				break
			}
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				break
			}
			m.textarea.Reset()
			m.appendLine(youStyle.Render("you:") + " " + text)
			m.waiting = true
			m.status = "waiting for assistant..."
			return m, tea.Batch(m.spinner.Tick, m.sendCmd(text))

		case tea.KeyCtrlG:
			if m.waiting {
				break
			}
			m.waiting = true
			m.status = "generating SRS document..."
			return m, tea.Batch(m.spinner.Tick, m.specCmd())

		case tea.KeyCtrlN:
			if m.waiting {
				break
			}
			m.waiting = true
			m.status = "starting new session..."
			return m, tea.Batch(m.spinner.Tick, m.newSessionCmd())
		}

	case replyMsg:
		m.waiting = false
		m.status = "ready"
		m.appendLine(assistantStyle.Render("assistant:") + " " + msg.text)

	case specMsg:
		m.waiting = false
		m.status = "ready"
		m.appendLine(statusStyle.Render("SRS document saved as " + msg.filename))

	case sessionMsg:
		m.waiting = false
		m.status = "ready"
		m.lines = nil
		m.appendLine(statusStyle.Render("new session " + msg.id))

	case apiErrMsg:
		m.waiting = false
		m.status = "ready"
		m.appendLine(errorStyle.Render("error: " + msg.err.Error()))

	case spinner.TickMsg:
		if m.waiting {
			m.spinner, spCmd = m.spinner.Update(msg)
		}
	}

	return m, tea.Batch(taCmd, vpCmd, spCmd)
}

func (m chatModel) View() string {
	if !m.ready {
		return "loading..."
	}

	status := m.status
	if m.waiting {
		status = m.spinner.View() + " " + status
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		statusStyle.Render("elicit — requirements elicitation assistant"),
		m.viewport.View(),
		m.textarea.View(),
		statusStyle.Render(status),
	)
}

func (m *chatModel) appendLine(line string) {
	m.lines = append(m.lines, line, "")
	m.refreshViewport()
}

func (m *chatModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m chatModel) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.client.Send(text)
		if err != nil {
			return apiErrMsg{err: err}
		}
		return replyMsg{text: reply}
	}
}

func (m chatModel) specCmd() tea.Cmd {
	return func() tea.Msg {
		_, filename, err := m.client.GenerateSpec()
		if err != nil {
			return apiErrMsg{err: err}
		}
		return specMsg{filename: filename}
	}
}

func (m chatModel) newSessionCmd() tea.Cmd {
	return func() tea.Msg {
		id, err := m.client.NewSession()
		if err != nil {
			return apiErrMsg{err: err}
		}
		return sessionMsg{id: id}
	}
}
