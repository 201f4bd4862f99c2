package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SetupProvider describes the backend the setup wizard configures.
type SetupProvider struct {
	Name         string
	KeysURL      string
	DefaultModel string
}

type SetupModel struct {
	provider    SetupProvider
	apiKeyInput textinput.Model
	modelInput  textinput.Model
	focus       int
	error       string
	width       int
	height      int
}

func NewSetupModel(provider SetupProvider) SetupModel {
	apiKey := textinput.New()
	apiKey.Placeholder = "Paste your " + provider.Name + " API key here..."
	apiKey.Focus()
	apiKey.Width = 60
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '•'

	model := textinput.New()
	model.Placeholder = provider.DefaultModel
	model.Width = 60

	return SetupModel{
		provider:    provider,
		apiKeyInput: apiKey,
		modelInput:  model,
		focus:       0,
	}
}

func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "tab", "down", "shift+tab", "up":
			m.toggleFocus()
			return m, nil

		case "enter":
			apiKey := strings.TrimSpace(m.apiKeyInput.Value())
			model := strings.TrimSpace(m.modelInput.Value())

			if apiKey == "" {
				m.error = "API key is required"
				return m, nil
			}
			if model == "" {
				model = m.provider.DefaultModel
			}

			m.error = ""
			return m, func() tea.Msg {
				return SetupSubmitMsg{
					APIKey: apiKey,
					Model:  model,
				}
			}
		}

		if m.focus == 0 {
			m.apiKeyInput, cmd = m.apiKeyInput.Update(msg)
		} else {
			m.modelInput, cmd = m.modelInput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SetupErrorMsg:
		m.error = msg.Error

	default:
		if m.focus == 0 {
			m.apiKeyInput, cmd = m.apiKeyInput.Update(msg)
		} else {
			m.modelInput, cmd = m.modelInput.Update(msg)
		}
	}

	return m, cmd
}

// Two fields, so forward and backward navigation are the same move.
func (m *SetupModel) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.apiKeyInput.Blur()
		m.modelInput.Focus()
		return
	}
	m.focus = 0
	m.modelInput.Blur()
	m.apiKeyInput.Focus()
}

func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("colloc - Setup") + "\n\n")
	b.WriteString("To get started, you need a " + m.provider.Name + " API key.\n\n")
	b.WriteString("1. Go to " + activeStyle.Render(m.provider.KeysURL) + "\n")
	b.WriteString("2. Create a new API key (or use an existing one)\n")
	b.WriteString("3. Copy and paste it below\n\n")

	apiKeyLabel := m.provider.Name + " API Key:"
	if m.focus == 0 {
		apiKeyLabel = activeStyle.Render("> " + apiKeyLabel)
	} else {
		apiKeyLabel = "  " + apiKeyLabel
	}
	b.WriteString(apiKeyLabel + "\n")
	b.WriteString(inputBoxStyle.Render(m.apiKeyInput.View()) + "\n\n")

	modelLabel := "Model (leave empty for " + m.provider.DefaultModel + "):"
	if m.focus == 1 {
		modelLabel = activeStyle.Render("> " + modelLabel)
	} else {
		modelLabel = "  " + modelLabel
	}
	b.WriteString(modelLabel + "\n")
	b.WriteString(inputBoxStyle.Render(m.modelInput.View()) + "\n")

	if m.error != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.error) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab switch field  enter submit  ctrl+c quit"))

	return b.String()
}
