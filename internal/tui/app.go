package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgomes/colloc/internal/collocation"
	"github.com/mgomes/colloc/internal/lookup"
	"github.com/mgomes/colloc/internal/notify"
	"github.com/mgomes/colloc/internal/related"
)

const relatedLimit = related.DefaultLimit

// Service is the part of lookup.Service the screen drives.
type Service interface {
	Lookup(ctx context.Context, word string) (lookup.Result, error)
	History() []string
	Related(ctx context.Context, word string, limit int) ([]string, error)
}

type focusArea int

const (
	focusInput focusArea = iota
	focusHistory
)

type LookupModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	service  Service
	toasts   *notify.Queue
	toastTTL time.Duration

	input   textinput.Model
	spinner spinner.Model
	loading bool

	word       string
	results    []collocation.Collocation
	selected   int
	history    []string
	historyIdx int
	related    []string
	focus      focusArea

	width  int
	height int
}

// NewLookupModel builds the lookup screen. toastTTL is how long a toast stays
// on screen before it is dismissed.
func NewLookupModel(service Service, toasts *notify.Queue, toastTTL time.Duration) LookupModel {
	input := textinput.New()
	input.Placeholder = "Type a word and press enter..."
	input.Focus()
	input.Width = 50
	input.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	ctx, cancel := context.WithCancel(context.Background())

	return LookupModel{
		ctx:      ctx,
		cancel:   cancel,
		service:  service,
		toasts:   toasts,
		toastTTL: toastTTL,
		input:    input,
		spinner:  sp,
		history:  service.History(),
	}
}

func (m LookupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LookupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case LookupResultMsg:
		return m.handleResult(msg)

	case RelatedMsg:
		if msg.Word == m.word {
			m.related = msg.Words
		}

	case toastCloseMsg:
		m.toasts.Dismiss(msg.ID)

	case ToastsChangedMsg:
		// Redraw only.

	case ConfigReloadedMsg:
		if msg.Err != nil {
			return m, m.notify(notify.Payload{
				Title:       "Config error",
				Description: msg.Err.Error(),
				Severity:    notify.SeverityDestructive,
			})
		}
		return m, m.notify(notify.Payload{
			Title:    "Config reloaded",
			Severity: notify.SeverityDefault,
		})

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m LookupModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit

	case "esc":
		m.toasts.DismissAll()
		return m, nil

	case "tab":
		if m.focus == focusInput && len(m.history) > 0 {
			m.focus = focusHistory
			m.input.Blur()
			if m.historyIdx >= len(m.history) {
				m.historyIdx = 0
			}
			return m, nil
		}
		m.focus = focusInput
		return m, m.input.Focus()

	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down":
		if m.selected < len(m.results)-1 {
			m.selected++
		}
		return m, nil

	case "enter":
		if m.focus == focusHistory && m.historyIdx < len(m.history) {
			word := m.history[m.historyIdx]
			m.input.SetValue(word)
			return m.submit(word)
		}
		return m.submit(m.input.Value())
	}

	if m.focus == focusHistory {
		switch msg.String() {
		case "left", "h":
			if m.historyIdx > 0 {
				m.historyIdx--
			}
		case "right", "l":
			if m.historyIdx < len(m.history)-1 {
				m.historyIdx++
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a lookup unless one is already running.
func (m LookupModel) submit(raw string) (LookupModel, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	word := strings.TrimSpace(raw)
	if word == "" {
		return m, m.notify(validationToast())
	}

	m.loading = true
	return m, tea.Batch(m.spinner.Tick, lookupCmd(m.ctx, m.service, word))
}

func (m LookupModel) handleResult(msg LookupResultMsg) (LookupModel, tea.Cmd) {
	m.loading = false

	if msg.Err != nil {
		if errors.Is(msg.Err, lookup.ErrEmptyWord) {
			return m, m.notify(validationToast())
		}
		m.word = msg.Word
		m.results = nil
		m.related = nil
		m.selected = 0
		return m, m.notify(notify.Payload{
			Title:       "Error",
			Description: collocation.UserMessage(msg.Err),
			Severity:    notify.SeverityDestructive,
		})
	}

	res := msg.Result
	m.word = res.Word
	m.results = res.Collocations
	m.selected = 0
	m.related = nil

	if res.Empty() {
		return m, m.notify(notify.Payload{
			Title:       "No results",
			Description: fmt.Sprintf("No collocations found for %q", res.Word),
			Severity:    notify.SeverityWarning,
		})
	}

	m.history = res.History
	m.historyIdx = 0

	return m, tea.Batch(
		m.notify(notify.Payload{
			Title:       "Done",
			Description: fmt.Sprintf("Found %d collocations for %q", len(res.Collocations), res.Word),
			Severity:    notify.SeveritySuccess,
		}),
		relatedCmd(m.ctx, m.service, res.Word),
	)
}

// notify shows a toast and schedules its dismissal.
func (m LookupModel) notify(p notify.Payload) tea.Cmd {
	h := m.toasts.Add(p)
	id := h.ID()
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg {
		return toastCloseMsg{ID: id}
	})
}

func validationToast() notify.Payload {
	return notify.Payload{
		Title:       "Error",
		Description: "Please enter a word",
		Severity:    notify.SeverityDestructive,
	}
}

func lookupCmd(ctx context.Context, service Service, word string) tea.Cmd {
	return func() tea.Msg {
		res, err := service.Lookup(ctx, word)
		return LookupResultMsg{Word: word, Result: res, Err: err}
	}
}

// relatedCmd yields nothing when the related index is unavailable.
func relatedCmd(ctx context.Context, service Service, word string) tea.Cmd {
	return func() tea.Msg {
		words, err := service.Related(ctx, word, relatedLimit)
		if err != nil {
			return nil
		}
		return RelatedMsg{Word: word, Words: words}
	}
}

func (m LookupModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("colloc"))
	if m.word != "" {
		b.WriteString(" " + dimStyle.Render("\""+m.word+"\""))
	}
	b.WriteString("\n\n")

	b.WriteString(inputBoxStyle.Render(m.input.View()) + "\n")
	if m.loading {
		b.WriteString(m.spinner.View() + " " + dimStyle.Render("Analyzing...") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.resultsView())
	b.WriteString(m.historyView())
	if len(m.related) > 0 {
		b.WriteString(labelStyle.Render("Related: ") + dimStyle.Render(strings.Join(m.related, " · ")) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("enter look up  tab history  ↑/↓ navigate  esc dismiss  ctrl+c quit"))

	if toasts := renderToasts(m.toasts.Notifications()); toasts != "" {
		b.WriteString("\n\n" + toasts)
	}

	return b.String()
}

func (m LookupModel) resultsView() string {
	if m.word == "" {
		return ""
	}
	if len(m.results) == 0 {
		return dimStyle.Render("No collocations") + "\n\n"
	}

	width := 76
	if m.width > 8 && m.width-4 < width {
		width = m.width - 4
	}

	var b strings.Builder
	for i, c := range m.results {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(frequencyStyle.Render(fmt.Sprintf("[%5.1f]", c.Frequency)) + " ")
		b.WriteString(collocateStyle.Render(truncate(c.Collocate, width)) + "\n")

		if i != m.selected {
			continue
		}
		for _, sentence := range c.ExampleSentences {
			for _, line := range wrapText(sentence, width, 3) {
				b.WriteString("    " + sentenceStyle.Render(line) + "\n")
			}
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (m LookupModel) historyView() string {
	if len(m.history) == 0 {
		return ""
	}

	words := make([]string, len(m.history))
	for i, w := range m.history {
		switch {
		case m.focus == focusHistory && i == m.historyIdx:
			words[i] = selectedStyle.Render("[" + w + "]")
		default:
			words[i] = dimStyle.Render(w)
		}
	}
	return labelStyle.Render("History: ") + strings.Join(words, " ") + "\n"
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func wrapText(s string, width, maxLines int) []string {
	// Clean up the text
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.TrimSpace(s)

	// Collapse multiple spaces
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}

	if len(s) == 0 {
		return nil
	}

	var lines []string
	for len(s) > 0 && len(lines) < maxLines {
		if len(s) <= width {
			lines = append(lines, s)
			break
		}

		// Find a good break point
		breakAt := width
		for breakAt > width/2 && s[breakAt] != ' ' {
			breakAt--
		}
		if s[breakAt] != ' ' {
			breakAt = width // No space found, just cut
		}

		lines = append(lines, strings.TrimSpace(s[:breakAt]))
		s = strings.TrimSpace(s[breakAt:])
	}

	// Add ellipsis if truncated
	if len(s) > 0 && len(lines) == maxLines {
		lastLine := lines[maxLines-1]
		if len(lastLine) > width-3 {
			lastLine = lastLine[:width-3]
		}
		lines[maxLines-1] = lastLine + "..."
	}

	return lines
}
