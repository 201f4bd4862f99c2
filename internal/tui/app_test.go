package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/mgomes/colloc/internal/collocation"
	"github.com/mgomes/colloc/internal/lookup"
	"github.com/mgomes/colloc/internal/notify"
	"github.com/mgomes/colloc/internal/related"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	calls   []string
	result  lookup.Result
	err     error
	history []string
	related []string
}

func (f *fakeService) Lookup(_ context.Context, word string) (lookup.Result, error) {
	f.calls = append(f.calls, word)
	return f.result, f.err
}

func (f *fakeService) History() []string { return f.history }

func (f *fakeService) Related(context.Context, string, int) ([]string, error) {
	if f.related == nil {
		return nil, related.ErrDisabled
	}
	return f.related, nil
}

func newTestModel(t *testing.T, svc *fakeService) (LookupModel, *notify.Queue) {
	t.Helper()
	q := notify.New(notify.WithClock(clockwork.NewFakeClock()))
	t.Cleanup(q.Close)
	return NewLookupModel(svc, q, 5*time.Second), q
}

func press(t *testing.T, m LookupModel, key tea.KeyMsg) (LookupModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	lm, ok := next.(LookupModel)
	require.True(t, ok)
	return lm, cmd
}

func deliver(t *testing.T, m LookupModel, msg tea.Msg) (LookupModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	lm, ok := next.(LookupModel)
	require.True(t, ok)
	return lm, cmd
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func onlyToast(t *testing.T, q *notify.Queue) notify.Notification {
	t.Helper()
	items := q.Notifications()
	require.Len(t, items, 1)
	return items[0]
}

func TestLookupModel_blank_input_shows_validation_toast(t *testing.T) {
	svc := &fakeService{}
	m, q := newTestModel(t, svc)
	m.input.SetValue("   ")

	m, cmd := press(t, m, enter())

	assert.NotNil(t, cmd)
	assert.False(t, m.loading)
	assert.Empty(t, svc.calls)

	toast := onlyToast(t, q)
	assert.Equal(t, "Error", toast.Title)
	assert.Equal(t, "Please enter a word", toast.Description)
	assert.Equal(t, notify.SeverityDestructive, toast.Severity)
}

func TestLookupModel_submit_sets_loading_and_guards_duplicates(t *testing.T) {
	svc := &fakeService{}
	m, _ := newTestModel(t, svc)
	m.input.SetValue("  strong ")

	m, cmd := press(t, m, enter())
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m, cmd = press(t, m, enter())
	assert.Nil(t, cmd)
	assert.True(t, m.loading)
}

func TestLookupCmd_trims_and_calls_service(t *testing.T) {
	svc := &fakeService{result: lookup.Result{Word: "strong"}}

	msg := lookupCmd(context.Background(), svc, "strong")()

	res, ok := msg.(LookupResultMsg)
	require.True(t, ok)
	assert.Equal(t, "strong", res.Word)
	assert.Equal(t, []string{"strong"}, svc.calls)
}

func TestLookupModel_success(t *testing.T) {
	svc := &fakeService{related: []string{"powerful"}}
	m, q := newTestModel(t, svc)
	m.loading = true

	m, cmd := deliver(t, m, LookupResultMsg{Word: "strong", Result: lookup.Result{
		Word: "strong",
		Collocations: []collocation.Collocation{
			{Collocate: "coffee", Frequency: 12, ExampleSentences: []string{"I need strong coffee."}},
		},
		History: []string{"strong", "quick"},
	}})

	require.NotNil(t, cmd)
	assert.False(t, m.loading)
	assert.Equal(t, []string{"strong", "quick"}, m.history)

	toast := onlyToast(t, q)
	assert.Equal(t, "Done", toast.Title)
	assert.Equal(t, `Found 1 collocations for "strong"`, toast.Description)
	assert.Equal(t, notify.SeveritySuccess, toast.Severity)

	view := m.View()
	assert.Contains(t, view, "coffee")
	assert.Contains(t, view, "I need strong coffee.")
	assert.Contains(t, view, "quick")

	m, _ = deliver(t, m, RelatedMsg{Word: "strong", Words: []string{"powerful"}})
	assert.Contains(t, m.View(), "powerful")
}

func TestLookupModel_empty_result_keeps_history(t *testing.T) {
	svc := &fakeService{}
	m, q := newTestModel(t, svc)
	m.history = []string{"quick"}
	m.loading = true

	m, _ = deliver(t, m, LookupResultMsg{Word: "xyzzy", Result: lookup.Result{Word: "xyzzy", History: []string{"quick"}}})

	assert.False(t, m.loading)
	assert.Equal(t, []string{"quick"}, m.history)

	toast := onlyToast(t, q)
	assert.Equal(t, "No results", toast.Title)
	assert.Equal(t, `No collocations found for "xyzzy"`, toast.Description)
	assert.Equal(t, notify.SeverityWarning, toast.Severity)
}

func TestLookupModel_service_error_clears_results(t *testing.T) {
	svc := &fakeService{}
	m, q := newTestModel(t, svc)
	m.word = "strong"
	m.results = []collocation.Collocation{{Collocate: "coffee"}}
	m.history = []string{"strong"}
	m.loading = true

	m, _ = deliver(t, m, LookupResultMsg{
		Word: "quick",
		Err:  &collocation.ServiceError{Message: "Service unavailable"},
	})

	assert.False(t, m.loading)
	assert.Empty(t, m.results)
	assert.Equal(t, []string{"strong"}, m.history)

	toast := onlyToast(t, q)
	assert.Equal(t, "Error", toast.Title)
	assert.Equal(t, "Service unavailable", toast.Description)
	assert.Equal(t, notify.SeverityDestructive, toast.Severity)
}

func TestLookupModel_service_error_without_message(t *testing.T) {
	m, q := newTestModel(t, &fakeService{})
	m.loading = true

	m, _ = deliver(t, m, LookupResultMsg{Word: "quick", Err: &collocation.ServiceError{}})

	assert.False(t, m.loading)
	assert.Equal(t, collocation.GenericFailureMessage, onlyToast(t, q).Description)
}

func TestLookupModel_new_toast_replaces_previous(t *testing.T) {
	m, q := newTestModel(t, &fakeService{})

	m, _ = press(t, m, enter())
	first := onlyToast(t, q)

	m.loading = true
	_, _ = deliver(t, m, LookupResultMsg{Word: "quick", Err: &collocation.ServiceError{Message: "boom"}})

	second := onlyToast(t, q)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "boom", second.Description)
}

func TestLookupModel_toast_close_dismisses(t *testing.T) {
	m, q := newTestModel(t, &fakeService{})
	m, _ = press(t, m, enter())
	toast := onlyToast(t, q)

	m, _ = deliver(t, m, toastCloseMsg{ID: toast.ID})

	got, ok := q.Get(toast.ID)
	require.True(t, ok)
	assert.False(t, got.Visible)
	assert.Equal(t, 1, q.PendingTimers())
	assert.NotContains(t, m.View(), "Please enter a word")
}

func TestLookupModel_esc_dismisses_all(t *testing.T) {
	m, q := newTestModel(t, &fakeService{})
	m, _ = press(t, m, enter())

	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, onlyToast(t, q).Visible)
}

func TestLookupModel_history_enter_looks_up_word(t *testing.T) {
	svc := &fakeService{history: []string{"strong", "quick"}}
	m, _ := newTestModel(t, svc)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusHistory, m.focus)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.historyIdx)

	m, cmd := press(t, m, enter())
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Equal(t, "quick", m.input.Value())
}

func TestLookupModel_config_reloaded_toast(t *testing.T) {
	m, q := newTestModel(t, &fakeService{})

	_, cmd := deliver(t, m, ConfigReloadedMsg{})

	assert.NotNil(t, cmd)
	toast := onlyToast(t, q)
	assert.Equal(t, "Config reloaded", toast.Title)
	assert.Equal(t, notify.SeverityDefault, toast.Severity)
}

func TestRenderToasts_skips_hidden(t *testing.T) {
	out := renderToasts([]notify.Notification{
		{ID: "1", Visible: false, Payload: notify.Payload{Title: "hidden"}},
		{ID: "2", Visible: true, Payload: notify.Payload{Title: "shown", Severity: notify.SeverityWarning}},
	})

	assert.Contains(t, out, "shown")
	assert.NotContains(t, out, "hidden")
	assert.Empty(t, renderToasts(nil))
}

func TestSetupModel_requires_api_key(t *testing.T) {
	m := NewSetupModel(SetupProvider{Name: "Cohere", DefaultModel: "command-a-03-2025"})

	next, cmd := m.Update(enter())
	assert.Nil(t, cmd)
	assert.Contains(t, next.View(), "API key is required")
}

func TestSetupModel_submit_uses_default_model(t *testing.T) {
	m := NewSetupModel(SetupProvider{Name: "Cohere", DefaultModel: "command-a-03-2025"})
	m.apiKeyInput.SetValue("  key ")

	_, cmd := m.Update(enter())
	require.NotNil(t, cmd)

	msg, ok := cmd().(SetupSubmitMsg)
	require.True(t, ok)
	assert.Equal(t, "key", msg.APIKey)
	assert.Equal(t, "command-a-03-2025", msg.Model)
}

func TestWrapText_ShortText(t *testing.T) {
	lines := wrapText("Hello world", 80, 3)

	if len(lines) != 1 {
		t.Errorf("expected 1 line, got %d", len(lines))
	}

	if lines[0] != "Hello world" {
		t.Errorf("expected 'Hello world', got '%s'", lines[0])
	}
}

func TestWrapText_LongText(t *testing.T) {
	text := "This is a longer piece of text that should wrap to multiple lines when displayed"
	lines := wrapText(text, 40, 3)

	if len(lines) < 2 {
		t.Errorf("expected multiple lines, got %d", len(lines))
	}

	for i, line := range lines {
		if len(line) > 40 {
			t.Errorf("line %d exceeds width: len=%d", i, len(line))
		}
	}
}

func TestWrapText_MaxLines(t *testing.T) {
	text := strings.Repeat("word ", 100)
	lines := wrapText(text, 40, 3)

	if len(lines) > 3 {
		t.Errorf("expected max 3 lines, got %d", len(lines))
	}

	lastLine := lines[len(lines)-1]
	if !strings.HasSuffix(lastLine, "...") {
		t.Errorf("expected last line to end with '...', got '%s'", lastLine)
	}
}

func TestWrapText_EmptyString(t *testing.T) {
	lines := wrapText("", 80, 3)

	if lines != nil {
		t.Errorf("expected nil for empty string, got %v", lines)
	}
}

func TestTruncate_LongString(t *testing.T) {
	result := truncate("Hello World", 8)
	if result != "Hello..." {
		t.Errorf("expected 'Hello...', got '%s'", result)
	}
}
