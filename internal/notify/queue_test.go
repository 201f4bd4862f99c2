package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T, opts ...Option) (*Queue, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	q := New(append([]Option{WithClock(fc)}, opts...)...)
	t.Cleanup(q.Close)
	return q, fc
}

func waitForEmpty(t *testing.T, q *Queue) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(q.Notifications()) == 0
	}, time.Second, time.Millisecond)
}

func TestQueue_Add(t *testing.T) {
	q, _ := newTestQueue(t)

	h := q.Add(Payload{Title: "Error", Description: "Please enter a word"})

	items := q.Notifications()
	require.Len(t, items, 1)
	assert.Equal(t, h.ID(), items[0].ID)
	assert.True(t, items[0].Visible)
	assert.Equal(t, "Error", items[0].Title)
	assert.Equal(t, "Please enter a word", items[0].Description)
}

func TestQueue_Add_ids_are_unique(t *testing.T) {
	q, _ := newTestQueue(t, WithCapacity(10))

	seen := map[string]bool{}
	for range 10 {
		h := q.Add(Payload{Title: "x"})
		assert.False(t, seen[h.ID()], "id %s reused", h.ID())
		seen[h.ID()] = true
	}
}

func TestQueue_Add_never_exceeds_capacity(t *testing.T) {
	for _, capacity := range []int{0, 1, 3} {
		q, _ := newTestQueue(t, WithCapacity(capacity))

		var last Handle
		for range 7 {
			last = q.Add(Payload{Title: "t"})
			assert.LessOrEqual(t, len(q.Notifications()), capacity)
		}

		_, found := q.Get(last.ID())
		assert.Equal(t, capacity > 0, found)
	}
}

func TestQueue_Add_evicts_oldest_without_dismissal(t *testing.T) {
	q, _ := newTestQueue(t)

	first := q.Add(Payload{Title: "first"})
	second := q.Add(Payload{Title: "second"})

	items := q.Notifications()
	require.Len(t, items, 1)
	assert.Equal(t, second.ID(), items[0].ID)
	assert.True(t, items[0].Visible)

	_, found := q.Get(first.ID())
	assert.False(t, found)
	assert.Equal(t, 0, q.PendingTimers())
}

func TestQueue_Add_newest_first(t *testing.T) {
	q, _ := newTestQueue(t, WithCapacity(3))

	q.Add(Payload{Title: "a"})
	q.Add(Payload{Title: "b"})
	q.Add(Payload{Title: "c"})
	q.Add(Payload{Title: "d"})

	items := q.Notifications()
	require.Len(t, items, 3)
	assert.Equal(t, "d", items[0].Title)
	assert.Equal(t, "c", items[1].Title)
	assert.Equal(t, "b", items[2].Title)
}

func TestQueue_Eviction_cancels_pending_timer(t *testing.T) {
	q, _ := newTestQueue(t)

	first := q.Add(Payload{Title: "first"})
	first.Dismiss()
	require.Equal(t, 1, q.PendingTimers())

	q.Add(Payload{Title: "second"})

	assert.Equal(t, 0, q.PendingTimers())
}

func TestQueue_Update(t *testing.T) {
	q, _ := newTestQueue(t)
	h := q.Add(Payload{Title: "Loading", Severity: SeverityDefault})

	title := "Done"
	sev := SeveritySuccess
	h.Update(Patch{Title: &title, Severity: &sev})

	n, ok := q.Get(h.ID())
	require.True(t, ok)
	assert.Equal(t, "Done", n.Title)
	assert.Equal(t, SeveritySuccess, n.Severity)
	assert.Equal(t, h.ID(), n.ID)
}

func TestQueue_Update_unknown_id_is_noop(t *testing.T) {
	q, _ := newTestQueue(t)
	q.Add(Payload{Title: "keep"})

	title := "changed"
	q.Update("does-not-exist", Patch{Title: &title})

	assert.Equal(t, "keep", q.Notifications()[0].Title)
}

func TestQueue_Dismiss_is_idempotent(t *testing.T) {
	q, _ := newTestQueue(t)
	h := q.Add(Payload{Title: "x"})

	q.Dismiss(h.ID())
	once := q.Notifications()
	q.Dismiss(h.ID())

	assert.Equal(t, once, q.Notifications())
	assert.False(t, once[0].Visible)
	assert.Equal(t, 1, q.PendingTimers())
}

func TestQueue_Dismiss_arms_one_timer_per_id(t *testing.T) {
	q, fc := newTestQueue(t, WithCapacity(2))
	a := q.Add(Payload{Title: "a"})
	b := q.Add(Payload{Title: "b"})

	q.Dismiss(a.ID())
	q.Dismiss(a.ID())
	q.DismissAll()

	assert.Equal(t, 2, q.PendingTimers())

	fc.Advance(DefaultRemoveDelay)
	waitForEmpty(t, q)
	assert.Equal(t, 0, q.PendingTimers())

	_, found := q.Get(b.ID())
	assert.False(t, found)
}

func TestQueue_Removed_after_delay(t *testing.T) {
	q, fc := newTestQueue(t, WithRemoveDelay(3*time.Second))
	h := q.Add(Payload{Title: "x"})
	h.Dismiss()

	fc.Advance(2 * time.Second)
	_, found := q.Get(h.ID())
	assert.True(t, found)

	fc.Advance(time.Second)
	waitForEmpty(t, q)

	// Operations on a removed id have no effect.
	title := "ghost"
	h.Update(Patch{Title: &title})
	h.Dismiss()
	assert.Empty(t, q.Notifications())
	assert.Equal(t, 0, q.PendingTimers())
}

func TestQueue_dismiss_then_replace(t *testing.T) {
	q, fc := newTestQueue(t)

	q.Add(Payload{Title: "Error", Description: "Please enter a word"})
	require.Len(t, q.Notifications(), 1)
	assert.True(t, q.Notifications()[0].Visible)

	q.DismissAll()
	require.Len(t, q.Notifications(), 1)
	assert.False(t, q.Notifications()[0].Visible)

	fc.Advance(DefaultRemoveDelay)
	waitForEmpty(t, q)
}

func TestQueue_Remove(t *testing.T) {
	q, _ := newTestQueue(t, WithCapacity(2))
	a := q.Add(Payload{Title: "a"})
	b := q.Add(Payload{Title: "b"})
	a.Dismiss()

	q.Remove(a.ID())

	items := q.Notifications()
	require.Len(t, items, 1)
	assert.Equal(t, b.ID(), items[0].ID)
	assert.Equal(t, 0, q.PendingTimers())
}

func TestQueue_RemoveAll(t *testing.T) {
	q, _ := newTestQueue(t, WithCapacity(2))
	q.Add(Payload{Title: "a"})
	q.Add(Payload{Title: "b"}).Dismiss()

	q.RemoveAll()

	assert.Empty(t, q.Notifications())
	assert.Equal(t, 0, q.PendingTimers())
}

func TestQueue_Close_cancels_timers(t *testing.T) {
	fc := clockwork.NewFakeClock()
	q := New(WithClock(fc))

	var mu sync.Mutex
	calls := 0
	q.Subscribe(func([]Notification) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	q.Add(Payload{Title: "x"}).Dismiss()
	require.Equal(t, 1, q.PendingTimers())

	q.Close()
	assert.Equal(t, 0, q.PendingTimers())

	mu.Lock()
	before := calls
	mu.Unlock()

	fc.Advance(DefaultRemoveDelay)
	q.Add(Payload{Title: "after close"})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, before, calls)
	assert.Empty(t, q.Notifications())
}

func TestQueue_Subscribe_receives_snapshots(t *testing.T) {
	q, _ := newTestQueue(t)

	var got [][]Notification
	q.Subscribe(func(items []Notification) {
		got = append(got, items)
	})

	h := q.Add(Payload{Title: "x"})
	h.Dismiss()
	h.Dismiss()

	require.Len(t, got, 2)
	assert.True(t, got[0][0].Visible)
	assert.False(t, got[1][0].Visible)
}
