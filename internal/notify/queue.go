// Package notify holds the transient notification (toast) queue shown by the
// terminal UI. The queue is rendering-agnostic: it owns the list of active
// notifications and the timers that remove them after they are dismissed.
package notify

import (
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultCapacity    = 1
	DefaultRemoveDelay = time.Second
)

// Subscriber receives a snapshot of the active notifications after every
// state change.
type Subscriber func([]Notification)

// Queue is a capacity-bounded list of notifications, newest first.
//
// A notification moves from visible to dismissed to removed. Dismissal arms a
// single removal timer per id; Close cancels every pending timer so nothing
// fires into a torn down owner.
type Queue struct {
	mu          sync.Mutex
	clock       clockwork.Clock
	capacity    int
	removeDelay time.Duration

	count       uint64
	items       []Notification
	timers      map[string]clockwork.Timer
	subscribers []Subscriber
	closed      bool
}

type Option func(*Queue)

// WithCapacity sets how many notifications are retained. Zero keeps none.
func WithCapacity(n int) Option {
	return func(q *Queue) {
		if n >= 0 {
			q.capacity = n
		}
	}
}

func WithRemoveDelay(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.removeDelay = d
		}
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(q *Queue) {
		if c != nil {
			q.clock = c
		}
	}
}

func New(opts ...Option) *Queue {
	q := &Queue{
		clock:       clockwork.NewRealClock(),
		capacity:    DefaultCapacity,
		removeDelay: DefaultRemoveDelay,
		timers:      make(map[string]clockwork.Timer),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Subscribe registers fn to be called after every change.
func (q *Queue) Subscribe(fn Subscriber) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.subscribers = append(q.subscribers, fn)
}

// Add inserts a visible notification at the front of the queue. Entries past
// the capacity are dropped outright without going through dismissal.
func (q *Queue) Add(p Payload) Handle {
	q.mu.Lock()
	q.count++
	id := strconv.FormatUint(q.count, 10)
	h := Handle{id: id, queue: q}
	if q.closed {
		q.mu.Unlock()
		return h
	}

	items := make([]Notification, 0, len(q.items)+1)
	items = append(items, Notification{ID: id, Visible: true, Payload: p})
	items = append(items, q.items...)
	if len(items) > q.capacity {
		for _, dropped := range items[q.capacity:] {
			q.cancelTimer(dropped.ID)
		}
		items = items[:q.capacity]
	}
	q.items = items

	q.unlockAndPublish()
	return h
}

// Update merges p into the notification with the given id. Unknown ids are
// ignored.
func (q *Queue) Update(id string, p Patch) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	i := q.indexOf(id)
	if i < 0 {
		q.mu.Unlock()
		return
	}
	q.items[i].apply(p)
	q.unlockAndPublish()
}

// Dismiss hides the notification with the given id and arms its removal
// timer. Dismissing twice is a no-op.
func (q *Queue) Dismiss(id string) {
	q.dismiss(func(n Notification) bool { return n.ID == id })
}

// DismissAll hides every notification in the queue.
func (q *Queue) DismissAll() {
	q.dismiss(func(Notification) bool { return true })
}

func (q *Queue) dismiss(match func(Notification) bool) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}

	changed := false
	for i := range q.items {
		if !match(q.items[i]) {
			continue
		}
		if q.items[i].Visible {
			q.items[i].Visible = false
			changed = true
		}
		q.armTimer(q.items[i].ID)
	}

	if !changed {
		q.mu.Unlock()
		return
	}
	q.unlockAndPublish()
}

// Remove deletes the notification with the given id. This is terminal.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.cancelTimer(id)
	if !q.removeLocked(id) {
		q.mu.Unlock()
		return
	}
	q.unlockAndPublish()
}

// RemoveAll clears the queue and cancels all pending timers.
func (q *Queue) RemoveAll() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	for id := range q.timers {
		q.cancelTimer(id)
	}
	if len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	q.items = nil
	q.unlockAndPublish()
}

// Close tears the queue down. Pending removal timers are cancelled and all
// later calls become no-ops.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for id := range q.timers {
		q.cancelTimer(id)
	}
	q.items = nil
	q.subscribers = nil
}

// Notifications returns a copy of the active notifications, newest first.
func (q *Queue) Notifications() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot()
}

// Get returns the notification with the given id.
func (q *Queue) Get(id string) (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := q.indexOf(id)
	if i < 0 {
		return Notification{}, false
	}
	return q.items[i], true
}

// PendingTimers reports how many removal timers are armed.
func (q *Queue) PendingTimers() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.timers)
}

func (q *Queue) armTimer(id string) {
	if _, ok := q.timers[id]; ok {
		return
	}
	q.timers[id] = q.clock.AfterFunc(q.removeDelay, func() {
		q.expire(id)
	})
}

func (q *Queue) cancelTimer(id string) {
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
}

func (q *Queue) expire(id string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	delete(q.timers, id)
	if !q.removeLocked(id) {
		q.mu.Unlock()
		return
	}
	q.unlockAndPublish()
}

func (q *Queue) removeLocked(id string) bool {
	i := q.indexOf(id)
	if i < 0 {
		return false
	}
	q.items = append(q.items[:i:i], q.items[i+1:]...)
	return true
}

func (q *Queue) indexOf(id string) int {
	for i := range q.items {
		if q.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) snapshot() []Notification {
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// unlockAndPublish releases q.mu and notifies subscribers with the state as
// it was under the lock.
func (q *Queue) unlockAndPublish() {
	snap := q.snapshot()
	subs := make([]Subscriber, len(q.subscribers))
	copy(subs, q.subscribers)
	q.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
