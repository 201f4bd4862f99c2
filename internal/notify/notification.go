package notify

// Severity tags a notification for rendering. The queue never interprets it.
type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
	SeverityWarning     Severity = "warning"
	SeveritySuccess     Severity = "success"
)

// Payload is the display content of a notification.
type Payload struct {
	Title       string
	Description string
	Severity    Severity
}

// Patch holds the fields to merge into an existing notification.
// Nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Severity    *Severity
}

// Notification is one transient message held by a Queue.
type Notification struct {
	ID      string
	Visible bool
	Payload
}

func (n *Notification) apply(p Patch) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Severity != nil {
		n.Severity = *p.Severity
	}
}

// Handle is bound to a single notification returned by Queue.Add.
type Handle struct {
	id    string
	queue *Queue
}

func (h Handle) ID() string {
	return h.id
}

// Dismiss hides the notification and schedules its removal.
func (h Handle) Dismiss() {
	h.queue.Dismiss(h.id)
}

// Update merges p into the notification if it is still in the queue.
func (h Handle) Update(p Patch) {
	h.queue.Update(h.id, p)
}
