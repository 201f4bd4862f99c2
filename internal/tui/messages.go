package tui

import (
	"github.com/mgomes/colloc/internal/lookup"
)

type SetupSubmitMsg struct {
	APIKey string
	Model  string
}

type SetupErrorMsg struct {
	Error string
}

// LookupResultMsg carries the outcome of a lookup started by the model.
type LookupResultMsg struct {
	Word   string
	Result lookup.Result
	Err    error
}

// RelatedMsg carries the related words of a successful lookup.
type RelatedMsg struct {
	Word  string
	Words []string
}

// ToastsChangedMsg tells the model the notification queue changed outside
// of Update, e.g. when a removal timer fired.
type ToastsChangedMsg struct{}

// ConfigReloadedMsg is sent after the config file changed on disk.
type ConfigReloadedMsg struct {
	Err error
}

type toastCloseMsg struct {
	ID string
}
