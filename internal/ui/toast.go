package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Intent sets the tone of a toast.
type Intent int

const (
	IntentNone Intent = iota
	IntentPrimary
	IntentSuccess
	IntentWarning
	IntentDanger
)

func (i Intent) String() string {
	switch i {
	case IntentPrimary:
		return "primary"
	case IntentSuccess:
		return "success"
	case IntentWarning:
		return "warning"
	case IntentDanger:
		return "danger"
	}
	return "none"
}

// MaxToasts is how many toasts are kept on screen.
const MaxToasts = 3

// Toast is one notification.
type Toast struct {
	Intent  Intent
	Message string
	Key     string // a toast with the same key replaces this one
	At      time.Time
}

// Toaster keeps the last few notifications and echoes each one to a writer.
// It is safe for concurrent use.
type Toaster struct {
	mu     sync.Mutex
	toasts []Toast
	out    io.Writer
	now    func() time.Time
}

// NewToaster returns a toaster printing to out. A nil out only records.
func NewToaster(out io.Writer) *Toaster {
	return &Toaster{out: out, now: time.Now}
}

// Show adds a toast. A toast with the same non-empty key is replaced; beyond
// MaxToasts the oldest is dropped.
func (t *Toaster) Show(intent Intent, message, key string) {
	t.mu.Lock()
	toast := Toast{Intent: intent, Message: message, Key: key, At: t.now()}
	if key != "" {
		for i, old := range t.toasts {
			if old.Key == key {
				t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
				break
			}
		}
	}
	t.toasts = append(t.toasts, toast)
	if len(t.toasts) > MaxToasts {
		t.toasts = t.toasts[len(t.toasts)-MaxToasts:]
	}
	out := t.out
	t.mu.Unlock()

	if out != nil {
		fmt.Fprintln(out, renderToast(toast))
	}
}

// Dismiss removes the toast with key.
func (t *Toaster) Dismiss(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, old := range t.toasts {
		if old.Key == key {
			t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
			return
		}
	}
}

// Toasts returns the visible toasts, oldest first.
func (t *Toaster) Toasts() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Toast(nil), t.toasts...)
}

// Render draws the visible toasts, newest at the bottom.
func (t *Toaster) Render() string {
	toasts := t.Toasts()
	lines := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		lines = append(lines, renderToast(toast))
	}
	return strings.Join(lines, "\n")
}

func renderToast(t Toast) string {
	switch t.Intent {
	case IntentSuccess:
		return Success(t.Message)
	case IntentWarning:
		return Warn(t.Message)
	case IntentDanger:
		return Err(t.Message)
	case IntentPrimary:
		return Info(t.Message)
	}
	return t.Message
}
