// Package notify implements the transient toast shown after every page action.
package notify

import (
	"sync"
	"time"
)

// DefaultDuration is how long a toast stays visible.
const DefaultDuration = 3 * time.Second

type Toast struct {
	Message string    `json:"message"`
	IsError bool      `json:"is_error"`
	ShownAt time.Time `json:"shown_at"`
}

// Notifier holds at most one toast. A new toast replaces the visible one and
// restarts the dismissal timer; nothing is queued.
type Notifier struct {
	mu       sync.Mutex
	duration time.Duration
	current  *Toast
	timer    *time.Timer
	seq      uint64
}

func New(duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Notifier{duration: duration}
}

func (n *Notifier) Notify(message string, isError bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = &Toast{Message: message, IsError: isError, ShownAt: time.Now()}
	n.timer = time.AfterFunc(n.duration, func() { n.dismiss(seq) })
}

// dismiss hides the toast only if no newer toast replaced it meanwhile.
func (n *Notifier) dismiss(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.seq != seq {
		return
	}
	n.current = nil
	n.timer = nil
}

// Current returns the visible toast.
func (n *Notifier) Current() (Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return Toast{}, false
	}
	return *n.current, true
}

// Close hides the toast and stops the pending timer.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
	n.seq++
}
