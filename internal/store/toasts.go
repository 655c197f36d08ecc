package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ToastType is the visual kind of a toast.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastInfo    ToastType = "info"
	ToastError   ToastType = "error"
)

// DefaultToastDuration is used when Show is given no duration.
const DefaultToastDuration = 3500 * time.Millisecond

// Toast is a transient notification.
type Toast struct {
	ID       string        `json:"id"`
	Message  string        `json:"message"`
	Type     ToastType     `json:"type"`
	Duration time.Duration `json:"-"`
}

// MarshalJSON writes the duration in milliseconds.
func (t Toast) MarshalJSON() ([]byte, error) {
	type wire Toast
	return json.Marshal(struct {
		wire
		DurationMS int64 `json:"duration"`
	}{wire: wire(t), DurationMS: t.Duration.Milliseconds()})
}

// Toasts is the queue of visible toasts. Each toast removes itself after
// its duration.
type Toasts struct {
	mu     sync.Mutex
	items  []Toast
	timers map[string]*time.Timer
	closed bool
}

func NewToasts() *Toasts {
	return &Toasts{timers: make(map[string]*time.Timer)}
}

// Show appends a toast and returns its id. An empty type means success and
// a non-positive duration means DefaultToastDuration.
func (q *Toasts) Show(message string, typ ToastType, d time.Duration) string {
	if typ == "" {
		typ = ToastSuccess
	}
	if d <= 0 {
		d = DefaultToastDuration
	}
	t := Toast{ID: uuid.NewString(), Message: message, Type: typ, Duration: d}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, t)
	if !q.closed {
		q.timers[t.ID] = time.AfterFunc(d, func() { q.Remove(t.ID) })
	}
	return t.ID
}

// Remove drops the toast with id. Unknown ids are ignored.
func (q *Toasts) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if tm, ok := q.timers[id]; ok {
		tm.Stop()
		delete(q.timers, id)
	}
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return
		}
	}
}

// List returns the visible toasts, oldest first.
func (q *Toasts) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Toast{}, q.items...)
}

// Close stops pending expiry timers. Toasts shown afterwards never expire.
func (q *Toasts) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, tm := range q.timers {
		tm.Stop()
		delete(q.timers, id)
	}
	q.closed = true
}
