// Package notify queues user-visible toast notifications per browser session.
package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
)

type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Inbox keeps the most recent notifications for each session key until the
// drawer drains them.
type Inbox struct {
	mu    sync.Mutex
	limit int
	boxes map[string][]Notification
	now   func() time.Time
}

func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = 20
	}
	return &Inbox{limit: limit, boxes: make(map[string][]Notification), now: time.Now}
}

func (i *Inbox) Notify(key string, level Level, message string) {
	if key == "" {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	box := append(i.boxes[key], Notification{Level: level, Message: message, At: i.now().UTC()})
	if len(box) > i.limit {
		box = box[len(box)-i.limit:]
	}
	i.boxes[key] = box
}

// Drain returns and forgets everything queued for key, oldest first.
func (i *Inbox) Drain(key string) []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	box := i.boxes[key]
	delete(i.boxes, key)
	if box == nil {
		return []Notification{}
	}
	return box
}

func (i *Inbox) Forget(key string) {
	i.mu.Lock()
	delete(i.boxes, key)
	i.mu.Unlock()
}
