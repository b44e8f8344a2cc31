// Package ticker keeps a bounded in-memory feed of notable draft moments for
// the overlay and dashboard.
package ticker

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	Nomination  EventType = "nomination"
	PlayerSold  EventType = "player_sold"
	DeadMoney   EventType = "dead_money"
	MarketShift EventType = "market_shift"
	BudgetAlert EventType = "budget_alert"
	Undo        EventType = "undo"
)

type Event struct {
	ID      uuid.UUID `json:"id"`
	Type    EventType `json:"type"`
	TS      time.Time `json:"ts"`
	Message string    `json:"message"`
	Player  string    `json:"player,omitempty"`
	Team    string    `json:"team,omitempty"`
	Details any       `json:"details,omitempty"`
}

// Buffer is a fixed-capacity ring; the oldest events fall off.
type Buffer struct {
	mu    sync.Mutex
	cap   int
	items []Event
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 50
	}
	return &Buffer{cap: capacity}
}

func (b *Buffer) Push(typ EventType, message string, opts ...Option) Event {
	e := Event{ID: uuid.New(), Type: typ, TS: time.Now(), Message: message}
	for _, opt := range opts {
		opt(&e)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, e)
	if len(b.items) > b.cap {
		b.items = b.items[len(b.items)-b.cap:]
	}
	return e
}

// Recent returns up to n events, newest first.
func (b *Buffer) Recent(n int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n > len(b.items) {
		n = len(b.items)
	}
	out := make([]Event, 0, n)
	for i := len(b.items) - 1; i >= len(b.items)-n; i-- {
		out = append(out, b.items[i])
	}
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

type Option func(*Event)

func WithPlayer(name string) Option  { return func(e *Event) { e.Player = name } }
func WithTeam(name string) Option    { return func(e *Event) { e.Team = name } }
func WithDetails(d any) Option       { return func(e *Event) { e.Details = d } }
