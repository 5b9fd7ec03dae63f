// Package feed provides an in-process change feed: row-level
// insert/update/delete events published by the stores and fanned out to
// subscribers scoped by (table, student id).
package feed

import (
	"log"
	"sync"

	"github.com/gregjazzy/Apex-Driver/internal/models"
)

// EventKind classifies a change-feed event.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventUpdate EventKind = "UPDATE"
	EventDelete EventKind = "DELETE"
)

// Event is one row-level change. Insert and update events carry the full
// post-write row; delete events carry only the identifying RowID.
type Event struct {
	Table     string
	Kind      EventKind
	StudentID string
	RowID     string
	Task      *models.Task
	Session   *models.PomodoroSession
}

const subscriptionBuffer = 256

// Subscription is one scoped listener. Events arrive on C until Close.
type Subscription struct {
	Table     string
	StudentID string

	id  int
	hub *Hub
	ch  chan Event
}

// C returns the receive channel for this subscription.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close tears the subscription down. The event channel is closed; callers
// must not use the subscription afterwards.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.id)
}

// Hub fans events out to scoped subscribers. Safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*Subscription)}
}

// Subscribe registers a listener for changes to table rows owned by
// studentID. Events published before Subscribe returns are not delivered.
func (h *Hub) Subscribe(table, studentID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		Table:     table,
		StudentID: studentID,
		id:        h.nextID,
		hub:       h,
		ch:        make(chan Event, subscriptionBuffer),
	}
	h.subs[sub.id] = sub
	return sub
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(sub.ch)
}

// Publish delivers the event to every subscription matching its table and
// student id. A subscriber that has fallen subscriptionBuffer events behind
// loses the event; it is logged and the writer is never blocked.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if sub.Table != ev.Table || sub.StudentID != ev.StudentID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			log.Printf("feed: dropping %s event for slow subscriber on %s/%s", ev.Kind, ev.Table, ev.StudentID)
		}
	}
}
