// Package notify fans domain events out to in-process subscribers.
package notify

import (
	"sync"

	"classquiz/internal/domain"
)

const subscriberBuffer = 8

// Hub routes events to subscribers keyed by quiz ID. Global events
// (quiz-created) reach every subscriber. Delivery is best-effort and
// at-most-once: a full subscriber channel has its oldest event dropped,
// and Publish never blocks.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[chan domain.Event]struct{}
	global map[chan domain.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[chan domain.Event]struct{}),
		global: make(map[chan domain.Event]struct{}),
	}
}

// Subscribe registers interest in one quiz's events plus global events.
// An empty quizID subscribes to everything. The caller must invoke the
// returned cancel function to avoid leaks; cancel is idempotent.
func (h *Hub) Subscribe(quizID string) (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, subscriberBuffer)

	h.mu.Lock()
	if quizID == "" {
		h.global[ch] = struct{}{}
	} else {
		room, ok := h.rooms[quizID]
		if !ok {
			room = make(map[chan domain.Event]struct{})
			h.rooms[quizID] = room
		}
		room[ch] = struct{}{}
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if quizID == "" {
			if _, ok := h.global[ch]; ok {
				delete(h.global, ch)
				close(ch)
			}
			return
		}
		room, ok := h.rooms[quizID]
		if !ok {
			return
		}
		if _, ok := room[ch]; ok {
			delete(room, ch)
			close(ch)
		}
		if len(room) == 0 {
			delete(h.rooms, quizID)
		}
	}
	return ch, cancel
}

// Publish delivers an event to its audience without blocking.
func (h *Hub) Publish(ev domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.global {
		deliver(ch, ev)
	}
	if ev.Global() {
		for _, room := range h.rooms {
			for ch := range room {
				deliver(ch, ev)
			}
		}
		return
	}
	for ch := range h.rooms[ev.QuizID] {
		deliver(ch, ev)
	}
}

// SubscriberCount reports how many channels would currently receive an
// event for the given quiz.
func (h *Hub) SubscriberCount(quizID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.global) + len(h.rooms[quizID])
}

// deliver sends without blocking: if the channel is full, the oldest
// queued event is evicted to make room, and the event is dropped outright
// if another producer wins the slot.
func deliver(ch chan domain.Event, ev domain.Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}
