package app

import (
	"github.com/sirupsen/logrus"

	"classquiz/internal/domain"
)

// Publisher pushes an event to currently subscribed viewers. Publish must
// never block; dropping an event for a slow consumer is acceptable.
type Publisher interface {
	Publish(ev domain.Event)
}

// Dispatcher is the best-effort output port between the write use cases
// and the notification transport. Use cases return domain events; the
// dispatcher publishes them fire-and-forget, keeping the domain logic
// free of transport concerns.
type Dispatcher struct {
	pub Publisher
	log *logrus.Logger
}

func NewDispatcher(pub Publisher, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, log: log}
}

// Dispatch publishes each non-zero event. It never fails: a missed
// notification is reconciled by viewers re-fetching on their own.
func (d *Dispatcher) Dispatch(events ...domain.Event) {
	for _, ev := range events {
		if ev.IsZero() {
			continue
		}
		d.pub.Publish(ev)
		if d.log != nil {
			d.log.WithFields(logrus.Fields{"kind": ev.Kind, "quiz_id": ev.QuizID}).Debug("event dispatched")
		}
	}
}
