package app_test

import (
	"testing"

	"github.com/sirupsen/logrus"

	"classquiz/internal/app"
	"classquiz/internal/domain"
)

type recordingPublisher struct {
	events []domain.Event
}

func (p *recordingPublisher) Publish(ev domain.Event) {
	p.events = append(p.events, ev)
}

func TestDispatcherPublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	d := app.NewDispatcher(pub, logrus.New())

	d.Dispatch(
		domain.Event{Kind: domain.EventQuizCreated, QuizID: "q1"},
		domain.Event{Kind: domain.EventLeaderboardChanged, QuizID: "q1"},
	)

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(pub.events))
	}
	if pub.events[0].Kind != domain.EventQuizCreated || pub.events[1].Kind != domain.EventLeaderboardChanged {
		t.Fatalf("events out of order: %+v", pub.events)
	}
}

func TestDispatcherSkipsZeroEvents(t *testing.T) {
	pub := &recordingPublisher{}
	d := app.NewDispatcher(pub, nil)

	d.Dispatch(domain.Event{}, domain.Event{Kind: domain.EventQuizCreated, QuizID: "q1"}, domain.Event{})

	if len(pub.events) != 1 {
		t.Fatalf("expected zero events to be skipped, got %d published", len(pub.events))
	}
}
