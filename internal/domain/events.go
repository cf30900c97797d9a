package domain

// EventKind names the change a notification announces.
type EventKind string

const (
	// EventQuizCreated announces a new quiz to every connected viewer.
	EventQuizCreated EventKind = "quiz-created"
	// EventLeaderboardChanged tells viewers of one quiz to re-fetch its leaderboard.
	EventLeaderboardChanged EventKind = "leaderboard-update"
	// EventQuizStatusChanged announces a live-flag flip to viewers of one quiz.
	EventQuizStatusChanged EventKind = "quiz-status-changed"
)

// Event is the best-effort notification produced by write use cases.
// Delivery is at-most-once and never a correctness dependency: viewers
// reconcile by re-fetching authoritative state on their own schedule.
type Event struct {
	Kind   EventKind `json:"kind"`
	QuizID string    `json:"quizId"`
	IsLive *bool     `json:"isLive,omitempty"`
}

// Global reports whether the event targets all subscribers rather than
// the subscribers of one quiz.
func (e Event) Global() bool { return e.Kind == EventQuizCreated }

// IsZero reports whether the event carries nothing to announce.
func (e Event) IsZero() bool { return e.Kind == "" }
