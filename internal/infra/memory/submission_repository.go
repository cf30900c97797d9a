package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"classquiz/internal/domain"
)

type submissionKey struct {
	quizID    string
	studentID string
}

type storedSubmission struct {
	domain.Submission
	seq uint64 // insertion order, the final ranking tie-break
}

// SubmissionRepository is an in-memory app.SubmissionRepository. The
// mutex plays the role of the document store's unique index: TryInsert
// checks and inserts under one critical section, so concurrent duplicates
// resolve to exactly one winner.
type SubmissionRepository struct {
	mu      sync.RWMutex
	subs    map[submissionKey]storedSubmission
	nextSeq uint64
}

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{subs: make(map[submissionKey]storedSubmission)}
}

func (r *SubmissionRepository) TryInsert(_ context.Context, sub domain.Submission) (domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := submissionKey{quizID: sub.QuizID, studentID: sub.StudentID}
	if _, ok := r.subs[key]; ok {
		return domain.Submission{}, domain.ErrAlreadySubmitted
	}
	sub.ID = uuid.NewString()
	r.subs[key] = storedSubmission{Submission: sub, seq: r.nextSeq}
	r.nextSeq++
	return sub, nil
}

func (r *SubmissionRepository) Exists(_ context.Context, quizID, studentID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.subs[submissionKey{quizID: quizID, studentID: studentID}]
	return ok, nil
}

// FindRanked returns submissions ordered by percentage descending, then
// submission time ascending, then insertion order for determinism.
func (r *SubmissionRepository) FindRanked(_ context.Context, quizID string, limit int) ([]domain.Submission, error) {
	r.mu.RLock()
	matched := make([]storedSubmission, 0)
	for key, sub := range r.subs {
		if key.quizID == quizID {
			matched = append(matched, sub)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Percentage != matched[j].Percentage {
			return matched[i].Percentage > matched[j].Percentage
		}
		if !matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].SubmittedAt.Before(matched[j].SubmittedAt)
		}
		return matched[i].seq < matched[j].seq
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]domain.Submission, 0, len(matched))
	for _, sub := range matched {
		out = append(out, sub.Submission)
	}
	return out, nil
}

func (r *SubmissionRepository) DeleteByQuiz(_ context.Context, quizID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.subs {
		if key.quizID == quizID {
			delete(r.subs, key)
		}
	}
	return nil
}
