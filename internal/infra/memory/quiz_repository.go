package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"classquiz/internal/app"
	"classquiz/internal/domain"
)

// QuizRepository is an in-memory app.QuizRepository for tests and demo
// runs without a document store.
type QuizRepository struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{quizzes: make(map[string]domain.Quiz)}
}

func (r *QuizRepository) Insert(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz.ID = uuid.NewString()
	r.quizzes[quiz.ID] = cloneQuiz(quiz)
	return quiz, nil
}

func (r *QuizRepository) FindByID(_ context.Context, id string) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

// Find returns summaries without question bodies, newest first.
func (r *QuizRepository) Find(_ context.Context, filter app.QuizFilter) ([]domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Quiz, 0, len(r.quizzes))
	for _, quiz := range r.quizzes {
		if filter.Class != "" && quiz.Class != filter.Class {
			continue
		}
		if filter.Subject != "" && quiz.Subject != filter.Subject {
			continue
		}
		if filter.IsLive != nil && quiz.IsLive != *filter.IsLive {
			continue
		}
		if filter.CreatedBy != "" && quiz.CreatedBy != filter.CreatedBy {
			continue
		}
		summary := cloneQuiz(quiz)
		summary.Questions = nil
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *QuizRepository) Replace(_ context.Context, quiz domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	r.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (r *QuizRepository) SetLive(_ context.Context, id string, live bool, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.IsLive = live
	quiz.UpdatedAt = updatedAt
	r.quizzes[id] = quiz
	return nil
}

func (r *QuizRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(r.quizzes, id)
	return nil
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	out := quiz
	if quiz.Questions != nil {
		out.Questions = make([]domain.Question, len(quiz.Questions))
		copy(out.Questions, quiz.Questions)
		for i := range out.Questions {
			opts := make([]domain.Option, len(quiz.Questions[i].Options))
			copy(opts, quiz.Questions[i].Options)
			out.Questions[i].Options = opts
		}
	}
	if quiz.TimeLimitMinutes != nil {
		v := *quiz.TimeLimitMinutes
		out.TimeLimitMinutes = &v
	}
	return out
}
