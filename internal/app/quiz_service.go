package app

import (
	"context"
	"time"

	"classquiz/internal/domain"
)

// QuizRepository abstracts the quiz collection of the document store.
// Find returns summaries only (no question bodies), newest first.
type QuizRepository interface {
	Insert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	FindByID(ctx context.Context, id string) (domain.Quiz, error)
	Find(ctx context.Context, filter QuizFilter) ([]domain.Quiz, error)
	Replace(ctx context.Context, quiz domain.Quiz) error
	SetLive(ctx context.Context, id string, live bool, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// SubmissionRepository abstracts the submission collection. TryInsert must
// be atomic: the store's own uniqueness constraint on (quizId, studentId)
// decides the winner under concurrent submission, never application code.
type SubmissionRepository interface {
	// TryInsert persists a submission, or returns domain.ErrAlreadySubmitted
	// when one already exists for the same (quiz, student) pair.
	TryInsert(ctx context.Context, sub domain.Submission) (domain.Submission, error)
	Exists(ctx context.Context, quizID, studentID string) (bool, error)
	FindRanked(ctx context.Context, quizID string, limit int) ([]domain.Submission, error)
	DeleteByQuiz(ctx context.Context, quizID string) error
}

// QuizFilter narrows quiz listings. Zero values mean "any".
type QuizFilter struct {
	Class     string
	Subject   string
	IsLive    *bool
	CreatedBy string
}

// QuizChanges carries a partial quiz update. Nil fields are left untouched.
type QuizChanges struct {
	Title            *string
	Description      *string
	Subject          *string
	Class            *string
	TimeLimitMinutes *int
	Difficulty       *domain.Difficulty
	Questions        []domain.Question
}

// LeaderboardLimit caps ranked retrieval at the top entries.
const LeaderboardLimit = 100

// QuizService implements the quiz use cases: authoring, the live-status
// gate, scoring, ranked retrieval, and cascade deletion.
type QuizService struct {
	quizzes QuizRepository
	subs    SubmissionRepository
	now     func() time.Time
}

func NewQuizService(quizzes QuizRepository, subs SubmissionRepository) *QuizService {
	return NewQuizServiceWithClock(quizzes, subs, time.Now)
}

// NewQuizServiceWithClock allows deterministic timestamps in tests.
func NewQuizServiceWithClock(quizzes QuizRepository, subs SubmissionRepository, now func() time.Time) *QuizService {
	return &QuizService{quizzes: quizzes, subs: subs, now: now}
}

// CreateQuiz validates and stores a new quiz owned by the caller and
// returns the event announcing it.
func (s *QuizService) CreateQuiz(ctx context.Context, owner domain.User, quiz domain.Quiz) (domain.Quiz, domain.Event, error) {
	if quiz.Difficulty == "" {
		quiz.Difficulty = domain.DifficultyMedium
	}
	if err := validateQuiz(quiz); err != nil {
		return domain.Quiz{}, domain.Event{}, err
	}

	now := s.now()
	quiz.ID = ""
	quiz.CreatedBy = owner.ID
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	created, err := s.quizzes.Insert(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, domain.Event{}, err
	}
	return created, domain.Event{Kind: domain.EventQuizCreated, QuizID: created.ID}, nil
}

// ListQuizzes returns quiz summaries. Students are always pinned to their
// own class regardless of the requested filter.
func (s *QuizService) ListQuizzes(ctx context.Context, principal domain.User, filter QuizFilter) ([]domain.Quiz, error) {
	if principal.Role == domain.RoleStudent {
		filter.Class = principal.Class
	}
	return s.quizzes.Find(ctx, filter)
}

// GetQuiz returns a full quiz. Students may only see quizzes of their
// class; stripping correct-answer flags is the transport layer's job.
func (s *QuizService) GetQuiz(ctx context.Context, principal domain.User, id string) (domain.Quiz, error) {
	quiz, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if principal.Role == domain.RoleStudent && quiz.Class != principal.Class {
		return domain.Quiz{}, domain.ErrClassMismatch
	}
	return quiz, nil
}

// UpdateQuiz applies a partial update to a quiz owned by the caller.
func (s *QuizService) UpdateQuiz(ctx context.Context, principal domain.User, id string, changes QuizChanges) (domain.Quiz, error) {
	quiz, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.CreatedBy != principal.ID {
		return domain.Quiz{}, domain.ErrNotOwner
	}

	if changes.Title != nil {
		quiz.Title = *changes.Title
	}
	if changes.Description != nil {
		quiz.Description = *changes.Description
	}
	if changes.Subject != nil {
		quiz.Subject = *changes.Subject
	}
	if changes.Class != nil {
		quiz.Class = *changes.Class
	}
	if changes.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = changes.TimeLimitMinutes
	}
	if changes.Difficulty != nil {
		quiz.Difficulty = *changes.Difficulty
	}
	if changes.Questions != nil {
		quiz.Questions = changes.Questions
	}
	if err := validateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}

	quiz.UpdatedAt = s.now()
	if err := s.quizzes.Replace(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// ToggleLive flips the live flag of a quiz owned by the caller and returns
// the event announcing the change to that quiz's viewers.
func (s *QuizService) ToggleLive(ctx context.Context, principal domain.User, id string, live bool) (domain.Quiz, domain.Event, error) {
	quiz, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		return domain.Quiz{}, domain.Event{}, err
	}
	if quiz.CreatedBy != principal.ID {
		return domain.Quiz{}, domain.Event{}, domain.ErrNotOwner
	}

	now := s.now()
	if err := s.quizzes.SetLive(ctx, id, live, now); err != nil {
		return domain.Quiz{}, domain.Event{}, err
	}
	quiz.IsLive = live
	quiz.UpdatedAt = now
	return quiz, domain.Event{Kind: domain.EventQuizStatusChanged, QuizID: id, IsLive: &live}, nil
}

// Submit runs the live-status gate, grades the answers, and persists the
// submission. The gate's existence check is advisory; the store's unique
// constraint inside TryInsert is the authoritative enforcement of the
// one-submission-per-student invariant, so a concurrent duplicate comes
// back as domain.ErrAlreadySubmitted rather than a double score.
func (s *QuizService) Submit(ctx context.Context, student domain.User, quizID string, answers []domain.Answer) (domain.ScoreResult, domain.Event, error) {
	quiz, err := s.quizzes.FindByID(ctx, quizID)
	if err != nil {
		return domain.ScoreResult{}, domain.Event{}, err
	}
	// Class is checked before liveness: a student outside the class is
	// denied for that reason alone, whether or not the quiz is live.
	if quiz.Class != student.Class {
		return domain.ScoreResult{}, domain.Event{}, domain.ErrClassMismatch
	}
	if !quiz.IsLive {
		return domain.ScoreResult{}, domain.Event{}, domain.ErrQuizNotLive
	}
	if taken, err := s.subs.Exists(ctx, quizID, student.ID); err != nil {
		return domain.ScoreResult{}, domain.Event{}, err
	} else if taken {
		return domain.ScoreResult{}, domain.Event{}, domain.ErrAlreadySubmitted
	}

	result := Score(quiz, answers)
	sub := domain.Submission{
		QuizID:       quizID,
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentClass: student.Class,
		Answers:      answers,
		Score:        result.TotalScore,
		MaxScore:     result.MaxScore,
		Percentage:   result.Percentage,
		SubmittedAt:  s.now(),
	}
	if _, err := s.subs.TryInsert(ctx, sub); err != nil {
		return domain.ScoreResult{}, domain.Event{}, err
	}
	return result, domain.Event{Kind: domain.EventLeaderboardChanged, QuizID: quizID}, nil
}

// Leaderboard returns the top-ranked submissions for a quiz. The store
// orders by percentage descending then submission time ascending; ranks
// are assigned densely by position, so exact percentage ties keep the
// first-submitted entry ahead.
func (s *QuizService) Leaderboard(ctx context.Context, quizID string) ([]domain.RankedEntry, error) {
	if _, err := s.quizzes.FindByID(ctx, quizID); err != nil {
		return nil, err
	}
	subs, err := s.subs.FindRanked(ctx, quizID, LeaderboardLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.RankedEntry, 0, len(subs))
	for i, sub := range subs {
		entries = append(entries, domain.RankedEntry{
			Rank:         i + 1,
			StudentName:  sub.StudentName,
			StudentClass: sub.StudentClass,
			Score:        sub.Score,
			MaxScore:     sub.MaxScore,
			Percentage:   sub.Percentage,
			SubmittedAt:  sub.SubmittedAt,
		})
	}
	return entries, nil
}

// DeleteQuiz removes a quiz owned by the caller and cascades to all of
// its submissions.
func (s *QuizService) DeleteQuiz(ctx context.Context, principal domain.User, id string) error {
	quiz, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if quiz.CreatedBy != principal.ID {
		return domain.ErrNotOwner
	}
	if err := s.quizzes.Delete(ctx, id); err != nil {
		return err
	}
	return s.subs.DeleteByQuiz(ctx, id)
}

// validateQuiz enforces the quiz invariants: required fields, at least
// one question, at least two options each, exactly one correct option.
func validateQuiz(quiz domain.Quiz) error {
	if quiz.Title == "" {
		return domain.Validationf("quiz must have a title")
	}
	if quiz.Subject == "" || quiz.Class == "" {
		return domain.Validationf("subject and class are required")
	}
	if len(quiz.Questions) == 0 {
		return domain.Validationf("quiz must have at least one question")
	}
	switch quiz.Difficulty {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		return domain.Validationf("difficulty must be Easy, Medium or Hard")
	}
	for i, q := range quiz.Questions {
		if q.Text == "" {
			return domain.Validationf("question %d must have text", i+1)
		}
		if len(q.Options) < 2 {
			return domain.Validationf("question %d must have at least two options", i+1)
		}
		correct := 0
		for j, opt := range q.Options {
			if opt.Text == "" {
				return domain.Validationf("question %d option %d must have text", i+1, j+1)
			}
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return domain.Validationf("question %d must have exactly one correct answer", i+1)
		}
		if q.Points < 0 {
			return domain.Validationf("question %d must have a positive point value", i+1)
		}
	}
	return nil
}
