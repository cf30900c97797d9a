package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"classquiz/internal/domain"
)

func TestTryInsertConcurrentDuplicates(t *testing.T) {
	repo := NewSubmissionRepository()
	ctx := context.Background()

	const attempts = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		rejects int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.TryInsert(ctx, domain.Submission{
				QuizID:      "quiz-1",
				StudentID:   "student-1",
				SubmittedAt: time.Now(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrAlreadySubmitted):
				rejects++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", wins)
	}
	if rejects != attempts-1 {
		t.Fatalf("expected %d rejections, got %d", attempts-1, rejects)
	}

	subs, err := repo.FindRanked(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("find ranked: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 stored submission, got %d", len(subs))
	}
}

func TestFindRankedOrdering(t *testing.T) {
	repo := NewSubmissionRepository()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	insert := func(student string, pct float64, at time.Time) {
		t.Helper()
		if _, err := repo.TryInsert(ctx, domain.Submission{
			QuizID:      "quiz-1",
			StudentID:   student,
			StudentName: student,
			Percentage:  pct,
			SubmittedAt: at,
		}); err != nil {
			t.Fatalf("insert %s: %v", student, err)
		}
	}

	// Wall order differs from rank order on purpose.
	insert("late-90", 90, base.Add(2*time.Minute))
	insert("early-90", 90, base.Add(time.Minute))
	insert("only-70", 70, base.Add(3*time.Minute))
	insert("top-95", 95, base.Add(4*time.Minute))

	subs, err := repo.FindRanked(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("find ranked: %v", err)
	}
	want := []string{"top-95", "early-90", "late-90", "only-70"}
	if len(subs) != len(want) {
		t.Fatalf("expected %d submissions, got %d", len(want), len(subs))
	}
	for i, name := range want {
		if subs[i].StudentName != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, subs[i].StudentName)
		}
	}
}

func TestFindRankedTimestampTieBreaksByInsertion(t *testing.T) {
	repo := NewSubmissionRepository()
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, student := range []string{"first", "second", "third"} {
		if _, err := repo.TryInsert(ctx, domain.Submission{
			QuizID:      "quiz-1",
			StudentID:   student,
			StudentName: student,
			Percentage:  80,
			SubmittedAt: at,
		}); err != nil {
			t.Fatalf("insert %s: %v", student, err)
		}
	}

	subs, err := repo.FindRanked(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("find ranked: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if subs[i].StudentName != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, subs[i].StudentName)
		}
	}
}

func TestFindRankedRespectsLimit(t *testing.T) {
	repo := NewSubmissionRepository()
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if _, err := repo.TryInsert(ctx, domain.Submission{
			QuizID:      "quiz-1",
			StudentID:   string(rune('a' + i)),
			Percentage:  float64(i * 10),
			SubmittedAt: at.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	subs, err := repo.FindRanked(ctx, "quiz-1", 3)
	if err != nil {
		t.Fatalf("find ranked: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(subs))
	}
	if subs[0].Percentage != 40 {
		t.Fatalf("expected top percentage 40, got %v", subs[0].Percentage)
	}
}

func TestDeleteByQuizRemovesOnlyThatQuiz(t *testing.T) {
	repo := NewSubmissionRepository()
	ctx := context.Background()

	seed := []domain.Submission{
		{QuizID: "quiz-1", StudentID: "s1"},
		{QuizID: "quiz-1", StudentID: "s2"},
		{QuizID: "quiz-2", StudentID: "s1"},
	}
	for _, sub := range seed {
		if _, err := repo.TryInsert(ctx, sub); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	if err := repo.DeleteByQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	left, err := repo.FindRanked(ctx, "quiz-1", 0)
	if err != nil {
		t.Fatalf("find ranked: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected quiz-1 submissions gone, found %d", len(left))
	}
	other, err := repo.FindRanked(ctx, "quiz-2", 0)
	if err != nil {
		t.Fatalf("find ranked: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("expected quiz-2 submissions untouched, found %d", len(other))
	}
}
