package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"classquiz/internal/app"
	"classquiz/internal/domain"
	infmongo "classquiz/internal/infra/mongo"
	"classquiz/internal/infra/rediscache"
)

func TestSubmitAndLeaderboardEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	mongoURI, mongoCleanup := startMongo(t, ctx)
	defer mongoCleanup()
	redisAddr, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	client, err := infmongo.Connect(ctx, mongoURI)
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database("classquiz_test")
	if err := infmongo.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: redisAddr})
	defer redisClient.Close()

	quizRepo := rediscache.New(infmongo.NewQuizRepository(db), redisClient, 5*time.Minute)
	subRepo := infmongo.NewSubmissionRepository(db)
	service := app.NewQuizService(quizRepo, subRepo)

	owner := domain.User{ID: "t1", Name: "Ms. Ada", Role: domain.RoleTeacher}
	quiz, _, err := service.CreateQuiz(ctx, owner, domain.Quiz{
		Title:      "Math Quiz",
		Subject:    "Math",
		Class:      "7A",
		Difficulty: domain.DifficultyEasy,
		IsLive:     true,
		Questions: []domain.Question{
			{
				Text: "What is 2 + 2?",
				Options: []domain.Option{
					{Text: "3"},
					{Text: "4", IsCorrect: true},
				},
				Points: 1,
			},
			{
				Text: "What is 10 / 2?",
				Options: []domain.Option{
					{Text: "5", IsCorrect: true},
					{Text: "2"},
				},
				Points: 1,
			},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	one := 1
	zero := 0
	full := []domain.Answer{
		{QuestionIndex: 0, SelectedOption: &one},
		{QuestionIndex: 1, SelectedOption: &zero},
	}
	half := []domain.Answer{
		{QuestionIndex: 0, SelectedOption: &one},
	}

	alice := domain.User{ID: "s-alice", Name: "Alice", Role: domain.RoleStudent, Class: "7A"}
	bob := domain.User{ID: "s-bob", Name: "Bob", Role: domain.RoleStudent, Class: "7A"}

	if result, _, err := service.Submit(ctx, alice, quiz.ID, full); err != nil {
		t.Fatalf("alice submit: %v", err)
	} else if result.TotalScore != 2 {
		t.Fatalf("alice expected 2 points, got %d", result.TotalScore)
	}
	if _, _, err := service.Submit(ctx, bob, quiz.ID, half); err != nil {
		t.Fatalf("bob submit: %v", err)
	}

	if _, _, err := service.Submit(ctx, alice, quiz.ID, half); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}

	entries, err := service.Leaderboard(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].StudentName != "Alice" || entries[0].Rank != 1 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].StudentName != "Bob" || entries[1].Rank != 2 {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestUniqueIndexDecidesConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	mongoURI, cleanup := startMongo(t, ctx)
	defer cleanup()

	client, err := infmongo.Connect(ctx, mongoURI)
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database("classquiz_test")
	if err := infmongo.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	repo := infmongo.NewSubmissionRepository(db)

	const attempts = 16
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
				QuizID:      "64f000000000000000000001",
				StudentID:   "student-1",
				StudentName: "Alice",
				Percentage:  100,
				SubmittedAt: time.Now().UTC(),
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

	if wins != 1 || rejects != attempts-1 {
		t.Fatalf("expected 1 winner and %d rejections, got %d/%d", attempts-1, wins, rejects)
	}
}

func startMongo(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "mongo:6",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start mongo: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("mongo host: %v", err)
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		t.Fatalf("mongo port: %v", err)
	}
	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	return uri, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	return fmt.Sprintf("%s:%s", host, port.Port()), func() {
		_ = container.Terminate(ctx)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
