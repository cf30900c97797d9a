package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"classquiz/internal/app"
	"classquiz/internal/auth"
	"classquiz/internal/config"
	"classquiz/internal/infra/memory"
	infmongo "classquiz/internal/infra/mongo"
	"classquiz/internal/infra/rediscache"
	"classquiz/internal/notify"
	transport "classquiz/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Store handles are constructed once here and injected; no package
	// globals, no reconnect-on-demand.
	var (
		quizRepo app.QuizRepository
		subRepo  app.SubmissionRepository
		userRepo app.UserRepository
		client   *mongodriver.Client
	)
	if cfg.Mongo.URI != "" {
		client, err = infmongo.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()

		db := client.Database(cfg.Mongo.Database)
		if err := infmongo.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		quizRepo = infmongo.NewQuizRepository(db)
		subRepo = infmongo.NewSubmissionRepository(db)
		userRepo = infmongo.NewUserRepository(db)
		log.WithField("database", cfg.Mongo.Database).Info("document store connected")
	} else {
		quizRepo = memory.NewQuizRepository()
		subRepo = memory.NewSubmissionRepository()
		userRepo = memory.NewUserRepository()
		log.Warn("no mongo uri configured, using in-memory stores")
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
		quizRepo = rediscache.New(quizRepo, redisClient, ttl)
		log.WithField("addr", cfg.Redis.Addr).Info("quiz cache enabled")
	}

	hub := notify.NewHub()
	dispatcher := app.NewDispatcher(hub, log)
	quizService := app.NewQuizService(quizRepo, subRepo)
	userService := app.NewUserService(userRepo)
	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	authn := transport.NewAuthenticator(verifier, userService, log)

	router := transport.NewRouter(transport.RouterDeps{
		Authn:       authn,
		Quizzes:     transport.NewQuizHandler(quizService, dispatcher, log),
		Users:       transport.NewUserHandler(authn, userService, log),
		WS:          transport.NewWSHandler(hub, log),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
