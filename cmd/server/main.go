package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/linkfeed/configs"
	"github.com/maheshrc27/linkfeed/internal/api/handlers"
	"github.com/maheshrc27/linkfeed/internal/api/middleware"
	"github.com/maheshrc27/linkfeed/internal/events"
	job "github.com/maheshrc27/linkfeed/internal/jobs"
	"github.com/maheshrc27/linkfeed/internal/queue"
	"github.com/maheshrc27/linkfeed/internal/repository"
	"github.com/maheshrc27/linkfeed/internal/service"
	"github.com/nats-io/nats.go"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	setupLogger(cfg.Env)

	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY must be set")
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	ctx := context.Background()
	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	storage, localStorage, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up media storage: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    service.MaxFilesPerRequest*service.MaxFileSize + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Info(err.Error())
			return c.Status(code).JSON(fiber.Map{"message": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	transactor := repository.NewTransactor(db)

	mediaService := service.NewMediaService(storage)
	aggregator := service.NewPostAggregator(userRepo)

	var publisher service.EventPublisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			log.Fatalf("Unable to connect to NATS: %v", err)
		}
		defer nc.Close()
		publisher = events.NewNatsPublisher(nc)
		slog.Info("Connected to NATS")
	}

	cleanup := service.NewInlineMediaCleanup(mediaService)
	var asynqServer *asynq.Server
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		client := asynq.NewClient(redisConn)
		defer client.Close()
		cleanup = queue.NewMediaCleanup(client)

		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})
	}

	authService := service.NewAuthService(cfg.SecretKey, userRepo)
	userService := service.NewUserService(userRepo, mediaService)
	postService := service.NewPostService(transactor, postRepo, postMediaRepo, likeRepo, commentRepo, mediaService, aggregator, cleanup, publisher)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "linkfeed API is running"})
	})
	app.Static("/uploads", cfg.UploadDir)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Post("/api/auth/signup", auth.Signup)
	app.Post("/api/auth/login", auth.Login)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService)
	api.Get("/posts", post.ListFeed)
	api.Get("/posts/user", post.ListOwnPosts)
	api.Post("/posts", post.CreatePost)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.DeletePost)
	api.Post("/posts/:id/like", post.ToggleLike)
	api.Post("/posts/:id/comment", post.AddComment)

	user := handlers.NewUserHandler(userService)
	api.Get("/user/profile", user.GetProfile)
	api.Put("/user/profile", user.UpdateProfile)
	api.Post("/user/profile/photo", user.UploadProfilePhoto)

	// cron jobs
	c := cron.New()
	if localStorage != nil {
		sweepJob := job.NewUploadSweepJob(localStorage.Dir(), job.DefaultUploadMaxAge, postMediaRepo)
		if err := c.AddFunc(cfg.UploadSweepSchedule, sweepJob.SweepUploads); err != nil {
			log.Fatalf("Invalid upload sweep schedule: %v", err)
		}
	}
	c.Start()
	defer c.Stop()

	// queue
	if asynqServer != nil {
		go func() {
			mux := asynq.NewServeMux()
			queue.NewQueue(mediaService).Register(mux)

			log.Println("Starting the Asynq server...")
			if err := asynqServer.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, asynqServer)
}

func setupLogger(env string) {
	var handler slog.Handler
	if env == "local" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

// newStorage picks the media backend. The local backend is also returned on
// its own so the upload sweeper can walk its directory.
func newStorage(ctx context.Context, cfg *config.Config) (service.MediaStorage, *service.LocalStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageR2:
		r2, err := service.NewR2Storage(ctx, cfg.R2)
		if err != nil {
			return nil, nil, err
		}
		return r2, nil, nil
	case config.StorageLocal:
		local, err := service.NewLocalStorage(cfg.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		return local, local, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, asynqServer *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	if asynqServer != nil {
		asynqServer.Shutdown()
	}

	log.Println("Server shutdown complete.")
}
