package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prept/prept-api/internal/config"
	"github.com/prept/prept-api/internal/events"
	"github.com/prept/prept-api/internal/platform/gemini"
	"github.com/prept/prept-api/internal/platform/postgres"
	"github.com/prept/prept-api/internal/service"
	"github.com/prept/prept-api/internal/service/auth"
	"github.com/prept/prept-api/internal/store"
	"github.com/prept/prept-api/internal/task"
)

// application holds the wired dependency graph.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore

	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher

	profileService    service.ProfileService
	questionService   service.QuestionService
	bookmarkService   service.BookmarkService
	generationService service.GenerationService

	taskRunner *task.TaskRunner
	jobSweeper *task.JobSweeper
}

// newApplication wires stores, services, the generation pipeline and the
// event plumbing that connects them.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	db *sql.DB,
) (*application, error) {
	// Stores
	userStore := postgres.NewPostgresUserStore(db)
	profileStore := postgres.NewPostgresProfileStore(db)
	questionStore := postgres.NewPostgresQuestionStore(db)
	bookmarkStore := postgres.NewPostgresBookmarkStore(db)
	jobStore := postgres.NewPostgresGenerationJobStore(db)
	taskStore := postgres.NewPostgresTaskStore(db)

	// Auth
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	passwordHasher := auth.NewBcryptHasher()

	// Event plumbing: the generation service emits task request events,
	// the task package turns them into runnable tasks.
	eventEmitter := events.NewInMemoryEventEmitter(log)

	// Services
	profileService, err := service.NewProfileService(profileStore, log)
	if err != nil {
		return nil, err
	}
	questionService, err := service.NewQuestionService(db, questionStore, log)
	if err != nil {
		return nil, err
	}
	bookmarkService, err := service.NewBookmarkService(bookmarkStore, questionStore, log)
	if err != nil {
		return nil, err
	}
	generationService, err := service.NewGenerationService(db, jobStore, eventEmitter, log)
	if err != nil {
		return nil, err
	}

	// Generation pipeline
	generator, err := gemini.NewGenerator(ctx, log, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create question generator: %w", err)
	}

	factory := task.NewQuestionGenerationTaskFactory(
		service.NewJobStoreAdapter(jobStore),
		service.NewProfileStoreAdapter(profileStore),
		generator,
		service.NewQuestionWriterAdapter(questionService, questionStore),
		cfg.LLM.QuestionBatchSize,
		time.Duration(cfg.LLM.GenerationTimeoutSeconds)*time.Second,
		log,
	)

	taskRunner := task.NewTaskRunner(taskStore, factory.HydrateTask, task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		StuckTaskAge:           time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
		StuckTaskCheckInterval: time.Duration(cfg.Task.StuckTaskCheckIntervalMinutes) * time.Minute,
	}, log)

	eventEmitter.RegisterHandler(task.NewTaskRequestHandler(factory, taskRunner, log))

	jobSweeper := task.NewJobSweeper(
		jobStore,
		time.Duration(cfg.Task.JobRetentionHours)*time.Hour,
		time.Duration(cfg.Task.JobSweepIntervalMinutes)*time.Minute,
		log,
	)

	return &application{
		config:            cfg,
		logger:            log,
		db:                db,
		userStore:         userStore,
		jwtService:        jwtService,
		passwordHasher:    passwordHasher,
		profileService:    profileService,
		questionService:   questionService,
		bookmarkService:   bookmarkService,
		generationService: generationService,
		taskRunner:        taskRunner,
		jobSweeper:        jobSweeper,
	}, nil
}

// start brings up the background pipeline: task recovery plus workers,
// then the job retention sweeper.
func (app *application) start() error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	app.jobSweeper.Start()
	return nil
}

// shutdown stops the background pipeline.
func (app *application) shutdown() {
	app.jobSweeper.Stop()
	app.taskRunner.Stop()
	app.logger.Info("background pipeline stopped")
}
