package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pomodoro/desktop/internal/clock"
	"pomodoro/desktop/internal/config"
	"pomodoro/desktop/internal/db"
	"pomodoro/desktop/internal/engine"
	"pomodoro/desktop/internal/handler"
	"pomodoro/desktop/internal/metrics"
	"pomodoro/desktop/internal/repository"
	"pomodoro/desktop/internal/router"
	"pomodoro/desktop/internal/service"
	"pomodoro/desktop/migrations"
)

const shutdownTimeout = 5 * time.Second

var (
	configPath  string
	startOnLoad bool
)

var rootCmd = &cobra.Command{
	Use:   "pomodorod",
	Short: "Run the pomodoro timer and its control API",
	Long: `Run the pomodoro timer engine and serve the local control API.

On startup an interrupted phase from the previous run is restored. When
stdin is a terminal you are asked whether to resume it; with --start it
resumes without asking. Otherwise it is restored paused.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.Flags().BoolVar(&startOnLoad, "start", false, "resume an interrupted phase without asking")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := log.New(os.Stderr, "pomodorod: ", log.LstdFlags)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, migrations.FS); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	historyRepo := repository.NewHistoryRepository(database)
	profileRepo := repository.NewProfileRepository(database)
	snapshotStore := openSnapshotStore(cfg, database, logger)

	profile, err := service.ResolveActiveProfile(ctx, profileRepo, cfg.Profile)
	if err != nil {
		return fmt.Errorf("resolve profile: %w", err)
	}

	m := metrics.New()
	eng, err := engine.New(profile, clock.System{}, engine.Config{TickInterval: cfg.TickInterval})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	eng.AddListener(m)

	timerService := service.NewTimerService(eng, historyRepo, profileRepo, snapshotStore, service.TimerOptions{
		Clock:              clock.System{},
		Metrics:            m,
		Logger:             logger,
		CheckpointInterval: cfg.CheckpointInterval,
	})

	restoreOptions := service.RestoreOptions{StartImmediately: startOnLoad}
	if !startOnLoad && isInteractive() {
		restoreOptions.Confirm = confirmResume
	}
	if _, err := timerService.Restore(ctx, restoreOptions); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	authService, err := service.NewAuthService(cfg.ControlPassword, cfg.ControlPasswordHash, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("configure auth: %w", err)
	}
	if !cfg.AuthEnabled() {
		logger.Printf("no control password configured; API is unauthenticated")
	} else if cfg.JWTSecretGenerated {
		logger.Printf("no jwt secret configured; tokens are valid until restart")
	}

	authHandler := handler.NewAuthHandler(authService)
	pomodoroHandler := handler.NewPomodoroHandler(timerService)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.New(authService, authHandler, pomodoroHandler, m, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return timerService.Run(groupCtx)
	})
	group.Go(func() error {
		logger.Printf("listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	runErr := group.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := timerService.Shutdown(shutdownCtx); err != nil {
		logger.Printf("final checkpoint: %v", err)
	}
	logger.Printf("stopped")
	return runErr
}

func openSnapshotStore(cfg config.Config, database *sql.DB, logger *log.Logger) service.SnapshotStore {
	if cfg.SnapshotStore == config.SnapshotStoreFile {
		store := repository.NewFileSnapshotStore(cfg.SnapshotPath)
		logger.Printf("snapshot file: %s", store.Path())
		return store
	}
	logger.Printf("snapshot store: %s", cfg.DBPath)
	return repository.NewSnapshotRepository(database)
}
