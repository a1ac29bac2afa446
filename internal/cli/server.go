package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	transport "quiz-runner/internal/transport/http"
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
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	set, err := b.questionSet(ctx, cfg)
	if err != nil {
		return err
	}
	board := b.leaderboard(cfg, set.ID)
	bridge := app.NewBridge(b.stateStore(cfg), board, app.BridgeKeys{
		State: cfg.Session.StateKey,
		User:  cfg.Session.UserKey,
	}, config.TTLDuration(cfg.Session.WriteTimeout, 5*time.Second))
	defer bridge.Close()

	duration := config.TTLDuration(cfg.Quiz.Duration, 45*time.Minute)
	session, err := app.NewSession(set, duration, app.WithPersister(bridge))
	if err != nil {
		return err
	}
	interval := config.TTLDuration(cfg.Quiz.TickInterval, app.DefaultTickInterval)
	clockCtx, stopClock := context.WithCancel(ctx)
	service := app.NewQuizService(clockCtx, session, bridge, board, interval)
	defer func() {
		stopClock()
		service.Wait()
	}()

	resumed, err := service.Resume(ctx)
	if err != nil {
		return err
	}
	if resumed {
		log.Printf("resumed %s session of %q", service.Snapshot().Phase, set.ID)
	}

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service, cfg.Server.AllowedOrigins),
		ReadTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting quiz runner on :%s (%d questions, %s)", finalPort, set.Len(), duration)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
