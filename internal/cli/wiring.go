package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/infra/file"
	"quiz-runner/internal/infra/memory"
	"quiz-runner/internal/infra/postgres"
	infraredis "quiz-runner/internal/infra/redis"
	"quiz-runner/internal/infra/sqlite"
)

// loadConfig falls back to defaults when the config file does not exist.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("config %s not found, using defaults", path)
		return config.Default(), nil
	}
	return cfg, err
}

// backends holds the connections opened for the configured stores.
type backends struct {
	redis  *redis.Client
	pool   *pgxpool.Pool
	bun    *bun.DB
	sqlite *sql.DB
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.pool = pool
		b.bun = postgres.OpenBun(cfg.Postgres.URL)
	}
	if cfg.Session.Store == config.StoreSQLite {
		dsn := ""
		if cfg.SQLite.Path != "" {
			dsn = "file:" + cfg.SQLite.Path + "?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
		db, err := sqlite.Open(ctx, dsn)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b.sqlite = db
	}
	return b, nil
}

func (b *backends) Close() {
	if b.redis != nil {
		b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
	if b.bun != nil {
		b.bun.Close()
	}
	if b.sqlite != nil {
		b.sqlite.Close()
	}
}

func (b *backends) questionSet(ctx context.Context, cfg config.Config) (domain.QuestionSet, error) {
	var loader memory.QuestionLoader
	switch cfg.Quiz.Source {
	case config.QuestionSourceFile:
		loader = file.NewQuestionLoader(cfg.Quiz.File)
	case config.QuestionSourcePostgres:
		loader = postgres.NewQuestionStore(b.pool)
	default:
		loader = memory.NewStaticLoader(sampleQuestionSet())
	}

	ttl := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var repo memory.QuestionLoader
	if cfg.Quiz.Cache == config.StoreRedis {
		repo = infraredis.NewQuestionCache(b.redis, loader, ttl)
	} else {
		repo = memory.NewQuestionRepository(loader, ttl)
	}
	return repo.LoadQuestionSet(ctx, cfg.Quiz.SetID)
}

func (b *backends) stateStore(cfg config.Config) app.StateStore {
	switch cfg.Session.Store {
	case config.StoreRedis:
		return infraredis.NewStateStore(b.redis, cfg.Redis.KeyPrefix, config.TTLDuration(cfg.Redis.TTL, 24*time.Hour))
	case config.StoreSQLite:
		return sqlite.NewStateStore(b.sqlite)
	default:
		return memory.NewStateStore()
	}
}

// leaderboard returns nil when the sink is disabled.
func (b *backends) leaderboard(cfg config.Config, setID string) app.Leaderboard {
	switch cfg.Leaderboard.Sink {
	case config.StoreRedis:
		return infraredis.NewLeaderboard(b.redis, setID)
	case config.StorePostgres:
		return postgres.NewLeaderboard(b.bun, setID)
	case config.StoreNone:
		return nil
	default:
		return memory.NewLeaderboard()
	}
}
