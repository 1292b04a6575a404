package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/tryinterview/checkout-verifier/backend/internal/config"
	"github.com/tryinterview/checkout-verifier/backend/internal/migrations"
)

// Open creates a Backend for the configured store driver. The Postgres driver
// applies pending migrations before returning.
func Open(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres, "":
		return openPostgres(ctx, cfg.DatabaseURL)
	case config.StoreDriverRedis:
		return openRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, dsn string) (Backend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	logDBTarget("primary", dsn)
	configureDB(db)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	if err := runMigrationsWithDirtyFix(db, "primary"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply database migrations: %w", err)
	}

	return New(db)
}

func openRedis(ctx context.Context, cfg config.Config) (Backend, error) {
	s := NewRedis(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("store: ping redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Printf("[store] redis: addr=%s db=%d", cfg.RedisAddr, cfg.RedisDB)
	return s, nil
}

func configureDB(db *sql.DB) {
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
}

func runMigrationsWithDirtyFix(db *sql.DB, name string) error {
	if err := migrations.Up(db); err != nil {
		log.Printf("migrations(%s): error detected: %v (type: %T)", name, err, err)
		if strings.Contains(err.Error(), "Dirty database version") {
			log.Printf("migrations(%s): dirty database detected, attempting to fix...", name)
			if fixErr := migrations.FixDirtyDatabase(db); fixErr != nil {
				log.Printf("migrations(%s): failed to fix dirty database: %v", name, fixErr)
				return err
			}
			return migrations.Up(db)
		}
		return err
	}
	return nil
}

func logDBTarget(name, dsn string) {
	// Avoid logging secrets: only log hostname + database path.
	u, err := url.Parse(dsn)
	if err != nil {
		log.Printf("db(%s): configured (dsn parse error: %v)", name, err)
		return
	}
	log.Printf("db(%s): host=%s db=%s", name, u.Hostname(), strings.TrimPrefix(u.Path, "/"))
}
