package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/terreiro-erp-api/pkg/config"
)

// DSN renders the lib/pq keyword/value connection string.
func DSN(cfg config.DatabaseConfig, applicationName string) string {
	pairs := []string{
		"host=" + quote(cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + quote(cfg.User),
		"password=" + quote(cfg.Password),
		"dbname=" + quote(cfg.Name),
		"sslmode=" + quote(cfg.SSLMode),
	}
	if applicationName != "" {
		pairs = append(pairs, "application_name="+quote(applicationName))
	}
	return strings.Join(pairs, " ")
}

// quote wraps values that lib/pq would otherwise split or misread.
func quote(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

// NewPostgres opens the pool and waits for the server to answer. The ping is
// retried so the API and the alert jobs survive a database that starts late.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, applicationName string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg, applicationName))
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)
	}

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
			continue
		}
		break
	}
	_ = db.Close()
	return nil, fmt.Errorf("ping postgres after %d attempt(s): %w", attempts, err)
}
