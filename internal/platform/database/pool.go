package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bridgeid/internal/platform/config"
)

const pingTimeout = 5 * time.Second

var (
	dbOpenConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridgeid_db_open_connections",
		Help: "Open connections in the Postgres pool",
	})
	dbInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bridgeid_db_in_use_connections",
		Help: "Postgres connections currently serving a query or transaction",
	})
	dbWaits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bridgeid_db_wait_total",
		Help: "Times a caller waited for a free Postgres connection",
	})
)

// Pool is the Postgres handle shared by the request, status and settings stores.
type Pool struct {
	db        *sql.DB
	lastWaits int64
}

// New opens the pool through the pgx stdlib driver. It returns nil, nil without
// DATABASE_URL so the caller falls back to in-memory stores.
func New(cfg config.Database) (*Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping database: %w", err), db.Close())
	}
	return &Pool{db: db}, nil
}

func (p *Pool) DB() *sql.DB {
	return p.db
}

func (p *Pool) Health(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("database not configured")
	}
	return p.db.PingContext(ctx)
}

// RecordStats copies pool statistics into Prometheus. Not safe for concurrent use.
func (p *Pool) RecordStats() {
	stats := p.db.Stats()
	dbOpenConns.Set(float64(stats.OpenConnections))
	dbInUse.Set(float64(stats.InUse))
	if stats.WaitCount > p.lastWaits {
		dbWaits.Add(float64(stats.WaitCount - p.lastWaits))
	}
	p.lastWaits = stats.WaitCount
}

func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
