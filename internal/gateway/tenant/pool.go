package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiosk404/hivegate/internal/pkg/logger"
)

// PoolConfig carries the bounded-pool parameters from §4.1.
type PoolConfig struct {
	MaxConns         int32
	MinConns         int32
	MaxConnIdleTime  time.Duration
	ConnectTimeout   time.Duration
	StatementTimeout time.Duration
}

// DefaultPoolConfig returns the spec's defaults: max size 10, idle timeout
// 5 min, connection timeout 5 s, statement timeout 30 s.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:         10,
		MinConns:         0,
		MaxConnIdleTime:  5 * time.Minute,
		ConnectTimeout:   5 * time.Second,
		StatementTimeout: 30 * time.Second,
	}
}

// Pool wraps a pgxpool.Pool bound to exactly one tenant. Every connection it
// hands out has already had statement_timeout applied in AfterConnect, so a
// borrower never shares state with another tenant's pool.
type Pool struct {
	*pgxpool.Pool
	tenantID string
}

func dsn(db DatabaseConfig, connectTimeout time.Duration) string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s connect_timeout=%d sslmode=prefer",
		db.Host, db.Port, db.Database, db.User, db.Password, int(connectTimeout.Seconds()),
	)
}

// NewPool dials a fresh pool for one tenant. It pings once after connecting
// to surface unreachable-database failures eagerly, per §4.1's smoke-connect
// requirement for strict startup; lazy callers may ignore the returned error
// and retry PoolFor later.
func NewPool(ctx context.Context, tenantID string, db DatabaseConfig, cfg PoolConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn(db, cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("tenant %s: parse pool config: %w", tenantID, err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	stmtTimeoutMs := cfg.StatementTimeout.Milliseconds()
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgconn.PgConn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET statement_timeout = %d", stmtTimeoutMs)).ReadAll()
		return err
	}

	raw, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: create pool: %w", tenantID, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := raw.Ping(pingCtx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("tenant %s: smoke connect: %w", tenantID, err)
	}

	logger.For("tenant_pool").With("tenant_id", tenantID).Infof("pool opened, max_conns=%d", cfg.MaxConns)
	return &Pool{Pool: raw, tenantID: tenantID}, nil
}

// Close releases every idle connection and waits for in-flight ones to
// finish, used when draining a retired generation (§4.1 Reload).
func (p *Pool) Close() {
	p.Pool.Close()
	logger.For("tenant_pool").With("tenant_id", p.tenantID).Infof("pool closed")
}

// Stats is a thin projection of pgxpool.Stat for admin/health reporting.
type Stats struct {
	AcquiredConns int32
	IdleConns     int32
	MaxConns      int32
}

func (p *Pool) Stats() Stats {
	s := p.Pool.Stat()
	return Stats{AcquiredConns: s.AcquiredConns(), IdleConns: s.IdleConns(), MaxConns: s.MaxConns()}
}
