package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/kiosk404/hivegate/internal/gateway/metrics"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
	"github.com/kiosk404/hivegate/internal/gateway/tracing"
)

// defaultMaxRows is the result-set hard cap (§4.4 step 4).
const defaultMaxRows = 500

const (
	statementTimeout            = 30 * time.Second
	idleInTransactionTimeout    = 60 * time.Second
	lockTimeout                 = 2 * time.Second
)

// ResultSet is the driver-agnostic shape of an executed query's rows.
type ResultSet struct {
	Columns []string
	Rows    []map[string]any
}

var explicitLimitPattern = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\b`)

// injectLimit ensures the statement carries a LIMIT no greater than maxRows:
// appending one if absent, and rewriting an explicit LIMIT down to maxRows
// if the LLM's own limit exceeds it (§4.4 step 4, §8 rows_returned ≤
// max_rows).
func injectLimit(sql string, maxRows int) string {
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	if loc := explicitLimitPattern.FindStringSubmatchIndex(sql); loc != nil {
		n, err := strconv.Atoi(sql[loc[2]:loc[3]])
		if err == nil && n <= maxRows {
			return sql
		}
		return sql[:loc[2]] + strconv.Itoa(maxRows) + sql[loc[3]:]
	}
	return strings.TrimRight(strings.TrimRight(sql, ";"), " \n\t") + fmt.Sprintf(" LIMIT %d", maxRows)
}

// Execute runs a safety-gate-approved query on a connection from the
// tenant's pool under a read-only transaction with the bounds from §4.4
// step 4: statement_timeout 30s, idle_in_transaction_session_timeout 60s,
// lock_timeout 2s, and a hard row cap via LIMIT injection.
func Execute(ctx context.Context, registry *tenant.Registry, rt *tenant.TenantRuntime, q GeneratedQuery, maxRows int) (result *ResultSet, err error) {
	ctx, span := tracing.StartPostgresQuery(ctx, rt.Config.ID, maxRows)
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	pool, err := registry.PoolFor(ctx, rt)
	if err != nil {
		return nil, fmt.Errorf("postgres agent: acquire pool: %w", err)
	}
	metrics.PoolConnectionsInUse.WithLabelValues(rt.Config.ID).Set(float64(pool.Stats().AcquiredConns))

	execCtx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	conn, err := pool.Acquire(execCtx)
	if err != nil {
		return nil, fmt.Errorf("postgres agent: acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(execCtx, fmt.Sprintf("SET idle_in_transaction_session_timeout = %d", idleInTransactionTimeout.Milliseconds())); err != nil {
		return nil, fmt.Errorf("postgres agent: set idle timeout: %w", err)
	}

	tx, err := conn.BeginTx(execCtx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("postgres agent: begin read-only tx: %w", err)
	}
	defer func() {
		// rollback with a background context so a cancelled parent still
		// releases the connection's transaction state cleanly.
		_ = tx.Rollback(context.Background())
	}()

	if _, err := tx.Exec(execCtx, fmt.Sprintf("SET LOCAL lock_timeout = %d", lockTimeout.Milliseconds())); err != nil {
		return nil, fmt.Errorf("postgres agent: set lock_timeout: %w", err)
	}

	bounded := injectLimit(q.SQL, maxRows)

	rows, err := tx.Query(execCtx, bounded, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("postgres agent: execute: %w", err)
	}

	var columns []string
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, string(fd.Name))
	}

	var rowData []map[string]any
	if err := pgxscan.ScanAll(&rowData, rows); err != nil {
		return nil, fmt.Errorf("postgres agent: scan results: %w", err)
	}

	if err := tx.Commit(execCtx); err != nil {
		return nil, fmt.Errorf("postgres agent: commit read-only tx: %w", err)
	}

	metrics.SQLExecutedTotal.Inc()
	return &ResultSet{Columns: columns, Rows: rowData}, nil
}
