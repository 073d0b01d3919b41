// Package postgres implements the PostgreSQL Agent (§4.4): schema
// introspection, NL→SQL generation, a safety gate, bounded execution, and
// tabular rendering.
package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"golang.org/x/sync/singleflight"

	"github.com/kiosk404/hivegate/internal/gateway/metrics"
	"github.com/kiosk404/hivegate/internal/gateway/store/boltstore"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
	"github.com/kiosk404/hivegate/internal/pkg/json"
)

// durableSnapshotTTL bounds how long a bolt-persisted snapshot is trusted
// after a restart before a live introspection is forced again.
const durableSnapshotTTL = time.Hour

// Column describes one table column (§3 SchemaSnapshot).
type Column struct {
	Name     string
	DataType string
	Nullable bool
}

// Table describes one table, its columns, and row-count estimate.
type Table struct {
	Schema       string
	Name         string
	Columns      []Column
	PrimaryKey   []string
	RowEstimate  int64
}

// ForeignKey is one edge between two tables.
type ForeignKey struct {
	FromTable, FromColumn string
	ToTable, ToColumn     string
}

// SchemaSnapshot is the introspected shape of a tenant's database (§3).
type SchemaSnapshot struct {
	Tables      []Table
	ForeignKeys []ForeignKey
	CapturedAt  time.Time
}

// AllowedSchemas returns the set of non-system schema names present in the
// snapshot, the default allow-list for the safety gate (§4.4 step 3).
func (s *SchemaSnapshot) AllowedSchemas() map[string]bool {
	out := map[string]bool{}
	for _, t := range s.Tables {
		out[t.Schema] = true
	}
	return out
}

var systemSchemas = map[string]bool{
	"pg_catalog":         true,
	"information_schema": true,
	"pg_toast":           true,
}

func systemSchemaNames() []string {
	names := make([]string, 0, len(systemSchemas))
	for name := range systemSchemas {
		names = append(names, name)
	}
	return names
}

// Introspector captures a SchemaSnapshot by querying information_schema and
// pg_stat_user_tables, with single-flight de-duplication so only one introspection is
// in flight per tenant at a time (§5).
type Introspector struct {
	group singleflight.Group
	store *boltstore.Store
}

func NewIntrospector() *Introspector { return &Introspector{} }

// NewIntrospectorWithStore returns an Introspector whose cache misses fall
// back to a bolt-persisted snapshot before forcing a live introspection,
// so a gateway restart doesn't stall a tenant's first query on
// information_schema round trips.
func NewIntrospectorWithStore(store *boltstore.Store) *Introspector {
	return &Introspector{store: store}
}

// Acquire returns the cached snapshot if fresh, otherwise introspects once
// (collapsing concurrent callers for the same tenant via singleflight) and
// populates the cache.
func (in *Introspector) Acquire(ctx context.Context, pool *tenant.Pool, rt *tenant.TenantRuntime) (*SchemaSnapshot, error) {
	if cached, ok := rt.SchemaCache().Get(); ok {
		if snap, ok := cached.(*SchemaSnapshot); ok {
			observeSnapshotAge(rt.Config.ID, snap)
			return snap, nil
		}
	}

	v, err, _ := in.group.Do(rt.Config.ID, func() (any, error) {
		if cached, ok := rt.SchemaCache().Get(); ok {
			if snap, ok := cached.(*SchemaSnapshot); ok {
				return snap, nil
			}
		}
		if snap, ok := in.loadDurable(rt.Config.ID); ok {
			rt.SchemaCache().Set(snap)
			return snap, nil
		}
		snap, err := introspect(ctx, pool)
		if err != nil {
			return nil, err
		}
		rt.SchemaCache().Set(snap)
		in.saveDurable(rt.Config.ID, snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	snap := v.(*SchemaSnapshot)
	observeSnapshotAge(rt.Config.ID, snap)
	return snap, nil
}

func observeSnapshotAge(tenantID string, snap *SchemaSnapshot) {
	metrics.SchemaSnapshotAgeSeconds.WithLabelValues(tenantID).Set(time.Since(snap.CapturedAt).Seconds())
}

// loadDurable returns a bolt-persisted snapshot for tenantID if the store
// is configured, present, and within durableSnapshotTTL.
func (in *Introspector) loadDurable(tenantID string) (*SchemaSnapshot, bool) {
	if in.store == nil {
		return nil, false
	}
	data, ok, err := in.store.GetSchemaSnapshot(tenantID)
	if err != nil || !ok {
		return nil, false
	}
	var snap SchemaSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	if time.Since(snap.CapturedAt) > durableSnapshotTTL {
		return nil, false
	}
	return &snap, true
}

// saveDurable persists snap for tenantID. A write failure is logged and
// swallowed: the durable cache is an optimization, not a correctness
// requirement.
func (in *Introspector) saveDurable(tenantID string, snap *SchemaSnapshot) {
	if in.store == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = in.store.PutSchemaSnapshot(tenantID, data)
}

type tableRow struct {
	TableSchema string `db:"table_schema"`
	TableName   string `db:"table_name"`
}

type columnRow struct {
	TableSchema string `db:"table_schema"`
	TableName   string `db:"table_name"`
	ColumnName  string `db:"column_name"`
	DataType    string `db:"data_type"`
	IsNullable  string `db:"is_nullable"`
}

type statRow struct {
	SchemaName string `db:"schemaname"`
	TableName  string `db:"tablename"`
	RowEstimate float64 `db:"n_live_tup"`
}

func introspect(ctx context.Context, pool *tenant.Pool) (*SchemaSnapshot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	var tables []tableRow
	tq, targs, err := psql.Select("table_schema", "table_name").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_type": "BASE TABLE"}).
		Where(squirrel.NotEq{"table_schema": systemSchemaNames()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("schema introspection: build tables query: %w", err)
	}
	if err := pgxscan.Select(ctx, pool, &tables, tq, targs...); err != nil {
		return nil, fmt.Errorf("schema introspection: tables: %w", err)
	}

	var columns []columnRow
	cq, cargs, err := psql.Select("table_schema", "table_name", "column_name", "data_type", "is_nullable").
		From("information_schema.columns").
		Where(squirrel.NotEq{"table_schema": systemSchemaNames()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("schema introspection: build columns query: %w", err)
	}
	if err := pgxscan.Select(ctx, pool, &columns, cq, cargs...); err != nil {
		return nil, fmt.Errorf("schema introspection: columns: %w", err)
	}

	var stats []statRow
	sq, sargs, err := psql.Select("schemaname", "relname AS tablename", "n_live_tup").From("pg_stat_user_tables").ToSql()
	if err != nil {
		return nil, fmt.Errorf("schema introspection: build stats query: %w", err)
	}
	// Row-count estimates are best-effort: pg_stat_user_tables may be empty
	// right after a restore, in which case estimates default to zero.
	_ = pgxscan.Select(ctx, pool, &stats, sq, sargs...)

	statByTable := map[string]int64{}
	for _, s := range stats {
		statByTable[s.SchemaName+"."+s.TableName] = int64(s.RowEstimate)
	}

	columnsByTable := map[string][]Column{}
	for _, c := range columns {
		key := c.TableSchema + "." + c.TableName
		columnsByTable[key] = append(columnsByTable[key], Column{
			Name:     c.ColumnName,
			DataType: c.DataType,
			Nullable: c.IsNullable == "YES",
		})
	}

	out := &SchemaSnapshot{CapturedAt: time.Now()}
	for _, t := range tables {
		key := t.TableSchema + "." + t.TableName
		out.Tables = append(out.Tables, Table{
			Schema:      t.TableSchema,
			Name:        t.TableName,
			Columns:     columnsByTable[key],
			RowEstimate: statByTable[key],
		})
	}
	sort.Slice(out.Tables, func(i, j int) bool { return out.Tables[i].Name < out.Tables[j].Name })
	return out, nil
}

// defaultSchemaBudgetBytes caps the textual summary handed to the LLM
// (§4.4 step 1, default ~4 KB).
const defaultSchemaBudgetBytes = 4096

// Summarize builds a compact textual summary of the snapshot, prioritizing
// tables whose name or column names overlap with the question's tokens
// (lower-cased, token-split, stable tie-break by table name), capped at
// budgetBytes.
func (s *SchemaSnapshot) Summarize(question string, budgetBytes int) string {
	if budgetBytes <= 0 {
		budgetBytes = defaultSchemaBudgetBytes
	}
	tokens := tokenizeQuestion(question)

	type scored struct {
		table Table
		score int
	}
	ranked := make([]scored, 0, len(s.Tables))
	for _, t := range s.Tables {
		ranked = append(ranked, scored{table: t, score: relevanceScore(t, tokens)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].table.Name < ranked[j].table.Name
	})

	var sb strings.Builder
	for _, r := range ranked {
		var tsb strings.Builder
		fmt.Fprintf(&tsb, "TABLE %s.%s (~%d rows):\n", r.table.Schema, r.table.Name, r.table.RowEstimate)
		for _, c := range r.table.Columns {
			nullable := "NOT NULL"
			if c.Nullable {
				nullable = "NULL"
			}
			fmt.Fprintf(&tsb, "  %s %s %s\n", c.Name, c.DataType, nullable)
		}
		if sb.Len()+tsb.Len() > budgetBytes {
			break
		}
		sb.WriteString(tsb.String())
	}
	return sb.String()
}

func tokenizeQuestion(q string) map[string]bool {
	tokens := map[string]bool{}
	for _, f := range strings.Fields(strings.ToLower(q)) {
		tokens[strings.Trim(f, ".,?!;:()")] = true
	}
	return tokens
}

func relevanceScore(t Table, tokens map[string]bool) int {
	score := 0
	if tokens[strings.ToLower(t.Name)] {
		score += 10
	}
	for _, c := range t.Columns {
		if tokens[strings.ToLower(c.Name)] {
			score += 2
		}
	}
	return score
}
