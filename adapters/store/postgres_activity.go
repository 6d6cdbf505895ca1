package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/walletpulse/gatekeeper/core"
	"github.com/walletpulse/gatekeeper/ports"
)

// PgxPool is a minimal abstraction over a Postgres connection pool,
// implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresActivityStore is a PostgreSQL implementation of the ActivityStore
// interface. The activity_log table is insert-only; nothing in this adapter
// issues UPDATE or DELETE.
type PostgresActivityStore struct {
	pool PgxPool
}

// NewPostgresActivityStore creates a new Postgres activity store.
func NewPostgresActivityStore(pool PgxPool) ports.ActivityStore {
	return &PostgresActivityStore{pool: pool}
}

// NewPostgresPool creates a connection pool for the given DSN.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, dsn)
}

// Append persists the entry and returns its ID.
func (s *PostgresActivityStore) Append(ctx context.Context, entry *core.ActivityEntry) (string, error) {
	if !entry.Type.Valid() {
		return "", core.ErrInvalidActivityType
	}

	id := entry.ID
	if id == "" {
		id = uuid.New().String()
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var details []byte
	if len(entry.Details) > 0 {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return "", fmt.Errorf("failed to encode details: %w", err)
		}
	}

	const q = `
INSERT INTO activity_log (id, activity_type, ts, user_id, wallet_address, session_id, target_id, details)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.pool.Exec(ctx, q, id, string(entry.Type), ts,
		nullable(entry.UserID), nullable(entry.WalletAddress),
		nullable(entry.SessionID), nullable(entry.TargetID), details)
	if err != nil {
		return "", fmt.Errorf("failed to append activity: %w", core.ErrStorageUnavailable)
	}

	return id, nil
}

// Query returns matching entries ordered by timestamp descending.
func (s *PostgresActivityStore) Query(ctx context.Context, filter core.ActivityFilter) ([]core.ActivityEntry, error) {
	var b strings.Builder
	b.WriteString(`
SELECT id, activity_type, ts, user_id, wallet_address, session_id, target_id, details
FROM activity_log`)

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.WalletAddress != "" {
		conds = append(conds, "wallet_address = "+arg(filter.WalletAddress))
	}
	if filter.UserID != "" {
		conds = append(conds, "user_id = "+arg(filter.UserID))
	}
	if filter.Type != "" {
		conds = append(conds, "activity_type = "+arg(string(filter.Type)))
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "ts >= "+arg(filter.Since))
	}
	if !filter.Until.IsZero() {
		conds = append(conds, "ts <= "+arg(filter.Until))
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	b.WriteString(" ORDER BY ts DESC")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + arg(filter.Limit))
	}

	rows, err := s.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", core.ErrStorageUnavailable)
	}
	defer rows.Close()

	var out []core.ActivityEntry
	for rows.Next() {
		var (
			e       core.ActivityEntry
			typ     string
			userID  *string
			wallet  *string
			session *string
			target  *string
			details []byte
		)
		if err := rows.Scan(&e.ID, &typ, &e.Timestamp, &userID, &wallet, &session, &target, &details); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		e.Type = core.ActivityType(typ)
		e.UserID = deref(userID)
		e.WalletAddress = deref(wallet)
		e.SessionID = deref(session)
		e.TargetID = deref(target)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("failed to decode details: %w", err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity rows: %w", core.ErrStorageUnavailable)
	}

	return out, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
