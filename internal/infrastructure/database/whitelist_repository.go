package database

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/reservable/booking-risk-engine/internal/domain/errors"
	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/cache"
)

const activeWhitelistCacheKey = cache.WhitelistPrefix + "active"

// WhitelistRepository stores whitelist entries in Postgres with a short-TTL
// cache in front. The active set is read on every evaluation; one minute of
// staleness after an admin change is acceptable.
type WhitelistRepository struct {
	pool   *pgxpool.Pool
	cache  cache.Cache
	logger *zap.Logger
}

// NewWhitelistRepository creates a whitelist repository. cache may be nil;
// every read then hits Postgres.
func NewWhitelistRepository(pool *pgxpool.Pool, c cache.Cache, logger *zap.Logger) *WhitelistRepository {
	return &WhitelistRepository{pool: pool, cache: c, logger: logger}
}

// ActiveEntries returns all active whitelist entries
func (r *WhitelistRepository) ActiveEntries(ctx context.Context) ([]risk.WhitelistEntry, error) {
	if r.cache != nil {
		var cached []risk.WhitelistEntry
		if err := r.cache.GetJSON(ctx, activeWhitelistCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	query := `
		SELECT id, type, value, notes, created_by, created_at, active
		FROM whitelist_entries
		WHERE active`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying whitelist entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanWhitelistRows(rows)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetJSON(ctx, activeWhitelistCacheKey, entries, cache.WhitelistCacheTTL); err != nil {
			r.logger.Warn("whitelist cache write failed", zap.Error(err))
		}
	}

	return entries, nil
}

// List returns all whitelist entries, active and not
func (r *WhitelistRepository) List(ctx context.Context) ([]risk.WhitelistEntry, error) {
	query := `
		SELECT id, type, value, notes, created_by, created_at, active
		FROM whitelist_entries
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying whitelist entries: %w", err)
	}
	defer rows.Close()

	return scanWhitelistRows(rows)
}

// Create inserts a new whitelist entry. Values are stored lowercased so
// matching stays case-insensitive.
func (r *WhitelistRepository) Create(ctx context.Context, entry *risk.WhitelistEntry) error {
	entry.Value = strings.ToLower(strings.TrimSpace(entry.Value))

	query := `
		INSERT INTO whitelist_entries (id, type, value, notes, created_by, created_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, string(entry.Type), entry.Value, entry.Notes,
		entry.CreatedBy, entry.CreatedAt, entry.Active)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errors.ErrDuplicateWhitelist
		}
		return fmt.Errorf("inserting whitelist entry: %w", err)
	}

	r.invalidate(ctx)
	return nil
}

// Deactivate soft-deletes a whitelist entry
func (r *WhitelistRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE whitelist_entries SET active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivating whitelist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrWhitelistNotFound
	}

	r.invalidate(ctx)
	return nil
}

func (r *WhitelistRepository) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, activeWhitelistCacheKey); err != nil {
		r.logger.Warn("whitelist cache invalidation failed", zap.Error(err))
	}
}

func scanWhitelistRows(rows pgx.Rows) ([]risk.WhitelistEntry, error) {
	var entries []risk.WhitelistEntry
	for rows.Next() {
		var (
			entry     risk.WhitelistEntry
			entryType string
		)
		if err := rows.Scan(&entry.ID, &entryType, &entry.Value, &entry.Notes,
			&entry.CreatedBy, &entry.CreatedAt, &entry.Active); err != nil {
			return nil, fmt.Errorf("scanning whitelist entry: %w", err)
		}
		entry.Type = risk.WhitelistType(entryType)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
