package persistence

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const pgUniqueViolation = "23505"

func NewPostgresPool(cfg config.Config, log logger.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("do not create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database failed: %w", err)
	}

	log.Info("Connect PostgreSQL successfully.")
	return pool, nil
}

func isUniqueViolation(err error) bool {
	pgErr, ok := err.(*pgconn.PgError)
	return ok && pgErr.Code == pgUniqueViolation
}

// unchangedSince narrows a write to rows not written after at.
func unchangedSince(at *time.Time) sq.Sqlizer {
	if at == nil {
		return sq.And{}
	}
	return sq.LtOrEq{"updated_at": *at}
}

// missingOrStale explains why a conditional write touched no row: either the
// row is gone, or it was written after at.
func missingOrStale(ctx context.Context, db *pgxpool.Pool, table, resource string, dbID uuid.UUID, at *time.Time) error {
	if at == nil {
		return apperror.NewNotFound(resource, dbID.String())
	}
	sqlStr, args, err := psql.Select("1").From(table).Where(sq.Eq{"id": dbID}).
		Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build existence query", err)
	}
	var exists bool
	if err := db.QueryRow(ctx, sqlStr, args...).Scan(&exists); err != nil {
		return apperror.NewRemoteStore("failed to check "+resource+" row", err)
	}
	if !exists {
		return apperror.NewNotFound(resource, dbID.String())
	}
	return apperror.NewAppError(apperror.ErrConflict, resource+" changed after the failed write",
		fmt.Sprintf("id=%s at=%s", dbID, at.Format(time.RFC3339Nano)), nil)
}
