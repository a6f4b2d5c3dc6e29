package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type postgresPathwayRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresPathwayRepo(db *pgxpool.Pool, logger logger.Logger) pathway.Repository {
	return &postgresPathwayRepo{db: db, logger: logger}
}

func NewPostgresPathwayReplayer(db *pgxpool.Pool, logger logger.Logger) pathway.Replayer {
	return &postgresPathwayRepo{db: db, logger: logger}
}

var pathwayColumns = []string{"id", "user_id", "pathway_id", "completed", "completed_at"}

func scanPathwayRecord(row pgx.Row) (pathway.Record, error) {
	var rec pathway.Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.PathwayID, &rec.Completed, &rec.CompletedAt)
	return rec, err
}

// decode maps one row, turning a row that is not a valid membership into a
// remote store error.
func (r *postgresPathwayRepo) decode(row pgx.Row) (*pathway.Membership, error) {
	rec, err := scanPathwayRecord(row)
	if err != nil {
		return nil, err
	}
	m, err := pathway.Decode(rec)
	if err != nil {
		return nil, apperror.NewRemoteStore("malformed pathway row", err)
	}
	return m, nil
}

// GetByUserID skips rows that fail to decode so one bad row cannot hide the
// rest of the user's pathways.
func (r *postgresPathwayRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*pathway.Membership, error) {
	sqlStr, args, err := psql.Select(pathwayColumns...).
		From("pathway_memberships").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build pathway query", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, apperror.NewRemoteStore("failed to query pathways", err)
	}
	defer rows.Close()

	memberships := make([]*pathway.Membership, 0)
	for rows.Next() {
		rec, err := scanPathwayRecord(rows)
		if err != nil {
			return nil, apperror.NewRemoteStore("failed to scan pathway row", err)
		}
		m, err := pathway.Decode(rec)
		if err != nil {
			r.logger.Warn("Skipping pathway row", zap.String("row_id", rec.ID.String()), zap.Error(err))
			continue
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewRemoteStore("error iterating pathway rows", err)
	}
	return memberships, nil
}

func (r *postgresPathwayRepo) Add(ctx context.Context, userID uuid.UUID, m pathway.Membership) (*pathway.Membership, error) {
	if _, ok := pathway.Lookup(m.PathwayID); !ok {
		return nil, apperror.NewValidation("unknown pathway")
	}
	sqlStr, args, err := psql.Insert("pathway_memberships").
		Columns("user_id", "pathway_id", "completed", "completed_at").
		Values(userID, m.PathwayID, m.Completed, m.CompletedAt).
		Suffix("RETURNING " + joinColumns(pathwayColumns)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build pathway insert", err)
	}

	created, err := r.decode(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.NewConflict("pathway", "pathway_id", m.PathwayID)
		}
		if errors.Is(err, apperror.ErrRemoteStore) {
			return nil, err
		}
		return nil, apperror.NewRemoteStore("failed to insert pathway", err)
	}
	return created, nil
}

func (r *postgresPathwayRepo) Update(ctx context.Context, dbID uuid.UUID, patch pathway.Patch) (*pathway.Membership, error) {
	return r.update(ctx, dbID, patch, nil)
}

func (r *postgresPathwayRepo) UpdateIfUnchangedSince(ctx context.Context, dbID uuid.UUID, patch pathway.Patch, at time.Time) (*pathway.Membership, error) {
	return r.update(ctx, dbID, patch, &at)
}

func (r *postgresPathwayRepo) update(ctx context.Context, dbID uuid.UUID, patch pathway.Patch, at *time.Time) (*pathway.Membership, error) {
	if patch.Completed == nil && patch.CompletedAt == nil {
		return nil, apperror.NewValidation("pathway update has no fields")
	}

	q := psql.Update("pathway_memberships").Set("updated_at", sq.Expr("NOW()"))
	if patch.Completed != nil {
		q = q.Set("completed", *patch.Completed)
		if !*patch.Completed {
			q = q.Set("completed_at", nil)
		}
	}
	if patch.CompletedAt != nil {
		q = q.Set("completed_at", *patch.CompletedAt)
	}
	sqlStr, args, err := q.Where(sq.Eq{"id": dbID}).
		Where(unchangedSince(at)).
		Suffix("RETURNING " + joinColumns(pathwayColumns)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build pathway update", err)
	}

	updated, err := r.decode(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, missingOrStale(ctx, r.db, "pathway_memberships", "pathway", dbID, at)
		}
		if errors.Is(err, apperror.ErrRemoteStore) {
			return nil, err
		}
		return nil, apperror.NewRemoteStore("failed to update pathway", err)
	}
	return updated, nil
}

func (r *postgresPathwayRepo) Delete(ctx context.Context, dbID uuid.UUID) error {
	return r.delete(ctx, dbID, nil)
}

func (r *postgresPathwayRepo) DeleteIfUnchangedSince(ctx context.Context, dbID uuid.UUID, at time.Time) error {
	return r.delete(ctx, dbID, &at)
}

func (r *postgresPathwayRepo) delete(ctx context.Context, dbID uuid.UUID, at *time.Time) error {
	sqlStr, args, err := psql.Delete("pathway_memberships").
		Where(sq.Eq{"id": dbID}).
		Where(unchangedSince(at)).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build pathway delete", err)
	}
	cmdTag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return apperror.NewRemoteStore("failed to delete pathway", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return missingOrStale(ctx, r.db, "pathway_memberships", "pathway", dbID, at)
	}
	return nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
