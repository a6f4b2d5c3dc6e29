package persistence

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/pathwise/internal/domain/course"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type postgresCourseRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresCourseRepo(db *pgxpool.Pool, logger logger.Logger) course.Repository {
	return &postgresCourseRepo{db: db, logger: logger}
}

func NewPostgresCourseReplayer(db *pgxpool.Pool, logger logger.Logger) course.Replayer {
	return &postgresCourseRepo{db: db, logger: logger}
}

var courseColumns = []string{
	"id", "user_id", "course_id", "title", "platform", "url",
	"description", "level", "duration", "completed", "bookmarked_at",
}

func scanBookmark(row pgx.Row) (*course.Bookmark, error) {
	b := &course.Bookmark{}
	var id uuid.UUID
	err := row.Scan(
		&id,
		&b.UserID,
		&b.ID,
		&b.Title,
		&b.Platform,
		&b.URL,
		&b.Description,
		&b.Level,
		&b.Duration,
		&b.Completed,
		&b.BookmarkedAt,
	)
	if err != nil {
		return nil, err
	}
	b.DBID = &id
	return b, nil
}

func (r *postgresCourseRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*course.Bookmark, error) {
	sqlStr, args, err := psql.Select(courseColumns...).
		From("course_bookmarks").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("bookmarked_at ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build bookmark query", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, apperror.NewRemoteStore("failed to query bookmarks", err)
	}
	defer rows.Close()

	bookmarks := make([]*course.Bookmark, 0)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, apperror.NewRemoteStore("failed to scan bookmark row", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewRemoteStore("error iterating bookmark rows", err)
	}
	return bookmarks, nil
}

func (r *postgresCourseRepo) Add(ctx context.Context, userID uuid.UUID, c course.Course) (*course.Bookmark, error) {
	sqlStr, args, err := psql.Insert("course_bookmarks").
		Columns("user_id", "course_id", "title", "platform", "url", "description", "level", "duration").
		Values(userID, c.ID, c.Title, c.Platform, c.URL, c.Description, c.Level, c.Duration).
		Suffix("RETURNING " + joinColumns(courseColumns)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build bookmark insert", err)
	}

	b, err := scanBookmark(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.NewConflict("bookmark", "course_id", c.ID)
		}
		return nil, apperror.NewRemoteStore("failed to insert bookmark", err)
	}
	return b, nil
}

func (r *postgresCourseRepo) Update(ctx context.Context, dbID uuid.UUID, patch course.Patch) (*course.Bookmark, error) {
	return r.update(ctx, dbID, patch, nil)
}

func (r *postgresCourseRepo) UpdateIfUnchangedSince(ctx context.Context, dbID uuid.UUID, patch course.Patch, at time.Time) (*course.Bookmark, error) {
	return r.update(ctx, dbID, patch, &at)
}

func (r *postgresCourseRepo) update(ctx context.Context, dbID uuid.UUID, patch course.Patch, at *time.Time) (*course.Bookmark, error) {
	if patch.Completed == nil {
		return nil, apperror.NewValidation("bookmark update has no fields")
	}
	sqlStr, args, err := psql.Update("course_bookmarks").
		Set("completed", *patch.Completed).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": dbID}).
		Where(unchangedSince(at)).
		Suffix("RETURNING " + joinColumns(courseColumns)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build bookmark update", err)
	}

	b, err := scanBookmark(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, missingOrStale(ctx, r.db, "course_bookmarks", "bookmark", dbID, at)
		}
		return nil, apperror.NewRemoteStore("failed to update bookmark", err)
	}
	return b, nil
}

func (r *postgresCourseRepo) Delete(ctx context.Context, dbID uuid.UUID) error {
	return r.delete(ctx, dbID, nil)
}

func (r *postgresCourseRepo) DeleteIfUnchangedSince(ctx context.Context, dbID uuid.UUID, at time.Time) error {
	return r.delete(ctx, dbID, &at)
}

func (r *postgresCourseRepo) delete(ctx context.Context, dbID uuid.UUID, at *time.Time) error {
	sqlStr, args, err := psql.Delete("course_bookmarks").
		Where(sq.Eq{"id": dbID}).
		Where(unchangedSince(at)).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build bookmark delete", err)
	}
	cmdTag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return apperror.NewRemoteStore("failed to delete bookmark", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return missingOrStale(ctx, r.db, "course_bookmarks", "bookmark", dbID, at)
	}
	return nil
}
