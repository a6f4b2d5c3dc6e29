package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

func NewPostgresProfileReplayer(db *pgxpool.Pool, logger logger.Logger) profile.Replayer {
	return &postgresProfileRepo{db: db, logger: logger}
}

const profileColumns = "id, user_id, bio, education, skills, experience, assessment_scores, updated_at"

func (r *postgresProfileRepo) scan(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	var id uuid.UUID
	var educationBytes, skillsBytes, experienceBytes, scoresBytes []byte

	err := row.Scan(&id, &p.UserID, &p.Bio, &educationBytes, &skillsBytes, &experienceBytes, &scoresBytes, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.DBID = &id

	// A corrupt JSONB column degrades to empty instead of failing the whole load.
	if err := json.Unmarshal(educationBytes, &p.Education); err != nil {
		r.logger.Warn("Failed to unmarshal education", zap.String("user_id", p.UserID.String()), zap.Error(err))
		p.Education = []profile.Education{}
	}
	if err := json.Unmarshal(skillsBytes, &p.Skills); err != nil {
		r.logger.Warn("Failed to unmarshal skills", zap.String("user_id", p.UserID.String()), zap.Error(err))
		p.Skills = []profile.Skill{}
	}
	if err := json.Unmarshal(experienceBytes, &p.Experience); err != nil {
		r.logger.Warn("Failed to unmarshal experience", zap.String("user_id", p.UserID.String()), zap.Error(err))
		p.Experience = []profile.Experience{}
	}
	if scoresBytes != nil {
		if err := json.Unmarshal(scoresBytes, &p.AssessmentScores); err != nil {
			r.logger.Warn("Failed to unmarshal assessment_scores", zap.String("user_id", p.UserID.String()), zap.Error(err))
			p.AssessmentScores = nil
		}
	}
	return p, nil
}

func (r *postgresProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	p, err := r.scan(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewRemoteStore("failed to query profile", err)
	}
	return p, nil
}

// Add creates the user's profile row. A second Add for the same user
// overwrites the existing row, so a retried first write is harmless.
func (r *postgresProfileRepo) Add(ctx context.Context, userID uuid.UUID, p *profile.Profile) (*profile.Profile, error) {
	education, skills, experience, scores, err := marshalProfile(p)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO profiles (user_id, bio, education, skills, experience, assessment_scores, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			bio = EXCLUDED.bio,
			education = EXCLUDED.education,
			skills = EXCLUDED.skills,
			experience = EXCLUDED.experience,
			assessment_scores = EXCLUDED.assessment_scores,
			updated_at = NOW()
		RETURNING ` + profileColumns
	created, err := r.scan(r.db.QueryRow(ctx, query, userID, p.Bio, education, skills, experience, scores))
	if err != nil {
		return nil, apperror.NewRemoteStore("failed to upsert profile", err)
	}
	return created, nil
}

func (r *postgresProfileRepo) Update(ctx context.Context, dbID uuid.UUID, patch profile.Patch) (*profile.Profile, error) {
	return r.update(ctx, dbID, patch, nil)
}

func (r *postgresProfileRepo) UpdateIfUnchangedSince(ctx context.Context, dbID uuid.UUID, patch profile.Patch, at time.Time) (*profile.Profile, error) {
	return r.update(ctx, dbID, patch, &at)
}

func (r *postgresProfileRepo) update(ctx context.Context, dbID uuid.UUID, patch profile.Patch, at *time.Time) (*profile.Profile, error) {
	if patch.Empty() {
		return nil, apperror.NewValidation("profile update has no fields")
	}

	var err error
	q := psql.Update("profiles").Set("updated_at", sq.Expr("NOW()"))
	if patch.Bio != nil {
		q = q.Set("bio", *patch.Bio)
	}
	if patch.Education != nil {
		if q, err = setJSON(q, "education", nonNil(*patch.Education)); err != nil {
			return nil, err
		}
	}
	if patch.Skills != nil {
		if q, err = setJSON(q, "skills", nonNil(*patch.Skills)); err != nil {
			return nil, err
		}
	}
	if patch.Experience != nil {
		if q, err = setJSON(q, "experience", nonNil(*patch.Experience)); err != nil {
			return nil, err
		}
	}
	if patch.AssessmentScores != nil {
		b, err := marshalScores(*patch.AssessmentScores)
		if err != nil {
			return nil, err
		}
		q = q.Set("assessment_scores", b)
	}

	sqlStr, args, err := q.Where(sq.Eq{"id": dbID}).
		Where(unchangedSince(at)).
		Suffix("RETURNING " + profileColumns).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile update", err)
	}

	updated, err := r.scan(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, missingOrStale(ctx, r.db, "profiles", "profile", dbID, at)
		}
		return nil, apperror.NewRemoteStore("failed to update profile", err)
	}
	return updated, nil
}

func marshalProfile(p *profile.Profile) (education, skills, experience, scores []byte, err error) {
	if education, err = json.Marshal(nonNil(p.Education)); err != nil {
		return nil, nil, nil, nil, apperror.NewInternal("failed to marshal education", err)
	}
	if skills, err = json.Marshal(nonNil(p.Skills)); err != nil {
		return nil, nil, nil, nil, apperror.NewInternal("failed to marshal skills", err)
	}
	if experience, err = json.Marshal(nonNil(p.Experience)); err != nil {
		return nil, nil, nil, nil, apperror.NewInternal("failed to marshal experience", err)
	}
	if scores, err = marshalScores(p.AssessmentScores); err != nil {
		return nil, nil, nil, nil, err
	}
	return education, skills, experience, scores, nil
}

// marshalScores keeps the absent/empty distinction: nil becomes SQL NULL.
func marshalScores(scores map[string]float64) ([]byte, error) {
	if scores == nil {
		return nil, nil
	}
	b, err := json.Marshal(scores)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal assessment_scores", err)
	}
	return b, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func setJSON(q sq.UpdateBuilder, column string, v any) (sq.UpdateBuilder, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return q, apperror.NewInternal("failed to marshal "+column, err)
	}
	return q.Set(column, b), nil
}
