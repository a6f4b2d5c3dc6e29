package store

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/pkg/apperror"
)

// ProfileStore mirrors the user's single profile document.
type ProfileStore struct {
	*base[profile.Profile]
	repo profile.Repository
}

func NewProfileStore(userID uuid.UUID, repo profile.Repository, deps Deps) *ProfileStore {
	empty := profile.Profile{UserID: userID}
	return &ProfileStore{
		base: newBase(userID, service.CollectionProfile, service.KeyProfile, empty,
			func(p profile.Profile) profile.Profile { return *p.Clone() }, deps),
		repo: repo,
	}
}

func (s *ProfileStore) Load(ctx context.Context) {
	s.load(ctx, func(ctx context.Context) (profile.Profile, error) {
		p, err := s.repo.GetByUserID(ctx, s.userID)
		if err != nil {
			return profile.Profile{}, err
		}
		if p == nil {
			return profile.Profile{UserID: s.userID}, nil
		}
		return *p, nil
	}, "Failed to load your profile. Please try again.")
}

func (s *ProfileStore) Profile() profile.Profile {
	return s.Snapshot().Items
}

func (s *ProfileStore) Completion() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return profile.CompletionPercent(&s.data)
}

// Update applies a partial update after validating every nested entry.
func (s *ProfileStore) Update(ctx context.Context, patch profile.Patch) error {
	if patch.Empty() {
		return apperror.NewValidation("Nothing to update")
	}
	if patch.Skills != nil {
		for _, sk := range *patch.Skills {
			if err := sk.Validate(); err != nil {
				return apperror.NewValidation(err.Error())
			}
		}
	}
	if patch.Education != nil {
		for _, e := range *patch.Education {
			if err := e.Validate(); err != nil {
				return apperror.NewValidation(err.Error())
			}
		}
	}
	if patch.Experience != nil {
		exp := make([]profile.Experience, len(*patch.Experience))
		for i, e := range *patch.Experience {
			if err := e.Validate(); err != nil {
				return apperror.NewValidation(err.Error())
			}
			e.TechStack = profile.NormalizeTags(e.TechStack)
			exp[i] = e
		}
		patch.Experience = &exp
	}
	return s.mutate(ctx, func(p *profile.Profile) (profile.Patch, error) {
		p.Apply(patch)
		return patch, nil
	})
}

func (s *ProfileStore) AddSkill(ctx context.Context, sk profile.Skill) error {
	sk.Name = strings.TrimSpace(sk.Name)
	if err := sk.Validate(); err != nil {
		return apperror.NewValidation(err.Error())
	}
	return s.mutate(ctx, func(p *profile.Profile) (profile.Patch, error) {
		for _, existing := range p.Skills {
			if strings.EqualFold(existing.Name, sk.Name) {
				return profile.Patch{}, apperror.NewValidation(profile.ErrDuplicateSkill.Error())
			}
		}
		p.Skills = append(p.Skills, sk)
		return profile.Patch{Skills: &p.Skills}, nil
	})
}

func (s *ProfileStore) RemoveSkill(ctx context.Context, name string) error {
	return s.mutate(ctx, func(p *profile.Profile) (profile.Patch, error) {
		for i, existing := range p.Skills {
			if strings.EqualFold(existing.Name, name) {
				p.Skills = append(p.Skills[:i], p.Skills[i+1:]...)
				return profile.Patch{Skills: &p.Skills}, nil
			}
		}
		return profile.Patch{}, apperror.NewNotFound("skill", name)
	})
}

func (s *ProfileStore) AddEducation(ctx context.Context, e profile.Education) error {
	if err := e.Validate(); err != nil {
		return apperror.NewValidation(err.Error())
	}
	return s.mutate(ctx, func(p *profile.Profile) (profile.Patch, error) {
		p.Education = append(p.Education, e)
		return profile.Patch{Education: &p.Education}, nil
	})
}

func (s *ProfileStore) RemoveEducation(ctx context.Context, index int) error {
	return s.mutate(ctx, func(p *profile.Profile) (profile.Patch, error) {
		if index < 0 || index >= len(p.Education) {
			return profile.Patch{}, apperror.NewValidation("Education index out of range")
		}
		p.Education = append(p.Education[:index], p.Education[index+1:]...)
		return profile.Patch{Education: &p.Education}, nil
	})
}

// AddExperience stores an experience entry. A non-empty rawTechStack
// ("React, Node.js") replaces e.TechStack; tags are trimmed and deduplicated.
func (s *ProfileStore) AddExperience(ctx context.Context, e profile.Experience, rawTechStack string) error {
	if err := e.Validate(); err != nil {
		return apperror.NewValidation(err.Error())
	}
	if strings.TrimSpace(rawTechStack) != "" {
		e.TechStack = profile.ParseTechStack(rawTechStack)
	} else {
		e.TechStack = profile.NormalizeTags(e.TechStack)
	}
	return s.mutate(ctx, func(p *profile.Profile) (profile.Patch, error) {
		p.Experience = append(p.Experience, e)
		return profile.Patch{Experience: &p.Experience}, nil
	})
}

func (s *ProfileStore) RemoveExperience(ctx context.Context, index int) error {
	return s.mutate(ctx, func(p *profile.Profile) (profile.Patch, error) {
		if index < 0 || index >= len(p.Experience) {
			return profile.Patch{}, apperror.NewValidation("Experience index out of range")
		}
		p.Experience = append(p.Experience[:index], p.Experience[index+1:]...)
		return profile.Patch{Experience: &p.Experience}, nil
	})
}

func (s *ProfileStore) SetAssessmentScores(ctx context.Context, scores map[string]float64) error {
	if scores == nil {
		scores = map[string]float64{}
	}
	for category := range scores {
		if strings.TrimSpace(category) == "" {
			return apperror.NewValidation("Assessment category must not be empty")
		}
	}
	return s.mutate(ctx, func(p *profile.Profile) (profile.Patch, error) {
		p.AssessmentScores = scores
		return profile.Patch{AssessmentScores: &p.AssessmentScores}, nil
	})
}

// mutate edits a copy of the profile, swaps it in, flushes the cache and
// then persists: the first write creates the remote row, later ones patch it.
func (s *ProfileStore) mutate(ctx context.Context, edit func(p *profile.Profile) (profile.Patch, error)) error {
	s.mu.Lock()
	next := s.data.Clone()
	patch, err := edit(next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.data = *next
	s.errMsg = ""
	dbID := s.data.DBID
	var full *profile.Profile
	if dbID == nil {
		full = s.data.Clone()
	}
	s.mu.Unlock()

	s.flush(ctx)

	if dbID == nil {
		s.create(ctx, full)
		return nil
	}

	callCtx, cancel := s.callCtx(ctx)
	_, err = s.repo.Update(callCtx, *dbID, patch)
	cancel()
	if err != nil {
		s.setError("Failed to save your profile. Please try again.", err)
		s.markPending(ctx, s.userID.String(), service.OpUpdate, dbID, patch, err.Error())
	}
	return nil
}

func (s *ProfileStore) create(ctx context.Context, p *profile.Profile) {
	callCtx, cancel := s.callCtx(ctx)
	created, err := s.repo.Add(callCtx, s.userID, p)
	cancel()
	if err != nil {
		s.setError("Failed to save your profile. Please try again.", err)
		s.markPending(ctx, s.userID.String(), service.OpUpdate, nil, p.FullPatch(), "profile row not created")
		return
	}

	s.mu.Lock()
	if s.data.DBID == nil {
		s.data.DBID = created.DBID
		s.data.UpdatedAt = created.UpdatedAt
	}
	s.mu.Unlock()
	s.flush(ctx)
}
