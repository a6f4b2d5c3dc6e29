package service

import (
	"context"

	"github.com/khoahotran/pathwise/internal/domain/recommendation"
)

// RecommendationGateway asks an AI provider for career pathway recommendations.
// It returns the provider's raw text, expected to hold a JSON document.
type RecommendationGateway interface {
	GenerateRecommendations(ctx context.Context, profile *recommendation.ProfileInput) (string, error)
}
