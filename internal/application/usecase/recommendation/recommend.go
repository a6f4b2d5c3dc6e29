package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/internal/domain/recommendation"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

const (
	MsgProfileRequired     = "Profile data is required"
	MsgUserIDRequired      = "Profile must include userId"
	MsgInsufficientProfile = "Profile must include at least one of: skills, education, experience, or assessmentScores"
	MsgParseFailed         = "Failed to parse AI response. Please try again."
	MsgInvalidFormat       = "Invalid response format from AI"
	MsgGenerationFailed    = "Failed to generate recommendations. Please try again later."
)

var tracer = otel.Tracer("recommendation_usecase")

type RecommendUseCase struct {
	gateway service.RecommendationGateway
	timeout time.Duration
	logger  logger.Logger
}

// NewRecommendUseCase bounds every gateway call by timeout; zero disables it.
func NewRecommendUseCase(gw service.RecommendationGateway, timeout time.Duration, log logger.Logger) *RecommendUseCase {
	return &RecommendUseCase{gateway: gw, timeout: timeout, logger: log.Named("recommend")}
}

type RecommendInput struct {
	Profile *recommendation.ProfileInput
}

type RecommendOutput struct {
	Recommendations []recommendation.Recommendation `json:"recommendations"`
}

// Execute validates the profile, makes exactly one gateway call and checks
// the shape of the answer. Validation failures never reach the gateway.
func (uc *RecommendUseCase) Execute(ctx context.Context, input RecommendInput) (*RecommendOutput, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()

	if err := validate(input.Profile); err != nil {
		span.RecordError(err)
		return nil, err
	}
	l := uc.logger.With(zap.String("user_id", input.Profile.UserID))
	span.SetAttributes(attribute.String("user_id", input.Profile.UserID))

	raw, err := uc.generate(ctx, input.Profile)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, apperror.ErrConfiguration) {
			l.Error("Recommendation provider is not configured", err)
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("Recommendation gateway timed out", err, zap.Duration("timeout", uc.timeout))
			return nil, apperror.NewAppError(apperror.ErrInternal, MsgGenerationFailed, "gateway call timed out", err)
		}
		l.Error("Recommendation gateway call failed", err)
		return nil, apperror.NewAppError(apperror.ErrInternal, MsgGenerationFailed, "gateway call failed", err)
	}

	recs, err := parseRecommendations(raw)
	if err != nil {
		l.Warn("Rejected AI response", zap.String("raw_response", raw), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}

	incomplete := 0
	for _, r := range recs {
		if !r.Complete() {
			incomplete++
		}
	}
	if incomplete > 0 {
		l.Warn("AI returned recommendations with missing fields", zap.Int("incomplete", incomplete), zap.Int("total", len(recs)))
	}
	l.Info("Recommendations generated", zap.Int("count", len(recs)))
	span.SetAttributes(attribute.Int("recommendations", len(recs)))

	return &RecommendOutput{Recommendations: recs}, nil
}

func (uc *RecommendUseCase) generate(ctx context.Context, p *recommendation.ProfileInput) (string, error) {
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}
	return uc.gateway.GenerateRecommendations(ctx, p)
}

func validate(p *recommendation.ProfileInput) error {
	if p == nil {
		return apperror.NewValidation(MsgProfileRequired)
	}
	if strings.TrimSpace(p.UserID) == "" {
		return apperror.NewValidation(MsgUserIDRequired)
	}
	if !p.Sufficient() {
		return apperror.NewValidation(MsgInsufficientProfile)
	}
	return nil
}

// parseRecommendations accepts a JSON object, optionally wrapped in a
// markdown code fence, whose "recommendations" field is an array of objects.
// Items are not re-validated field by field.
func parseRecommendations(raw string) ([]recommendation.Recommendation, error) {
	var doc any
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &doc); err != nil {
		return nil, apperror.NewGatewayResponse(MsgParseFailed, "AI response is not valid JSON", err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, apperror.NewGatewayResponse(MsgInvalidFormat, "AI response is not a JSON object", nil)
	}
	items, ok := obj["recommendations"].([]any)
	if !ok {
		return nil, apperror.NewGatewayResponse(MsgInvalidFormat, "recommendations is missing or not an array", nil)
	}

	recs := make([]recommendation.Recommendation, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, apperror.NewGatewayResponse(MsgInvalidFormat, "recommendation item is not an object", nil)
		}
		recs = append(recs, recommendation.Recommendation(obj))
	}
	return recs, nil
}

// CleanJSON strips surrounding whitespace and ``` / ```json fences.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

// ExecuteForUser recommends on the caller's stored profile and career goals.
func (uc *RecommendUseCase) ExecuteForUser(ctx context.Context, p *profile.Profile, careerGoals []string, interests ...string) (*RecommendOutput, error) {
	if p == nil {
		return uc.Execute(ctx, RecommendInput{})
	}
	in := recommendation.FromProfile(p, careerGoals)
	in.Interests = interests
	return uc.Execute(ctx, RecommendInput{Profile: in})
}
