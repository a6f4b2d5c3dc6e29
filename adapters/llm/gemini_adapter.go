package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/internal/domain/recommendation"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

const defaultGeminiModel = "gemini-2.5-flash"

type geminiAdapter struct {
	apiKey string
	model  string
	log    logger.Logger

	once      sync.Once
	client    *genai.Client
	clientErr error
}

// NewGeminiAdapter builds the client on first use so a missing or bad key
// surfaces as a per-request configuration error.
func NewGeminiAdapter(cfg config.Config, log logger.Logger) service.RecommendationGateway {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultGeminiModel
	}
	log.Info("Gemini recommendation adapter initialized", zap.String("model", model))
	return &geminiAdapter{apiKey: strings.TrimSpace(cfg.LLM.GeminiAPIKey), model: model, log: log}
}

func (a *geminiAdapter) getClient(ctx context.Context) (*genai.Client, error) {
	a.once.Do(func() {
		a.client, a.clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  a.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return a.client, a.clientErr
}

func (a *geminiAdapter) GenerateRecommendations(ctx context.Context, p *recommendation.ProfileInput) (string, error) {
	if a.apiKey == "" {
		return "", apperror.NewConfiguration("GEMINI_API_KEY is not set", nil)
	}
	client, err := a.getClient(ctx)
	if err != nil {
		return "", apperror.NewConfiguration("cannot create gemini client", err)
	}
	prompt, err := BuildPrompt(p)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		if isGeminiAuthError(err) {
			return "", apperror.NewConfiguration("Gemini rejected the API key", err)
		}
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}

func isGeminiAuthError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code == http.StatusUnauthorized || apiErrPtr.Code == http.StatusForbidden
	}
	return false
}
