package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/internal/domain/recommendation"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

const defaultOpenAIModel = "gpt-4o-mini"

type openAIAdapter struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewOpenAIAdapter also serves OpenAI-compatible servers such as Ollama
// through llm.base_url. Without an API key every call fails with a
// configuration error instead of reaching the network.
func NewOpenAIAdapter(cfg config.Config, log logger.Logger) service.RecommendationGateway {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	a := &openAIAdapter{model: model, log: log}
	if strings.TrimSpace(cfg.LLM.OpenAIAPIKey) == "" {
		log.Warn("OpenAI API key is not set; recommendations are disabled")
		return a
	}

	clientCfg := openai.DefaultConfig(cfg.LLM.OpenAIAPIKey)
	if cfg.LLM.BaseURL != "" {
		clientCfg.BaseURL = cfg.LLM.BaseURL
	}
	a.client = openai.NewClientWithConfig(clientCfg)

	log.Info("OpenAI recommendation adapter initialized", zap.String("model", model))
	return a
}

func (a *openAIAdapter) GenerateRecommendations(ctx context.Context, p *recommendation.ProfileInput) (string, error) {
	if a.client == nil {
		return "", apperror.NewConfiguration("OPENAI_API_KEY is not set", nil)
	}
	prompt, err := BuildPrompt(p)
	if err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if isAuthError(err) {
			return "", apperror.NewConfiguration("OpenAI rejected the API key", err)
		}
		return "", fmt.Errorf("openai chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no chat choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func isAuthError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusUnauthorized
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusUnauthorized
	}
	return false
}
