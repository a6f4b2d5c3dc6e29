package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/internal/domain/recommendation"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

func testProfile() *recommendation.ProfileInput {
	return &recommendation.ProfileInput{
		UserID:      "u-1",
		Skills:      []profile.Skill{{Name: "Python", Level: profile.LevelIntermediate}},
		CareerGoals: []string{"data-scientist"},
	}
}

func openAIConfig(baseURL, key string) config.Config {
	var cfg config.Config
	cfg.LLM.Provider = config.ProviderOpenAI
	cfg.LLM.OpenAIAPIKey = key
	cfg.LLM.BaseURL = baseURL
	return cfg
}

func TestBuildPromptIncludesCatalogAndProfile(t *testing.T) {
	prompt, err := BuildPrompt(testProfile())
	require.NoError(t, err)

	assert.Contains(t, prompt, "data-science: Data Science")
	assert.Contains(t, prompt, `"userId": "u-1"`)
	assert.Contains(t, prompt, `"Python"`)
}

func TestOpenAIAdapterReturnsRawContent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"recommendations\":[]}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	gw := NewOpenAIAdapter(openAIConfig(srv.URL+"/v1", "sk-test"), logger.NewNop())
	raw, err := gw.GenerateRecommendations(context.Background(), testProfile())

	require.NoError(t, err)
	assert.Equal(t, `{"recommendations":[]}`, raw)
	assert.Equal(t, defaultOpenAIModel, got["model"])
	format, _ := got["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
}

func TestOpenAIAdapterUnauthorizedIsConfigurationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	gw := NewOpenAIAdapter(openAIConfig(srv.URL+"/v1", "sk-bad"), logger.NewNop())
	_, err := gw.GenerateRecommendations(context.Background(), testProfile())

	assert.ErrorIs(t, err, apperror.ErrConfiguration)
}

func TestOpenAIAdapterServerErrorIsNotConfiguration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	gw := NewOpenAIAdapter(openAIConfig(srv.URL+"/v1", "sk-test"), logger.NewNop())
	_, err := gw.GenerateRecommendations(context.Background(), testProfile())

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrConfiguration)
}

func TestMissingKeysAreConfigurationErrors(t *testing.T) {
	for _, provider := range []string{config.ProviderOpenAI, config.ProviderGemini} {
		t.Run(provider, func(t *testing.T) {
			var cfg config.Config
			cfg.LLM.Provider = provider
			gw, err := NewRecommendationGateway(cfg, logger.NewNop())
			require.NoError(t, err)

			_, err = gw.GenerateRecommendations(context.Background(), testProfile())
			assert.ErrorIs(t, err, apperror.ErrConfiguration)
		})
	}
}

func TestUnknownProvider(t *testing.T) {
	var cfg config.Config
	cfg.LLM.Provider = "clippy"
	_, err := NewRecommendationGateway(cfg, logger.NewNop())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "clippy"))
}
