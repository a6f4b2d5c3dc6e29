package llm

import (
	"fmt"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/pkg/logger"
)

// NewRecommendationGateway picks the adapter named by llm.provider.
func NewRecommendationGateway(cfg config.Config, log logger.Logger) (service.RecommendationGateway, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIAdapter(cfg, log), nil
	case config.ProviderGemini:
		return NewGeminiAdapter(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
