package llm

import (
	"errors"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/marketlens/marketlens/internal/common"
	"github.com/marketlens/marketlens/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

// ErrNoCredentials indicates the AI provider could not be constructed because
// no API key is configured.
var ErrNoCredentials = errors.New("llm: OPENAI_API_KEY not configured")

// NewProvider builds the configured chat provider. Construction is fallible:
// callers decide whether a missing provider is fatal or a fallback trigger.
func NewProvider() (Provider, error) {
	logger := common.Logger()
	if strings.EqualFold(strings.TrimSpace(os.Getenv("REPORT_AI_PROVIDER")), "local") {
		logger.Info("llm: local provider selected")
		return providers.NewLocalProvider(), nil
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		logger.Warn("llm: OPENAI_API_KEY not set; AI analysis unavailable")
		return nil, ErrNoCredentials
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
		logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	client := openai.NewClient(opts...)
	logger.Info("llm: OpenAI provider selected")
	return providers.NewOpenAIProvider(client), nil
}
