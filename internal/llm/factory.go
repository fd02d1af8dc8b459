package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/contentqc/internal/model"
)

// Default endpoints for the OpenAI-compatible and Responses-API providers
const (
	DeepSeekBaseURL = "https://api.deepseek.com"
	ArkResponsesURL = "https://ark.cn-beijing.volces.com/api/v3/responses"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name returns nil: generation is disabled.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "deepseek":
		if config.BaseURL == "" {
			config.BaseURL = DeepSeekBaseURL
		}
		if config.Model == "" {
			config.Model = "deepseek-chat"
		}
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		p.name = "deepseek"
		return p, nil

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "responses", "openai-responses":
		return NewResponsesProvider(config)

	case "doubao", "ark", "glm":
		if config.BaseURL == "" {
			config.BaseURL = ArkResponsesURL
		}
		if config.Model == "" {
			config.Model = "glm-4-7-251222"
		}
		p, err := NewResponsesProvider(config)
		if err != nil {
			return nil, err
		}
		p.name = "doubao"
		return p, nil

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, deepseek, anthropic, ollama, responses, doubao)", config.Provider)
	}
}

// NewGroundedProvider creates the search-grounded provider. Only Responses-API
// providers can search; other names are rejected.
func NewGroundedProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "":
		return nil, nil
	case "openai", "responses", "openai-responses":
		config.Provider = "responses"
	case "doubao", "ark", "glm":
	default:
		return nil, fmt.Errorf("grounded provider %q cannot search (supported: openai, doubao)", config.Provider)
	}
	return NewProvider(config)
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:    modelConfig.Provider,
		Model:       modelConfig.Model,
		APIKey:      modelConfig.APIKey,
		BaseURL:     modelConfig.BaseURL,
		Timeout:     modelConfig.Timeout,
		MaxTokens:   modelConfig.MaxTokens,
		Temperature: modelConfig.Temperature,
		UserAgent:   httpConfig.UserAgent,
		HTTPProxy:   httpConfig.HTTPProxy,
		HTTPSProxy:  httpConfig.HTTPSProxy,
		NoProxy:     httpConfig.NoProxy,
	}
}

// GroundedConfigFromModel converts model.GroundedConfig to llm.Config
func GroundedConfigFromModel(modelConfig model.GroundedConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:    modelConfig.Provider,
		Model:       modelConfig.Model,
		APIKey:      modelConfig.APIKey,
		BaseURL:     modelConfig.BaseURL,
		Timeout:     modelConfig.Timeout,
		MaxTokens:   1500,
		Temperature: 0.1,
		UserAgent:   httpConfig.UserAgent,
		HTTPProxy:   httpConfig.HTTPProxy,
		HTTPSProxy:  httpConfig.HTTPSProxy,
		NoProxy:     httpConfig.NoProxy,
	}
}
