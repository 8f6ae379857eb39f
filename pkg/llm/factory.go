package llm

import (
	"context"
	"fmt"

	"PatternRadar/pkg/config"
)

const mockReply = "判断结果：需进一步观察\n依据：离线模式，未调用真实模型。"

// NewProvider 按配置创建提供方，未配置密钥返回 ErrNotConfigured
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	switch cfg.Provider {
	case "mock":
		return NewMockProvider(mockReply), nil
	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.APIURL, cfg.Model, cfg.MaxTokens, cfg.Temperature), nil
	case "gemini":
		client, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "", "openai", "zhipu", "deepseek":
		name, url, model := openAICompatible(cfg.Provider)
		if cfg.APIURL != "" {
			url = cfg.APIURL
		}
		if cfg.Model != "" {
			model = cfg.Model
		}
		return NewLLMClient(name, url, cfg.APIKey, model, cfg.MaxTokens, cfg.Temperature, cfg.Timeout), nil
	}
	return nil, fmt.Errorf("不支持的大模型提供方: %s", cfg.Provider)
}

func openAICompatible(provider string) (name, url, model string) {
	switch provider {
	case "zhipu":
		return "zhipu", ZhipuURL, "glm-4-flash"
	case "deepseek":
		return "deepseek", DeepSeekURL, "deepseek-chat"
	}
	return "openai", OpenAIURL, "gpt-4o-mini"
}
