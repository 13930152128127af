package ner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/contracts-parser/internal/common"
	"github.com/joseph-ayodele/contracts-parser/internal/llm/openai"
)

// Provider names accepted by New.
const (
	ProviderRules  = "rules"
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

// New builds the configured recognizer once, at process start. Remote providers are
// wrapped in a cache: Redis when an address is configured, memory otherwise. The
// returned close function releases the cache and is never nil.
func New(ctx context.Context, cfg common.NERConfig, cacheCfg common.CacheConfig, logger *slog.Logger) (Recognizer, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	var (
		inner     Recognizer
		namespace string
	)
	switch cfg.Provider {
	case "", ProviderRules:
		logger.Info("ner.provider.ready", "provider", ProviderRules)
		return NewRuleRecognizer(), noop, nil
	case ProviderHTTP:
		if cfg.Endpoint == "" {
			return nil, noop, fmt.Errorf("%w: NER_ENDPOINT is required for the http provider", common.ErrInvalidInput)
		}
		inner = NewHTTPRecognizer(cfg.Endpoint, cfg.Model, cfg.Timeout, logger)
		namespace = ProviderHTTP + ":" + cfg.Model
	case ProviderOpenAI:
		client := openai.NewClient(openai.Config{
			APIKey:          cfg.OpenAIAPIKey,
			BaseURL:         cfg.OpenAIBaseURL,
			Model:           cfg.OpenAIModel,
			Timeout:         cfg.Timeout,
			LenientOptional: true,
		}, logger)
		inner = NewLLMRecognizer(client)
		namespace = ProviderOpenAI + ":" + cfg.OpenAIModel
	default:
		return nil, noop, fmt.Errorf("%w: unknown NER provider %q", common.ErrInvalidInput, cfg.Provider)
	}

	var cache Cache
	if cacheCfg.RedisAddr != "" {
		rc, err := NewRedisCache(ctx, RedisConfig{
			Addr:     cacheCfg.RedisAddr,
			Password: cacheCfg.RedisPassword,
			DB:       cacheCfg.RedisDB,
		})
		if err != nil {
			logger.Warn("ner.cache.redis_unavailable", "addr", cacheCfg.RedisAddr, "error", err)
			cache = NewMemoryCache()
		} else {
			cache = rc
		}
	} else {
		cache = NewMemoryCache()
	}
	logger.Info("ner.provider.ready", "provider", cfg.Provider, "namespace", namespace, "cache", fmt.Sprintf("%T", cache))
	return NewCachingRecognizer(inner, cache, cacheCfg.TTL, namespace, logger), cache.Close, nil
}
