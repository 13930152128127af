package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
)

// Config for the entity-recognition chat client. Temperature stays 0 unless set
// so that repeated runs over the same contract tag the same spans.
type Config struct {
	APIKey          string // empty -> OPENAI_API_KEY
	Organization    string // optional OpenAI-Organization header
	BaseURL         string
	Model           string
	Temperature     float32
	Timeout         time.Duration
	LenientOptional bool // drop malformed entity entries instead of rejecting the response
}

func (c Config) withDefaults() Config {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

func (c Config) headers() map[string]string {
	h := map[string]string{"Authorization": "Bearer " + c.APIKey}
	if c.Organization != "" {
		h["OpenAI-Organization"] = c.Organization
	}
	return h
}

// Client is safe for concurrent use by the worker pool.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, logger: logger}
}
