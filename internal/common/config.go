package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/contracts-parser/constants"
)

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig
	OCR      OCRConfig
	NER      NERConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Log      LogConfig
}

// PipelineConfig holds batch discovery and pool settings
type PipelineConfig struct {
	Input        string
	Output       string
	Workers      int
	TaskTimeout  time.Duration
	Extensions   []string
	Recursive    bool
	SkipHidden   bool
	SectionsFile string
	WindowSize   int
}

// OCRConfig holds document-to-text settings
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MinTextChars  int
}

// NERConfig selects and configures the entity recognizer
type NERConfig struct {
	Provider      string // rules | http | openai
	Endpoint      string
	Model         string
	Timeout       time.Duration
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// CacheConfig holds entity cache settings; an empty RedisAddr selects the in-memory cache.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// DatabaseConfig holds run store settings; an empty DSN disables persistence.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables, reading .env first when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}
	return &Config{
		Pipeline: PipelineConfig{
			Input:        getEnv("CONTRACTS_INPUT", "contracts/"),
			Output:       getEnv("CONTRACTS_OUTPUT", "output/csv/parsed_contracts.csv"),
			Workers:      getEnvAsInt("CONTRACTS_WORKERS", constants.DefaultWorkers),
			TaskTimeout:  getEnvAsDuration("CONTRACTS_TASK_TIMEOUT", 3*time.Minute),
			Extensions:   getEnvAsList("CONTRACTS_EXTENSIONS", constants.DefaultExtensions),
			Recursive:    getEnvAsBool("CONTRACTS_RECURSIVE", false),
			SkipHidden:   getEnvAsBool("CONTRACTS_SKIP_HIDDEN", false),
			SectionsFile: getEnv("CONTRACTS_SECTIONS_FILE", ""),
			WindowSize:   getEnvAsInt("CONTRACTS_WINDOW_SIZE", constants.WindowSize),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("OCR_PDFTOTEXT", "pdftotext"),
			Pdftoppm:      getEnv("OCR_PDFTOPPM", "pdftoppm"),
			Tesseract:     getEnv("OCR_TESSERACT", "tesseract"),
			TesseractLang: getEnv("OCR_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MinTextChars:  getEnvAsInt("OCR_MIN_TEXT_CHARS", 32),
		},
		NER: NERConfig{
			Provider:      getEnv("NER_PROVIDER", "rules"),
			Endpoint:      getEnv("NER_ENDPOINT", ""),
			Model:         getEnv("NER_MODEL", "en_core_web_sm"),
			Timeout:       getEnvAsDuration("NER_TIMEOUT", 30*time.Second),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TTL:           getEnvAsDuration("NER_CACHE_TTL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("CONTRACTS_INPUT", c.Pipeline.Input, Required).
		Field("CONTRACTS_OUTPUT", c.Pipeline.Output, Required).
		Field("CONTRACTS_WORKERS", c.Pipeline.Workers, Positive).
		Field("CONTRACTS_WINDOW_SIZE", c.Pipeline.WindowSize, Positive).
		Field("CONTRACTS_EXTENSIONS", c.Pipeline.Extensions, Required, SupportedExtensions).
		Field("CONTRACTS_TASK_TIMEOUT", c.Pipeline.TaskTimeout, NonNegativeDuration).
		Field("NER_PROVIDER", c.NER.Provider, OneOf("rules", "http", "openai"))
	switch c.NER.Provider {
	case "http":
		v.Field("NER_ENDPOINT", c.NER.Endpoint, Required)
	case "openai":
		v.Field("OPENAI_API_KEY", c.NER.OpenAIAPIKey, Required)
	}
	if err := v.Error(); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	return nil
}

// Sections resolves the section phrase table: defaults, or the YAML override when SectionsFile is set.
func (c *Config) Sections() (map[string][]string, error) {
	if c.Pipeline.SectionsFile == "" {
		return constants.DefaultSectionPhrases, nil
	}
	return LoadSections(c.Pipeline.SectionsFile)
}

// LoadSections reads a YAML mapping of section name to candidate phrases.
// Both payment sections must be present and non-empty.
func LoadSections(path string) (map[string][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sections file: %w", err)
	}
	var sections map[string][]string
	if err := yaml.Unmarshal(b, &sections); err != nil {
		return nil, fmt.Errorf("parse sections file: %w", err)
	}
	v := NewValidator()
	for _, name := range []string{constants.SectionInitialPayment, constants.SectionSecondPayment} {
		v.Field(name, sections[name], Required)
	}
	if err := v.Error(); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "sections file "+path, err)
	}
	return sections, nil
}
