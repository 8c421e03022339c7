package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppName     = "floorplan-analyzer"
	EnvFileName = "config.env"

	// PlaceholderAPIKey is the value shipped in example env files.
	PlaceholderAPIKey = "your_api_key_here"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const (
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// ErrConfiguration is returned when the configuration cannot be used to
// talk to the model service. It is never recovered from.
var ErrConfiguration = errors.New("configuration error")

// Config holds process-wide settings. It is loaded once and passed by value.
type Config struct {
	Provider      string `envconfig:"FLOORPLAN_PROVIDER" default:"gemini"`
	APIKey        string `envconfig:"GOOGLE_API_KEY"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	Model         string `envconfig:"FLOORPLAN_MODEL"`

	MinFeatures        int `envconfig:"FLOORPLAN_MIN_FEATURES" default:"3"`
	MinWordsPerFeature int `envconfig:"FLOORPLAN_MIN_WORDS" default:"2"`
	MaxWordsPerFeature int `envconfig:"FLOORPLAN_MAX_WORDS" default:"4"`

	RequestTimeout time.Duration `envconfig:"FLOORPLAN_REQUEST_TIMEOUT" default:"60s"`
	MaxImageSize   int64         `envconfig:"FLOORPLAN_MAX_IMAGE_SIZE" default:"10485760"`
}

// Default returns a config with every default applied and no credentials.
func Default() Config {
	return Config{
		Provider:           ProviderGemini,
		Model:              DefaultGeminiModel,
		MinFeatures:        3,
		MinWordsPerFeature: 2,
		MaxWordsPerFeature: 4,
		RequestTimeout:     60 * time.Second,
		MaxImageSize:       10 * 1024 * 1024,
	}
}

// Load reads the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

// Credential returns the API key used by the selected provider.
func (c Config) Credential() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.APIKey
}

// CredentialEnvVar names the environment variable holding the credential
// for the selected provider.
func (c Config) CredentialEnvVar() string {
	if c.Provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GOOGLE_API_KEY"
}

// Validate reports whether the config can be used. All failures wrap
// ErrConfiguration.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown provider %q (use %s or %s)", ErrConfiguration, c.Provider, ProviderGemini, ProviderOpenAI)
	}

	key := strings.TrimSpace(c.Credential())
	if key == "" || key == PlaceholderAPIKey {
		return fmt.Errorf("%w: please set a valid %s", ErrConfiguration, c.CredentialEnvVar())
	}

	if c.Model == "" {
		return fmt.Errorf("%w: model name is empty", ErrConfiguration)
	}
	if c.MinWordsPerFeature < 1 || c.MaxWordsPerFeature < c.MinWordsPerFeature {
		return fmt.Errorf("%w: invalid words per feature range [%d, %d]", ErrConfiguration, c.MinWordsPerFeature, c.MaxWordsPerFeature)
	}
	if c.MinFeatures < 0 {
		return fmt.Errorf("%w: min features must be >= 0 (got %d)", ErrConfiguration, c.MinFeatures)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be > 0 (got %s)", ErrConfiguration, c.RequestTimeout)
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("%w: max image size must be > 0 (got %d)", ErrConfiguration, c.MaxImageSize)
	}
	return nil
}

// IsPlaceholder reports whether key is empty or the example placeholder.
func IsPlaceholder(key string) bool {
	key = strings.TrimSpace(key)
	return key == "" || key == PlaceholderAPIKey
}

// EnvFilePath returns the path of the env file in the user's config directory.
func EnvFilePath() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configBase, AppName, EnvFileName), nil
}

// LoadEnvFile loads environment variables from path if given. Otherwise it
// tries ./.env and then the config file in the user's config directory.
// Missing default files are ignored; a missing explicit file is an error.
// Variables already set in the environment are never overridden.
func LoadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}

	_ = godotenv.Load(".env")

	configPath, err := EnvFilePath()
	if err != nil {
		return nil
	}
	_ = godotenv.Load(configPath)
	return nil
}

// WriteEnvFile merges values into the env file at path, creating the
// directory if needed. The file holds secrets so it is written with 0600.
func WriteEnvFile(path string, values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	existing, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read env file: %w", err)
		}
		existing = map[string]string{}
	}
	for k, v := range values {
		existing[k] = v
	}

	if err := godotenv.Write(existing, path); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	return os.Chmod(path, 0600)
}
