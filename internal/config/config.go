package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars  `json:"env"`
	Prompts *Prompts `json:"-"`
}

// EnvVars holds environment variables read at startup.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port         string      `env:"PORT" envDefault:"8080"`
	CorsOrigins  []string    `env:"CORS_ORIGINS" envSeparator:"," optional:"true"`
	RateLimitRPS int         `env:"RATE_LIMIT_RPS" envDefault:"5"`
	CatalogPath  string      `env:"CATALOG_PATH" optional:"true"`
	PromptsPath  string      `env:"PROMPTS_PATH" optional:"true"`
	DatabaseUrl  string      `env:"DATABASE_URL" optional:"true"`
	SQLitePath   string      `env:"SQLITE_PATH" optional:"true"`
	AI           AIVars      `json:"ai"`
	History      HistoryVars `envPrefix:"HISTORY_" json:"history"`
	AWS          AWSVars     `json:"aws" optional:"true"`
}

// AIVars configures the listing generator. APIKey is the single credential;
// the provider-specific keys are accepted as fallbacks.
type AIVars struct {
	Provider        string        `env:"AI_PROVIDER" optional:"true"`
	APIKey          string        `env:"AI_API_KEY" optional:"true"`
	LegacyAPIKey    string        `env:"API_KEY" optional:"true"`
	GoogleAPIKey    string        `env:"GOOGLE_API_KEY" optional:"true"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY" optional:"true"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY" optional:"true"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY" optional:"true"`
	Model           string        `env:"AI_MODEL" optional:"true"`
	Timeout         time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`
}

// HistoryVars selects and configures the search history backend.
type HistoryVars struct {
	Backend   string `env:"BACKEND" envDefault:"file"`
	Namespace string `env:"NAMESPACE" envDefault:"shopping_search_history"`
	Dir       string `env:"DIR" envDefault:".shopcompare"`
}

// AWSVars is only needed by the s3 history backend.
type AWSVars struct {
	Region          string `env:"AWS_REGION" optional:"true"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" optional:"true"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" optional:"true"`
	S3Bucket        string `env:"S3_BUCKET" optional:"true"`
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	return &config, nil
}

// CheckConfigEnvFields validates that all required EnvVars fields are set,
// plus whatever the selected history backend needs.
func (c *Config) CheckConfigEnvFields() error {
	if err := checkFieldsRecursive(reflect.ValueOf(c.EnvVars)); err != nil {
		return err
	}

	h := c.EnvVars.History
	switch h.Backend {
	case "file", "sqlite":
	case "postgres":
		if c.EnvVars.DatabaseUrl == "" {
			return fmt.Errorf("$DATABASE_URL must be set for the postgres history backend")
		}
	case "s3":
		if c.EnvVars.AWS.Region == "" || c.EnvVars.AWS.S3Bucket == "" {
			return fmt.Errorf("$AWS_REGION and $S3_BUCKET must be set for the s3 history backend")
		}
	default:
		return fmt.Errorf("invalid history backend %q: must be file, sqlite, postgres, or s3", h.Backend)
	}
	return nil
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
			continue
		}
		if field.IsZero() {
			return fmt.Errorf("$%s must be set", fieldType.Name)
		}
	}
	return nil
}
