package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App    AppConfig
	GCP    GCPConfig
	Gemini GeminiConfig
	Scan   ScanConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LABELSPY_APP_ENV" required:"true"`
	Port         string `envconfig:"LABELSPY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LABELSPY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LABELSPY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type GCPConfig struct {
	ProjectID string `envconfig:"LABELSPY_GCP_PROJECT_ID" required:"true"`
	// CredentialsFile points at a service-account JSON key. When empty the
	// clients fall back to Application Default Credentials.
	CredentialsFile string `envconfig:"LABELSPY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GeminiConfig struct {
	APIKey  string        `envconfig:"LABELSPY_GEMINI_API_KEY" required:"true"`
	Model   string        `envconfig:"LABELSPY_GEMINI_MODEL" default:"gemini-2.5-flash"`
	BaseURL string        `envconfig:"LABELSPY_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `envconfig:"LABELSPY_GEMINI_TIMEOUT" default:"60s"`
}

type ScanConfig struct {
	// AllowAnonymous keeps the scan endpoint usable without a bearer token.
	// A missing or invalid token then degrades to an anonymous scan instead
	// of a 401; per-user statistics are only recorded for verified callers.
	AllowAnonymous     bool `envconfig:"LABELSPY_SCAN_ALLOW_ANONYMOUS" default:"true"`
	MaxUploadMB        int  `envconfig:"LABELSPY_SCAN_MAX_UPLOAD_MB" default:"10"`
	TopIngredientLimit int  `envconfig:"LABELSPY_TOP_INGREDIENT_LIMIT" default:"10"`
}

// MaxUploadBytes returns the multipart upload cap in bytes.
func (s ScanConfig) MaxUploadBytes() int64 {
	mb := s.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return int64(mb) << 20
}
