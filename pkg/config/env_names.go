package config

const EnvPrefix = "LABELSPY"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names, mirrored by the struct tags in config.go.
// Tests reference these instead of repeating string literals.
const (
	EnvAppEnv             = "LABELSPY_APP_ENV"
	EnvPort               = "LABELSPY_APP_PORT"
	EnvLogLevel           = "LABELSPY_LOG_LEVEL"
	EnvGCPProjectID       = "LABELSPY_GCP_PROJECT_ID"
	EnvGoogleCredentials  = "LABELSPY_GOOGLE_APPLICATION_CREDENTIALS"
	EnvGeminiAPIKey       = "LABELSPY_GEMINI_API_KEY"
	EnvGeminiModel        = "LABELSPY_GEMINI_MODEL"
	EnvGeminiBaseURL      = "LABELSPY_GEMINI_BASE_URL"
	EnvGeminiTimeout      = "LABELSPY_GEMINI_TIMEOUT"
	EnvScanAllowAnonymous = "LABELSPY_SCAN_ALLOW_ANONYMOUS"
	EnvScanMaxUploadMB    = "LABELSPY_SCAN_MAX_UPLOAD_MB"
	EnvTopIngredientLimit = "LABELSPY_TOP_INGREDIENT_LIMIT"
)
