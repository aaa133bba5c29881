package config

import (
	"os"
	"strings"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash-preview-05-20"
	DefaultKeyName = "GEMINI_API_KEY"
)

// Credential sources understood by credentials.FromConfig.
const (
	SourceEnv            = "env"
	SourceSSM            = "ssm"
	SourceSecretsManager = "secretsmanager"
)

// Config holds everything the proxy needs from its deployment environment.
// The credential itself is not part of it: only where to find it.
type Config struct {
	BaseURL          string
	Model            string
	CredentialSource string
	CredentialName   string
	CredentialField  string
	AllowedOrigin    string
	Region           string
	LogLevel         string
	Port             string
}

// Load reads the configuration from environment variables.
func Load() Config {
	return Config{
		BaseURL:          strings.TrimRight(getEnv("GEMINI_BASE_URL", DefaultBaseURL), "/"),
		Model:            getEnv("GEMINI_MODEL", DefaultModel),
		CredentialSource: strings.ToLower(getEnv("GEMINI_CREDENTIAL_SOURCE", SourceEnv)),
		CredentialName:   getEnv("GEMINI_CREDENTIAL_NAME", DefaultKeyName),
		CredentialField:  getEnv("GEMINI_CREDENTIAL_FIELD", DefaultKeyName),
		AllowedOrigin:    os.Getenv("CloudfrontOrigin"),
		Region:           os.Getenv("Region"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("PORT", "8888"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
