package v1

import (
	"os"
	"strconv"
	"time"
)

const (
	ModeStub = "stub"
	ModeLive = "live"

	// TokenModeService authenticates with the shared service account;
	// TokenModeUser uses the Saras token stored per user by the login flow.
	TokenModeService = "service"
	TokenModeUser    = "user"
)

// SubProjectIDs maps each process category to its Saras sub-project.
type SubProjectIDs struct {
	Attendance string `yaml:"attendance"`
	TrackData  string `yaml:"trackdata"`
	Progress   string `yaml:"progress"`
}

// FeatureFlags gates which integrations actually call Saras.
type FeatureFlags struct {
	Enabled         bool `yaml:"enabled"`
	ProgressEnabled bool `yaml:"progressEnabled"`
}

type Config struct {
	Mode          string        `yaml:"mode"`
	BaseURL       string        `yaml:"baseUrl"`
	ClientID      string        `yaml:"clientId"`
	ClientSecret  string        `yaml:"clientSecret"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retryAttempts"`
	RetryDelay    time.Duration `yaml:"retryDelay"`
	TokenCacheKey string        `yaml:"tokenCacheKey"`
	TokenMode     string        `yaml:"tokenMode"`

	SubProjects       SubProjectIDs `yaml:"subProjects"`
	DefaultContractID string        `yaml:"defaultContractId"`
	PluginName        string        `yaml:"pluginName"`
	WorkflowID        string        `yaml:"workflowId"`
	Features          FeatureFlags  `yaml:"features"`
}

// ConfigFromEnv reads the Saras settings from environment variables.
func ConfigFromEnv() Config {
	cfg := Config{
		Mode:              envOr("SARAS_MODE", ModeStub),
		BaseURL:           envOr("SARAS_BASE_URL", "https://api.saras.example.com"),
		ClientID:          os.Getenv("SARAS_CLIENT_ID"),
		ClientSecret:      os.Getenv("SARAS_CLIENT_SECRET"),
		Timeout:           time.Duration(envInt("SARAS_TIMEOUT", 30)) * time.Second,
		RetryAttempts:     envInt("SARAS_RETRY_ATTEMPTS", 2),
		RetryDelay:        time.Duration(envInt("SARAS_RETRY_DELAY_MS", 500)) * time.Millisecond,
		TokenCacheKey:     envOr("SARAS_TOKEN_CACHE_KEY", "saras:token"),
		TokenMode:         envOr("SARAS_TOKEN_MODE", TokenModeService),
		DefaultContractID: os.Getenv("SARAS_DEFAULT_CONTRACT_ID"),
		PluginName:        envOr("SARAS_PLUGIN_NAME", "knowledgeRepo"),
		WorkflowID:        os.Getenv("SARAS_WORKFLOW_ID"),
		SubProjects: SubProjectIDs{
			Attendance: os.Getenv("SARAS_SUBPROJECT_ATTENDANCE"),
			TrackData:  os.Getenv("SARAS_SUBPROJECT_TRACKDATA"),
			Progress:   os.Getenv("SARAS_SUBPROJECT_PROGRESS"),
		},
		Features: FeatureFlags{
			Enabled:         envBool("SARAS_ENABLED", true),
			ProgressEnabled: envBool("SARAS_PROGRESS_ENABLED", false),
		},
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
