package devops

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	saras "trackai.dev/trackai/saras/v1"
)

// AppConfig is the deployed configuration, stored as one yaml document in an
// SSM parameter.
type AppConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"maxConnections"`
	JWTSecret      string `yaml:"jwtSecret"`
	StorageDir     string `yaml:"storageDir"`
	StorageBucket  string `yaml:"storageBucket"`

	Saras saras.Config `yaml:"saras"`
}

var (
	once    sync.Once
	cached  AppConfig
	loadErr error
)

// LoadAppConfig reads the yaml config from SSM, once per process. With
// TRACKAI_SSM_PARAM unset the config comes from environment variables
// instead (local development).
func LoadAppConfig(ctx context.Context) (AppConfig, error) {
	once.Do(func() {
		paramName := os.Getenv("TRACKAI_SSM_PARAM")
		if paramName == "" {
			cached = configFromEnv()
			return
		}

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(cfg)

		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(paramName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter: %w", err)
			return
		}

		var parsed AppConfig
		if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
			loadErr = fmt.Errorf("unmarshal yaml: %w", err)
			return
		}
		if parsed.MaxConnections == 0 {
			parsed.MaxConnections = 30
		}

		cached = parsed
	})

	return cached, loadErr
}

func configFromEnv() AppConfig {
	return AppConfig{
		DSN:            os.Getenv("DSN"),
		MaxConnections: 30,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		StorageDir:     envOr("STORAGE_DIR", "storage"),
		StorageBucket:  os.Getenv("STORAGE_BUCKET"),
		Saras:          saras.ConfigFromEnv(),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
