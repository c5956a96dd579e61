package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config combines the YAML server configuration with environment-driven
// credentials and public URLs. Secrets never live in the YAML file.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Upstream struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"upstream"`
	Feed struct {
		PageSize         int `yaml:"page_size"`
		ScrollCooldownMs int `yaml:"scroll_cooldown_ms"`
		TransitionMs     int `yaml:"transition_ms"`
	} `yaml:"feed"`

	R2     R2Config
	Public PublicConfig
}

// R2Config holds the object-storage credentials and endpoints.
type R2Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
}

// PublicConfig holds the outward-facing URLs used by the manifest
// and share links.
type PublicConfig struct {
	AppURL         string
	ImageURL       string
	LogoURL        string
	NeynarClientID string
	ChainRPCURL    string
}

// Load reads the YAML file at path (missing file is fine, defaults apply)
// and overlays environment variables, honoring a local .env file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "zeero.db"
	}
	if cfg.Feed.PageSize == 0 {
		cfg.Feed.PageSize = 200
	}
	if cfg.Feed.ScrollCooldownMs == 0 {
		cfg.Feed.ScrollCooldownMs = 800
	}
	if cfg.Feed.TransitionMs == 0 {
		cfg.Feed.TransitionMs = 300
	}

	cfg.Upstream.BaseURL = getEnv("EXPLORE_API_BASE_URL", cfg.Upstream.BaseURL)
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "https://api-sdk.zora.engineering"
	}
	cfg.Upstream.APIKey = getEnv("EXPLORE_API_KEY", cfg.Upstream.APIKey)

	cfg.R2 = R2Config{
		Endpoint:        os.Getenv("R2_ENDPOINT"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		Bucket:          os.Getenv("R2_BUCKET_NAME"),
		PublicURL:       os.Getenv("R2_PUBLIC_URL"),
	}
	cfg.Public = PublicConfig{
		AppURL:         os.Getenv("PUBLIC_URL"),
		ImageURL:       os.Getenv("PUBLIC_IMAGE_URL"),
		LogoURL:        os.Getenv("PUBLIC_LOGO_URL"),
		NeynarClientID: os.Getenv("NEYNAR_CLIENT_ID"),
		ChainRPCURL:    os.Getenv("CHAIN_RPC_URL"),
	}

	return &cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
