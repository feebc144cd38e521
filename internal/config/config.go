// Package config provides configuration types and loading for wadesk.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the root configuration struct.
// Top-level groups: Server, Storage, WhatsApp, OpenAI, Dashboard.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	WhatsApp  WhatsAppConfig
	OpenAI    OpenAIConfig
	Dashboard DashboardConfig
}

// ServerConfig groups HTTP listener settings.
type ServerConfig struct {
	Host string `envconfig:"HTTP_HOST" default:""`
	Port int    `envconfig:"HTTP_PORT" default:"8080"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig groups persistence settings.
type StorageConfig struct {
	DBPath string `envconfig:"DB_PATH" default:"wadesk.db"`
}

// WhatsAppConfig configures the Cloud API webhook and outbound transport.
type WhatsAppConfig struct {
	VerifyToken     string `envconfig:"WHATSAPP_WEBHOOK_VERIFY_TOKEN"`
	PhoneNumberID   string `envconfig:"WHATSAPP_PHONE_NUMBER_ID"`
	AccessToken     string `envconfig:"WHATSAPP_ACCESS_TOKEN"`
	GraphAPIBase    string `envconfig:"WHATSAPP_GRAPH_API_BASE" default:"https://graph.facebook.com/v20.0"`
	SessionPrefix   string `envconfig:"WHATSAPP_SESSION_ID_PREFIX" default:"APP-"`
	DefaultAINumber string `envconfig:"WHATSAPP_ALLOWED_AI_NUMBER" default:"27693475825"`
}

// OpenAIConfig configures the completion and embedding capabilities.
type OpenAIConfig struct {
	APIKey         string `envconfig:"OPENAI_API_KEY"`
	APIBase        string `envconfig:"OPENAI_API_BASE" default:"https://api.openai.com/v1"`
	Model          string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	EmbeddingModel string `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
}

// DashboardConfig configures the operator-facing API.
type DashboardConfig struct {
	AuthToken string `envconfig:"DASHBOARD_AUTH_TOKEN"`
}

// Load reads configuration from the environment, loading a local .env file
// first if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, relying on environment variables")
	}

	var cfg Config
	if err := envconfig.Process("wadesk", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg.WhatsApp.DefaultAINumber = digitsOnly(cfg.WhatsApp.DefaultAINumber)
	return &cfg, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
