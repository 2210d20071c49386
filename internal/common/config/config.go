// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct. It is built once in
// main and injected into constructors; nothing mutates it afterwards.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	APIs      APIsConfig      `mapstructure:"apis"`
	Functions FunctionsConfig `mapstructure:"functions"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	StaticDir       string `mapstructure:"static_dir"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// ShutdownGrace returns the drain window for graceful shutdown.
func (s ServerConfig) ShutdownGrace() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Millisecond
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig configures the generateContent upstream. The API key is read
// per-invocation by the handler; an empty key is a runtime condition, not a
// load failure.
type GeminiConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// RequestTimeout returns the per-attempt ceiling for the upstream call.
func (g GeminiConfig) RequestTimeout() time.Duration {
	return time.Duration(g.Timeout) * time.Millisecond
}

// FunctionsConfig locates the function registry file.
type FunctionsConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
