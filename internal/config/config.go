// Package config loads the server configuration from YAML, overlaying user
// values onto built-in defaults.
package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the full flowforged configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Engine EngineConfig `yaml:"engine"`
	Store  StoreConfig  `yaml:"store"`
	LLM    LLMConfig    `yaml:"llm"`
	Canvas CanvasConfig `yaml:"canvas"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EngineConfig points at the external workflow execution engine.
type EngineConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// StoreConfig holds the embedded database settings.
type StoreConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// LLMConfig selects the hosted completion model the agents call.
type LLMConfig struct {
	Model string `yaml:"model"`
}

// CanvasConfig fixes the editor canvas extent used for position clamping.
type CanvasConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	NodeWidth  float64 `yaml:"node_width"`
	NodeHeight float64 `yaml:"node_height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8090},
		Engine: EngineConfig{Endpoint: "http://localhost:8091/execute"},
		Store:  StoreConfig{Path: "data/workflows"},
		LLM:    LLMConfig{Model: "gpt-4o-mini"},
		Canvas: CanvasConfig{Width: 1200, Height: 800, NodeWidth: 160, NodeHeight: 80},
	}
}

// Load reads a YAML config file and merges the defaults into any field left
// unset. An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, errors.Wrap(err, "merge config defaults")
	}
	return cfg, nil
}
