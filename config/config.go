// Package config resolves omnisearch's engine configuration using Viper,
// supporting YAML/JSON config files, environment-variable API keys, and
// XDG-style path resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/lookatitude/omnisearch/schema"
)

// Config holds everything the orchestrator needs to run: the configured
// engines and the order to try them in when a run doesn't specify one.
type Config struct {
	Engines            []schema.EngineConfig `mapstructure:"engines"`
	DefaultEngineOrder []schema.EngineId     `mapstructure:"defaultEngineOrder"`
}

// fileName is the base config file name searched for in each candidate
// directory, without extension.
const fileName = "omnisearch.config"

// candidateDirs returns the directories searched, in precedence order, when
// no explicit path is given: cwd, then $XDG_CONFIG_HOME/omnisearch (or
// ~/.config/omnisearch if unset).
func candidateDirs() []string {
	dirs := []string{"."}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		if home, err := os.UserHomeDir(); err == nil {
			xdgConfig = filepath.Join(home, ".config")
		}
	}
	if xdgConfig != "" {
		dirs = append(dirs, filepath.Join(xdgConfig, "omnisearch"))
	}

	return dirs
}

// Load resolves and parses the effective configuration.
//
// Resolution order: explicitPath (if non-empty) → ./omnisearch.config.{yaml,json}
// → $XDG_CONFIG_HOME/omnisearch/omnisearch.config.{yaml,json} → ~/.config/omnisearch/….
// Within a directory, a YAML file (.yaml, then .yml) takes precedence over a
// JSON one. The XDG directory is searched for the same omnisearch.config base
// name as the working directory. If no file is found anywhere in the search
// order, DefaultConfig is returned.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", explicitPath, err)
		}
		return decode(v)
	}

	for _, dir := range candidateDirs() {
		for _, ext := range []string{"yaml", "yml", "json"} {
			path := filepath.Join(dir, fileName+"."+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
			return decode(v)
		}
	}
	return DefaultConfig(), nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}

// freeTierEngine describes one candidate engine for default-config
// synthesis, in fixed generosity order.
type freeTierEngine struct {
	typ       string
	id        schema.EngineId
	apiKeyEnv string
	quota     int
}

// freeTierOrder is the fixed generosity ordering used when synthesizing the
// default configuration: the local engine first (unlimited), then cloud
// engines from largest to smallest free monthly quota.
var freeTierOrder = []freeTierEngine{
	{typ: "searxng", id: "searxng", apiKeyEnv: ""},
	{typ: "tavily", id: "tavily", apiKeyEnv: "TAVILY_API_KEY", quota: 1000},
	{typ: "brave", id: "brave", apiKeyEnv: "BRAVE_API_KEY", quota: 2000},
	{typ: "linkup", id: "linkup", apiKeyEnv: "LINKUP_API_KEY"},
}

// DefaultConfig synthesizes the built-in configuration used when no config
// file is found: the local subprocess-backed engine plus any cloud engine
// whose API-key environment variable is set, ordered by free-tier
// generosity (searxng > tavily > brave > linkup).
func DefaultConfig() *Config {
	cfg := &Config{}

	for _, e := range freeTierOrder {
		if e.apiKeyEnv != "" && os.Getenv(e.apiKeyEnv) == "" {
			continue
		}
		cfg.Engines = append(cfg.Engines, defaultEngineConfig(e))
		cfg.DefaultEngineOrder = append(cfg.DefaultEngineOrder, e.id)
	}

	return cfg
}

func defaultEngineConfig(e freeTierEngine) schema.EngineConfig {
	ec := schema.EngineConfig{
		Type:                e.typ,
		Id:                  e.id,
		Enabled:             true,
		DisplayName:         e.id.DisplayName(),
		MonthlyQuota:        e.quota,
		CreditCostPerSearch: 1,
		APIKeyEnv:           e.apiKeyEnv,
	}

	switch e.typ {
	case "searxng":
		ec.MonthlyQuota = 0
		ec.CreditCostPerSearch = 0
		ec.DefaultLimit = 10
		ec.Docker = &schema.DockerLifecycleConfig{
			AutoStart:      true,
			AutoStop:       true,
			ComposeFile:    "searxng/docker-compose.yml",
			ContainerName:  "omnisearch-searxng",
			HealthEndpoint: "http://localhost:8080/healthz",
			InitTimeoutMs:  30000,
		}
	case "tavily":
		ec.SearchDepth = schema.SearchDepthBasic
	case "brave":
		ec.DefaultLimit = 10
	case "linkup":
		ec.Docker = &schema.DockerLifecycleConfig{
			AutoStart:      true,
			AutoStop:       true,
			ComposeFile:    "linkup/docker-compose.yml",
			ContainerName:  "omnisearch-linkup",
			HealthEndpoint: "http://localhost:8089/healthz",
			InitTimeoutMs:  30000,
		}
	}

	return ec
}
