package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if LEXARA_CONFIG is set
//  3. env (prefix LEXARA_, double underscore as section separator)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("LEXARA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// LEXARA_ADDR -> addr, LEXARA_DATABASE__URL -> database.url
	envProvider := env.Provider("LEXARA_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "LEXARA_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.Anchor.MaxAttempts < 1 {
		return nil, errors.New("anchor.max_attempts must be at least 1")
	}
	if cfg.Score.ShrinkageK < 0 {
		return nil, errors.New("score.shrinkage_k must not be negative")
	}
	return &cfg, nil
}
