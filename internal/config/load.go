package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"jiradigest/internal/apperr"
)

// Load builds a config from an optional file (JSON or YAML), then the
// environment, then defaults. It does not validate; callers pick Validate or
// ValidateDryRun depending on whether the run delivers.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	if strings.TrimSpace(path) != "" {
		parsed, err := ParseFile(path)
		if err != nil {
			return nil, apperr.Config(err)
		}
		cfg = parsed
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, apperr.Config(err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ParseFile decodes path strictly: unknown keys and trailing data are errors.
func ParseFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseBytes(path, b)
}

func parseBytes(path string, b []byte) (*Config, error) {
	format := fileFormat(path)
	jb := b
	if format == "yaml" {
		var err error
		if jb, err = yamlToJSON(path, b); err != nil {
			return nil, err
		}
	} else if len(bytes.TrimSpace(jb)) == 0 {
		jb = []byte("{}")
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s config %s: %w", format, path, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%s config %s: trailing data", format, path)
		}
		return nil, err
	}
	return &cfg, nil
}
