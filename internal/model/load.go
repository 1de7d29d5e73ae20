package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadProfile reads a profile from a .json, .yaml or .yml file. YAML input is
// normalised to JSON first so both go through the same schema validation.
func LoadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var m map[string]interface{}
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("parse profile yaml: %w", err)
		}
		if m == nil {
			return &Profile{}, nil
		}
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("normalise profile yaml: %w", err)
		}
		return DecodeProfile(raw)
	default:
		return DecodeProfile(b)
	}
}
