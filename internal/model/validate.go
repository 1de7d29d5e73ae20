package model

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed profile.schema.json
var profileSchema string

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// ValidationError lists every schema violation found in a profile payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "profile validation failed: " + strings.Join(e.Problems, "; ")
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchema))
	})
	return schema, schemaErr
}

// Validate checks a raw JSON payload against profile.schema.json.
func Validate(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile profile schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	if res.Valid() {
		return nil
	}
	problems := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		problems = append(problems, e.String())
	}
	return &ValidationError{Problems: problems}
}

// ValidateMap validates an already decoded document.
func ValidateMap(m map[string]interface{}) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return Validate(b)
}

// DecodeProfile validates raw and decodes it. An empty payload yields an empty
// profile.
func DecodeProfile(raw []byte) (*Profile, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return &Profile{}, nil
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}
