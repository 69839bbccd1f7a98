// Package concept loads the input concept spec and derives fallback material
// from it. The spec is free-form JSON describing a science/engineering topic;
// only well-formedness is required, key names are a convention.
package concept

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Spec is the parsed concept specification. Keys are free-form; accessors
// probe the conventional names and default when absent.
type Spec struct {
	Fields map[string]any
}

// Load reads and parses a concept spec from path. A read or parse failure
// here is the only fatal error in the whole pipeline.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a concept spec from raw JSON bytes.
func Parse(data []byte) (*Spec, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse spec json: %w", err)
	}
	return &Spec{Fields: fields}, nil
}

// JSON renders the spec back to indented JSON for prompt embedding.
func (s *Spec) JSON() string {
	data, err := json.MarshalIndent(s.Fields, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Concept returns the concept name, probing the conventional keys.
func (s *Spec) Concept() string {
	for _, key := range []string{"Concept", "concept", "Title", "title"} {
		if v, ok := s.Fields[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "Unknown Concept"
}

// Description returns the concept description, or a generic one built from
// the concept name.
func (s *Spec) Description() string {
	for _, key := range []string{"Description", "description"} {
		if v, ok := s.Fields[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fmt.Sprintf("A simple simulation about %s.", s.Concept())
}
