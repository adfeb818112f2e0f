package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	// parse schema
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	root, err := resolveRef(&schema, &schema)
	if err != nil {
		return err
	}
	if err := validateRequiredFields(&schema, root, configMap, ""); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// validateRequiredFields walks the schema definitions and checks every required property is set
func validateRequiredFields(top, def *jsonschema.Schema, values map[string]any, prefix string) error {
	for _, name := range def.Required {
		v, ok := values[name]
		if !ok || isZero(v) {
			return fmt.Errorf("%s%s is required", prefix, name)
		}
	}

	if def.Properties == nil {
		return nil
	}
	for pair := def.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil || pair.Value.Ref == "" {
			continue
		}
		nested, ok := values[pair.Key].(map[string]any)
		if !ok {
			continue
		}
		sub, err := resolveRef(top, pair.Value)
		if err != nil {
			return err
		}
		if err := validateRequiredFields(top, sub, nested, prefix+pair.Key+"."); err != nil {
			return err
		}
	}
	return nil
}

// resolveRef returns the definition a "#/$defs/Name" reference points to
func resolveRef(top, s *jsonschema.Schema) (*jsonschema.Schema, error) {
	if s.Ref == "" {
		return s, nil
	}
	name := strings.TrimPrefix(s.Ref, "#/$defs/")
	def, ok := top.Definitions[name]
	if !ok {
		return nil, fmt.Errorf("schema definition %q not found", s.Ref)
	}
	return def, nil
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{RequiredFromJSONSchemaTags: true}
	return r.Reflect(&Config{})
}
