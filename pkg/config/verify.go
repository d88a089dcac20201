package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// schemaNode is the subset of json schema used for verification
type schemaNode struct {
	Ref        string                `json:"$ref"`
	Type       string                `json:"type"`
	Properties map[string]schemaNode `json:"properties"`
	Defs       map[string]schemaNode `json:"$defs"`
	Minimum    *float64              `json:"minimum"`
}

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema.
// Reports fields missing from the schema and numbers below the schema minimum.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema schemaNode
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := verifyObject("", configMap, schema, schema.Defs); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func verifyObject(path string, obj map[string]any, node schemaNode, defs map[string]schemaNode) error {
	node, err := resolve(node, defs)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := strings.TrimPrefix(path+"."+k, ".")
		prop, ok := node.Properties[k]
		if !ok {
			return fmt.Errorf("%s is not in schema", name)
		}
		switch v := obj[k].(type) {
		case map[string]any:
			if err := verifyObject(name, v, prop, defs); err != nil {
				return err
			}
		case float64:
			if prop.Minimum != nil && v < *prop.Minimum {
				return fmt.Errorf("%s must be at least %v", name, *prop.Minimum)
			}
		}
	}
	return nil
}

func resolve(node schemaNode, defs map[string]schemaNode) (schemaNode, error) {
	if node.Ref == "" {
		return node, nil
	}
	name := strings.TrimPrefix(node.Ref, "#/$defs/")
	def, ok := defs[name]
	if !ok {
		return schemaNode{}, fmt.Errorf("unresolved reference %s", node.Ref)
	}
	return def, nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
