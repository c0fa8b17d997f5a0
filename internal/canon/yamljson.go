package canon

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"gopkg.in/yaml.v3"
)

// CanonicalizeYAML implements the YAML -> value -> JSON -> JCS pipeline
// from spec.md §4.1. It also accepts plain JSON input, since JSON is a
// subset of YAML 1.2 and the spec treats both under one rule set.
func CanonicalizeYAML(content []byte) ([]byte, error) {
	var value interface{}
	if err := yaml.Unmarshal(content, &value); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	normalized := normalizeYAMLValue(value)

	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("marshal intermediate json: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("jcs transform: %w", err)
	}
	return canonical, nil
}

// MarshalJCS serializes v straight to JCS (RFC 8785) canonical JSON.
// This is the one emission path for receipts and for the gate/status/
// resume JSON documents, so identical inputs always produce
// byte-identical output.
func MarshalJCS(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("jcs transform: %w", err)
	}
	return canonical, nil
}

// normalizeYAMLValue converts yaml.v3's decoded shapes (which may produce
// map[string]interface{} already, but nested documents or anchors can
// yield map[interface{}]interface{} in some decode paths) into types
// encoding/json can marshal, with all map keys coerced to strings so JCS's
// object-key ordering rule applies uniformly.
func normalizeYAMLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, vv := range val {
			out[k] = normalizeYAMLValue(vv)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, vv := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAMLValue(vv)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, vv := range val {
			out[i] = normalizeYAMLValue(vv)
		}
		return out
	default:
		return val
	}
}
