// Package openapi loads and renders the machine-readable API description.
package openapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var source []byte

// Document is a validated OpenAPI description with pre-rendered encodings.
type Document struct {
	spec     *openapi3.T
	jsonBody []byte
	yamlBody []byte
}

// Load parses the embedded description, advertises serverURL when set, and
// validates the result.
func Load(ctx context.Context, serverURL string) (*Document, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(source)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if serverURL != "" {
		spec.Servers = openapi3.Servers{{URL: serverURL}}
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	jsonBody, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encode openapi json: %w", err)
	}
	yamlBody, err := toYAML(jsonBody)
	if err != nil {
		return nil, fmt.Errorf("encode openapi yaml: %w", err)
	}

	return &Document{spec: spec, jsonBody: jsonBody, yamlBody: yamlBody}, nil
}

// Title returns info.title.
func (d *Document) Title() string {
	return d.spec.Info.Title
}

// Version returns info.version.
func (d *Document) Version() string {
	return d.spec.Info.Version
}

// Spec exposes the parsed document.
func (d *Document) Spec() *openapi3.T {
	return d.spec
}

// JSON returns the document encoded as JSON.
func (d *Document) JSON() []byte {
	return d.jsonBody
}

// YAML returns the document encoded as block-style YAML.
func (d *Document) YAML() []byte {
	return d.yamlBody
}

// toYAML re-encodes JSON as YAML, keeping key order.
func toYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	clearStyle(&node)
	return yaml.Marshal(&node)
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		clearStyle(child)
	}
}
