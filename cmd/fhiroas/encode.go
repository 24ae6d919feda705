package main

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"go.yaml.in/yaml/v4"
)

// encode renders doc as indented JSON or as block style YAML. YAML keeps the
// key order of the JSON rendering.
func encode(doc *openapi3.T, format string) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return append(b, '\n'), nil
	case "yaml":
		var node yaml.Node
		if err := yaml.Unmarshal(b, &node); err != nil {
			return nil, err
		}
		blockStyle(&node)
		return yaml.Marshal(&node)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// blockStyle clears the flow style the JSON source leaves on collections
// and the quoting it leaves on scalars.
func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, c := range n.Content {
		blockStyle(c)
	}
}
