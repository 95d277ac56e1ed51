package taskfile

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func decodeYAML(data []byte) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode yaml tasks: %w", err)
	}

	var doc document
	if len(root.Content) == 0 {
		return fromDocument(doc), nil
	}
	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&doc.Tasks); err != nil {
			return nil, fmt.Errorf("decode yaml tasks: %w", err)
		}
	case yaml.MappingNode:
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml tasks: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode yaml tasks: expected a list or a mapping at line %d", node.Line)
	}
	return fromDocument(doc), nil
}
