package mapping

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// entry is one key/value pair of a YAML mapping node.
type entry struct {
	key   string
	value *yaml.Node
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return fmt.Sprintf("node kind %d", n.Kind)
	}
}

// resolve follows aliases so anchors can be reused inside manifests.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	return n
}

// isNull reports an explicit YAML null (~, null, or an empty value).
func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// isKeyword reports whether s is a $-prefixed keyword.
func isKeyword(s string) bool {
	return strings.HasPrefix(s, "$")
}

// singleKey returns the only key of a one-entry mapping.
func singleKey(n *yaml.Node) (string, *yaml.Node, bool) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, false
	}

	return n.Content[0].Value, resolve(n.Content[1]), true
}

// isEntityNode reports whether n looks like an entity constructor: a
// single non-$ key whose value is a mapping.
func isEntityNode(n *yaml.Node) bool {
	key, val, ok := singleKey(n)
	return ok && !isKeyword(key) && val != nil && val.Kind == yaml.MappingNode
}
