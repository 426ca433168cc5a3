// Package loader parses a single .fmf YAML file into an ordered
// value.Map, detecting duplicate keys and reporting file-scoped
// errors.
//
// Rather than unmarshal into map[string]interface{} (which discards
// insertion order and silently keeps the last of any duplicate key),
// the loader walks the raw *yaml.Node document tree that
// gopkg.in/yaml.v3 exposes: a YAML mapping decodes as a flat Content
// slice of alternating key/value nodes in source order, which gives
// exactly the ordering and duplicate-detection granularity node data
// needs.
package loader

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/value"
)

// Load parses content (the bytes of a single .fmf file) and returns its
// top-level mapping as an ordered value.Map. An empty file yields an
// empty map. file is used only for error reporting.
func Load(file string, content []byte) (*value.Map, error) {
	if len(strings.TrimSpace(string(content))) == 0 {
		return value.NewMap(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmferrors.NewYAML(file, err, "failed to parse YAML")
	}

	// An empty document (e.g. a file containing only comments) decodes
	// with no content at all.
	if len(doc.Content) == 0 {
		return value.NewMap(), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmferrors.NewYAML(file, nil,
			"root of an fmf file must be a mapping, got %s", describeKind(root))
	}

	return decodeMapping(file, root)
}

func describeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unsupported node"
	}
}

// decodeMapping converts a yaml.v3 MappingNode into an ordered
// value.Map, raising FileError on a duplicate key within the mapping.
func decodeMapping(file string, n *yaml.Node) (*value.Map, error) {
	m := value.NewMap()
	seen := map[string]bool{}

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode := n.Content[i]
		valNode := n.Content[i+1]

		key, err := decodeScalarKey(keyNode)
		if err != nil {
			return nil, fmferrors.NewYAML(file, err, "invalid mapping key at line %d", keyNode.Line)
		}

		if seen[key] {
			return nil, fmferrors.NewFile(file, nil, "duplicate key '%s' at line %d", key, keyNode.Line)
		}
		seen[key] = true

		v, err := decodeNode(file, valNode)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}

	return m, nil
}

func decodeScalarKey(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmferrors.NewGeneral("mapping keys must be scalars")
	}
	return n.Value, nil
}

func decodeNode(file string, n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return decodeScalar(n), nil
	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := decodeNode(file, child)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return &value.List{Items: items}, nil
	case yaml.MappingNode:
		return decodeMapping(file, n)
	case yaml.AliasNode:
		return decodeNode(file, n.Alias)
	default:
		return value.Null{}, nil
	}
}

func decodeScalar(n *yaml.Node) value.Value {
	tag := n.Tag
	switch tag {
	case "!!null":
		return value.Null{}
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err == nil {
			return value.Bool(b)
		}
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err == nil {
			return value.Int(i)
		}
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err == nil {
			return value.Float(f)
		}
	}
	// "!!str" and anything unrecognized is treated as a string; this
	// also covers explicitly double/single-quoted scalars whose Tag is
	// still resolved to !!str by the decoder.
	return value.String(n.Value)
}
