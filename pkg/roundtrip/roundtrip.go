// Package roundtrip persists a node's data back to its origin file.
// It edits the parsed yaml.Node document in place instead of
// re-serializing the merged data, so key order and comments in the
// untouched parts of the file survive the write: locate the mapping
// that corresponds to the node, patch its entries, leave the rest of
// the document alone.
package roundtrip

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/tree"
	"github.com/teemtee/fmf/pkg/value"
)

// Save writes n's OriginalData back to the last file in its Sources,
// patching only the mapping that corresponds to n within that file.
func Save(n *tree.Node) error {
	file, segments, err := locate(n)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return fmferrors.NewFile(file, err, "failed to read origin file")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmferrors.NewYAML(file, err, "failed to parse origin file")
	}

	mapping := documentMapping(&doc)
	for _, seg := range segments {
		mapping = descend(mapping, "/"+seg)
	}

	patch(mapping, n.OriginalData)

	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmferrors.NewFile(file, err, "failed to serialize")
	}
	if err := enc.Close(); err != nil {
		return fmferrors.NewFile(file, err, "failed to serialize")
	}

	if err := os.WriteFile(file, out.Bytes(), 0o644); err != nil {
		return fmferrors.NewFile(file, err, "failed to write origin file")
	}
	return nil
}

// locate finds the file the write goes to and the scope-key segments
// leading from that file's own node down to n: while a node shares
// its last source with its parent, its data lives under a '/segment'
// key of the parent's mapping rather than at the file's top level.
func locate(n *tree.Node) (file string, segments []string, err error) {
	if len(n.Sources) == 0 {
		return "", nil, fmferrors.NewGeneral("node '%s' has no source file to save to", n.Name)
	}

	node := n
	for node.Parent != nil && len(node.Parent.Sources) > 0 &&
		lastSource(node) == lastSource(node.Parent) {
		segments = append([]string{lastNameSegment(node.Name)}, segments...)
		node = node.Parent
	}
	return lastSource(n), segments, nil
}

func lastSource(n *tree.Node) string { return n.Sources[len(n.Sources)-1] }

func lastNameSegment(name string) string {
	idx := strings.LastIndex(name, "/")
	return name[idx+1:]
}

// documentMapping returns the document's top-level mapping node,
// materializing one for a previously empty file.
func documentMapping(doc *yaml.Node) *yaml.Node {
	if len(doc.Content) == 0 {
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		doc.Kind = yaml.DocumentNode
		doc.Content = []*yaml.Node{mapping}
		return mapping
	}
	return doc.Content[0]
}

// descend returns the mapping stored under key, creating an empty one
// if the key is absent or holds a non-mapping value.
func descend(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			if mapping.Content[i+1].Kind != yaml.MappingNode {
				mapping.Content[i+1] = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			}
			return mapping.Content[i+1]
		}
	}
	child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	mapping.Content = append(mapping.Content,
		scalarNode(key), child)
	return child
}

// patch makes mapping's plain data entries match data: existing keys
// are updated in place (their key nodes, and therefore their
// comments, survive), new keys are appended, and stale plain keys are
// dropped. Scope keys and the '/' directive are left untouched; they
// describe other nodes.
func patch(mapping *yaml.Node, data *value.Map) {
	keep := map[string]bool{}
	data.Iterate(func(k string, v value.Value) {
		keep[k] = true
		setEntry(mapping, k, v)
	})

	var content []*yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		if strings.HasPrefix(key, "/") || keep[key] {
			content = append(content, mapping.Content[i], mapping.Content[i+1])
		}
	}
	mapping.Content = content
}

func setEntry(mapping *yaml.Node, key string, v value.Value) {
	encoded := encodeValue(v)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = encoded
			return
		}
	}
	mapping.Content = append(mapping.Content, scalarNode(key), encoded)
}

// encodeValue converts a value.Value into a yaml.Node, building
// mapping nodes by hand so insertion order survives (yaml.Node.Encode
// over a Go map would not preserve it).
func encodeValue(v value.Value) *yaml.Node {
	switch tv := v.(type) {
	case value.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}
	case value.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(tv))}
	case value.Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(tv), 10)}
	case value.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(float64(tv), 'g', -1, 64)}
	case value.String:
		return scalarNode(string(tv))
	case *value.List:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range tv.Items {
			node.Content = append(node.Content, encodeValue(item))
		}
		return node
	case *value.Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		tv.Iterate(func(k string, val value.Value) {
			node.Content = append(node.Content, scalarNode(k), encodeValue(val))
		})
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}
	}
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
