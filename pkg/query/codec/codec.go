package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"collectionbuilder/querybuilder/pkg/query"

	"gopkg.in/yaml.v3"
)

// Format names a tree encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatXML  Format = "xml" // collection-builder stored query document
)

// DocumentVersion is written to YAML and JSON documents.
const DocumentVersion = 1

// ErrUnknownFormat is returned for formats other than yaml, json and xml.
var ErrUnknownFormat = errors.New("unknown tree format")

// DecodeError reports a document that could not be turned into a tree.
type DecodeError struct {
	Format Format
	Cause  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s query tree: %v", e.Format, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// ParseFormat converts a format name such as "yml" or "XML" to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Extension returns the file extension, with leading dot, used for f.
func (f Format) Extension() string {
	return "." + string(f)
}

// document is the YAML and JSON representation of a tree.
type document struct {
	Version int     `yaml:"version" json:"version"`
	Root    nodeDoc `yaml:"root" json:"root"`
}

type nodeDoc struct {
	Kind               query.Kind     `yaml:"kind" json:"kind"`
	ID                 string         `yaml:"id" json:"id"`
	Operator           query.Operator `yaml:"operator" json:"operator"`
	Deprecated         bool           `yaml:"deprecated" json:"deprecated"`
	Negated            bool           `yaml:"negated" json:"negated"`
	OperatorSuppressed bool           `yaml:"operator_suppressed" json:"operator_suppressed"`
	Language           string         `yaml:"lang,omitempty" json:"lang,omitempty"`
	Field              string         `yaml:"field,omitempty" json:"field,omitempty"`
	Value              string         `yaml:"value,omitempty" json:"value,omitempty"`
	Children           []nodeDoc      `yaml:"children,omitempty" json:"children,omitempty"`
}

// Encode renders the editor's tree in the given format.
func Encode(ed *query.Editor, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(toDocument(ed.Root()))
	case FormatJSON:
		return json.MarshalIndent(toDocument(ed.Root()), "", "  ")
	case FormatXML:
		return encodeXML(ed.Root())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Decode parses a tree and returns an editor owning it. Options are passed to
// the editor.
func Decode(data []byte, f Format, opts ...query.Option) (*query.Editor, error) {
	var (
		root *query.Group
		err  error
	)
	switch f {
	case FormatYAML, FormatJSON:
		root, err = decodeDocument(data, f)
	case FormatXML:
		root, err = decodeXML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, &DecodeError{Format: f, Cause: err}
	}

	ed, err := query.FromRoot(root, opts...)
	if err != nil {
		return nil, &DecodeError{Format: f, Cause: err}
	}
	return ed, nil
}

func decodeDocument(data []byte, f Format) (*query.Group, error) {
	var doc document
	var err error
	if f == FormatYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, err
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	if doc.Root.Kind != "" && doc.Root.Kind != query.KindGroup {
		return nil, fmt.Errorf("root must be a %s, got %q", query.KindGroup, doc.Root.Kind)
	}
	doc.Root.Kind = query.KindGroup

	n, err := fromNodeDoc(doc.Root)
	if err != nil {
		return nil, err
	}
	return n.(*query.Group), nil
}

func toDocument(root *query.Group) document {
	return document{Version: DocumentVersion, Root: toNodeDoc(root)}
}

func toNodeDoc(n query.Node) nodeDoc {
	attrs := n.Attrs()
	doc := nodeDoc{
		Kind:               n.Kind(),
		ID:                 attrs.ID,
		Operator:           attrs.Operator,
		Deprecated:         attrs.Deprecated,
		Negated:            attrs.Negated,
		OperatorSuppressed: attrs.OperatorSuppressed,
	}
	switch n := n.(type) {
	case *query.Clause:
		doc.Language = n.Language
		doc.Field = n.Field
		doc.Value = n.Value
	case *query.Group:
		for _, child := range n.Children {
			doc.Children = append(doc.Children, toNodeDoc(child))
		}
	}
	return doc
}

func fromNodeDoc(doc nodeDoc) (query.Node, error) {
	op, err := parseOperator(string(doc.Operator))
	if err != nil {
		return nil, err
	}
	attrs := query.Attributes{
		ID:                 doc.ID,
		Operator:           op,
		Deprecated:         doc.Deprecated,
		Negated:            doc.Negated,
		OperatorSuppressed: doc.OperatorSuppressed,
	}

	switch doc.Kind {
	case query.KindClause:
		if attrs.ID == "" {
			return nil, errors.New("clause without id")
		}
		if len(doc.Children) > 0 {
			return nil, fmt.Errorf("clause %q has children", doc.ID)
		}
		return &query.Clause{
			Attributes: attrs,
			Language:   doc.Language,
			Field:      doc.Field,
			Value:      doc.Value,
		}, nil
	case query.KindGroup:
		g := &query.Group{Attributes: attrs}
		for _, childDoc := range doc.Children {
			if childDoc.ID == "" {
				return nil, fmt.Errorf("%s without id", childDoc.Kind)
			}
			child, err := fromNodeDoc(childDoc)
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, child)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", doc.Kind)
	}
}

// parseOperator accepts AND/OR in any case; a missing operator means AND.
func parseOperator(s string) (query.Operator, error) {
	if s == "" {
		return query.OperatorAnd, nil
	}
	op := query.Operator(strings.ToUpper(s))
	if !op.Valid() {
		return "", fmt.Errorf("%w: %q", query.ErrInvalidOperator, s)
	}
	return op, nil
}
