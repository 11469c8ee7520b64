package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"collectionbuilder/querybuilder/pkg/query"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates an output format name.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(name)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", NewConfigError("output", fmt.Sprintf("unknown output format %q (use text or json)", name))
	}
}

// Formatter formats command output.
type Formatter interface {
	Format(data any) ([]byte, error)
	FormatTo(w io.Writer, data any) error
}

// TextFormatter formats output as plain text. Values implementing
// fmt.Stringer use their String method.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data any) ([]byte, error) {
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data any) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	default:
		return &TextFormatter{}
	}
}

// WriteTree draws the editor's tree, one node per line:
//
//	root 1
//	└── clause-group 2 AND [suppressed]
//	    └── clause 3 AND [suppressed] title:"dante" (en)
func WriteTree(w io.Writer, ed *query.Editor) error {
	if _, err := fmt.Fprintf(w, "root %s\n", ed.Root().ID); err != nil {
		return err
	}
	return writeChildren(w, ed.Root().Children, "")
}

func writeChildren(w io.Writer, children []query.Node, indent string) error {
	for i, child := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, branch, describe(child)); err != nil {
			return err
		}
		if g, ok := child.(*query.Group); ok {
			if err := writeChildren(w, g.Children, indent+next); err != nil {
				return err
			}
		}
	}
	return nil
}

func describe(n query.Node) string {
	attrs := n.Attrs()
	parts := []string{string(n.Kind()), attrs.ID, string(attrs.Operator)}

	var flags []string
	if attrs.Deprecated {
		flags = append(flags, "deprecated")
	}
	if attrs.Negated {
		flags = append(flags, "negated")
	}
	if attrs.OperatorSuppressed {
		flags = append(flags, "suppressed")
	}
	if len(flags) > 0 {
		parts = append(parts, "["+strings.Join(flags, ",")+"]")
	}

	if c, ok := n.(*query.Clause); ok {
		parts = append(parts, fmt.Sprintf("%s:%q", c.Field, c.Value))
		if c.Language != "" {
			parts = append(parts, "("+c.Language+")")
		}
	}
	return strings.Join(parts, " ")
}
