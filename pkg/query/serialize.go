package query

import (
	"strings"
)

// MatchAll is the query rendered for a tree without any defined clause.
const MatchAll = "*:*"

// Serialize renders the whole tree as a Solr boolean query string.
func (e *Editor) Serialize() string {
	if !e.isDefined() {
		return MatchAll
	}
	return serializeChildren(e.root)
}

// SerializeNode renders a single node the way it appears inside the full query,
// minus any operator it would carry. Deprecated or empty nodes render as "".
func (e *Editor) SerializeNode(id string) (string, bool) {
	n, ok := e.index[id]
	if !ok {
		return "", false
	}
	if !e.isDefined() {
		return MatchAll, true
	}
	if g, ok := n.(*Group); ok && g == e.root {
		return serializeChildren(g), true
	}
	return stripLeadingOperator(collapse(renderNode(n, true))), true
}

// isDefined reports whether any clause in the tree has both a field and a value.
func (e *Editor) isDefined() bool {
	defined := false
	e.Walk(func(n Node) bool {
		if c, ok := n.(*Clause); ok && strings.TrimSpace(c.Field) != "" && strings.TrimSpace(c.Value) != "" {
			defined = true
		}
		return !defined
	})
	return defined
}

func serializeChildren(g *Group) string {
	var b strings.Builder
	for _, child := range g.Children {
		b.WriteString(renderNode(child, false))
	}
	return stripLeadingOperator(collapse(b.String()))
}

// renderNode returns " <op> <neg>term" for n, or "" when n contributes
// nothing. bare drops the operator.
func renderNode(n Node, bare bool) string {
	attrs := n.Attrs()
	if attrs.Deprecated {
		return ""
	}

	var term string
	switch n := n.(type) {
	case *Clause:
		field := strings.TrimSpace(n.Field)
		value := strings.TrimSpace(n.Value)
		if field == "" || value == "" {
			return ""
		}
		if value != Wildcard {
			value = `"` + value + `"`
		}
		term = field + ":" + value
	case *Group:
		inner := serializeChildren(n)
		if inner == "" {
			return ""
		}
		term = "(" + inner + ")"
	}

	op := ""
	if !bare && !attrs.OperatorSuppressed {
		op = string(attrs.Operator)
	}
	neg := ""
	if attrs.Negated {
		neg = "-"
	}
	return " " + op + " " + neg + term
}

// collapse folds runs of whitespace into single spaces and trims the result.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripLeadingOperator removes an AND/OR token left at the start of s.
func stripLeadingOperator(s string) string {
	for _, op := range []Operator{OperatorAnd, OperatorOr} {
		if rest, ok := strings.CutPrefix(s, string(op)+" "); ok {
			return rest
		}
		if s == string(op) {
			return ""
		}
	}
	return s
}
