package query

// Kind identifies the variant of a query tree node.
type Kind string

const (
	KindClause Kind = "clause"       // field:value term
	KindGroup  Kind = "clause-group" // parenthesized group of nodes
)

// Operator is the boolean conjunction joining a node to its previous active sibling.
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	return op == OperatorAnd || op == OperatorOr
}

// DefaultLanguage is the language tag given to clauses created without one.
const DefaultLanguage = "en"

// Wildcard is the value that is rendered without quotes.
const Wildcard = "*"

// Attributes holds the state shared by every node variant.
type Attributes struct {
	// ID is assigned at creation and never changes.
	ID string

	// Operator joins the node to the previous active sibling.
	Operator Operator

	// Deprecated excludes the node from rendering and position counting.
	Deprecated bool

	// Negated renders a "-" prefix.
	Negated bool

	// OperatorSuppressed is derived by the editor and must not be set by callers.
	OperatorSuppressed bool
}

// Node is a clause or a clause group. The interface is closed: only *Clause and
// *Group implement it.
type Node interface {
	Kind() Kind
	Attrs() *Attributes
	isNode()
}

// Clause is a leaf node holding a single field:value term.
type Clause struct {
	Attributes
	Language string
	Field    string
	Value    string
}

// Kind returns KindClause.
func (c *Clause) Kind() Kind { return KindClause }

// Attrs returns the clause's shared attributes.
func (c *Clause) Attrs() *Attributes { return &c.Attributes }

func (*Clause) isNode() {}

// Group is an internal node whose children are rendered inside parentheses.
type Group struct {
	Attributes
	Children []Node
}

// Kind returns KindGroup.
func (g *Group) Kind() Kind { return KindGroup }

// Attrs returns the group's shared attributes.
func (g *Group) Attrs() *Attributes { return &g.Attributes }

func (*Group) isNode() {}

// IsActive reports whether n is not deprecated.
func IsActive(n Node) bool {
	return !n.Attrs().Deprecated
}

// walk visits n and every descendant in depth-first, document order.
// Returning false from fn stops the traversal.
func walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	if g, ok := n.(*Group); ok {
		for _, child := range g.Children {
			if !walk(child, fn) {
				return false
			}
		}
	}
	return true
}

// hasActiveClause reports whether any clause below g is not deprecated.
// Intermediate groups are looked through regardless of their own state.
func hasActiveClause(g *Group) bool {
	found := false
	for _, child := range g.Children {
		walk(child, func(n Node) bool {
			if c, ok := n.(*Clause); ok && !c.Deprecated {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}
