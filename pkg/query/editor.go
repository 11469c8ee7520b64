package query

import (
	"fmt"
	"log/slog"
	"slices"
)

// Editor owns a query tree and keeps its derived state consistent.
//
// Every structural or deprecation mutation is followed by a full recompute of
// operator suppression. An Editor is not safe for concurrent use.
type Editor struct {
	root   *Group
	ids    IDGenerator
	logger *slog.Logger

	// index maps every node id (root included) to its node.
	index map[string]Node

	// parents maps every non-root node id to its parent group.
	parents map[string]*Group
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator sets the generator used for new node ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Editor) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithLogger sets the logger used for mutation tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func newEditor(opts []Option) *Editor {
	e := &Editor{
		ids:     UUIDGenerator{},
		logger:  slog.Default(),
		index:   make(map[string]Node),
		parents: make(map[string]*Group),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "query.editor")
	return e
}

// NewEditor returns an editor holding an empty tree.
func NewEditor(opts ...Option) *Editor {
	e := newEditor(opts)
	e.root = &Group{Attributes: Attributes{ID: e.ids.NewID(), Operator: OperatorAnd}}
	e.reindex()
	e.recomputeSuppression()
	return e
}

// NewSeededEditor returns an editor whose tree holds one blank group containing
// one blank clause, the starting point for a new query.
func NewSeededEditor(opts ...Option) *Editor {
	e := NewEditor(opts...)
	group := e.NewGroup(OperatorAnd, false, false)
	e.Add(group, "")
	e.Add(e.NewClause(OperatorAnd, "", "", DefaultLanguage, false, false), group.ID)
	return e
}

// FromRoot adopts an existing tree, typically one that was just decoded.
// Every node below the root needs a unique, non-empty id. Derived flags are
// recomputed; stored suppression values are not trusted.
func FromRoot(root *Group, opts ...Option) (*Editor, error) {
	if root == nil {
		return nil, fmt.Errorf("query: nil root")
	}
	e := newEditor(opts)
	e.root = root
	if root.ID == "" {
		root.ID = e.ids.NewID()
	}
	seen := make(map[string]struct{})
	var dup string
	var blank bool
	walk(root, func(n Node) bool {
		id := n.Attrs().ID
		if id == "" {
			blank = true
			return false
		}
		if _, ok := seen[id]; ok {
			dup = id
			return false
		}
		seen[id] = struct{}{}
		return true
	})
	if blank {
		return nil, fmt.Errorf("query: node without id")
	}
	if dup != "" {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, dup)
	}
	root.Deprecated = false
	e.reindex()
	e.recomputeSuppression()
	return e, nil
}

// Root returns the root group. Callers must not modify the tree through it.
func (e *Editor) Root() *Group {
	return e.root
}

// Len returns the number of nodes in the tree, excluding the root.
func (e *Editor) Len() int {
	return len(e.index) - 1
}

// IDs returns the ids of every non-root node in document order.
func (e *Editor) IDs() []string {
	ids := make([]string, 0, e.Len())
	e.Walk(func(n Node) bool {
		ids = append(ids, n.Attrs().ID)
		return true
	})
	return ids
}

// Walk visits every non-root node depth-first in document order until fn
// returns false.
func (e *Editor) Walk(fn func(Node) bool) {
	for _, child := range e.root.Children {
		if !walk(child, fn) {
			return
		}
	}
}

// NewClause creates a detached clause with a fresh identifier.
func (e *Editor) NewClause(op Operator, field, value, language string, deprecated, negated bool) *Clause {
	return &Clause{
		Attributes: Attributes{
			ID:         e.ids.NewID(),
			Operator:   op,
			Deprecated: deprecated,
			Negated:    negated,
		},
		Language: language,
		Field:    field,
		Value:    value,
	}
}

// NewGroup creates a detached, empty clause group with a fresh identifier.
func (e *Editor) NewGroup(op Operator, deprecated, negated bool) *Group {
	return &Group{
		Attributes: Attributes{
			ID:         e.ids.NewID(),
			Operator:   op,
			Deprecated: deprecated,
			Negated:    negated,
		},
	}
}

// Retrieve returns the node with the given id.
func (e *Editor) Retrieve(id string) (Node, bool) {
	n, ok := e.index[id]
	return n, ok
}

// Parent returns the group directly containing the node with the given id.
// The root has no parent.
func (e *Editor) Parent(id string) (*Group, bool) {
	p, ok := e.parents[id]
	return p, ok
}

// Add appends n as the last child of the group parentID, or of the root when
// parentID is empty. The new node's negation and operator are defaulted from
// its existing siblings. Add reports false and leaves the tree unchanged when
// the parent is missing or is a clause, or when n has an empty id or reuses an
// id already present.
func (e *Editor) Add(n Node, parentID string) bool {
	parent, ok := e.group(parentID)
	if !ok || n == nil || !e.canAttach(n) {
		e.logger.Debug("add rejected", "node_id", nodeID(n), "parent_id", parentID)
		return false
	}
	e.attach(n, parent, len(parent.Children))
	e.logger.Debug("node added", "node_id", n.Attrs().ID, "kind", n.Kind(), "parent_id", parent.ID)
	return true
}

// Remove detaches the node and its subtree. The root cannot be removed.
func (e *Editor) Remove(id string) bool {
	parent, ok := e.parents[id]
	if !ok {
		return false
	}
	parent.Children = slices.DeleteFunc(parent.Children, func(n Node) bool {
		return n.Attrs().ID == id
	})
	e.reindex()
	e.recomputeSuppression()
	e.logger.Debug("node removed", "node_id", id, "parent_id", parent.ID)
	return true
}

// Deprecate marks the node as deprecated.
func (e *Editor) Deprecate(id string) bool {
	return e.setDeprecated(id, true)
}

// Undeprecate reactivates a deprecated node.
func (e *Editor) Undeprecate(id string) bool {
	return e.setDeprecated(id, false)
}

func (e *Editor) setDeprecated(id string, deprecated bool) bool {
	n, ok := e.node(id)
	if !ok {
		return false
	}
	n.Attrs().Deprecated = deprecated
	e.recomputeSuppression()
	e.logger.Debug("deprecation changed", "node_id", id, "deprecated", deprecated)
	return true
}

// Negate sets the node's negation flag. Siblings are not affected.
func (e *Editor) Negate(id string) bool {
	return e.setNegated(id, true)
}

// Unnegate clears the node's negation flag.
func (e *Editor) Unnegate(id string) bool {
	return e.setNegated(id, false)
}

func (e *Editor) setNegated(id string, negated bool) bool {
	n, ok := e.node(id)
	if !ok {
		return false
	}
	n.Attrs().Negated = negated
	return true
}

// SetField changes a clause's field.
func (e *Editor) SetField(id, field string) bool {
	c, ok := e.clause(id)
	if !ok {
		return false
	}
	c.Field = field
	return true
}

// SetValue changes a clause's value.
func (e *Editor) SetValue(id, value string) bool {
	c, ok := e.clause(id)
	if !ok {
		return false
	}
	c.Value = value
	return true
}

// SetLanguage changes a clause's language tag.
func (e *Editor) SetLanguage(id, language string) bool {
	c, ok := e.clause(id)
	if !ok {
		return false
	}
	c.Language = language
	return true
}

// SetOperator changes the node's operator. The change is rejected with an
// *InconsistentOperatorError when another active, non-suppressed sibling uses
// a different operator. Unknown ids are ignored.
func (e *Editor) SetOperator(id string, op Operator) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOperator, op)
	}
	n, ok := e.node(id)
	if !ok {
		return nil
	}
	if conflict, ok := e.conflictingSibling(op, id); ok {
		return &InconsistentOperatorError{
			NodeID:      id,
			Wanted:      op,
			Conflicting: conflict.Attrs().ID,
			Existing:    conflict.Attrs().Operator,
		}
	}
	n.Attrs().Operator = op
	return nil
}

// ConvertToGroup wraps the node in a new group that takes the node's place in
// its parent. The node keeps its own attributes; the group is defaulted from
// its new siblings as Add would. It returns the new group's id, or false with
// the tree unchanged when the generated id is already in use.
func (e *Editor) ConvertToGroup(id string) (string, bool) {
	parent, ok := e.parents[id]
	if !ok {
		return "", false
	}
	group := e.NewGroup(OperatorAnd, false, false)
	if !e.canAttach(group) {
		e.logger.Debug("convert rejected", "node_id", id, "group_id", group.ID)
		return "", false
	}

	slot := slices.IndexFunc(parent.Children, func(n Node) bool {
		return n.Attrs().ID == id
	})
	n := parent.Children[slot]
	parent.Children = slices.Delete(parent.Children, slot, slot+1)
	group.Children = append(group.Children, n)
	e.attach(group, parent, slot)
	e.logger.Debug("node converted to group", "node_id", id, "group_id", group.ID)
	return group.ID, true
}

// attach inserts n into parent at position, applies sibling defaulting and
// restores the invariants.
func (e *Editor) attach(n Node, parent *Group, position int) {
	attrs := n.Attrs()
	attrs.Negated = defaultNegation(parent.Children)
	attrs.Operator = defaultOperator(parent.Children)
	parent.Children = slices.Insert(parent.Children, position, n)
	e.reindex()
	e.recomputeSuppression()
}

// defaultNegation is true when any existing sibling is negated.
func defaultNegation(siblings []Node) bool {
	return slices.ContainsFunc(siblings, func(n Node) bool {
		return n.Attrs().Negated
	})
}

// defaultOperator is OR when any existing sibling uses OR.
func defaultOperator(siblings []Node) Operator {
	if slices.ContainsFunc(siblings, func(n Node) bool {
		return n.Attrs().Operator == OperatorOr
	}) {
		return OperatorOr
	}
	return OperatorAnd
}

// canAttach reports whether every id in n's subtree is non-empty, not already
// in the tree and not repeated within the subtree. The empty id names the root.
func (e *Editor) canAttach(n Node) bool {
	seen := make(map[string]struct{})
	ok := true
	walk(n, func(m Node) bool {
		id := m.Attrs().ID
		if id == "" {
			ok = false
		} else if _, exists := e.index[id]; exists {
			ok = false
		} else if _, repeated := seen[id]; repeated {
			ok = false
		}
		seen[id] = struct{}{}
		return ok
	})
	return ok
}

// reindex rebuilds the id and parent maps from the tree.
func (e *Editor) reindex() {
	clear(e.index)
	clear(e.parents)
	e.index[e.root.ID] = e.root
	var visit func(g *Group)
	visit = func(g *Group) {
		for _, child := range g.Children {
			id := child.Attrs().ID
			e.index[id] = child
			e.parents[id] = g
			if sub, ok := child.(*Group); ok {
				visit(sub)
			}
		}
	}
	visit(e.root)
}

// node returns a non-root node by id.
func (e *Editor) node(id string) (Node, bool) {
	if _, ok := e.parents[id]; !ok {
		return nil, false
	}
	return e.index[id], true
}

func (e *Editor) clause(id string) (*Clause, bool) {
	c, ok := e.index[id].(*Clause)
	return c, ok
}

// group resolves a parent id; the empty id names the root.
func (e *Editor) group(id string) (*Group, bool) {
	if id == "" {
		return e.root, true
	}
	g, ok := e.index[id].(*Group)
	return g, ok
}

func nodeID(n Node) string {
	if n == nil {
		return ""
	}
	return n.Attrs().ID
}
