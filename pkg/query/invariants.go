package query

// recomputeSuppression rescans the whole tree and rewrites every node's
// OperatorSuppressed flag. A node is suppressed when no active sibling precedes
// it, or when it is a group without any active clause below it.
func (e *Editor) recomputeSuppression() {
	e.root.OperatorSuppressed = true
	var visit func(g *Group)
	visit = func(g *Group) {
		position := 0
		for _, child := range g.Children {
			attrs := child.Attrs()
			suppressed := position == 0
			if sub, ok := child.(*Group); ok {
				if !hasActiveClause(sub) {
					suppressed = true
				}
				visit(sub)
			}
			attrs.OperatorSuppressed = suppressed
			if !attrs.Deprecated {
				position++
			}
		}
	}
	visit(e.root)
}

// EffectivePosition returns the number of active siblings preceding the node.
func (e *Editor) EffectivePosition(id string) (int, bool) {
	parent, ok := e.parents[id]
	if !ok {
		return 0, false
	}
	position := 0
	for _, sibling := range parent.Children {
		if sibling.Attrs().ID == id {
			break
		}
		if IsActive(sibling) {
			position++
		}
	}
	return position, true
}

// OperatorsAreConsistent reports whether op agrees with the operator of every
// active, non-suppressed sibling of the node. Unknown ids are consistent.
func (e *Editor) OperatorsAreConsistent(op Operator, id string) bool {
	_, conflict := e.conflictingSibling(op, id)
	return !conflict
}

func (e *Editor) conflictingSibling(op Operator, id string) (Node, bool) {
	parent, ok := e.parents[id]
	if !ok {
		return nil, false
	}
	for _, sibling := range parent.Children {
		attrs := sibling.Attrs()
		if attrs.ID == id || attrs.Deprecated || attrs.OperatorSuppressed {
			continue
		}
		if attrs.Operator != op {
			return sibling, true
		}
	}
	return nil, false
}
