// Package query provides an editable boolean search query tree and its Solr
// serializer.
//
// A query is a tree of clauses (field:value terms) and clause groups. Every
// node carries an operator (AND/OR) joining it to the previous active sibling,
// a negation flag, and a deprecation flag. Deprecated nodes stay in the tree
// but are skipped when rendering and when counting sibling positions.
//
// # Derived State
//
// The Editor maintains OperatorSuppressed on every node. A node's operator is
// suppressed when it is the first active node among its siblings, or when it is
// a group with no active clause anywhere below it. The flag is recomputed over
// the whole tree after every structural or deprecation change, so deprecating
// the first clause of a group un-renders the operator of the next one, and
// undeprecating it restores the operator.
//
// # Basic Usage
//
//	ed := query.NewEditor()
//	title := ed.NewClause(query.OperatorAnd, "title", "test title", "en", false, false)
//	ed.Add(title, "")
//
//	group := ed.NewGroup(query.OperatorAnd, false, false)
//	ed.Add(group, "")
//	ed.Add(ed.NewClause(query.OperatorOr, "proxy_dc_subject", "test", "en", false, false), group.ID)
//
//	fmt.Println(ed.Serialize())
//	// title:"test title" AND (proxy_dc_subject:"test")
//
// # Errors
//
// Operations that reference an unknown id are no-ops and report false. The
// only mutation that can fail is SetOperator, which returns an
// *InconsistentOperatorError (matching ErrInconsistentOperator) when the new
// operator disagrees with an active, non-suppressed sibling.
//
// # Thread Safety
//
// An Editor is owned by a single caller. Use one editor per session and guard
// it externally if it must be shared.
package query
