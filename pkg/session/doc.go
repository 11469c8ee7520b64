// Package session applies editor operations to named queries.
//
// A Manager opens the named query from the store (or starts a fresh seeded
// tree when none exists), runs one mutation against it, saves the result and
// returns the rendered query string. Each call is traced, logged with the
// query name and operation attached to its context, and recorded in the
// editor metrics.
//
//	m := session.NewManager(s, session.WithMetrics(collector))
//	res, err := m.Apply(ctx, "books", "deprecate", func(ed *query.Editor) error {
//		return session.Require(ed.Deprecate(id), "deprecate", id)
//	})
//
// An operation that reports false from the editor (unknown node, clause
// used as a parent, and so on) is returned as ErrRejected and nothing is
// saved.
package session
