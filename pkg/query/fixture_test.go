package query

import "testing"

// newFixtureEditor builds the reference document used across the package tests:
//
//	root
//	├── clause 1  title:"test title"
//	└── group 2   AND
//	    ├── clause 3  -proxy_dc_subject:"test"
//	    ├── clause 4  OR proxy_dc_subject:"l'examen"
//	    └── group 5   OR
//	        ├── clause 6  (deprecated)
//	        └── clause 7  CREATOR:"Leonardo da Vinci"
func newFixtureEditor(t *testing.T) *Editor {
	t.Helper()

	clause := func(id string, op Operator, field, value string) *Clause {
		return &Clause{
			Attributes: Attributes{ID: id, Operator: op},
			Language:   DefaultLanguage,
			Field:      field,
			Value:      value,
		}
	}

	c3 := clause("3", OperatorAnd, "proxy_dc_subject", "test")
	c3.Negated = true
	c6 := clause("6", OperatorAnd, "CREATOR", "Michelangelo")
	c6.Deprecated = true

	root := &Group{
		Attributes: Attributes{ID: "0", Operator: OperatorAnd},
		Children: []Node{
			clause("1", OperatorAnd, "title", "test title"),
			&Group{
				Attributes: Attributes{ID: "2", Operator: OperatorAnd},
				Children: []Node{
					c3,
					clause("4", OperatorOr, "proxy_dc_subject", "l'examen"),
					&Group{
						Attributes: Attributes{ID: "5", Operator: OperatorOr},
						Children: []Node{
							c6,
							clause("7", OperatorAnd, "CREATOR", "Leonardo da Vinci"),
						},
					},
				},
			},
		},
	}

	ed, err := FromRoot(root, WithIDGenerator(NewSequenceGenerator(100)))
	if err != nil {
		t.Fatalf("FromRoot() failed: %v", err)
	}
	return ed
}

const fixtureQuery = `title:"test title" AND (-proxy_dc_subject:"test" OR proxy_dc_subject:"l'examen" OR (CREATOR:"Leonardo da Vinci"))`

func mustRetrieve(t *testing.T, ed *Editor, id string) Node {
	t.Helper()
	n, ok := ed.Retrieve(id)
	if !ok {
		t.Fatalf("Retrieve(%q) found nothing", id)
	}
	return n
}

func suppressed(t *testing.T, ed *Editor, id string) bool {
	t.Helper()
	return mustRetrieve(t, ed, id).Attrs().OperatorSuppressed
}
