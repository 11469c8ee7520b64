package query

import "testing"

// TestSerialize_Fixture tests rendering the reference document.
func TestSerialize_Fixture(t *testing.T) {
	ed := newFixtureEditor(t)
	if got := ed.Serialize(); got != fixtureQuery {
		t.Errorf("Serialize() =\n  %s\nwant\n  %s", got, fixtureQuery)
	}
}

// TestSerialize_AfterDeprecation tests rendering once nodes are deprecated.
func TestSerialize_AfterDeprecation(t *testing.T) {
	tests := []struct {
		name      string
		deprecate []string
		want      string
	}{
		{
			name:      "first top-level clause",
			deprecate: []string{"1"},
			want:      `(-proxy_dc_subject:"test" OR proxy_dc_subject:"l'examen" OR (CREATOR:"Leonardo da Vinci"))`,
		},
		{
			name:      "first clause in group",
			deprecate: []string{"3"},
			want:      `title:"test title" AND (proxy_dc_subject:"l'examen" OR (CREATOR:"Leonardo da Vinci"))`,
		},
		{
			name:      "every clause of nested group",
			deprecate: []string{"7"},
			want:      `title:"test title" AND (-proxy_dc_subject:"test" OR proxy_dc_subject:"l'examen")`,
		},
		{
			name:      "whole group",
			deprecate: []string{"2"},
			want:      `title:"test title"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := newFixtureEditor(t)
			for _, id := range tt.deprecate {
				ed.Deprecate(id)
			}
			if got := ed.Serialize(); got != tt.want {
				t.Errorf("Serialize() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSerialize_Terms tests rendering of individual terms.
func TestSerialize_Terms(t *testing.T) {
	tests := []struct {
		name   string
		clause *Clause
		want   string
	}{
		{
			name:   "quoted value",
			clause: &Clause{Attributes: Attributes{ID: "c"}, Field: "title", Value: "war and peace"},
			want:   `title:"war and peace"`,
		},
		{
			name:   "wildcard value",
			clause: &Clause{Attributes: Attributes{ID: "c"}, Field: "title", Value: "*"},
			want:   `title:*`,
		},
		{
			name:   "negated",
			clause: &Clause{Attributes: Attributes{ID: "c", Negated: true}, Field: "title", Value: "x"},
			want:   `-title:"x"`,
		},
		{
			name:   "surrounding whitespace trimmed and inner whitespace collapsed",
			clause: &Clause{Attributes: Attributes{ID: "c"}, Field: " title ", Value: " test   title "},
			want:   `title:"test title"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, err := FromRoot(&Group{Attributes: Attributes{ID: "r"}, Children: []Node{tt.clause}})
			if err != nil {
				t.Fatalf("FromRoot() failed: %v", err)
			}
			if got := ed.Serialize(); got != tt.want {
				t.Errorf("Serialize() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSerialize_Undefined tests the match-all fallback.
func TestSerialize_Undefined(t *testing.T) {
	t.Run("empty tree", func(t *testing.T) {
		if got := NewEditor().Serialize(); got != MatchAll {
			t.Errorf("Serialize() = %q, want %q", got, MatchAll)
		}
	})

	t.Run("field without value", func(t *testing.T) {
		ed := NewEditor()
		ed.Add(ed.NewClause(OperatorAnd, "title", "", "en", false, false), "")
		if got := ed.Serialize(); got != MatchAll {
			t.Errorf("Serialize() = %q, want %q", got, MatchAll)
		}
	})
}

// TestSerialize_StrayLeadingOperator tests that a blank first clause does not
// leave an operator at the start of the query or of a group.
func TestSerialize_StrayLeadingOperator(t *testing.T) {
	blank := func(id string) *Clause {
		return &Clause{Attributes: Attributes{ID: id, Operator: OperatorAnd}}
	}
	term := func(id, value string) *Clause {
		return &Clause{Attributes: Attributes{ID: id, Operator: OperatorAnd}, Field: "title", Value: value}
	}

	root := &Group{
		Attributes: Attributes{ID: "r"},
		Children: []Node{
			blank("b1"),
			term("t1", "a"),
			&Group{
				Attributes: Attributes{ID: "g", Operator: OperatorOr},
				Children:   []Node{blank("b2"), term("t2", "b")},
			},
		},
	}
	ed, err := FromRoot(root)
	if err != nil {
		t.Fatalf("FromRoot() failed: %v", err)
	}

	want := `title:"a" OR (title:"b")`
	if got := ed.Serialize(); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

// TestSerialize_NegatedGroup tests the negation prefix on groups.
func TestSerialize_NegatedGroup(t *testing.T) {
	ed := newFixtureEditor(t)
	ed.Negate("2")

	want := `title:"test title" AND -(-proxy_dc_subject:"test" OR proxy_dc_subject:"l'examen" OR (CREATOR:"Leonardo da Vinci"))`
	if got := ed.Serialize(); got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

// TestSerializeNode tests rendering a subtree.
func TestSerializeNode(t *testing.T) {
	ed := newFixtureEditor(t)

	tests := map[string]string{
		"2":          `(-proxy_dc_subject:"test" OR proxy_dc_subject:"l'examen" OR (CREATOR:"Leonardo da Vinci"))`,
		"4":          `proxy_dc_subject:"l'examen"`,
		"6":          ``,
		ed.Root().ID: fixtureQuery,
	}
	for id, want := range tests {
		got, ok := ed.SerializeNode(id)
		if !ok {
			t.Fatalf("SerializeNode(%s) found nothing", id)
		}
		if got != want {
			t.Errorf("SerializeNode(%s) = %q, want %q", id, got, want)
		}
	}

	if _, ok := ed.SerializeNode("missing"); ok {
		t.Errorf("expected missing id to report false")
	}
}
