package main

import (
	"fmt"
	"strings"

	"collectionbuilder/querybuilder/pkg/cli"
	"collectionbuilder/querybuilder/pkg/query"
	"collectionbuilder/querybuilder/pkg/session"

	"github.com/spf13/cobra"
)

var addFlags struct {
	parent     string
	field      string
	value      string
	language   string
	deprecated bool
}

var addClauseCmd = &cobra.Command{
	Use:   "add-clause <name>",
	Short: "Append a clause",
	Long: `Append a clause to a group (the top level when --parent is empty).

The new clause is negated when any clause or group already under the same
parent is negated, and joined with OR when any of them uses OR.

Examples:
  querybuilder add-clause books --field title --value "war and peace"
  querybuilder add-clause books --parent <group-id> --field CREATOR --value Tolstoy --lang ru`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		res, err := current.session.Apply(cmd.Context(), args[0], "add-clause", func(ed *query.Editor) error {
			c := ed.NewClause(query.OperatorAnd, addFlags.field, addFlags.value, addFlags.language, addFlags.deprecated, false)
			id = c.ID
			return session.Require(ed.Add(c, addFlags.parent), "add clause to", addFlags.parent)
		})
		if err != nil {
			return err
		}
		return printNode(res, id)
	},
}

var addGroupCmd = &cobra.Command{
	Use:   "add-group <name>",
	Short: "Append an empty clause group",
	Long: `Append an empty clause group to a group (the top level when --parent
is empty). The same defaulting rules as add-clause apply.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		res, err := current.session.Apply(cmd.Context(), args[0], "add-group", func(ed *query.Editor) error {
			g := ed.NewGroup(query.OperatorAnd, addFlags.deprecated, false)
			id = g.ID
			return session.Require(ed.Add(g, addFlags.parent), "add group to", addFlags.parent)
		})
		if err != nil {
			return err
		}
		return printNode(res, id)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <name> <node-id>",
	Short: "Wrap a node in a new clause group",
	Long: `Wrap a clause or group in a new clause group that takes its place.
The id of the new group is printed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		res, err := current.session.Apply(cmd.Context(), args[0], "convert", func(ed *query.Editor) error {
			var ok bool
			id, ok = ed.ConvertToGroup(args[1])
			return session.Require(ok, "convert", args[1])
		})
		if err != nil {
			return err
		}
		return printNode(res, id)
	},
}

var setOperatorCmd = &cobra.Command{
	Use:   "set-operator <name> <node-id> <AND|OR>",
	Short: "Change the operator joining a node to its previous sibling",
	Long: `Change a node's operator. The change is refused when another active
sibling that is not first in its group uses the other operator.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := query.Operator(strings.ToUpper(args[2]))
		res, err := current.session.Apply(cmd.Context(), args[0], "set-operator", func(ed *query.Editor) error {
			if _, ok := ed.Retrieve(args[1]); !ok {
				return session.Require(false, "set-operator", args[1])
			}
			return ed.SetOperator(args[1], op)
		})
		if err != nil {
			return err
		}
		return current.printResult(res)
	},
}

// nodeCommand builds a command applying a boolean editor operation to one node.
func nodeCommand(use, short string, apply func(ed *query.Editor, id string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name> <node-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := current.session.Apply(cmd.Context(), args[0], use, func(ed *query.Editor) error {
				return session.Require(apply(ed, args[1]), use, args[1])
			})
			if err != nil {
				return err
			}
			return current.printResult(res)
		},
	}
}

// clauseCommand builds a command setting one text attribute of a clause.
func clauseCommand(use, short string, apply func(ed *query.Editor, id, v string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name> <clause-id> <value>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := current.session.Apply(cmd.Context(), args[0], use, func(ed *query.Editor) error {
				return session.Require(apply(ed, args[1], args[2]), use, args[1])
			})
			if err != nil {
				return err
			}
			return current.printResult(res)
		},
	}
}

// printNode reports an edit that created a node.
func printNode(res session.Result, id string) error {
	if current.format == cli.FormatJSON {
		return current.print(resultView{
			Name:    res.Name,
			Query:   res.Query,
			Nodes:   res.Nodes,
			Created: res.Created,
			NodeID:  id,
		})
	}
	return current.print(fmt.Sprintf("%s\n%s", id, res.Query))
}

func init() {
	for _, cmd := range []*cobra.Command{addClauseCmd, addGroupCmd} {
		cmd.Flags().StringVar(&addFlags.parent, "parent", "", "parent group id (default: top level)")
		cmd.Flags().BoolVar(&addFlags.deprecated, "deprecated", false, "create the node deprecated")
	}
	addClauseCmd.Flags().StringVar(&addFlags.field, "field", "", "clause field")
	addClauseCmd.Flags().StringVar(&addFlags.value, "value", "", "clause value (* matches anything)")
	addClauseCmd.Flags().StringVar(&addFlags.language, "lang", query.DefaultLanguage, "clause language tag")

	rootCmd.AddCommand(
		addClauseCmd,
		addGroupCmd,
		convertCmd,
		setOperatorCmd,
		nodeCommand("remove", "Remove a node and everything under it", (*query.Editor).Remove),
		nodeCommand("deprecate", "Hide a node from the rendered query", (*query.Editor).Deprecate),
		nodeCommand("undeprecate", "Show a deprecated node again", (*query.Editor).Undeprecate),
		nodeCommand("negate", "Negate a node", (*query.Editor).Negate),
		nodeCommand("unnegate", "Clear a node's negation", (*query.Editor).Unnegate),
		clauseCommand("set-field", "Change a clause's field", (*query.Editor).SetField),
		clauseCommand("set-value", "Change a clause's value", (*query.Editor).SetValue),
		clauseCommand("set-language", "Change a clause's language tag", (*query.Editor).SetLanguage),
	)
}
