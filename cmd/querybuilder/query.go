package main

import (
	"fmt"
	"os"
	"time"

	"collectionbuilder/querybuilder/pkg/cli"
	"collectionbuilder/querybuilder/pkg/query/codec"

	"github.com/spf13/cobra"
)

var newFlags struct {
	force bool
}

var exportFlags struct {
	format string
	output string
}

var importFlags struct {
	format string
}

var serializeFlags struct {
	node string
}

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a query",
	Long: `Create a named query holding one blank group with one blank clause.

Examples:
  querybuilder new books
  querybuilder new books --force   # replace an existing query`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := current.session.Create(cmd.Context(), args[0], newFlags.force)
		if err != nil {
			return err
		}
		return current.printResult(res)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a query tree",
	Long: `Draw the stored tree with node ids, operators and flags.

With --output-format json the stored JSON document is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.format == cli.FormatJSON {
			data, err := current.session.Export(cmd.Context(), args[0], codec.FormatJSON)
			if err != nil {
				return err
			}
			_, err = current.out.Write(append(data, '\n'))
			return err
		}
		ed, err := current.session.Show(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return cli.WriteTree(current.out, ed)
	},
}

var serializeCmd = &cobra.Command{
	Use:   "serialize <name>",
	Short: "Render a query as a Solr query string",
	Long: `Render a stored query as a Solr boolean query string.

A query without any clause holding both a field and a value renders as *:*.

Examples:
  querybuilder serialize books
  querybuilder serialize books --node <group-id>   # one subtree`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := current.session.Show(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if serializeFlags.node == "" {
			return current.print(ed.Serialize())
		}
		s, ok := ed.SerializeNode(serializeFlags.node)
		if !ok {
			return fmt.Errorf("node %q not found in query %q", serializeFlags.node, args[0])
		}
		return current.print(s)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored queries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := current.store.List(cmd.Context())
		if err != nil {
			return err
		}
		if current.format == cli.FormatJSON {
			type entryView struct {
				Name      string    `json:"name"`
				UpdatedAt time.Time `json:"updated_at"`
			}
			views := make([]entryView, 0, len(entries))
			for _, e := range entries {
				views = append(views, entryView{Name: e.Name, UpdatedAt: e.UpdatedAt})
			}
			return current.print(views)
		}
		for _, e := range entries {
			fmt.Fprintf(current.out, "%s\t%s\n", e.Name, e.UpdatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		current.logger.Info("query deleted", "name", args[0])
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Write a query document",
	Long: `Write a stored query as a YAML, JSON or XML document.

The XML layout is the collection-builder stored query document.

Examples:
  querybuilder export books --format xml -o books.xml
  querybuilder export books --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := codec.ParseFormat(exportFlags.format)
		if err != nil {
			return cli.NewConfigError("format", err.Error())
		}
		data, err := current.session.Export(cmd.Context(), args[0], format)
		if err != nil {
			return err
		}
		if exportFlags.output == "" {
			_, err = current.out.Write(data)
			return err
		}
		if err := os.WriteFile(exportFlags.output, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportFlags.output, err)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <name> <file>",
	Short: "Store a query document",
	Long: `Read a YAML, JSON or XML query document and store it under name,
replacing any query already stored there.

The format is taken from the file extension unless --format is given.

Examples:
  querybuilder import books stored_queries/test.xml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]

		format, err := codec.FormatFromPath(path)
		if importFlags.format != "" {
			format, err = codec.ParseFormat(importFlags.format)
		}
		if err != nil {
			return cli.NewConfigError("format", err.Error())
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		res, err := current.session.Import(cmd.Context(), name, data, format)
		if err != nil {
			return err
		}
		return current.printResult(res)
	},
}

func init() {
	rootCmd.AddCommand(newCmd, showCmd, serializeCmd, listCmd, deleteCmd, exportCmd, importCmd)

	newCmd.Flags().BoolVar(&newFlags.force, "force", false, "replace an existing query")
	serializeCmd.Flags().StringVar(&serializeFlags.node, "node", "", "render only this node")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "yaml", "document format: yaml, json, xml")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default: stdout)")
	importCmd.Flags().StringVar(&importFlags.format, "format", "", "document format (default: from file extension)")
}
