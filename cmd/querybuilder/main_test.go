package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"collectionbuilder/querybuilder/pkg/cli"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// writeConfig writes a file-store configuration rooted in a temp dir.
func writeConfig(t *testing.T) (cfgPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "config.yaml")
	data := fmt.Sprintf(`storage:
  backend: file
  file:
    directory: %s
telemetry:
  logging:
    level: error
  metrics:
    enabled: true
    textfile_path: %s
`, filepath.Join(dir, "queries"), filepath.Join(dir, "metrics.prom"))
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return cfgPath, dir
}

// resetFlags restores every flag to its default between invocations.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command with args and returns its output.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := execute(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

// firstLine returns the node id printed by commands that create a node.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// TestCommands_EditSession tests building a query from the shell.
func TestCommands_EditSession(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	if out := mustRun(t, cfgPath, "new", "books"); strings.TrimSpace(out) != "*:*" {
		t.Errorf("new printed %q, want *:*", out)
	}
	if _, err := run(t, cfgPath, "new", "books"); cli.ExitCode(err) != cli.ExitRejected {
		t.Errorf("second new = %v, want a rejected error", err)
	}

	title := firstLine(mustRun(t, cfgPath, "add-clause", "books", "--field", "title", "--value", "war and peace"))
	group := firstLine(mustRun(t, cfgPath, "add-group", "books"))
	author := firstLine(mustRun(t, cfgPath, "add-clause", "books", "--parent", group, "--field", "CREATOR", "--value", "Tolstoy", "--lang", "ru"))
	mustRun(t, cfgPath, "negate", "books", author)

	want := `title:"war and peace" AND (-CREATOR:"Tolstoy")`
	if out := mustRun(t, cfgPath, "serialize", "books"); strings.TrimSpace(out) != want {
		t.Errorf("serialize = %q, want %q", out, want)
	}

	// The title clause still joins with AND.
	if _, err := run(t, cfgPath, "set-operator", "books", group, "or"); cli.ExitCode(err) != cli.ExitRejected {
		t.Errorf("set-operator = %v, want a rejected error", err)
	}

	mustRun(t, cfgPath, "deprecate", "books", title)
	out := mustRun(t, cfgPath, "set-operator", "books", group, "or")
	if want := `(-CREATOR:"Tolstoy")`; strings.TrimSpace(out) != want {
		t.Errorf("set-operator printed %q, want %q", out, want)
	}
	if out := mustRun(t, cfgPath, "serialize", "books", "--node", group); strings.TrimSpace(out) != `(-CREATOR:"Tolstoy")` {
		t.Errorf("serialize --node = %q", out)
	}

	out = mustRun(t, cfgPath, "show", "books")
	if !strings.Contains(out, "clause "+author+" AND [negated,suppressed] CREATOR:\"Tolstoy\" (ru)") {
		t.Errorf("show output missing the author clause:\n%s", out)
	}

	if _, err := os.Stat(filepath.Join(dir, "queries", "books.yaml")); err != nil {
		t.Errorf("expected books.yaml in the store: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "metrics.prom")); err != nil {
		t.Errorf("expected metrics textfile: %v", err)
	}
}

// TestCommands_Errors tests exit codes for failing commands.
func TestCommands_Errors(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	mustRun(t, cfgPath, "new", "books")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing query", []string{"show", "missing"}, cli.ExitNotFound},
		{"missing node", []string{"remove", "books", "nope"}, cli.ExitRejected},
		{"bad operator", []string{"set-operator", "books", "nope", "XOR"}, cli.ExitRejected},
		{"bad name", []string{"new", ".hidden"}, cli.ExitUsage},
		{"bad export format", []string{"export", "books", "--format", "toml"}, cli.ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, cfgPath, tt.args...)
			if got := cli.ExitCode(err); got != tt.code {
				t.Errorf("exit code = %d (%v), want %d", got, err, tt.code)
			}
		})
	}

	_, err := run(t, cfgPath, "show", "missing")
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Command != "show" {
		t.Errorf("expected a command error naming show, got %v", err)
	}
}

// TestCommands_ImportExport tests loading a collection-builder document and
// moving it between names.
func TestCommands_ImportExport(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	out := mustRun(t, cfgPath, "import", "test", "testdata/test.xml")
	want := `title:"test title" AND (-proxy_dc_subject:"test" OR proxy_dc_subject:"l'examen" OR (CREATOR:"Leonardo da Vinci"))`
	if strings.TrimSpace(out) != want {
		t.Errorf("import printed %q, want %q", out, want)
	}

	exported := filepath.Join(dir, "test.json")
	mustRun(t, cfgPath, "export", "test", "--format", "json", "-o", exported)
	mustRun(t, cfgPath, "import", "copy", exported)
	if out := mustRun(t, cfgPath, "serialize", "copy"); strings.TrimSpace(out) != want {
		t.Errorf("serialize copy = %q, want %q", out, want)
	}

	out = mustRun(t, cfgPath, "list")
	if !strings.HasPrefix(out, "copy\t") || !strings.Contains(out, "\ntest\t") {
		t.Errorf("list output unexpected:\n%s", out)
	}

	mustRun(t, cfgPath, "delete", "copy")
	if _, err := run(t, cfgPath, "delete", "copy"); cli.ExitCode(err) != cli.ExitNotFound {
		t.Errorf("second delete = %v, want not found", err)
	}

	if out := mustRun(t, cfgPath, "prune", "--max-age", "1h"); out != "" {
		t.Errorf("prune removed fresh queries: %q", out)
	}
}

// TestCommands_JSONOutput tests machine-readable results.
func TestCommands_JSONOutput(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	out := mustRun(t, cfgPath, "--output-format", "json", "add-clause", "books", "--field", "title", "--value", "*")
	for _, want := range []string{`"name": "books"`, `"query": "title:*"`, `"created": true`, `"node_id": "`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output:\n%s", want, out)
		}
	}
}

func TestVersionCommandExists(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	out := mustRun(t, "", "version")
	if !strings.HasPrefix(out, "querybuilder "+Version) {
		t.Errorf("version printed %q", out)
	}
}
