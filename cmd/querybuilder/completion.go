package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for querybuilder.

To load completions:

Bash:
  $ source <(querybuilder completion bash)

Zsh:
  $ querybuilder completion zsh > "${fpath[1]}/_querybuilder"
  $ compinit

Fish:
  $ querybuilder completion fish | source

PowerShell:
  PS> querybuilder completion powershell | Out-String | Invoke-Expression
`,
	ValidArgs:   []string{"bash", "zsh", "fish", "powershell"},
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}
