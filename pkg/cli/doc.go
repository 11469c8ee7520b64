/*
Package cli provides command-line helpers used by the querybuilder command.

Output Formatting:

Command results are printed as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Stored trees are drawn with WriteTree, one node per line with its id,
operator and flags.

Exit Codes:

ExitCode maps command errors to process exit codes so scripts can tell a
missing query or a rejected edit apart from a broken backend.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
