package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jobboard/jobfilter/internal/cli/commands"
	"github.com/jobboard/jobfilter/internal/cliopt"
)

// NewApp builds the jobfilter command line application.
func NewApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:  "jobfilter",
		Usage: "Search job listings with boolean filter expressions",
		Description: `Filters combine field comparisons, relation membership and dynamic
attributes with AND, OR and parentheses:

  salary_min>=50000 AND (languages HAS_ANY (Go,Rust) OR attribute:level=(Senior,Lead))

Settings come from jobfilter.yaml in --config, JOBFILTER_* environment
variables and the global flags, in increasing priority.`,
		Flags: cliopt.GlobalFlags(),
		Commands: []*cli.Command{
			commands.InitCommand(),
			commands.AttributeCommand(),
			commands.PutCommand(),
			commands.SearchCommand(),
			commands.ExplainCommand(),
		},
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
	}
}

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	app := NewApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(argv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
