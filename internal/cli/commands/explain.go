package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/jobboard/jobfilter/internal/cliopt"
	"github.com/jobboard/jobfilter/internal/cliutil"
)

// ExplainCommand returns the explain CLI command.
func ExplainCommand() *cli.Command {
	return &cli.Command{
		Name:   "explain",
		Usage:  "Show the SQL a search would run, without running it",
		Flags:  append(paramFlags(), formatFlag()),
		Action: runExplain,
	}
}

func runExplain(c *cli.Context) error {
	st, _, err := cliutil.OpenStore(c.Context, cliopt.FromContext(c), c.App.ErrWriter, false)
	if err != nil {
		return err
	}
	defer st.Close()

	ex, err := st.Explain(c.Context, paramsFromContext(c))
	if err != nil {
		return err
	}
	if cliutil.ParseOutputFormat(c.String("format")) == cliutil.FormatJSON {
		cliutil.PrintJSON(c.App.Writer, ex)
		return nil
	}

	w := c.App.Writer
	fmt.Fprintln(w, "=== Plan ===")
	for _, step := range ex.Steps {
		fmt.Fprintf(w, "  %s\n", step)
	}
	if len(ex.Dropped) > 0 {
		fmt.Fprintln(w, "\n=== Dropped ===")
		for _, d := range ex.Dropped {
			fmt.Fprintf(w, "  %s: %s\n", d.Expr, d.Reason)
		}
	}
	fmt.Fprintln(w, "\n=== SQL ===")
	fmt.Fprintln(w, ex.SQL)
	fmt.Fprintf(w, "args: %v\n", ex.Args)
	fmt.Fprintln(w, "\n=== Count ===")
	fmt.Fprintln(w, ex.CountSQL)
	return nil
}
