package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/jobboard/jobfilter/internal/cliopt"
	"github.com/jobboard/jobfilter/internal/cliutil"
	"github.com/jobboard/jobfilter/jobfilter/schema"
)

// InitCommand returns the init CLI command.
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create the job tables",
		Description: `Creates the jobs, relation and attribute tables in the configured
database. Running it again on an existing database is harmless.

Example:
  jobfilter --db jobs.db init --attributes attributes.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "attributes",
				Usage: "JSON file with a list of attribute definitions to create",
			},
		},
		Action: runInit,
	}
}

func runInit(c *cli.Context) error {
	var defs []schema.Attribute
	if path := c.String("attributes"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &defs); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	st, _, err := cliutil.OpenStore(c.Context, cliopt.FromContext(c), c.App.ErrWriter, true)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, def := range defs {
		if _, err := st.DefineAttribute(c.Context, def); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.App.Writer, "Created schema (%d attributes)\n", len(defs))
	return nil
}
