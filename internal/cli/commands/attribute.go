package commands

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jobboard/jobfilter/internal/cliopt"
	"github.com/jobboard/jobfilter/internal/cliutil"
	"github.com/jobboard/jobfilter/jobfilter/schema"
)

// AttributeCommand returns the attribute CLI command.
func AttributeCommand() *cli.Command {
	return &cli.Command{
		Name:  "attribute",
		Usage: "Manage dynamic job attributes",
		Subcommands: []*cli.Command{
			{
				Name:  "define",
				Usage: "Create or redefine an attribute",
				Description: `Example:
  jobfilter attribute define --name level --type select --option Junior --option Senior`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "text|number|boolean|date|select", Value: "text"},
					&cli.StringSliceFlag{Name: "option", Aliases: []string{"o"}, Usage: "allowed value of a select attribute (repeatable)"},
				},
				Action: runAttributeDefine,
			},
			{
				Name:   "list",
				Usage:  "List defined attributes",
				Flags:  []cli.Flag{formatFlag()},
				Action: runAttributeList,
			},
		},
	}
}

func runAttributeDefine(c *cli.Context) error {
	st, _, err := cliutil.OpenStore(c.Context, cliopt.FromContext(c), c.App.ErrWriter, false)
	if err != nil {
		return err
	}
	defer st.Close()

	attr, err := st.DefineAttribute(c.Context, schema.Attribute{
		Name:    c.String("name"),
		Type:    schema.AttributeType(strings.ToLower(c.String("type"))),
		Options: c.StringSlice("option"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Defined attribute %s (%s, id %d)\n", attr.Name, attr.Type, attr.ID)
	return nil
}

func runAttributeList(c *cli.Context) error {
	st, _, err := cliutil.OpenStore(c.Context, cliopt.FromContext(c), c.App.ErrWriter, false)
	if err != nil {
		return err
	}
	defer st.Close()

	attrs, err := st.Attributes(c.Context)
	if err != nil {
		return err
	}
	if cliutil.ParseOutputFormat(c.String("format")) == cliutil.FormatJSON {
		cliutil.PrintJSON(c.App.Writer, attrs)
		return nil
	}
	for _, a := range attrs {
		line := fmt.Sprintf("%s (%s)", a.Name, a.Type)
		if len(a.Options) > 0 {
			line += ": " + strings.Join(a.Options, ", ")
		}
		fmt.Fprintln(c.App.Writer, line)
	}
	return nil
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Usage: "output format: pretty|json", Value: "pretty"}
}
