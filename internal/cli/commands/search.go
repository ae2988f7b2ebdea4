package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jobboard/jobfilter/internal/cliopt"
	"github.com/jobboard/jobfilter/internal/cliutil"
	"github.com/jobboard/jobfilter/jobfilter"
)

func paramFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "filter expression, e.g. 'job_type=full-time AND languages HAS_ANY (Go)'"},
		&cli.StringFlag{Name: "sort-by", Aliases: []string{"s"}, Usage: "field or attribute:<name>"},
		&cli.StringFlag{Name: "sort-direction", Usage: "asc|desc"},
		&cli.IntFlag{Name: "page", Value: 1},
		&cli.IntFlag{Name: "per-page", Usage: "page size (default from filter.per_page)"},
	}
}

func paramsFromContext(c *cli.Context) jobfilter.Params {
	return jobfilter.Params{
		Filter:        c.String("filter"),
		SortBy:        c.String("sort-by"),
		SortDirection: c.String("sort-direction"),
		Page:          c.Int("page"),
		PerPage:       c.Int("per-page"),
	}
}

// SearchCommand returns the search CLI command.
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search jobs with a filter expression",
		Description: `Clauses that name unknown fields, relations or attributes are left out
of the query and reported as warnings.

Example:
  jobfilter search -f '(job_type=full-time) AND (locations IS_ANY (Berlin,Remote))' \
    --sort-by attribute:years_experience --sort-direction desc --include languages`,
		Flags: append(paramFlags(),
			&cli.StringSliceFlag{Name: "include", Aliases: []string{"i"}, Usage: "relation to load: languages|locations|categories (repeatable)"},
			&cli.BoolFlag{Name: "attributes", Aliases: []string{"a"}, Usage: "load attribute values"},
			formatFlag(),
		),
		Action: runSearch,
	}
}

func runSearch(c *cli.Context) error {
	st, _, err := cliutil.OpenStore(c.Context, cliopt.FromContext(c), c.App.ErrWriter, false)
	if err != nil {
		return err
	}
	defer st.Close()

	start := time.Now()
	res, err := st.Search(c.Context, jobfilter.SearchRequest{
		Params:            paramsFromContext(c),
		IncludeRelations:  c.StringSlice("include"),
		IncludeAttributes: c.Bool("attributes"),
	})
	if err != nil {
		return err
	}

	if cliutil.ParseOutputFormat(c.String("format")) == cliutil.FormatJSON {
		cliutil.PrintJSON(c.App.Writer, res)
		return nil
	}
	printSearch(c.App.Writer, res, time.Since(start))
	return nil
}

func printSearch(w io.Writer, res *jobfilter.SearchResult, dur time.Duration) {
	fmt.Fprintf(w, "Found %d jobs in %dms (page %d of %d)\n", res.Total, dur.Milliseconds(), res.Page, res.LastPage)
	for _, row := range res.Rows {
		fmt.Fprintf(w, "- #%d %v", row.ID(), row["title"])
		if company, ok := row["company_name"].(string); ok && company != "" {
			fmt.Fprintf(w, " at %s", company)
		}
		fmt.Fprintln(w)
		for _, rel := range []string{"languages", "locations", "categories"} {
			if labels, ok := row[rel].([]string); ok && len(labels) > 0 {
				fmt.Fprintf(w, "    %s: %s\n", rel, strings.Join(labels, ", "))
			}
		}
		if attrs, ok := row["attributes"].(map[string]any); ok && len(attrs) > 0 {
			names := make([]string, 0, len(attrs))
			for name := range attrs {
				names = append(names, name)
			}
			sort.Strings(names)
			parts := make([]string, 0, len(names))
			for _, name := range names {
				parts = append(parts, fmt.Sprintf("%s=%v", name, attrs[name]))
			}
			fmt.Fprintf(w, "    attributes: %s\n", strings.Join(parts, ", "))
		}
	}
}
