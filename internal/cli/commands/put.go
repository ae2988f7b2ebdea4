package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jobboard/jobfilter/internal/cliopt"
	"github.com/jobboard/jobfilter/internal/cliutil"
	"github.com/jobboard/jobfilter/jobfilter"
)

// PutCommand returns the put CLI command.
func PutCommand() *cli.Command {
	return &cli.Command{
		Name:  "put",
		Usage: "Insert jobs from JSON lines",
		Description: `Reads one job per line from --import or stdin. Each line is an object such as

  {"title":"Go Engineer","job_type":"full-time","salary_min":90000,
   "languages":["Go"],"locations":["Berlin"],"attributes":{"level":"Senior"}}

Relations that do not exist yet are created. Attributes must be defined first.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "import", Usage: "JSONL file (default: stdin)"},
		},
		Action: runPut,
	}
}

func runPut(c *cli.Context) error {
	var r io.Reader = c.App.Reader
	if path := c.String("import"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if r == nil {
		r = os.Stdin
	}

	st, log, err := cliutil.OpenStore(c.Context, cliopt.FromContext(c), c.App.ErrWriter, false)
	if err != nil {
		return err
	}
	defer st.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	count, lineNo := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var job jobfilter.JobInput
		if err := json.Unmarshal([]byte(line), &job); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		id, err := st.PutJob(c.Context, job)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		log.WithField("job_id", id).Debug("job stored")
		count++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Put %d jobs\n", count)
	return nil
}
