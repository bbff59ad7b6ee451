package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskdeck help" }
func (c *HelpCmd) NeedsSession() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskdeck                                     List tasks (first page)
  taskdeck list [--page <n>] [--page-size <n>] List one page of tasks
  taskdeck add <title...>                      Create a task
  taskdeck edit [--page <n>] <num> <title...>  Replace a task's title
  taskdeck done [--page <n>] <num>             Toggle a task's completion
  taskdeck rm [--page <n>] <num>               Delete a task
  taskdeck login [--password <pw>] <email>     Sign in
  taskdeck signup [--password <pw>] <email>    Create an account and sign in
  taskdeck logout                              Sign out and clear the session
  taskdeck whoami                              Print the signed-in identity
  taskdeck help
  taskdeck version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

The API base URL comes from TASKDECK_BASE_URL, then config.yaml, then
` + "http://localhost:8080/api/v1" + `.
`
