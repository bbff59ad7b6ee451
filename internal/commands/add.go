package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/validate"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "taskdeck add <title...>" }
func (c *AddCmd) NeedsSession() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if res := validate.TaskTitle(title); !res.Valid {
		for _, msg := range res.Errors {
			fmt.Fprintf(errOut, "error: %s\n", msg)
		}
		return exitcode.UserError
	}

	coll, code, ok := bindCollection(ctx, env, errOut)
	if !ok {
		return code
	}

	if err := coll.Create(ctx, service.TaskDraft{Title: strings.TrimSpace(title)}); err != nil {
		return failf(errOut, err)
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
