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
	Register(&EditCmd{})
}

// EditCmd replaces a task's title by its position on the current page.
type EditCmd struct {
	page int
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Replace a task's title" }
func (c *EditCmd) Usage() string      { return "taskdeck edit [--page <n>] <num> <title...>" }
func (c *EditCmd) NeedsSession() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: task number and title required")
		return exitcode.UserError
	}

	num, code, ok := parseTaskNum(args[:1], errOut)
	if !ok {
		return code
	}

	title := strings.Join(args[1:], " ")
	if res := validate.TaskTitle(title); !res.Valid {
		for _, msg := range res.Errors {
			fmt.Fprintf(errOut, "error: %s\n", msg)
		}
		return exitcode.UserError
	}

	coll, code, ok := bindCollectionAt(ctx, env, c.page, errOut)
	if !ok {
		return code
	}

	task, ok := coll.TaskAt(num)
	if !ok {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return exitcode.UserError
	}

	draft := service.TaskDraft{
		Title:       strings.TrimSpace(title),
		Description: task.Description,
	}
	if err := coll.Update(ctx, task.ID, draft); err != nil {
		return failf(errOut, err)
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
