package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/tasks"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd toggles a task's completion by its position on the current page.
type DoneCmd struct {
	page int
}

// SetPage sets the page number (for testing).
func (c *DoneCmd) SetPage(page int) {
	c.page = page
}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string   { return "Toggle a task's completion" }
func (c *DoneCmd) Usage() string      { return "taskdeck done [--page <n>] <num>" }
func (c *DoneCmd) NeedsSession() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	num, code, ok := parseTaskNum(args, errOut)
	if !ok {
		return code
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

	if err := coll.ToggleComplete(ctx, task.ID); err != nil {
		return failf(errOut, err)
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// parseTaskNum parses the single positional 1-based task position.
func parseTaskNum(args []string, errOut io.Writer) (int, int, bool) {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task number required")
		return 0, exitcode.UserError, false
	}
	num, err := strconv.Atoi(args[0])
	if err != nil || num < 1 {
		fmt.Fprintf(errOut, "error: invalid task number: %s\n", args[0])
		return 0, exitcode.UserError, false
	}
	return num, exitcode.Success, true
}

// bindCollectionAt binds a collection and moves it to the requested page.
func bindCollectionAt(ctx context.Context, env *Env, page int, errOut io.Writer) (*tasks.Collection, int, bool) {
	if page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", page)
		return nil, exitcode.UserError, false
	}
	c, code, ok := bindCollection(ctx, env, errOut)
	if !ok {
		return nil, code, false
	}
	if page != 1 {
		if err := c.GoToPage(ctx, page); err != nil {
			return nil, failf(errOut, err), false
		}
	}
	return c, exitcode.Success, true
}
