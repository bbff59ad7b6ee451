package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskdeck` (no args) and `taskdeck list`.
type ListCmd struct {
	page     int
	pageSize int
}

// SetPage sets the page number (for testing).
func (c *ListCmd) SetPage(page int) {
	c.page = page
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "taskdeck list [--page <n>] [--page-size <n>]" }
func (c *ListCmd) NeedsSession() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
	fs.IntVar(&c.pageSize, "page-size", 0, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if c.page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	coll, code, ok := bindCollection(ctx, env, errOut)
	if !ok {
		return code
	}

	// Bind auto-fetched page 1 at the configured size; only refetch when
	// the flags ask for a different cursor.
	size := c.pageSize
	if size <= 0 {
		size = env.Cfg.PageSize
	}
	if c.page != 1 || size != env.Cfg.PageSize {
		if err := coll.FetchPage(ctx, c.page, size); err != nil {
			return failf(errOut, err)
		}
	}

	items := coll.Tasks()
	if len(items) == 0 {
		if !env.Cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	for i, task := range items {
		output.FormatTask(out, i+1, task)
	}
	output.FormatPageFooter(out, coll.Pagination())

	return exitcode.Success
}

// bindCollection resolves the identity and binds a fresh collection,
// which fetches the first page.
func bindCollection(ctx context.Context, env *Env, errOut io.Writer) (*tasks.Collection, int, bool) {
	id, code, ok := requireIdentity(env, errOut)
	if !ok {
		return nil, code, false
	}
	coll := tasks.NewCollection(env.Svc, env.Cfg.PageSize)
	if err := coll.Bind(ctx, id); err != nil {
		return nil, failf(errOut, err), false
	}
	return coll, exitcode.Success, true
}
