package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/output"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the identity derived from the stored token.
// Display only; the server re-checks the token on every task request.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string       { return "whoami" }
func (c *WhoamiCmd) Aliases() []string  { return nil }
func (c *WhoamiCmd) Synopsis() string   { return "Print the signed-in identity" }
func (c *WhoamiCmd) Usage() string      { return "taskdeck whoami" }
func (c *WhoamiCmd) NeedsSession() bool { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, code, ok := requireIdentity(env, errOut)
	if !ok {
		return code
	}
	output.FormatIdentity(out, id.ID, id.Email)
	return code
}
