package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/session"
	"taskdeck/internal/token"
	"taskdeck/internal/validate"
)

func init() {
	Register(&LoginCmd{})
	Register(&SignupCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

// SetPassword sets the password (for testing).
func (c *LoginCmd) SetPassword(pw string) {
	c.password = pw
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return []string{"signin"} }
func (c *LoginCmd) Synopsis() string  { return "Sign in with email and password" }
func (c *LoginCmd) Usage() string     { return "taskdeck login [--password <pw>] <email>" }
func (c *LoginCmd) NeedsSession() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runAcquire(ctx, env, c.password, args, out, errOut, false)
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	password string
}

// SetPassword sets the password (for testing).
func (c *SignupCmd) SetPassword(pw string) {
	c.password = pw
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *SignupCmd) Usage() string     { return "taskdeck signup [--password <pw>] <email>" }
func (c *SignupCmd) NeedsSession() bool { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runAcquire(ctx, env, c.password, args, out, errOut, true)
}

// runAcquire is the shared implementation for login and signup.
func runAcquire(ctx context.Context, env *Env, password string, args []string, out, errOut io.Writer, signup bool) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}
	email := args[0]

	// An already-usable session short-circuits a repeat login.
	if !signup {
		if _, ok := token.IdentityFromToken(env.Store.Token()); ok {
			if !env.Cfg.Quiet {
				fmt.Fprintln(out, "already signed in")
			}
			return exitcode.Success
		}
	}

	if password == "" {
		pw, err := promptPassword(errOut)
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to read password: %v\n", err)
			return exitcode.UserError
		}
		password = pw
	}

	// Local validation runs before any network call.
	if res := validate.Credentials(email, password); !res.Valid {
		for _, msg := range res.Errors {
			fmt.Fprintf(errOut, "error: %s\n", msg)
		}
		return exitcode.UserError
	}

	if err := env.Cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	ctrl := session.NewController(env.Svc, env.Store, env.Nav)
	var tok string
	if signup {
		tok = ctrl.SignUp(ctx, email, password)
	} else {
		tok = ctrl.SignIn(ctx, email, password)
	}

	switch ctrl.State() {
	case session.Authenticated:
		if !env.Cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	case session.Failed:
		fmt.Fprintf(errOut, "error: %s\n", ctrl.Snapshot().Err)
		return exitcode.AuthError
	default:
		// Server accepted the credentials but no usable token came back.
		// Whatever was returned is persisted; the session stays anonymous.
		if tok == "" {
			fmt.Fprintln(errOut, "error: server returned no session token")
		} else {
			fmt.Fprintln(errOut, "error: server returned an unusable session token")
		}
		return exitcode.AuthError
	}
}

// promptPassword reads a password from stdin, without echo when stdin is a
// terminal.
func promptPassword(errOut io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(errOut, "Password: ")
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(errOut)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
