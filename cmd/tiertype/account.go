package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tiertype/internal/auth"
	"github.com/verte-zerg/tiertype/internal/store"
)

func newSignupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup [username]",
		Short: "Create an account and log in",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSignupCmd,
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Log in to save scores",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLoginCmd,
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE:  runLogoutCmd,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE:  runWhoamiCmd,
	}
}

func runSignupCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	username, err := p.username(args)
	if err != nil {
		return err
	}
	password, err := p.password("Password: ")
	if err != nil {
		return err
	}
	confirm, err := p.password("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	ctx := cmd.Context()
	if _, err := a.auth.Register(ctx, username, password); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUser):
			return fmt.Errorf("username %q is already taken", strings.TrimSpace(username))
		case errors.Is(err, auth.ErrInvalidInput):
			return fmt.Errorf("username and password are required")
		default:
			return fmt.Errorf("failed to sign up: %w", err)
		}
	}
	user, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed up and logged in as %s.\n", user.Username)
	return err
}

func runLoginCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	username, err := p.username(args)
	if err != nil {
		return err
	}
	password, err := p.password("Password: ")
	if err != nil {
		return err
	}
	user, err := a.auth.Login(cmd.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return fmt.Errorf("invalid username or password")
		}
		return fmt.Errorf("failed to log in: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", user.Username)
	return err
}

func runLogoutCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.auth.Logout(cmd.Context()); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			return fmt.Errorf("not logged in")
		}
		return fmt.Errorf("failed to log out: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return err
}

func runWhoamiCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	user, err := a.auth.Current(ctx)
	if err != nil {
		return loginRequired(err)
	}
	tier, err := a.store.ProgressedDifficulty(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (unlocked tier: %s)\n", user.Username, tier.Title())
	return err
}

func loginRequired(err error) error {
	switch {
	case errors.Is(err, auth.ErrNotLoggedIn):
		return fmt.Errorf("not logged in; run: tiertype login")
	case errors.Is(err, auth.ErrUnauthorized):
		return fmt.Errorf("login expired; run: tiertype login")
	default:
		return err
	}
}

// prompter reads credentials, hiding passwords when stdin is a terminal.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (p *prompter) username(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if _, err := fmt.Fprint(p.out, "Username: "); err != nil {
		return "", err
	}
	return p.readLine()
}

func (p *prompter) password(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", err
	}
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		if _, perr := fmt.Fprintln(p.out); perr != nil {
			// Best-effort newline after hidden input.
			_ = perr
		}
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}
	return p.readLine()
}

func (p *prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
