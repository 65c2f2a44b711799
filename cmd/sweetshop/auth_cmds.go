package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sweetshop/sweetshop/domain/entity"
	domainerror "github.com/sweetshop/sweetshop/domain/error"
	"github.com/sweetshop/sweetshop/domain/session"
	"github.com/sweetshop/sweetshop/domain/valueobject"
)

var (
	errLoginRequired = errors.New("login required")
	errAdminRequired = errors.New("admin access required")
	errStillLoading  = errors.New("session not ready")
)

// readPassword takes the flag value, else SWEETSHOP_PASSWORD, else the first
// line of stdin.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("SWEETSHOP_PASSWORD"); env != "" {
		return env, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func describeAuthError(err error) error {
	var apiErr *domainerror.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuthFailure() && apiErr.Detail != "" {
		return errors.New(apiErr.Detail)
	}
	return err
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := c.ensureApp(ctx)
			if err != nil {
				return err
			}
			pass, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			if err := app.sessions.Login(ctx, email, pass); err != nil {
				return describeAuthError(err)
			}
			return c.printUser(app.sessions.State().User, "Logged in as")
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := c.ensureApp(ctx)
			if err != nil {
				return err
			}
			pass, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			reg := valueobject.Registration{Name: name, Email: email, Password: pass}
			if role != "" {
				r, err := entity.ParseRole(role)
				if err != nil {
					return fmt.Errorf("--role: %w", err)
				}
				reg.Role = r
			}
			if err := app.sessions.Register(ctx, reg); err != nil {
				return describeAuthError(err)
			}
			return c.printUser(app.sessions.State().User, "Registered and logged in as")
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (read from stdin when omitted)")
	cmd.Flags().StringVar(&role, "role", "", "Account role (user or admin)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out.")
			app.sessions.Logout(cmd.Context(), session.DefaultLoginPath)
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.require(cmd.Context(), app, session.Requirement{Path: "/profile"}); err != nil {
				return err
			}
			user, _ := app.sessions.CurrentUser()
			return c.printUser(user, "")
		},
	}
}

// require runs the route guard and explains any denial.
func (c *cli) require(ctx context.Context, app *App, req session.Requirement) error {
	decision := app.guard.Check(app.sessions.State(), req)
	app.logger.Debug(ctx, "Route guard decision", map[string]interface{}{
		"path":     req.Path,
		"decision": decision.String(),
	})

	switch {
	case decision.IsAllowed():
		return nil
	case decision.IsPending():
		return errStillLoading
	case decision.Reason == session.ReasonForbidden:
		fmt.Fprintf(c.errOut, "This command needs an admin account. Next: %s\n", commandFor(decision.RedirectTo))
		return errAdminRequired
	default:
		fmt.Fprintf(c.errOut, "Not signed in. Next: %s (%s)\n", commandFor(decision.RedirectTo), decision.RedirectTo)
		return errLoginRequired
	}
}
