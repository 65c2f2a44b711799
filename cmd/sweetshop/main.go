// Package main is the sweetshop command line client.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sweetshop/sweetshop/infrastructure/config"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
)

var (
	Version   = "development"
	BuildTime = "unknown"
)

const appName = "sweetshop"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr, nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries state shared by every subcommand.
type cli struct {
	out     io.Writer
	errOut  io.Writer
	jsonOut bool
	apiURL  string
	logLvl  string

	app *App
	// build constructs the App on first use; tests swap it out.
	build func(ctx context.Context) (*App, error)
}

func newRootCmd(out, errOut io.Writer, build func(ctx context.Context) (*App, error)) *cobra.Command {
	c := &cli{out: out, errOut: errOut, build: build}
	if c.build == nil {
		c.build = c.buildFromConfig
	}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Sweet Shop command line client",
		Long: `sweetshop signs in to a Sweet Shop API, keeps the session on this machine,
and browses, buys and (for admins) manages the sweets catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "Print results as JSON")
	cmd.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "API base URL (overrides SWEETSHOP_API_URL)")
	cmd.PersistentFlags().StringVar(&c.logLvl, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.sweetsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

func (c *cli) buildFromConfig(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
	}
	if c.logLvl != "" {
		cfg.LogLevel = c.logLvl
	}

	log := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: appName,
		Output:      c.errOut,
	})
	return NewApp(ctx, cfg, log, c.out)
}

func (c *cli) ensureApp(ctx context.Context) (*App, error) {
	if c.app != nil {
		return c.app, nil
	}
	app, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	c.app = app
	return app, nil
}

// commandFor maps a view location onto the command that shows it.
func commandFor(target string) string {
	path := target
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	switch path {
	case "/login":
		return appName + " login"
	case "/register":
		return appName + " register"
	case "/", "/dashboard":
		return appName + " sweets list"
	default:
		return target
	}
}
