package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbscribe/internal/app"
	"github.com/koustreak/dbscribe/internal/config"
	"github.com/koustreak/dbscribe/internal/database"
)

type globalFlags struct {
	configPath string
	driver     string
	dsn        string
	schema     string
	logLevel   string
}

// cli carries state shared by every subcommand.
type cli struct {
	out   io.Writer
	flags globalFlags
	cfg   *config.Config
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "dbscribe",
		Short: "Inspect database schemas and generate DDL",
		Long: `dbscribe reads table structure from PostgreSQL, MySQL or SQLite catalogs
and renders it back as JSON or as dependency-ordered CREATE scripts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&c.flags.driver, "driver", "", "database driver: postgres, mysql or sqlite")
	pf.StringVar(&c.flags.dsn, "dsn", "", "connection string (overrides config and "+config.EnvDSN+")")
	pf.StringVarP(&c.flags.schema, "schema", "s", "", "schema name (default: the backend's default schema)")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		c.schemasCmd(),
		c.tablesCmd(),
		c.inspectCmd(),
		c.ddlCmd(),
		c.snapshotCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}

	if c.flags.driver != "" {
		cfg.Database.Driver = database.Driver(c.flags.driver)
	}
	if c.flags.dsn != "" {
		cfg.Database.DSN = c.flags.dsn
	}
	if c.flags.schema != "" {
		cfg.Database.Schema = c.flags.schema
	}
	if c.flags.logLevel != "" {
		cfg.Log.Level = c.flags.logLevel
	}
	cfg.Log.Output = cmd.ErrOrStderr()

	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// withApp connects, runs fn under the configured query timeout and closes
// the connection.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if d := c.cfg.Database.QueryTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	a, err := app.New(ctx, c.cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer a.Close()

	return fn(ctx, a)
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printLines(lines []string) {
	for _, l := range lines {
		fmt.Fprintln(c.out, l)
	}
}
