package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/koustreak/dbscribe/internal/app"
	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/schema"
	"github.com/koustreak/dbscribe/internal/script"
	"github.com/koustreak/dbscribe/internal/server"
)

func (c *cli) schemasCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List user schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				names, err := a.Introspector.ListSchemas(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return c.printJSON(names)
				}
				c.printLines(names)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON array")
	return cmd
}

func (c *cli) tablesCmd() *cobra.Command {
	var (
		ordered         bool
		dependentsFirst bool
		asJSON          bool
	)
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of a schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					names []string
					err   error
				)
				if ordered || dependentsFirst {
					names, err = a.Introspector.ListTablesOrdered(ctx, a.Schema(), !dependentsFirst)
				} else {
					names, err = a.Introspector.ListTables(ctx, a.Schema())
				}
				if err != nil {
					return err
				}
				if asJSON {
					return c.printJSON(names)
				}
				c.printLines(names)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&ordered, "ordered", false, "order so referenced tables come first")
	cmd.Flags().BoolVar(&dependentsFirst, "dependents-first", false, "order so referencing tables come first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON array")
	return cmd
}

func (c *cli) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <table>...",
		Short: "Print the structure of tables as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				tables, err := inspectAll(ctx, a, args)
				if err != nil {
					return err
				}
				if len(tables) == 1 {
					return c.printJSON(tables[0])
				}
				return c.printJSON(tables)
			})
		},
	}
}

func (c *cli) ddlCmd() *cobra.Command {
	var (
		constraints bool
		defaults    bool
		minimal     bool
		drop        bool
	)
	cmd := &cobra.Command{
		Use:   "ddl [table...]",
		Short: "Print a CREATE script for a schema or selected tables",
		Long: `Print CREATE TABLE statements followed by CREATE INDEX statements.
Without table arguments the whole schema is scripted in dependency order;
named tables are scripted in the order given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					tables []*schema.Table
					err    error
				)
				if len(args) == 0 {
					tables, err = a.Introspector.InspectSchema(ctx, a.Schema())
				} else {
					tables, err = inspectAll(ctx, a, args)
				}
				if err != nil {
					return err
				}

				d := a.Introspector.Profile().Dialect
				schemaName := a.Schema()
				if schemaName == "" {
					schemaName = d.DefaultSchema
				}
				opts := []script.Option{script.WithSchema(schemaName)}
				if defaults {
					opts = append(opts, script.WithDefaults())
				}
				if minimal {
					opts = append(opts, script.WithMinimalQuoting())
				}
				b := script.New(d, opts...)

				if drop {
					fmt.Fprintf(c.out, "%s;\n", b.BuildDropSchemaScript(tables))
					return nil
				}
				if len(tables) > 0 {
					fmt.Fprintf(c.out, "%s;\n", b.BuildCreateSchemaScript(tables, constraints))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&constraints, "constraints", true, "include primary and foreign key constraints")
	cmd.Flags().BoolVar(&defaults, "defaults", true, "include column defaults")
	cmd.Flags().BoolVar(&minimal, "minimal-quoting", false, "quote identifiers only when required")
	cmd.Flags().BoolVar(&drop, "drop", false, "print DROP TABLE statements in reverse order instead")
	return cmd
}

func (c *cli) snapshotCmd() *cobra.Command {
	var bucket string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Store, list and read schema snapshots in object storage",
	}
	cmd.PersistentFlags().StringVar(&bucket, "bucket", "", "bucket (default: filestore.default_bucket)")
	bucketOf := func() string {
		if bucket != "" {
			return bucket
		}
		return c.cfg.FileStore.DefaultBucket
	}

	var presign time.Duration
	save := &cobra.Command{
		Use:   "save <key>",
		Short: "Snapshot the schema under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				svc, store, err := a.Snapshots(ctx)
				if err != nil {
					return err
				}
				defer store.Close()

				snap, err := svc.Take(ctx, a.Introspector, a.Schema())
				if err != nil {
					return err
				}
				res, err := svc.Save(ctx, bucketOf(), args[0], snap, presign)
				if err != nil {
					return err
				}
				return c.printJSON(res)
			})
		},
	}
	save.Flags().DurationVar(&presign, "presign", 0, "also print a download URL valid for this long")

	var prefix string
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshot keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				svc, store, err := a.Snapshots(ctx)
				if err != nil {
					return err
				}
				defer store.Close()

				keys, err := svc.List(ctx, bucketOf(), prefix)
				if err != nil {
					return err
				}
				c.printLines(keys)
				return nil
			})
		},
	}
	list.Flags().StringVar(&prefix, "prefix", "", "only keys under this prefix")

	var ddl bool
	show := &cobra.Command{
		Use:   "show <key>",
		Short: "Print a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				svc, store, err := a.Snapshots(ctx)
				if err != nil {
					return err
				}
				defer store.Close()

				snap, err := svc.Load(ctx, bucketOf(), args[0])
				if err != nil {
					return err
				}
				if ddl {
					fmt.Fprintln(c.out, snap.DDL)
					return nil
				}
				return c.printJSON(snap)
			})
		},
	}
	show.Flags().BoolVar(&ddl, "ddl", false, "print the stored script instead of the JSON")

	cmd.AddCommand(save, list, show)
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schema over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, c.cfg)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer a.Close()

			srv := server.New(a.Introspector,
				server.WithLogger(a.Log),
				server.WithQueryTimeout(c.cfg.Database.QueryTimeout))
			return srv.ListenAndServe(ctx, c.cfg.Server)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}

// inspectAll inspects every named table and reports all failures at once.
func inspectAll(ctx context.Context, a *app.App, names []string) ([]*schema.Table, error) {
	var (
		tables []*schema.Table
		result *multierror.Error
	)
	for _, name := range names {
		t, err := a.Introspector.InspectTable(ctx, a.Schema(), name)
		if err != nil {
			if errs.IsConnectionNotOpen(err) || errs.IsTimeout(err) {
				return nil, err
			}
			result = multierror.Append(result, err)
			continue
		}
		tables = append(tables, t)
	}
	return tables, result.ErrorOrNil()
}
