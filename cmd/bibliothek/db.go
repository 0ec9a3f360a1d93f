package main

import (
	"fmt"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/migrations"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func (e *env) migrator() *migrate.Migrator {
	return migrate.NewMigrator(e.db, migrations.Migrations)
}

// dbCommand manages the schema by hand. Every other command brings the
// schema up to date on its own.
func (e *env) dbCommand() *cli.Command {
	return &cli.Command{
		Name:   "db",
		Usage:  "inspect and change the store schema",
		Before: e.beforeNoMigrate,
		Subcommands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					m := e.migrator()
					if err := m.Init(c.Context); err != nil {
						return err
					}
					group, err := m.Migrate(c.Context)
					if err != nil {
						return err
					}
					if group.ID == 0 {
						fmt.Println("schema is up to date")
						return nil
					}
					fmt.Printf("migrated to %s\n", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					group, err := e.migrator().Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.ID == 0 {
						fmt.Println("nothing to roll back")
						return nil
					}
					fmt.Printf("rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "list applied and pending migrations",
				Action: func(c *cli.Context) error {
					ms, err := e.migrator().MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("applied: %s\n", ms.Applied())
					fmt.Printf("pending: %s\n", ms.Unapplied())
					fmt.Printf("last group: %s\n", ms.LastGroup())
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "write a new Go migration into pkg/migrations",
				ArgsUsage: "<name words>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("create needs a migration name", 1)
					}
					name := strings.Join(c.Args().Slice(), "_")
					mf, err := e.migrator().CreateGoMigration(c.Context, name, migrate.WithGoTemplate(migrationTemplate))
					if err != nil {
						return err
					}
					fmt.Printf("created %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
		},
	}
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
