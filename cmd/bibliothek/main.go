package main

import (
	"context"
	"os"

	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/bibliothek/bibliothek/pkg/database"
	"github.com/bibliothek/bibliothek/pkg/migrations"
	"github.com/bibliothek/bibliothek/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

// env is what every command works with. Commands open it in their Before
// hook, the app closes it in After.
type env struct {
	cfg *config.Config
	db  *bun.DB
	log logger.Logger
}

func main() {
	log := logger.New()
	e := &env{log: log}

	app := &cli.App{
		Name:    "bibliothek",
		Usage:   "catalogue a personal ebook library",
		Version: version.Version,
		After: func(_ *cli.Context) error {
			return e.close()
		},
		Commands: []*cli.Command{
			e.ingestCommand(),
			e.scanCommand(),
			e.cleanupCommand(),
			e.repairCommand(),
			e.markMissingCommand(),
			e.mergeAuthorsCommand(),
			e.splitAuthorCommand(),
			e.serveCommand(),
			e.dbCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func (e *env) before(c *cli.Context) error {
	return e.open(c.Context)
}

// beforeNoMigrate opens the store without touching its schema, for the db
// subcommands.
func (e *env) beforeNoMigrate(_ *cli.Context) error {
	return e.connect()
}

func (e *env) connect() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	e.cfg = cfg

	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	e.db = db
	return nil
}

func (e *env) open(ctx context.Context) error {
	if err := e.connect(); err != nil {
		return err
	}

	group, err := migrations.BringUpToDate(ctx, e.db)
	if err != nil {
		return err
	}
	if group.ID != 0 {
		e.log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}
	return nil
}

func (e *env) close() error {
	if e.db == nil {
		return nil
	}
	return errors.WithStack(e.db.Close())
}
