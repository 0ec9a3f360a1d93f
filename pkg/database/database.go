package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"time"

	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type key int

const ctxKey key = 0

func WithLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey, true)
}

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	enabled, ok := ctx.Value(ctxKey).(bool)
	if !ok || !enabled {
		return
	}

	qh.log.Debug(event.Query, logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()})
}

// New opens the library store. The store is single-writer: one connection is
// kept so that pragmas and in-memory databases survive for the lifetime of
// the handle.
func New(cfg *config.Config) (*bun.DB, error) {
	drv := sqliteshim.Driver()
	drvCtx, ok := drv.(interface {
		OpenConnector(name string) (driver.Connector, error)
	})

	var connector driver.Connector
	if ok {
		c, err := drvCtx.OpenConnector(cfg.DatabaseFilePath)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		connector = c
	} else {
		connector = newDriverConnector(drv, cfg.DatabaseFilePath)
	}

	sqldb := sql.OpenDB(newRetryConnector(connector, cfg.DatabaseMaxRetries))
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	var err error
	for i := 0; i < cfg.DatabaseConnectRetryCount; i++ {
		_, err = db.Exec("SELECT 1")
		if err != nil {
			time.Sleep(cfg.DatabaseConnectRetryDelay)
			continue
		}
		break
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := configure(db, cfg.DatabaseBusyTimeout); err != nil {
		return nil, err
	}

	return db, nil
}

func configure(db *bun.DB, busyTimeout time.Duration) error {
	// Cascades on work_to_author and SET NULL on books/works depend on this.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return errors.Wrap(err, "failed to enable foreign keys")
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return errors.Wrap(err, "failed to enable WAL mode")
	}

	if _, err := db.Exec("PRAGMA busy_timeout=?", busyTimeout.Milliseconds()); err != nil {
		return errors.Wrap(err, "failed to set busy_timeout")
	}

	return nil
}

// IsUniqueViolation reports whether err comes from a UNIQUE or PRIMARY KEY
// constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns s into a LIKE pattern matching any value containing
// it. Use with `LIKE ? ESCAPE '\'`.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}
