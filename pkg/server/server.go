// Package server assembles the JSON query and command API the library UI
// binds to.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bibliothek/bibliothek/pkg/authors"
	"github.com/bibliothek/bibliothek/pkg/binder"
	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/ingest"
	"github.com/bibliothek/bibliothek/pkg/joblogs"
	"github.com/bibliothek/bibliothek/pkg/jobs"
	"github.com/bibliothek/bibliothek/pkg/library"
	"github.com/bibliothek/bibliothek/pkg/maintenance"
	"github.com/bibliothek/bibliothek/pkg/series"
	"github.com/bibliothek/bibliothek/pkg/works"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, ing *ingest.Ingester) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	registerRoutes(e, db, cfg, ing)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func registerRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, ing *ingest.Ingester) {
	library.RegisterRoutesWithGroup(e.Group("/books"), db, cfg)
	works.RegisterRoutesWithGroup(e.Group("/works"), db)
	series.RegisterRoutesWithGroup(e.Group("/series"), db)
	authors.RegisterRoutesWithGroup(e.Group("/authors"), db)

	ingest.RegisterRoutesWithGroup(e.Group("/ingest"), ing)
	config.RegisterRoutesWithGroup(e.Group("/config"), cfg)
	jobsGroup := e.Group("/jobs")
	jobs.RegisterRoutesWithGroup(jobsGroup, db, cfg)
	joblogs.RegisterRoutes(jobsGroup, db)
	maintenance.RegisterRoutesWithGroup(e.Group("/maintenance"), db)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
