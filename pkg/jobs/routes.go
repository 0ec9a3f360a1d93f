package jobs

import (
	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers job routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	jobService := NewService(db)

	h := &handler{
		config:     cfg,
		jobService: jobService,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create)
}
