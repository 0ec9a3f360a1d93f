package maintenance

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers maintenance routes on a pre-configured
// group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		maintenanceService: NewService(db),
	}

	g.POST("/cleanup", h.cleanup)
	g.POST("/repair", h.repair)
	g.POST("/missing/:id", h.markMissing)
}
