package ingest

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers ingest routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, ing *Ingester) {
	h := &handler{
		ingester: ing,
	}

	g.POST("", h.ingest)
}
