package library

import (
	"github.com/bibliothek/bibliothek/pkg/books"
	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &handler{
		library:     New(db, cfg),
		bookService: books.NewService(db),
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}
