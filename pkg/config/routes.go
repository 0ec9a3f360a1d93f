package config

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutesWithGroup(g *echo.Group, cfg *Config) {
	h := &handler{config: cfg}

	g.GET("", h.retrieve)
}
