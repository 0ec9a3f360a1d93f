package maintenance

import (
	"net/http"
	"strconv"

	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/report"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	maintenanceService *Service
}

func (h *handler) cleanup(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.maintenanceService.CleanupOrphans(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, result))
}

type repairEntry struct {
	BookID int           `json:"book_id"`
	Path   string        `json:"path"`
	Action report.Action `json:"action"`
	Note   string        `json:"note,omitempty"`
}

func (h *handler) repair(c echo.Context) error {
	ctx := c.Request().Context()

	// An empty body runs the default repair.
	c.Set("disallow_empty_body", false)
	params := RepairPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	rep := report.New("")
	result, err := h.maintenanceService.DeepRepair(ctx, RepairOptions{MarkMissing: params.MarkMissing}, rep)
	if err != nil {
		return errors.WithStack(err)
	}

	entries := []repairEntry{}
	for _, e := range rep.Entries() {
		entries = append(entries, repairEntry{BookID: e.BookID, Path: e.Path, Action: e.Action, Note: e.Note})
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"result":  result,
		"entries": entries,
	}))
}

func (h *handler) markMissing(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if err := h.maintenanceService.MarkMissing(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
