package ingest

import (
	"net/http"
	"path/filepath"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/report"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	ingester *Ingester
}

type ingestResponse struct {
	*Result
	Status  aggregate.Status `json:"status"`
	Entries []report.Entry   `json:"entries"`
}

func (h *handler) ingest(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	// Bind params.
	params := IngestPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	rep := report.New("")
	res, err := h.ingester.IngestFile(ctx, params.Path, Options{Force: params.Force}, rep)
	if err != nil {
		return errors.WithStack(err)
	}

	if res.Save != nil {
		if _, err := h.ingester.WriteReport(filepath.Dir(res.Save.Path), rep); err != nil {
			log.Err(err).Warn("failed to write report")
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, ingestResponse{
		Result:  res,
		Status:  res.Book.Status(),
		Entries: append([]report.Entry{}, rep.Entries()...),
	}))
}
