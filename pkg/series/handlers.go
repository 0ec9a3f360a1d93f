package series

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	seriesService *Service
}

type seriesWithCount struct {
	*models.Series
	WorkCount int `json:"work_count"`
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	workCount, err := h.seriesService.GetSeriesWorkCount(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, seriesWithCount{series, workCount}))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListSeriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	seriesList, total, err := h.seriesService.ListSeriesWithTotal(ctx, ListSeriesOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	result := make([]seriesWithCount, len(seriesList))
	for i, s := range seriesList {
		count, _ := h.seriesService.GetSeriesWorkCount(ctx, s.ID)
		result[i] = seriesWithCount{s, count}
	}

	response := map[string]interface{}{
		"series": result,
		"total":  total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	params := UpdateSeriesPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	series, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateSeriesOptions{Columns: []string{}}

	if params.Name != nil && strings.TrimSpace(*params.Name) != series.Name {
		name := strings.TrimSpace(*params.Name)
		taken, err := h.seriesService.NameTaken(ctx, name, series.ID)
		if err != nil {
			return errors.WithStack(err)
		}
		if taken {
			return errcodes.IntegrityViolation("series name " + name)
		}
		series.Name = name
		opts.Columns = append(opts.Columns, "name")
	}

	for col, pair := range map[string]struct {
		dst *string
		src *string
	}{
		"name_de": {&series.NameDE, params.NameDE},
		"name_en": {&series.NameEN, params.NameEN},
		"name_fr": {&series.NameFR, params.NameFR},
		"name_it": {&series.NameIT, params.NameIT},
		"name_es": {&series.NameES, params.NameES},
		"link":    {&series.Link, params.Link},
		"notes":   {&series.Notes, params.Notes},
	} {
		if pair.src != nil {
			*pair.dst = strings.TrimSpace(*pair.src)
			opts.Columns = append(opts.Columns, col)
		}
	}

	if err := h.seriesService.UpdateSeries(ctx, series, opts); err != nil {
		return errors.WithStack(err)
	}

	// Reload the model
	series, err = h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	workCount, _ := h.seriesService.GetSeriesWorkCount(ctx, id)

	return errors.WithStack(c.JSON(http.StatusOK, seriesWithCount{series, workCount}))
}

func (h *handler) deleteSeries(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Series")
	}

	if _, err := h.seriesService.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	if err := h.seriesService.DeleteSeries(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
