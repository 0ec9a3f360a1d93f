package library

import (
	"net/http"
	"strconv"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/books"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	library     *Library
	bookService *books.Service
}

// BookView is the JSON shape of a loaded aggregate.
type BookView struct {
	Book    *models.Book     `json:"book"`
	Work    *models.Work     `json:"work"`
	Series  *models.Series   `json:"series,omitempty"`
	Authors []*models.Author `json:"authors"`
	Status  aggregate.Status `json:"status"`
}

func viewOf(agg *aggregate.Aggregate) *BookView {
	authors := agg.Authors
	if authors == nil {
		authors = []*models.Author{}
	}
	return &BookView{
		Book:    agg.Book,
		Work:    agg.Work,
		Series:  agg.Series,
		Authors: authors,
		Status:  agg.Status(),
	}
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	list, total, err := h.bookService.ListBooksWithTotal(ctx, books.ListBooksOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		WorkID:   params.WorkID,
		Language: params.Language,
		Missing:  params.Missing,
		Search:   params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"books": list,
		"total": total,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	agg, err := h.library.Load(ctx, LoadOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, viewOf(agg)))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	agg, err := h.library.Load(ctx, LoadOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	ApplyEdit(agg, params)

	result, err := h.library.Save(ctx, agg)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"book":   viewOf(agg),
		"result": result,
	}))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if err := h.library.DeleteBook(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
