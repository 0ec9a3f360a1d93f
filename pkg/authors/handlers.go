package authors

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
	authorService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAuthorsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	list, total, err := h.authorService.ListAuthorsWithTotal(ctx, ListAuthorsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		WorkID: params.WorkID,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"authors": list,
		"total":   total,
	}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	params := UpdateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateAuthorOptions{Columns: []string{}}
	for col, pair := range map[string]struct {
		dst *string
		src *string
	}{
		"firstname":   {&author.Firstname, params.Firstname},
		"lastname":    {&author.Lastname, params.Lastname},
		"country":     {&author.Country, params.Country},
		"birth_place": {&author.BirthPlace, params.BirthPlace},
		"birth_date":  {&author.BirthDate, params.BirthDate},
		"vita":        {&author.Vita, params.Vita},
	} {
		if pair.src != nil {
			*pair.dst = strings.TrimSpace(*pair.src)
			opts.Columns = append(opts.Columns, col)
		}
	}
	if params.Language != nil {
		author.Language = models.NormalizeLanguage(*params.Language)
		opts.Columns = append(opts.Columns, "language")
	}
	if params.BirthYear != nil {
		author.BirthYear = *params.BirthYear
		opts.Columns = append(opts.Columns, "birth_year")
	}
	if params.IsFavorite != nil {
		author.IsFavorite = *params.IsFavorite
		opts.Columns = append(opts.Columns, "is_favorite")
	}

	if err := h.authorService.UpdateAuthor(ctx, author, opts); err != nil {
		return errors.WithStack(err)
	}

	// Reload the model
	author, err = h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

// merge folds the source author of the payload into the author in the path.
func (h *handler) merge(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	params := MergeAuthorsPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.authorService.MergeAuthors(ctx, id, params.SourceID); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, author))
}

// split moves the given works of the author in the path onto a new author
// with the same last name.
func (h *handler) split(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	params := SplitAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	created, err := h.authorService.SplitAuthor(ctx, id, params.WorkIDs, params.Firstname)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, created))
}

func (h *handler) deleteAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	if err := h.authorService.DeleteAuthor(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
