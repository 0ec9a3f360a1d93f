package works

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
	workService *Service
}

type workDetail struct {
	*models.Work
	Authors []*models.Author `json:"authors"`
	Books   []*models.Book   `json:"books"`
}

func (h *handler) detail(c echo.Context, id int) error {
	ctx := c.Request().Context()

	work, err := h.workService.RetrieveWork(ctx, RetrieveWorkOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	authors, err := h.workService.ListAuthors(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	books, err := h.workService.ListBooks(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, workDetail{work, authors, books}))
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Work")
	}
	return h.detail(c, id)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListWorksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	list, total, err := h.workService.ListWorksWithTotal(ctx, ListWorksOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		SeriesID: params.SeriesID,
		AuthorID: params.AuthorID,
		Search:   params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"works": list,
		"total": total,
	}))
}

// update edits the per-language titles and the descriptive fields. The
// canonical title is owned by the save funnel and can't be changed here.
func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Work")
	}

	params := UpdateWorkPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	work, err := h.workService.RetrieveWork(ctx, RetrieveWorkOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateWorkOptions{Columns: []string{}}
	for col, pair := range map[string]struct {
		dst *string
		src *string
	}{
		"title_de":    {&work.TitleDE, params.TitleDE},
		"title_en":    {&work.TitleEN, params.TitleEN},
		"title_fr":    {&work.TitleFR, params.TitleFR},
		"title_it":    {&work.TitleIT, params.TitleIT},
		"title_es":    {&work.TitleES, params.TitleES},
		"genre":       {&work.Genre, params.Genre},
		"description": {&work.Description, params.Description},
	} {
		if pair.src != nil {
			*pair.dst = strings.TrimSpace(*pair.src)
			opts.Columns = append(opts.Columns, col)
		}
	}

	if err := h.workService.UpdateWork(ctx, work, opts); err != nil {
		return errors.WithStack(err)
	}

	return h.detail(c, id)
}
