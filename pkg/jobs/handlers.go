package jobs

import (
	"net/http"
	"strconv"

	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	config     *config.Config
	jobService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateJobPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if params.Type == JobTypeScan {
		path, _ := params.Data["path"].(string)
		if path == "" && h.config.LibraryPath == "" {
			return errcodes.ValidationError("A scan needs a path when no library path is configured.")
		}
	}

	// Only one job of a type may be queued or running at a time.
	hasActive, err := h.jobService.HasActiveJobByType(ctx, params.Type)
	if err != nil {
		return errors.WithStack(err)
	}
	if hasActive {
		return errcodes.Conflict("A " + params.Type + " job is already running or pending.")
	}

	job := &Job{
		Type:       params.Type,
		Status:     JobStatusPending,
		DataParsed: params.Data,
	}
	if job.DataParsed == nil {
		job.DataParsed = map[string]interface{}{}
	}

	err = h.jobService.CreateJob(ctx, job)
	if err != nil {
		return errors.WithStack(err)
	}

	// Reload the model so data comes back typed.
	job, err = h.jobService.RetrieveJob(ctx, RetrieveJobOptions{
		ID: &job.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, job))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Job")
	}

	job, err := h.jobService.RetrieveJob(ctx, RetrieveJobOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, job))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListJobsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	jobs, total, err := h.jobService.ListJobsWithTotal(ctx, ListJobsOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		Statuses: params.Status,
		Type:     params.Type,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Jobs  []*Job `json:"jobs"`
		Total int    `json:"total"`
	}{jobs, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
