package joblogs

import (
	"net/http"
	"strconv"

	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/jobs"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	jobLogService *Service
	jobService    *jobs.Service
}

func (h *handler) listLogs(c echo.Context) error {
	ctx := c.Request().Context()

	jobID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Job")
	}

	job, err := h.jobService.RetrieveJob(ctx, jobs.RetrieveJobOptions{ID: &jobID})
	if err != nil {
		return errors.WithStack(err)
	}

	params := ListJobLogsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	logs, err := h.jobLogService.ListJobLogs(ctx, ListJobLogsOptions{
		JobID:   jobID,
		AfterID: params.AfterID,
		Levels:  params.Level,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Logs []*JobLog `json:"logs"`
		Job  *jobs.Job `json:"job"`
	}{logs, job}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
