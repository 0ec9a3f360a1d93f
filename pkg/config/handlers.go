package config

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PublicConfig is the part of the configuration the UI may see. Secrets and
// database settings stay out.
type PublicConfig struct {
	LibraryPath     string `json:"library_path"`
	ScannerVersion  string `json:"scanner_version"`
	RenameOnSave    bool   `json:"rename_on_save"`
	ReportFileName  string `json:"report_file_name"`
	RemoteEnabled   bool   `json:"remote_enabled"`
	ThumbnailHeight int    `json:"thumbnail_height"`
	WorkerProcesses int    `json:"worker_processes"`
}

func (cfg *Config) Public() PublicConfig {
	return PublicConfig{
		LibraryPath:     cfg.LibraryPath,
		ScannerVersion:  cfg.ScannerVersion,
		RenameOnSave:    cfg.RenameOnSave,
		ReportFileName:  cfg.ReportFileName,
		RemoteEnabled:   cfg.RemoteEnabled,
		ThumbnailHeight: cfg.ThumbnailHeight,
		WorkerProcesses: cfg.WorkerProcesses,
	}
}

type handler struct {
	config *Config
}

func (h *handler) retrieve(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, h.config.Public()))
}
