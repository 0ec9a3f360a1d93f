package ingest

type IngestPayload struct {
	Path  string `json:"path" validate:"required"`
	Force bool   `json:"force"`
}
