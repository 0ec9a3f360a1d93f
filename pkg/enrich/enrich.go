// Package enrich fills gaps in an aggregate from remote book catalogs.
// Providers are best effort: failures yield an empty field map and a
// diagnostic, never an error.
package enrich

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

// DefaultTimeout bounds every remote request.
const DefaultTimeout = 5 * time.Second

// Diagnostic reports what a provider did.
type Diagnostic struct {
	Provider string
	Requests int
	// Err is the failure that cut the lookup short, if any.
	Err error
	// Found is true when the catalog knew the book.
	Found bool
}

// Provider looks an aggregate up in one catalog.
type Provider interface {
	Name() string
	Enrich(ctx context.Context, agg *aggregate.Aggregate) (mediafile.Fields, Diagnostic)
}

// NewProviders builds the primary and secondary providers from cfg, or none
// when remote enrichment is disabled.
func NewProviders(cfg *config.Config) []Provider {
	if !cfg.RemoteEnabled {
		return nil
	}
	c := newClient(cfg.RemoteTimeout, cfg.UserAgent)
	return []Provider{
		&VolumeCatalog{client: c, baseURL: strings.TrimRight(cfg.VolumeCatalogURL, "/"), apiKey: cfg.VolumeCatalogAPIKey},
		&LibraryCatalog{client: c, baseURL: strings.TrimRight(cfg.LibraryCatalogURL, "/")},
	}
}

// Run calls the providers in order, merging each result into agg before the
// next provider sees it.
func Run(ctx context.Context, agg *aggregate.Aggregate, providers ...Provider) []Diagnostic {
	log := logger.FromContext(ctx)
	diagnostics := make([]Diagnostic, 0, len(providers))
	for _, p := range providers {
		fields, diag := p.Enrich(ctx, agg)
		if diag.Err != nil {
			log.Err(diag.Err).Warn("remote lookup failed", logger.Data{"provider": p.Name(), "path": agg.Book.Path})
		}
		agg.Merge(fields)
		diagnostics = append(diagnostics, diag)
	}
	return diagnostics
}

// stripProtected drops fields that would override user-owned state.
func stripProtected(agg *aggregate.Aggregate, fields mediafile.Fields) {
	if !mediafile.IsEmptyValue(agg.AuthorNames()) {
		delete(fields, mediafile.KeyAuthors)
	}
	if hasDescription(agg) {
		delete(fields, mediafile.KeyDescription)
	}
}

func hasDescription(agg *aggregate.Aggregate) bool {
	return agg.Book.IsManualDescription || !mediafile.IsEmptyValue(agg.Book.Description)
}

type client struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
}

func newClient(timeout time.Duration, userAgent string) *client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &client{
		http:      &http.Client{Timeout: timeout},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// getJSON fetches url and decodes the body into v.
func (c *client) getJSON(ctx context.Context, url string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.Wrapf(json.Unmarshal(body, v), "decoding %s", url)
}
