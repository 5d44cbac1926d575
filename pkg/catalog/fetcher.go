//go:generate mockgen -destination=./mocks/catalog.go . Transport

package catalog

import (
	"context"
	"fmt"

	"github.com/glorpus-work/modpick/internal/logger"
	"github.com/glorpus-work/modpick/pkg/errors"
	"github.com/glorpus-work/modpick/pkg/model"
)

// Transport is the subset of the download client used to retrieve the manifest.
type Transport interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Fetcher downloads and parses the manifest.
type Fetcher struct {
	Transport     Transport
	URL           string
	ExcludeMarker string
}

// NewFetcher constructs a Fetcher for manifestURL.
func NewFetcher(transport Transport, manifestURL, excludeMarker string) *Fetcher {
	return &Fetcher{
		Transport:     transport,
		URL:           manifestURL,
		ExcludeMarker: excludeMarker,
	}
}

// Fetch retrieves the manifest and returns a fresh catalog snapshot.
// Transport failures wrap ErrFetchFailed; parse failures are returned as-is.
func (f *Fetcher) Fetch(ctx context.Context) (*model.Catalog, error) {
	if f.Transport == nil {
		return nil, fmt.Errorf("manifest transport is not configured")
	}

	logger.Debug("Fetching manifest", logger.Fields{"url": f.URL})
	raw, err := f.Transport.Fetch(ctx, f.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %w", errors.ErrFetchFailed, f.URL, err)
	}

	cat, err := Parse(raw, WithExcludeMarker(f.ExcludeMarker))
	if err != nil {
		return nil, err
	}
	logger.Debug("Parsed manifest", logger.Fields{"packages": cat.Len()})
	return cat, nil
}
