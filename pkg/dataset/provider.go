package dataset

import (
	"context"
	"errors"
	"log"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// ErrExternalDataUnavailable signals that a remote data source could not
// deliver training records.
var ErrExternalDataUnavailable = errors.New("external training data unavailable")

// Provider supplies training records for the yield model.
type Provider interface {
	Records(ctx context.Context, n int) ([]models.TrainingRecord, error)
}

// FallbackProvider tries a primary source and falls back to a secondary
// one when it fails. Training always gets data this way even when the
// external source is down.
type FallbackProvider struct {
	Primary  Provider
	Fallback Provider
}

// Records returns primary data when available, fallback data otherwise.
func (p *FallbackProvider) Records(ctx context.Context, n int) ([]models.TrainingRecord, error) {
	records, err := p.Primary.Records(ctx, n)
	if err == nil {
		return records, nil
	}

	log.Printf("⚠ Primary data source failed, using fallback: %v", err)
	return p.Fallback.Records(ctx, n)
}

// CachedProvider serves records from the store when enough are cached and
// refills the cache from the source otherwise.
type CachedProvider struct {
	Store  *RecordStore
	Source Provider
}

// Records loads cached rows if the store holds at least n of them;
// otherwise it fetches fresh records from the source and caches them.
func (p *CachedProvider) Records(ctx context.Context, n int) ([]models.TrainingRecord, error) {
	count, err := p.Store.Count(ctx)
	if err != nil {
		log.Printf("⚠ Record cache unavailable, fetching directly: %v", err)
		return p.Source.Records(ctx, n)
	}

	if count >= n {
		return p.Store.LoadRecords(ctx, n)
	}

	records, err := p.Source.Records(ctx, n)
	if err != nil {
		return nil, err
	}

	if err := p.Store.SaveRecords(ctx, records); err != nil {
		log.Printf("⚠ Failed to cache %d training records: %v", len(records), err)
	}
	return records, nil
}
