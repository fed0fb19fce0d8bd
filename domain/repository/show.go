package repository

import (
	"context"
	"errors"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// IShow persists shows and their tracks.
type IShow interface {
	CreateShow(ctx context.Context, show *model.Show) (int64, error)
	// CreateTracks inserts all tracks of one show atomically.
	CreateTracks(ctx context.Context, showID int64, tracks []model.Track) (int, error)
	LinkStoryblok(ctx context.Context, showID, storyblokID int64, slug string) error
	GetShowBySlug(ctx context.Context, slug string) (*model.Show, error)
	GetTracks(ctx context.Context, showID int64) ([]model.Track, error)
	ListShows(ctx context.Context, limit, offset int) ([]model.Show, error)
	// SlugsWithPrefix returns existing slugs equal to base or starting with base + "-".
	SlugsWithPrefix(ctx context.Context, base string) ([]string, error)
}

// IShowCache caches show details by slug.
type IShowCache interface {
	Get(ctx context.Context, slug string) ([]byte, bool, error)
	Set(ctx context.Context, slug string, payload []byte) error
	Invalidate(ctx context.Context, slug string) error
}

// IShowEvents announces ingested shows to downstream consumers.
type IShowEvents interface {
	PublishShowIngested(ctx context.Context, event model.ShowIngestedEvent) error
}

// IIngestionAudit records the outcome of every ingestion run.
type IIngestionAudit interface {
	RecordIngestion(ctx context.Context, audit model.IngestionAudit) error
}
