package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/utils"
)

const showColumns = `id, title, slug, description, mixcloud_url, mixcloud_embed, published_date, storyblok_id, status, created_at, updated_at`

type ShowRepository struct {
	db *sql.DB
}

func NewShowRepository(db *sql.DB) *ShowRepository { return &ShowRepository{db: db} }

func (r *ShowRepository) CreateShow(ctx context.Context, show *model.Show) (int64, error) {
	now := utils.GetCurrentTime()
	if show.CreatedAt.IsZero() {
		show.CreatedAt = now
	}
	show.UpdatedAt = now
	if show.Status == "" {
		show.Status = model.ShowStatusDraft
	}

	q := `INSERT INTO shows (title, slug, description, mixcloud_url, mixcloud_embed, published_date, status, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		  RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		show.Title, show.Slug, show.Description, show.MixcloudURL, show.MixcloudEmbed,
		show.PublishedDate, string(show.Status), show.CreatedAt, show.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	show.ID = id
	return id, nil
}

func (r *ShowRepository) CreateTracks(ctx context.Context, showID int64, tracks []model.Track) (n int, err error) {
	if len(tracks) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO mixcloud_tracks (show_id, position, hour, artist, track, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$6)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := utils.GetCurrentTime()
	for _, t := range tracks {
		if _, err = stmt.ExecContext(ctx, showID, t.Position, t.Hour, t.Artist, t.Track, now); err != nil {
			return 0, fmt.Errorf("insert track %d: %w", t.Position, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(tracks), nil
}

// LinkStoryblok stores the CMS id and replaces the slug with the CMS-assigned one.
func (r *ShowRepository) LinkStoryblok(ctx context.Context, showID, storyblokID int64, slug string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE shows SET storyblok_id=$1, slug=$2, updated_at=$3 WHERE id=$4`, storyblokID, slug, utils.GetCurrentTime(), showID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetShowBySlug returns the newest show with slug.
func (r *ShowRepository) GetShowBySlug(ctx context.Context, slug string) (*model.Show, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM shows WHERE slug=$1 ORDER BY id DESC LIMIT 1`, slug)
	show, err := scanShow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return show, nil
}

func (r *ShowRepository) GetTracks(ctx context.Context, showID int64) ([]model.Track, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, show_id, position, hour, artist, track, created_at, updated_at FROM mixcloud_tracks WHERE show_id=$1 ORDER BY position ASC`, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := []model.Track{}
	for rows.Next() {
		var t model.Track
		var hour sql.NullInt64
		if err := rows.Scan(&t.ID, &t.ShowID, &t.Position, &hour, &t.Artist, &t.Track, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if hour.Valid {
			h := int(hour.Int64)
			t.Hour = &h
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (r *ShowRepository) ListShows(ctx context.Context, limit, offset int) ([]model.Show, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+showColumns+` FROM shows ORDER BY published_date DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shows := []model.Show{}
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, *show)
	}
	return shows, rows.Err()
}

func (r *ShowRepository) SlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slug FROM shows WHERE slug=$1 OR slug LIKE $2`, base, base+"-%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShow(row rowScanner) (*model.Show, error) {
	show := &model.Show{}
	var storyblokID sql.NullInt64
	var status string
	if err := row.Scan(&show.ID, &show.Title, &show.Slug, &show.Description, &show.MixcloudURL, &show.MixcloudEmbed,
		&show.PublishedDate, &storyblokID, &status, &show.CreatedAt, &show.UpdatedAt); err != nil {
		return nil, err
	}
	if storyblokID.Valid {
		id := storyblokID.Int64
		show.StoryblokID = &id
	}
	show.Status = model.ShowStatus(status)
	return show, nil
}

var _ repository.IShow = (*ShowRepository)(nil)
