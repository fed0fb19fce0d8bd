package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
)

var ErrShowNotFound = errors.New("show not found")

const (
	defaultShowPageSize = 20
	maxShowPageSize     = 100
)

// IShowUsecase is the read side for ingested shows.
type IShowUsecase interface {
	GetShow(ctx context.Context, slug string) (*dto.ShowDetail, error)
	ListShows(ctx context.Context, req dto.ShowListRequest) (*dto.ShowListResponse, error)
}

type ShowUsecase struct {
	shows repository.IShow
	cache repository.IShowCache // optional
}

func NewShowUsecase(shows repository.IShow) *ShowUsecase {
	return &ShowUsecase{shows: shows}
}

// WithCache enables the read-through cache (fluent)
func (u *ShowUsecase) WithCache(cache repository.IShowCache) *ShowUsecase {
	u.cache = cache
	return u
}

func (u *ShowUsecase) GetShow(ctx context.Context, slug string) (*dto.ShowDetail, error) {
	if u.shows == nil {
		return nil, ErrNotConfigured
	}
	log := logger.FromContext(ctx).WithField("slug", slug)

	if u.cache != nil {
		payload, ok, err := u.cache.Get(ctx, slug)
		if err != nil {
			log.WithField("error", err).Warn("Show cache read failed")
		} else if ok {
			var detail dto.ShowDetail
			if err := json.Unmarshal(payload, &detail); err == nil {
				return &detail, nil
			}
			log.Warn("Discarding undecodable cached show")
		}
	}

	show, err := u.shows.GetShowBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	tracks, err := u.shows.GetTracks(ctx, show.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracks: %w", err)
	}
	if tracks == nil {
		tracks = []model.Track{}
	}
	detail := &dto.ShowDetail{Show: *show, Tracks: tracks, TracksCount: len(tracks)}

	if u.cache != nil {
		if payload, err := json.Marshal(detail); err == nil {
			if err := u.cache.Set(ctx, slug, payload); err != nil {
				log.WithField("error", err).Warn("Show cache write failed")
			}
		}
	}
	return detail, nil
}

func (u *ShowUsecase) ListShows(ctx context.Context, req dto.ShowListRequest) (*dto.ShowListResponse, error) {
	if u.shows == nil {
		return nil, ErrNotConfigured
	}
	if req.Limit <= 0 {
		req.Limit = defaultShowPageSize
	}
	if req.Limit > maxShowPageSize {
		req.Limit = maxShowPageSize
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	shows, err := u.shows.ListShows(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	if shows == nil {
		shows = []model.Show{}
	}
	return &dto.ShowListResponse{Shows: shows, Limit: req.Limit, Offset: req.Offset}, nil
}
