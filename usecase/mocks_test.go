package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/playlist"
)

type MockTokenRepo struct {
	mock.Mock
}

func (m *MockTokenRepo) GetToken(ctx context.Context, ownerID string) (*model.OAuthToken, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OAuthToken), args.Error(1)
}

func (m *MockTokenRepo) UpsertToken(ctx context.Context, token *model.OAuthToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockTokenRepo) UpdateRefreshedToken(ctx context.Context, token *model.OAuthToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockTokenRepo) DeleteToken(ctx context.Context, ownerID string) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepo) ListExpiring(ctx context.Context, before time.Time) ([]model.OAuthToken, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OAuthToken), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) EnsureProfile(ctx context.Context, externalID, email string) (*model.Profile, error) {
	args := m.Called(ctx, externalID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

type MockMixcloudAPI struct {
	mock.Mock
}

func (m *MockMixcloudAPI) GetCloudcast(ctx context.Context, key, accessToken string) (*model.Cloudcast, error) {
	args := m.Called(ctx, key, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cloudcast), args.Error(1)
}

func (m *MockMixcloudAPI) GetMe(ctx context.Context, accessToken string) (*model.MixcloudUser, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MixcloudUser), args.Error(1)
}

type MockShowRepo struct {
	mock.Mock
}

func (m *MockShowRepo) CreateShow(ctx context.Context, show *model.Show) (int64, error) {
	args := m.Called(ctx, show)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShowRepo) CreateTracks(ctx context.Context, showID int64, tracks []model.Track) (int, error) {
	args := m.Called(ctx, showID, tracks)
	return args.Int(0), args.Error(1)
}

func (m *MockShowRepo) LinkStoryblok(ctx context.Context, showID, storyblokID int64, slug string) error {
	return m.Called(ctx, showID, storyblokID, slug).Error(0)
}

func (m *MockShowRepo) GetShowBySlug(ctx context.Context, slug string) (*model.Show, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Show), args.Error(1)
}

func (m *MockShowRepo) GetTracks(ctx context.Context, showID int64) ([]model.Track, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Track), args.Error(1)
}

func (m *MockShowRepo) ListShows(ctx context.Context, limit, offset int) ([]model.Show, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Show), args.Error(1)
}

func (m *MockShowRepo) SlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) CreateShowStory(ctx context.Context, input dto.ShowStoryInput, tracks []playlist.ParsedTrack, cover *dto.CoverImage) (*dto.StoryRef, error) {
	args := m.Called(ctx, input, tracks, cover)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StoryRef), args.Error(1)
}

type MockShowCache struct {
	mock.Mock
}

func (m *MockShowCache) Get(ctx context.Context, slug string) ([]byte, bool, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockShowCache) Set(ctx context.Context, slug string, payload []byte) error {
	return m.Called(ctx, slug, payload).Error(0)
}

func (m *MockShowCache) Invalidate(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

type MockShowEvents struct {
	mock.Mock
}

func (m *MockShowEvents) PublishShowIngested(ctx context.Context, event model.ShowIngestedEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) RecordIngestion(ctx context.Context, audit model.IngestionAudit) error {
	return m.Called(ctx, audit).Error(0)
}
