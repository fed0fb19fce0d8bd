package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/playlist"
	"github.com/tmoody1973/rhythm-lab-app-sub003/usecase"
)

const exampleURL = "https://www.mixcloud.com/dj/deep-house-vol-1/"

func exampleRequest() dto.CreateShowRequest {
	return dto.CreateShowRequest{
		Title:        "Deep House Vol.1",
		MixcloudURL:  exampleURL,
		PlaylistText: "HOUR 1\nKerri Chandler - Rain\nMaya Jane Coles - What They Say",
	}
}

type ingestionFixture struct {
	shows  *MockShowRepo
	mirror *MockMirror
	cache  *MockShowCache
	events *MockShowEvents
	audit  *MockAudit
	uc     *usecase.ShowIngestionUsecase
}

func newIngestionFixture() *ingestionFixture {
	f := &ingestionFixture{
		shows:  new(MockShowRepo),
		mirror: new(MockMirror),
		cache:  new(MockShowCache),
		events: new(MockShowEvents),
		audit:  new(MockAudit),
	}
	f.uc = usecase.NewShowIngestionUsecase(f.shows, f.mirror).
		WithCache(f.cache).
		WithEvents(f.events).
		WithAudit(f.audit).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func (f *ingestionFixture) allowSideEffects() {
	f.cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
	f.events.On("PublishShowIngested", mock.Anything, mock.Anything).Return(nil)
	f.audit.On("RecordIngestion", mock.Anything, mock.Anything).Return(nil)
}

func TestCreateShow_ExampleScenario(t *testing.T) {
	f := newIngestionFixture()
	f.allowSideEffects()
	f.shows.On("SlugsWithPrefix", mock.Anything, "deep-house-vol1").Return([]string{}, nil)
	f.shows.On("CreateShow", mock.Anything, mock.MatchedBy(func(s *model.Show) bool {
		return s.Slug == "deep-house-vol1" && s.Status == model.ShowStatusPublished &&
			s.PublishedDate.Equal(fixedNow) && s.MixcloudEmbed != ""
	})).Return(int64(42), nil)
	f.shows.On("CreateTracks", mock.Anything, int64(42), mock.MatchedBy(func(tracks []model.Track) bool {
		return len(tracks) == 2 &&
			tracks[0].Position == 1 && *tracks[0].Hour == 1 && tracks[0].Artist == "Kerri Chandler" &&
			tracks[1].Position == 2 && *tracks[1].Hour == 1 && tracks[1].Track == "What They Say"
	})).Return(2, nil)
	f.mirror.On("CreateShowStory", mock.Anything, mock.MatchedBy(func(in dto.ShowStoryInput) bool {
		return in.ShowID == 42 && in.Slug == "deep-house-vol1"
	}), mock.MatchedBy(func(tracks []playlist.ParsedTrack) bool { return len(tracks) == 2 }), (*dto.CoverImage)(nil)).
		Return(&dto.StoryRef{ID: 9001, Slug: "deep-house-vol1-story"}, nil)
	f.shows.On("LinkStoryblok", mock.Anything, int64(42), int64(9001), "deep-house-vol1-story").Return(nil)

	resp, err := f.uc.CreateShow(context.Background(), exampleRequest(), nil)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(42), *resp.ShowID)
	assert.Equal(t, 2, resp.TracksCount)
	assert.Equal(t, int64(9001), *resp.StoryblokID)
	assert.Equal(t, "deep-house-vol1-story", *resp.StoryblokSlug)
	assert.Empty(t, resp.Errors)
	assert.NotNil(t, resp.Warnings)
	f.cache.AssertCalled(t, "Invalidate", mock.Anything, "deep-house-vol1-story")
	f.events.AssertCalled(t, "PublishShowIngested", mock.Anything, mock.MatchedBy(func(e model.ShowIngestedEvent) bool {
		return e.ShowID == 42 && !e.Partial && e.TracksCount == 2 && *e.StoryblokID == 9001
	}))
	f.audit.AssertCalled(t, "RecordIngestion", mock.Anything, mock.MatchedBy(func(a model.IngestionAudit) bool {
		return a.FinalState == string(usecase.StateDone) && a.StatusCode == 200 &&
			assert.ObjectsAreEqual([]string{"validating", "persisting_show", "persisting_tracks", "mirroring_cms", "linking", "done"}, a.States)
	}))
	f.shows.AssertExpectations(t)
}

func TestCreateShow_MirrorFailureIsPartial(t *testing.T) {
	f := newIngestionFixture()
	f.allowSideEffects()
	f.shows.On("SlugsWithPrefix", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.shows.On("CreateShow", mock.Anything, mock.Anything).Return(int64(5), nil)
	f.shows.On("CreateTracks", mock.Anything, int64(5), mock.Anything).Return(2, nil)
	f.mirror.On("CreateShowStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("storyblok create story: status 422"))

	resp, err := f.uc.CreateShow(context.Background(), exampleRequest(), nil)

	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, int64(5), *resp.ShowID)
	assert.Nil(t, resp.StoryblokID)
	assert.Nil(t, resp.StoryblokSlug)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "storyblok")
	f.shows.AssertNotCalled(t, "LinkStoryblok", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertCalled(t, "RecordIngestion", mock.Anything, mock.MatchedBy(func(a model.IngestionAudit) bool {
		return a.FinalState == string(usecase.StatePartialFailure) && a.StatusCode == 207
	}))
}

func TestCreateShow_ShowInsertFailureIsFatal(t *testing.T) {
	f := newIngestionFixture()
	f.audit.On("RecordIngestion", mock.Anything, mock.Anything).Return(nil)
	f.shows.On("SlugsWithPrefix", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.shows.On("CreateShow", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection refused"))

	resp, err := f.uc.CreateShow(context.Background(), exampleRequest(), nil)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, usecase.ErrShowPersistence)
	f.shows.AssertNotCalled(t, "CreateTracks", mock.Anything, mock.Anything, mock.Anything)
	f.mirror.AssertNotCalled(t, "CreateShowStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishShowIngested", mock.Anything, mock.Anything)
}

func TestCreateShow_TrackFailureContinues(t *testing.T) {
	f := newIngestionFixture()
	f.allowSideEffects()
	f.shows.On("SlugsWithPrefix", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.shows.On("CreateShow", mock.Anything, mock.Anything).Return(int64(8), nil)
	f.shows.On("CreateTracks", mock.Anything, int64(8), mock.Anything).Return(0, errors.New("insert track 2: duplicate key"))
	f.mirror.On("CreateShowStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&dto.StoryRef{ID: 1, Slug: "deep-house-vol1"}, nil)
	f.shows.On("LinkStoryblok", mock.Anything, int64(8), int64(1), "deep-house-vol1").Return(nil)

	resp, err := f.uc.CreateShow(context.Background(), exampleRequest(), nil)

	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, 0, resp.TracksCount)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "tracklist failed to save")
	assert.NotNil(t, resp.StoryblokID)
}

func TestCreateShow_LinkFailureIsWarning(t *testing.T) {
	f := newIngestionFixture()
	f.allowSideEffects()
	f.shows.On("SlugsWithPrefix", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.shows.On("CreateShow", mock.Anything, mock.Anything).Return(int64(3), nil)
	f.shows.On("CreateTracks", mock.Anything, int64(3), mock.Anything).Return(2, nil)
	f.mirror.On("CreateShowStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&dto.StoryRef{ID: 77, Slug: "cms-slug"}, nil)
	f.shows.On("LinkStoryblok", mock.Anything, int64(3), int64(77), "cms-slug").Return(errors.New("timeout"))

	resp, err := f.uc.CreateShow(context.Background(), exampleRequest(), nil)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Errors)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "not linked")
	assert.Equal(t, int64(77), *resp.StoryblokID)
	f.cache.AssertCalled(t, "Invalidate", mock.Anything, "deep-house-vol1")
}

func TestCreateShow_Validation(t *testing.T) {
	cases := []struct {
		name string
		req  dto.CreateShowRequest
	}{
		{"missing title", dto.CreateShowRequest{MixcloudURL: exampleURL}},
		{"blank title", dto.CreateShowRequest{Title: "   ", MixcloudURL: exampleURL}},
		{"missing url", dto.CreateShowRequest{Title: "Show"}},
		{"foreign url", dto.CreateShowRequest{Title: "Show", MixcloudURL: "https://soundcloud.com/dj/set"}},
		{"bad date", dto.CreateShowRequest{Title: "Show", MixcloudURL: exampleURL, PublishedDate: "yesterday"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newIngestionFixture()

			resp, err := f.uc.CreateShow(context.Background(), tc.req, nil)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, usecase.ErrInvalidShowRequest)
			f.shows.AssertNotCalled(t, "CreateShow", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateShow_NotConfigured(t *testing.T) {
	uc := usecase.NewShowIngestionUsecase(new(MockShowRepo), nil)

	resp, err := uc.CreateShow(context.Background(), exampleRequest(), nil)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, usecase.ErrNotConfigured)
}

func TestCreateShow_SlugCollisionGetsSuffix(t *testing.T) {
	f := newIngestionFixture()
	f.allowSideEffects()
	f.shows.On("SlugsWithPrefix", mock.Anything, "deep-house-vol1").Return([]string{"deep-house-vol1", "deep-house-vol1-2"}, nil)
	f.shows.On("CreateShow", mock.Anything, mock.MatchedBy(func(s *model.Show) bool { return s.Slug == "deep-house-vol1-3" })).Return(int64(11), nil)
	f.mirror.On("CreateShowStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&dto.StoryRef{ID: 2}, nil)
	f.shows.On("LinkStoryblok", mock.Anything, int64(11), int64(2), "deep-house-vol1-3").Return(nil)

	req := exampleRequest()
	req.PlaylistText = ""
	resp, err := f.uc.CreateShow(context.Background(), req, nil)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "deep-house-vol1-3", *resp.StoryblokSlug)
	f.shows.AssertNotCalled(t, "CreateTracks", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateShow_ParserProblemsAreWarnings(t *testing.T) {
	f := newIngestionFixture()
	f.allowSideEffects()
	f.shows.On("SlugsWithPrefix", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.shows.On("CreateShow", mock.Anything, mock.Anything).Return(int64(4), nil)
	f.shows.On("CreateTracks", mock.Anything, int64(4), mock.MatchedBy(func(tr []model.Track) bool { return len(tr) == 1 })).Return(1, nil)
	f.mirror.On("CreateShowStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&dto.StoryRef{ID: 5, Slug: "s"}, nil)
	f.shows.On("LinkStoryblok", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := exampleRequest()
	req.PlaylistText = "Kerri Chandler - Rain\nnot a track line"
	resp, err := f.uc.CreateShow(context.Background(), req, nil)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.TracksCount)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "line 2")
}

func TestCreateShow_EventFailureIsWarning(t *testing.T) {
	f := newIngestionFixture()
	f.cache.On("Invalidate", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	f.events.On("PublishShowIngested", mock.Anything, mock.Anything).Return(errors.New("topic missing"))
	f.audit.On("RecordIngestion", mock.Anything, mock.Anything).Return(errors.New("mongo down"))
	f.shows.On("SlugsWithPrefix", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.shows.On("CreateShow", mock.Anything, mock.Anything).Return(int64(6), nil)
	f.shows.On("CreateTracks", mock.Anything, mock.Anything, mock.Anything).Return(2, nil)
	f.mirror.On("CreateShowStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&dto.StoryRef{ID: 5, Slug: "s"}, nil)
	f.shows.On("LinkStoryblok", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.uc.CreateShow(context.Background(), exampleRequest(), nil)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "show event not published")
}

func TestCreateShow_PublishedDateParsed(t *testing.T) {
	f := newIngestionFixture()
	f.allowSideEffects()
	f.shows.On("SlugsWithPrefix", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.shows.On("CreateShow", mock.Anything, mock.MatchedBy(func(s *model.Show) bool {
		return s.PublishedDate.Format("2006-01-02") == "2024-11-02"
	})).Return(int64(1), nil)
	f.mirror.On("CreateShowStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	req := exampleRequest()
	req.PlaylistText = ""
	req.PublishedDate = "2024-11-02"
	resp, err := f.uc.CreateShow(context.Background(), req, nil)

	require.NoError(t, err)
	assert.False(t, resp.Success)
	f.shows.AssertExpectations(t)
}
