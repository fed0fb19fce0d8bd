package dto

import (
	"mime/multipart"
	"time"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
)

// CreateShowRequest is accepted as JSON or multipart/form-data.
// CoverImage is only populated for multipart bodies.
type CreateShowRequest struct {
	Title         string                `json:"title" form:"title"`
	MixcloudURL   string                `json:"mixcloud_url" form:"mixcloud_url"`
	Description   string                `json:"description" form:"description"`
	PublishedDate string                `json:"published_date" form:"published_date"`
	PlaylistText  string                `json:"playlist_text" form:"playlist_text"`
	CoverImage    *multipart.FileHeader `json:"-" form:"cover_image"`
}

// CoverImage is an uploaded cover read into memory before it reaches the CMS.
type CoverImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CreateShowResponse struct {
	Success       bool     `json:"success"`
	ShowID        *int64   `json:"show_id,omitempty"`
	StoryblokID   *int64   `json:"storyblok_id,omitempty"`
	StoryblokSlug *string  `json:"storyblok_slug,omitempty"`
	TracksCount   int      `json:"tracks_count"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Message       string   `json:"message"`
}

// ShowStoryInput is the show metadata handed to the CMS mirror.
type ShowStoryInput struct {
	ShowID        int64
	Title         string
	Slug          string
	Description   string
	MixcloudURL   string
	MixcloudEmbed string
	PublishedDate time.Time
}

// StoryRef identifies a created CMS story. Slug is the CMS-assigned one.
type StoryRef struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

type ShowDetail struct {
	model.Show
	Tracks      []model.Track `json:"tracks"`
	TracksCount int           `json:"tracks_count"`
}

type ShowListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

type ShowListResponse struct {
	Shows  []model.Show `json:"shows"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}
