package model

import "time"

type ShowStatus string

const (
	ShowStatusDraft     ShowStatus = "draft"
	ShowStatusPublished ShowStatus = "published"
)

// Show is one radio broadcast imported from Mixcloud.
type Show struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	MixcloudURL   string     `json:"mixcloud_url"`
	MixcloudEmbed string     `json:"mixcloud_embed"`
	PublishedDate time.Time  `json:"published_date"`
	StoryblokID   *int64     `json:"storyblok_id,omitempty"`
	Status        ShowStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Track is a persisted playlist entry. Position is unique per show.
type Track struct {
	ID        int64     `json:"id"`
	ShowID    int64     `json:"show_id"`
	Position  int       `json:"position"`
	Hour      *int      `json:"hour,omitempty"`
	Artist    string    `json:"artist"`
	Track     string    `json:"track"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShowIngestedEvent is published once a show has been persisted.
type ShowIngestedEvent struct {
	ShowID      int64     `json:"show_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	MixcloudURL string    `json:"mixcloud_url"`
	StoryblokID *int64    `json:"storyblok_id,omitempty"`
	TracksCount int       `json:"tracks_count"`
	Partial     bool      `json:"partial"`
	RequestID   string    `json:"request_id,omitempty"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// IngestionAudit is the stored record of one ingestion run.
type IngestionAudit struct {
	RequestID   string    `json:"request_id"   bson:"requestId"`
	ShowID      int64     `json:"show_id"      bson:"showId"`
	Title       string    `json:"title"        bson:"title"`
	Slug        string    `json:"slug"         bson:"slug"`
	FinalState  string    `json:"final_state"  bson:"finalState"`
	States      []string  `json:"states"       bson:"states"`
	Errors      []string  `json:"errors"       bson:"errors"`
	Warnings    []string  `json:"warnings"     bson:"warnings"`
	TracksCount int       `json:"tracks_count" bson:"tracksCount"`
	StatusCode  int       `json:"status_code"  bson:"statusCode"`
	CreatedAt   time.Time `json:"created_at"   bson:"createdAt"`
}
