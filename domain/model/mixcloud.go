package model

import "time"

type MixcloudUser struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type MixcloudTag struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Cloudcast is the subset of the Mixcloud cloudcast resource the admin UI previews.
type Cloudcast struct {
	Key           string            `json:"key"`
	URL           string            `json:"url"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Description   string            `json:"description"`
	CreatedTime   time.Time         `json:"created_time"`
	AudioLength   int               `json:"audio_length"`
	PlayCount     int               `json:"play_count"`
	FavoriteCount int               `json:"favorite_count"`
	Pictures      map[string]string `json:"pictures"`
	Tags          []MixcloudTag     `json:"tags"`
	User          MixcloudUser      `json:"user"`
}
