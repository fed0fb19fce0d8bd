package model

import "time"

// OAuthToken stores the Mixcloud credential of one admin profile.
type OAuthToken struct {
	ID               int64      `json:"id"`
	UserID           string     `json:"user_id"`
	AccessToken      string     `json:"-"`
	RefreshToken     *string    `json:"-"`
	TokenType        string     `json:"token_type"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	Scope            string     `json:"scope"`
	MixcloudUsername string     `json:"mixcloud_username"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Profile maps an external admin identity (the session subject) to a local id.
type Profile struct {
	ID         string    `json:"id"          gorm:"type:uuid;primaryKey"`
	ExternalID string    `json:"external_id" gorm:"uniqueIndex;not null"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"  gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at"  gorm:"autoUpdateTime"`
}

func (Profile) TableName() string { return "profiles" }
