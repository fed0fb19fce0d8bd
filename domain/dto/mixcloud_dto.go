package dto

import (
	"time"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
)

type MixcloudStatusResponse struct {
	Connected        bool       `json:"connected"`
	MixcloudUsername string     `json:"mixcloud_username,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	Expired          bool       `json:"expired"`
	Scope            string     `json:"scope,omitempty"`
}

type MixcloudAuthURLResponse struct {
	AuthURL string `json:"auth_url"`
}

type CloudcastPreviewRequest struct {
	URL string `form:"url"`
}

// CloudcastPreviewResponse wraps the cloudcast with the embed markup and
// whether the lookup used the admin's credential.
type CloudcastPreviewResponse struct {
	Cloudcast     *model.Cloudcast `json:"cloudcast"`
	Embed         string           `json:"embed"`
	Authenticated bool             `json:"authenticated"`
}
