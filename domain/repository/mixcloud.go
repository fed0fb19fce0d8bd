package repository

import (
	"context"
	"time"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
)

// IMixcloudToken is the token store. Tokens are keyed by profile id and looked
// up by the owner's external identity.
type IMixcloudToken interface {
	GetToken(ctx context.Context, ownerID string) (*model.OAuthToken, error)
	UpsertToken(ctx context.Context, token *model.OAuthToken) error
	UpdateRefreshedToken(ctx context.Context, token *model.OAuthToken) error
	DeleteToken(ctx context.Context, ownerID string) (bool, error)
	ListExpiring(ctx context.Context, before time.Time) ([]model.OAuthToken, error)
}

type IProfile interface {
	// EnsureProfile returns the profile for externalID, creating it when absent.
	EnsureProfile(ctx context.Context, externalID, email string) (*model.Profile, error)
}

// IMixcloudAPI is the subset of the Mixcloud REST API the service calls.
// An empty accessToken performs an unauthenticated request.
type IMixcloudAPI interface {
	GetCloudcast(ctx context.Context, key, accessToken string) (*model.Cloudcast, error)
	GetMe(ctx context.Context, accessToken string) (*model.MixcloudUser, error)
}
