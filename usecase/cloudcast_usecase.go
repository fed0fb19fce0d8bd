package usecase

import (
	"context"
	"fmt"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/clients/mixcloud"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
)

// ICloudcastUsecase looks up Mixcloud shows before they are ingested.
type ICloudcastUsecase interface {
	Preview(ctx context.Context, ownerID, showURL string) (*dto.CloudcastPreviewResponse, error)
}

type CloudcastUsecase struct {
	api    repository.IMixcloudAPI
	tokens IMixcloudTokenUsecase // optional
}

func NewCloudcastUsecase(api repository.IMixcloudAPI, tokens IMixcloudTokenUsecase) *CloudcastUsecase {
	return &CloudcastUsecase{api: api, tokens: tokens}
}

// Preview fetches cloudcast metadata, authenticated when the admin has a
// usable credential and anonymously otherwise.
func (u *CloudcastUsecase) Preview(ctx context.Context, ownerID, showURL string) (*dto.CloudcastPreviewResponse, error) {
	key, err := mixcloud.ExtractCloudcastKey(showURL)
	if err != nil {
		return nil, err
	}

	accessToken := ""
	if u.tokens != nil {
		if token, ok := u.tokens.GetValidToken(ctx, ownerID); ok {
			accessToken = token
		} else {
			logger.FromContext(ctx).WithField("userId", ownerID).Debug("No mixcloud token, using anonymous lookup")
		}
	}

	cloudcast, err := u.api.GetCloudcast(ctx, key, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get cloudcast: %w", err)
	}
	embed, err := mixcloud.EmbedHTML(showURL)
	if err != nil {
		return nil, err
	}
	return &dto.CloudcastPreviewResponse{
		Cloudcast:     cloudcast,
		Embed:         embed,
		Authenticated: accessToken != "",
	}, nil
}
