package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/metrics"
)

// ExpiryBuffer is how long before expires_at a token already counts as expired.
const ExpiryBuffer = 5 * time.Minute

var (
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrTokenStoreFailed    = errors.New("token store failed")
)

// IMixcloudTokenUsecase manages the Mixcloud credential of each admin.
// Lookups and refreshes never fail loudly: a nil token or false means
// "no usable credential" and callers fall back to unauthenticated access.
type IMixcloudTokenUsecase interface {
	GetToken(ctx context.Context, ownerID string) *model.OAuthToken
	IsExpired(token *model.OAuthToken) bool
	Refresh(ctx context.Context, token *model.OAuthToken) *model.OAuthToken
	GetValidToken(ctx context.Context, ownerID string) (string, bool)
	Status(ctx context.Context, ownerID string) dto.MixcloudStatusResponse

	AuthURL(state string) string
	Connect(ctx context.Context, ownerID, email, code string) (*model.OAuthToken, error)
	Disconnect(ctx context.Context, ownerID string) (bool, error)
	RefreshExpiring(ctx context.Context, window time.Duration) (refreshed, failed int)
}

type MixcloudTokenUsecase struct {
	tokens     repository.IMixcloudToken
	profiles   repository.IProfile
	api        repository.IMixcloudAPI
	oauth      *oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

func NewMixcloudTokenUsecase(tokens repository.IMixcloudToken, profiles repository.IProfile, api repository.IMixcloudAPI, oauth *oauth2.Config) *MixcloudTokenUsecase {
	return &MixcloudTokenUsecase{
		tokens:     tokens,
		profiles:   profiles,
		api:        api,
		oauth:      oauth,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

// WithHTTPClient sets the client used for token endpoint calls (fluent)
func (u *MixcloudTokenUsecase) WithHTTPClient(client *http.Client) *MixcloudTokenUsecase {
	u.httpClient = client
	return u
}

// WithClock replaces time.Now (fluent)
func (u *MixcloudTokenUsecase) WithClock(now func() time.Time) *MixcloudTokenUsecase {
	u.now = now
	return u
}

func (u *MixcloudTokenUsecase) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, u.httpClient)
}

func (u *MixcloudTokenUsecase) GetToken(ctx context.Context, ownerID string) *model.OAuthToken {
	if ownerID == "" {
		return nil
	}
	token, err := u.tokens.GetToken(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.FromContext(ctx).WithField("error", err).Error("Error while getting mixcloud token")
		}
		return nil
	}
	return token
}

func (u *MixcloudTokenUsecase) IsExpired(token *model.OAuthToken) bool {
	if token == nil || token.ExpiresAt == nil {
		return false
	}
	return token.ExpiresAt.Sub(u.now()) <= ExpiryBuffer
}

func (u *MixcloudTokenUsecase) Refresh(ctx context.Context, token *model.OAuthToken) *model.OAuthToken {
	if token == nil {
		return nil
	}
	log := logger.FromContext(ctx).WithField("userId", token.UserID)
	if token.RefreshToken == nil || *token.RefreshToken == "" {
		log.Warn("Mixcloud token has no refresh token")
		return nil
	}

	// An already expired seed forces the refresh-token grant.
	seed := &oauth2.Token{RefreshToken: *token.RefreshToken, Expiry: u.now().Add(-time.Minute)}
	fresh, err := u.oauth.TokenSource(u.oauthContext(ctx), seed).Token()
	if err != nil {
		log.WithField("error", err).Error("Mixcloud token refresh failed")
		metrics.ObserveTokenRefresh(false)
		return nil
	}

	updated := *token
	updated.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		rt := fresh.RefreshToken
		updated.RefreshToken = &rt
	}
	if fresh.TokenType != "" {
		updated.TokenType = fresh.TokenType
	}
	updated.ExpiresAt = expiryOf(fresh)
	if scope, ok := fresh.Extra("scope").(string); ok && scope != "" {
		updated.Scope = scope
	}
	updated.UpdatedAt = u.now().UTC()

	if err := u.tokens.UpdateRefreshedToken(ctx, &updated); err != nil {
		log.WithField("error", err).Error("Error while saving refreshed mixcloud token")
		metrics.ObserveTokenRefresh(false)
		return nil
	}
	metrics.ObserveTokenRefresh(true)
	log.Info("Mixcloud token refreshed")
	return &updated
}

func (u *MixcloudTokenUsecase) GetValidToken(ctx context.Context, ownerID string) (string, bool) {
	token := u.GetToken(ctx, ownerID)
	if token == nil {
		return "", false
	}
	if u.IsExpired(token) {
		if token = u.Refresh(ctx, token); token == nil {
			return "", false
		}
	}
	return token.AccessToken, token.AccessToken != ""
}

func (u *MixcloudTokenUsecase) Status(ctx context.Context, ownerID string) dto.MixcloudStatusResponse {
	token := u.GetToken(ctx, ownerID)
	if token == nil {
		return dto.MixcloudStatusResponse{}
	}
	return dto.MixcloudStatusResponse{
		Connected:        true,
		MixcloudUsername: token.MixcloudUsername,
		ExpiresAt:        token.ExpiresAt,
		Expired:          u.IsExpired(token),
		Scope:            token.Scope,
	}
}

func (u *MixcloudTokenUsecase) AuthURL(state string) string {
	return u.oauth.AuthCodeURL(state)
}

// Connect exchanges an authorization code and stores the credential for ownerID.
func (u *MixcloudTokenUsecase) Connect(ctx context.Context, ownerID, email, code string) (*model.OAuthToken, error) {
	log := logger.FromContext(ctx).WithField("userId", ownerID)

	tok, err := u.oauth.Exchange(u.oauthContext(ctx), code)
	if err != nil {
		log.WithField("error", err).Error("Mixcloud code exchange failed")
		return nil, fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}

	username := ""
	if u.api != nil {
		me, err := u.api.GetMe(ctx, tok.AccessToken)
		if err != nil {
			log.WithField("error", err).Warn("Unable to look up mixcloud account")
		} else {
			username = me.Username
		}
	}

	profile, err := u.profiles.EnsureProfile(ctx, ownerID, email)
	if err != nil {
		log.WithField("error", err).Error("Error while ensuring profile")
		return nil, fmt.Errorf("%w: profile: %v", ErrTokenStoreFailed, err)
	}

	now := u.now().UTC()
	token := &model.OAuthToken{
		UserID:           profile.ID,
		AccessToken:      tok.AccessToken,
		TokenType:        tok.TokenType,
		ExpiresAt:        expiryOf(tok),
		MixcloudUsername: username,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}
	if tok.RefreshToken != "" {
		rt := tok.RefreshToken
		token.RefreshToken = &rt
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		token.Scope = scope
	}

	if err := u.tokens.UpsertToken(ctx, token); err != nil {
		log.WithField("error", err).Error("Error while storing mixcloud token")
		return nil, fmt.Errorf("%w: %v", ErrTokenStoreFailed, err)
	}
	log.WithField("mixcloudUsername", username).Info("Mixcloud account connected")
	return token, nil
}

// Disconnect deletes the stored credential. It reports whether one existed.
func (u *MixcloudTokenUsecase) Disconnect(ctx context.Context, ownerID string) (bool, error) {
	deleted, err := u.tokens.DeleteToken(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete mixcloud token: %w", err)
	}
	return deleted, nil
}

// RefreshExpiring refreshes every token whose expiry falls within window.
// Failed refreshes leave their rows untouched.
func (u *MixcloudTokenUsecase) RefreshExpiring(ctx context.Context, window time.Duration) (refreshed, failed int) {
	tokens, err := u.tokens.ListExpiring(ctx, u.now().Add(window))
	if err != nil {
		logger.FromContext(ctx).WithField("error", err).Error("Error while listing expiring mixcloud tokens")
		return 0, 0
	}
	for i := range tokens {
		if ctx.Err() != nil {
			break
		}
		if u.Refresh(ctx, &tokens[i]) != nil {
			refreshed++
		} else {
			failed++
		}
	}
	return refreshed, failed
}

func expiryOf(tok *oauth2.Token) *time.Time {
	if tok.Expiry.IsZero() {
		return nil
	}
	exp := tok.Expiry.UTC()
	return &exp
}
