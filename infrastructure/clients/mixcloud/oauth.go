package mixcloud

import (
	"golang.org/x/oauth2"

	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/configuration"
)

// NewOAuthConfig builds the authorization-code config. Mixcloud expects the
// client credentials as form parameters and does not use scopes.
func NewOAuthConfig(cfg configuration.Mixcloud) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURI,
		Scopes:      []string{},
	}
}
