package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
	"github.com/tmoody1973/rhythm-lab-app-sub003/interfaces/middleware"
	"github.com/tmoody1973/rhythm-lab-app-sub003/usecase"
)

const (
	StateCookie       = "mixcloud_oauth_state"
	stateCookieMaxAge = 10 * 60
)

// Redirect reasons appended to the admin redirect URL.
const (
	ReasonConnected           = "mixcloud_connected"
	ReasonAccessDenied        = "access_denied"
	ReasonInvalidState        = "invalid_state"
	ReasonMissingCode         = "missing_code"
	ReasonTokenExchangeFailed = "token_exchange_failed"
	ReasonStoreFailed         = "store_failed"
)

type IMixcloudOAuthHandler interface {
	GetAuthURL(c *gin.Context)
	Callback(c *gin.Context)
	Status(c *gin.Context)
	Disconnect(c *gin.Context)
}

type mixcloudOAuthHandler struct {
	tokens        usecase.IMixcloudTokenUsecase
	adminRedirect string
	secureCookie  bool
}

func NewMixcloudOAuthHandler(tokens usecase.IMixcloudTokenUsecase, adminRedirect string, secureCookie bool) IMixcloudOAuthHandler {
	return &mixcloudOAuthHandler{tokens: tokens, adminRedirect: adminRedirect, secureCookie: secureCookie}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetAuthURL sets the state cookie and sends the admin to Mixcloud.
// With ?format=json the URL is returned instead of redirecting.
func (h *mixcloudOAuthHandler) GetAuthURL(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		logger.FromContext(c.Request.Context()).WithField("error", err).Error("Error while generating oauth state")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookie, state, stateCookieMaxAge, "/", "", h.secureCookie, true)

	authURL := h.tokens.AuthURL(state)
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, dto.MixcloudAuthURLResponse{AuthURL: authURL})
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// Callback handles GET /api/auth/mixcloud/callback?code&state
func (h *mixcloudOAuthHandler) Callback(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())
	expected, _ := c.Cookie(StateCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookie, "", -1, "/", "", h.secureCookie, true)

	if providerErr := c.Query("error"); providerErr != "" {
		log.WithField("providerError", providerErr).Warn("Mixcloud authorization denied")
		h.redirect(c, "error", ReasonAccessDenied)
		return
	}
	state := c.Query("state")
	if state == "" || expected == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		h.redirect(c, "error", ReasonInvalidState)
		return
	}
	code := c.Query("code")
	if code == "" {
		h.redirect(c, "error", ReasonMissingCode)
		return
	}

	_, err := h.tokens.Connect(c.Request.Context(), c.GetString(middleware.KeyUserID), c.GetString(middleware.KeyEmail), code)
	switch {
	case err == nil:
		h.redirect(c, "success", ReasonConnected)
	case errors.Is(err, usecase.ErrTokenExchangeFailed):
		h.redirect(c, "error", ReasonTokenExchangeFailed)
	default:
		h.redirect(c, "error", ReasonStoreFailed)
	}
}

func (h *mixcloudOAuthHandler) redirect(c *gin.Context, key, reason string) {
	target, err := url.Parse(h.adminRedirect)
	if err != nil {
		target = &url.URL{Path: "/"}
	}
	q := target.Query()
	q.Set(key, reason)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}

// Status handles GET /api/auth/mixcloud/status
func (h *mixcloudOAuthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.tokens.Status(c.Request.Context(), c.GetString(middleware.KeyUserID)))
}

// Disconnect handles DELETE /api/auth/mixcloud
func (h *mixcloudOAuthHandler) Disconnect(c *gin.Context) {
	deleted, err := h.tokens.Disconnect(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if err != nil {
		logger.FromContext(c.Request.Context()).WithField("error", err).Error("Error while disconnecting mixcloud")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"disconnected": deleted})
}
