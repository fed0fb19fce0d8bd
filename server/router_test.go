package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	httpHandler "github.com/tmoody1973/rhythm-lab-app-sub003/interfaces/http"
	"github.com/tmoody1973/rhythm-lab-app-sub003/usecase"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	shows := httpHandler.NewShowHandler(usecase.NewShowIngestionUsecase(nil, nil), usecase.NewShowUsecase(nil))
	return InitiateRouter(
		RouterConfig{SecretKey: "secret", AllowOrigins: []string{"http://localhost:3000"}},
		httpHandler.NewHealthHandler(nil),
		shows,
		nil,
		nil,
	)
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/shows", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRouter_AdminRoutesRequireAuth(t *testing.T) {
	r := testRouter()

	for _, target := range []string{"/api/auth/mixcloud", "/api/auth/mixcloud/callback?code=x&state=y", "/api/mixcloud/cloudcast?url=x"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/mixcloud/create-show", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
