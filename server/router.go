package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/metrics"
	httpHandler "github.com/tmoody1973/rhythm-lab-app-sub003/interfaces/http"
	"github.com/tmoody1973/rhythm-lab-app-sub003/interfaces/middleware"
)

// MaxMultipartMemory leaves room for a 10MB cover plus the text fields.
const MaxMultipartMemory = 12 << 20

type RouterConfig struct {
	SecretKey    string
	AllowOrigins []string
}

// InitiateRouter wires the routes. Nil Mixcloud handlers register fallbacks
// that answer "server misconfiguration".
func InitiateRouter(
	cfg RouterConfig,
	healthHandler httpHandler.IHealthHandler,
	showHandler httpHandler.IShowHandler,
	mixcloudOAuthHandler httpHandler.IMixcloudOAuthHandler,
	mixcloudHandler httpHandler.IMixcloudHandler,
) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = MaxMultipartMemory
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(metrics.Instrument())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Read API
	router.GET("/api/shows", showHandler.ListShows)
	router.GET("/api/shows/:slug", showHandler.GetShow)

	api := router.Group("api")
	api.Use(middleware.Auth(cfg.SecretKey))

	api.POST("/mixcloud/create-show", showHandler.CreateShow)

	if mixcloudHandler != nil {
		api.GET("/mixcloud/cloudcast", mixcloudHandler.GetCloudcast)
	} else {
		api.GET("/mixcloud/cloudcast", notConfigured)
	}

	auth := api.Group("/auth/mixcloud")
	if mixcloudOAuthHandler != nil {
		auth.GET("", mixcloudOAuthHandler.GetAuthURL)
		auth.GET("/callback", mixcloudOAuthHandler.Callback)
		auth.GET("/status", mixcloudOAuthHandler.Status)
		auth.DELETE("", mixcloudOAuthHandler.Disconnect)
	} else {
		auth.GET("", notConfigured)
		auth.GET("/callback", notConfigured)
		auth.GET("/status", notConfigured)
		auth.DELETE("", notConfigured)
	}

	return router
}

func notConfigured(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "server misconfiguration",
		Message: "Mixcloud OAuth credentials are not configured",
	})
}
