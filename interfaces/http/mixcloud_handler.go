package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/clients/mixcloud"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
	"github.com/tmoody1973/rhythm-lab-app-sub003/interfaces/middleware"
	"github.com/tmoody1973/rhythm-lab-app-sub003/usecase"
)

type IMixcloudHandler interface {
	GetCloudcast(c *gin.Context)
}

type MixcloudHandler struct {
	cloudcasts usecase.ICloudcastUsecase
}

func NewMixcloudHandler(cloudcasts usecase.ICloudcastUsecase) IMixcloudHandler {
	return &MixcloudHandler{cloudcasts: cloudcasts}
}

// GetCloudcast handles GET /api/mixcloud/cloudcast?url=
func (h *MixcloudHandler) GetCloudcast(c *gin.Context) {
	var req dto.CloudcastPreviewRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "url is required"})
		return
	}

	res, err := h.cloudcasts.Preview(c.Request.Context(), c.GetString(middleware.KeyUserID), req.URL)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, mixcloud.ErrInvalidShowURL):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid mixcloud url", Message: err.Error()})
	case errors.Is(err, mixcloud.ErrShowNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "cloudcast not found"})
	case errors.Is(err, mixcloud.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{Error: "mixcloud rate limit reached"})
	default:
		logger.FromContext(c.Request.Context()).WithField("error", err).Error("Error while fetching cloudcast")
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "mixcloud request failed"})
	}
}
