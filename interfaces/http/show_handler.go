package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
	"github.com/tmoody1973/rhythm-lab-app-sub003/usecase"
)

const (
	ErrorUnmarshal    = "Error while unmarshal"
	MaxCoverImageSize = 10 << 20
)

type IShowHandler interface {
	CreateShow(c *gin.Context)
	ListShows(c *gin.Context)
	GetShow(c *gin.Context)
}

type ShowHandler struct {
	ingestion usecase.IShowIngestionUsecase
	shows     usecase.IShowUsecase
}

func NewShowHandler(ingestion usecase.IShowIngestionUsecase, shows usecase.IShowUsecase) IShowHandler {
	return &ShowHandler{ingestion: ingestion, shows: shows}
}

// CreateShow handles POST /api/mixcloud/create-show (JSON or multipart)
func (h *ShowHandler) CreateShow(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())
	var req dto.CreateShowRequest

	var err error
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		err = c.ShouldBind(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		log.WithField("error", err).Error(ErrorUnmarshal)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	cover, err := readCover(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid cover_image", Message: err.Error()})
		return
	}

	res, err := h.ingestion.CreateShow(c.Request.Context(), req, cover)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrInvalidShowRequest):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	case errors.Is(err, usecase.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "server misconfiguration"})
		return
	case errors.Is(err, usecase.ErrShowPersistence):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to save show"})
		return
	default:
		log.WithField("error", err).Error("Unexpected ingestion error")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusMultiStatus
	}
	c.JSON(status, res)
}

func readCover(req *dto.CreateShowRequest) (*dto.CoverImage, error) {
	fh := req.CoverImage
	if fh == nil {
		return nil, nil
	}
	if fh.Size > MaxCoverImageSize {
		return nil, errors.New("cover image must be 10MB or smaller")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxCoverImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxCoverImageSize {
		return nil, errors.New("cover image must be 10MB or smaller")
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.New("cover image must be an image")
	}
	return &dto.CoverImage{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

// ListShows handles GET /api/shows
func (h *ShowHandler) ListShows(c *gin.Context) {
	var req dto.ShowListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid paging", Message: err.Error()})
		return
	}
	res, err := h.shows.ListShows(c.Request.Context(), req)
	if err != nil {
		writeReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetShow handles GET /api/shows/:slug
func (h *ShowHandler) GetShow(c *gin.Context) {
	res, err := h.shows.GetShow(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func writeReadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrShowNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "show not found"})
	case errors.Is(err, usecase.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "server misconfiguration"})
	default:
		logger.FromContext(c.Request.Context()).WithField("error", err).Error("Error while reading shows")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}
