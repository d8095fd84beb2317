package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"notetaker/middleware"
	"notetaker/pkg/logger"
	"notetaker/storage"
	"notetaker/usecase"
	"notetaker/utils"
)

// writeError maps the service/storage error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrValidation), errors.Is(err, storage.ErrInvalidID):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, usecase.ErrDuplicate):
		utils.Conflict(c, err.Error())
	case errors.Is(err, usecase.ErrUpstream):
		middleware.UpstreamFailures.Inc()
		utils.BadGateway(c, err.Error())
	case errors.Is(err, storage.ErrUnavailable):
		utils.ServiceUnavailable(c, err.Error())
	default:
		logger.Sugar.Errorw("unclassified failure", "err", err)
		utils.InternalError(c, "internal server error")
	}
}
