package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aquasentra/api-go/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, StandardResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, StandardResponse{Success: true, Data: data, Message: message})
}

// respondError maps service errors onto the uniform envelope. Anything not
// in the taxonomy is a 500 with a generic message; the detail goes to the
// log only.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, StandardResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  verr.Fields,
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "Resource not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, StandardResponse{Success: false, Message: "You are not allowed to perform this action"})
	case errors.Is(err, services.ErrNotPending), errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
	default:
		log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Internal server error"})
	}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: message})
}

var errInvalidCoordinate = errors.New("latitude and longitude must be valid numbers")

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
