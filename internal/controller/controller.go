// Package controller holds helpers shared by the HTTP controllers.
package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/service"
	"github.com/rs/zerolog/log"
)

// StatusFor maps a service error code onto an HTTP status.
func StatusFor(code service.ErrorCode) int {
	switch code {
	case service.ErrorNotFound:
		return http.StatusNotFound
	case service.ErrorConflict:
		return http.StatusConflict
	case service.ErrorInvalidState, service.ErrorMalformedAnswer:
		return http.StatusUnprocessableEntity
	case service.ErrorInvalidInput:
		return http.StatusBadRequest
	case service.ErrorUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// RespondError writes err as a JSON error body. Errors that are not service
// errors are logged and hidden behind a generic message.
func RespondError(c *gin.Context, err error, action string) {
	if se, ok := service.AsError(err); ok {
		status := StatusFor(se.Code)
		log.Warn().Err(err).Str("code", string(se.Code)).Str("path", c.FullPath()).Msg(action + " failed")
		c.JSON(status, dto.ErrorResponse{Message: se.Message, Details: []string{string(se.Code)}})
		return
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg(action + ": internal error")
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
}

// ParseID reads a positive integer path parameter. On failure it writes a
// 400 response and returns false.
func ParseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + param + " format", Details: []string{raw}})
		return 0, false
	}
	return uint(id), true
}

// BindJSON binds and validates the request body. On failure it writes a
// 400 response and returns false.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return false
	}
	return true
}
