package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindNotFound:          http.StatusNotFound,
	service.KindIllegalTransition: http.StatusConflict,
	service.KindConflict:          http.StatusConflict,
	service.KindValidation:        http.StatusBadRequest,
	service.KindForbidden:         http.StatusForbidden,
	service.KindUnauthorized:      http.StatusUnauthorized,
	service.KindNotification:      http.StatusOK,
	service.KindInternal:          http.StatusInternalServerError,
}

// statusFor maps a service error kind to an HTTP status
func statusFor(kind service.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError translates err into a JSON error response
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindInternal, Err: err}
	}

	status := statusFor(se.Kind)
	switch {
	case status >= http.StatusInternalServerError:
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
	case se.Kind == service.KindNotification:
		c.JSON(status, gin.H{"warning": se.Message})
	default:
		body := gin.H{"error": se.Message, "kind": se.Kind}
		if len(se.Fields) > 0 {
			body["fields"] = se.Fields
		}
		c.JSON(status, body)
	}
}

// writeResult writes data with status. A notification failure still writes
// the data, with the failure carried in a Warning header. Any other error
// is written instead of data. A nil data writes no body.
func writeResult(c *gin.Context, log zerolog.Logger, status int, data interface{}, err error) {
	if err != nil {
		if !service.IsKind(err, service.KindNotification) {
			writeError(c, log, err)
			return
		}
		log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Notification not queued")
		c.Header("Warning", fmt.Sprintf("199 - %q", err.Error()))
	}
	if data == nil {
		c.Status(status)
		return
	}
	c.JSON(status, data)
}

// paramID parses a positive integer path parameter, writing a 400 when it
// is malformed
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be a positive integer", name)})
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body into req, writing a 400 on failure.
// Field rules are checked by the services.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}
