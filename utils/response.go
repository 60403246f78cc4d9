package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  int         `json:"-"`                 // HTTP status code
	Message string      `json:"message,omitempty"` // Optional message
	Error   string      `json:"error,omitempty"`   // Error message
	Data    interface{} `json:"data,omitempty"`    // Response data
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Status: http.StatusOK,
		Data:   data,
	})
}

func Unauthorized(c *gin.Context, message string) {
	abortWith(c, http.StatusUnauthorized, message, nil)
}

func BadRequest(c *gin.Context, message string) {
	abortWith(c, http.StatusBadRequest, message, nil)
}

func NotFound(c *gin.Context, message string) {
	abortWith(c, http.StatusNotFound, message, nil)
}

func InternalError(c *gin.Context, message string) {
	abortWith(c, http.StatusInternalServerError, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	abortWith(c, http.StatusForbidden, message, nil)
}

func Conflict(c *gin.Context, message string) {
	abortWith(c, http.StatusConflict, message, nil)
}

func TooManyRequests(c *gin.Context, message string, data ...interface{}) {
	var payload interface{}
	if len(data) > 0 {
		payload = data[0]
	}
	abortWith(c, http.StatusTooManyRequests, message, payload)
}

// BadGateway is used when the router rejected or failed a call.
func BadGateway(c *gin.Context, message string) {
	abortWith(c, http.StatusBadGateway, message, nil)
}

func GatewayTimeout(c *gin.Context, message string) {
	abortWith(c, http.StatusGatewayTimeout, message, nil)
}

func ServiceUnavailable(c *gin.Context, message string) {
	abortWith(c, http.StatusServiceUnavailable, message, nil)
}

func abortWith(c *gin.Context, status int, message string, data interface{}) {
	c.AbortWithStatusJSON(status, &Response{
		Status: status,
		Error:  message,
		Data:   data,
	})
}
