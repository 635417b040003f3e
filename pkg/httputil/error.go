package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skydrive/skydrive/internal/logging"
)

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewError(c *gin.Context, status int, err error) {
	logger := logging.FromContext(c)
	logger.Error(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, HTTPError{
		Code:    status,
		Message: err.Error(),
	})
}
