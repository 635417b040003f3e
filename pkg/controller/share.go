package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skydrive/skydrive/internal/auth"
	"github.com/skydrive/skydrive/pkg/httputil"
	"github.com/skydrive/skydrive/pkg/schemas"
)

func (fc *Controller) CreateShareLink(c *gin.Context) {
	var payload schemas.ShareIn
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, appErr := fc.ShareService.CreateShareLink(c, c.Param("fileID"), auth.GetUser(c), &payload)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// ResolveShareLink serves anonymous callers; it sits outside the auth
// middleware and must stay there.
func (fc *Controller) ResolveShareLink(c *gin.Context) {
	res, appErr := fc.ShareService.ResolveShareLink(c, c.Param("token"))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) ListShareLinks(c *gin.Context) {
	res, appErr := fc.ShareService.ListShareLinks(c, auth.GetUser(c))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}
