package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skydrive/skydrive/internal/auth"
	"github.com/skydrive/skydrive/pkg/httputil"
	"github.com/skydrive/skydrive/pkg/schemas"
)

func (fc *Controller) CreateFolder(c *gin.Context) {
	var payload schemas.CreateFolder
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, appErr := fc.FolderService.CreateFolder(c, auth.GetUser(c), &payload)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (fc *Controller) ListFolders(c *gin.Context) {
	var fquery schemas.FolderQuery
	if err := c.ShouldBindQuery(&fquery); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, appErr := fc.FolderService.ListFolders(c, auth.GetUser(c), &fquery)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) RenameFolder(c *gin.Context) {
	var payload schemas.Rename
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, appErr := fc.FolderService.RenameFolder(c, c.Param("folderID"), auth.GetUser(c), payload.NewName)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) DeleteFolder(c *gin.Context) {
	res, appErr := fc.FolderService.SoftDeleteFolder(c, c.Param("folderID"), auth.GetUser(c))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) RestoreFolder(c *gin.Context) {
	res, appErr := fc.FolderService.RestoreFolder(c, c.Param("folderID"), auth.GetUser(c))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}
