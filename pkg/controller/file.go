package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skydrive/skydrive/internal/auth"
	"github.com/skydrive/skydrive/pkg/httputil"
	"github.com/skydrive/skydrive/pkg/schemas"
	"github.com/skydrive/skydrive/pkg/services"
)

// UploadFile handles the multipart upload; the optional folder_id form
// field places the file inside a folder, otherwise it lands at root.
func (fc *Controller) UploadFile(c *gin.Context) {
	userID := auth.GetUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httputil.NewError(c, http.StatusBadRequest, services.ErrNoFileData)
		return
	}

	var folderID *string
	if v := c.PostForm("folder_id"); v != "" {
		folderID = &v
	}

	src, err := fileHeader.Open()
	if err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}
	defer src.Close()

	res, appErr := fc.FileService.UploadFile(c, &services.UploadParams{
		OwnerID:  userID,
		FolderID: folderID,
		Name:     fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Body:     src,
	})
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (fc *Controller) ListFiles(c *gin.Context) {
	var fquery schemas.FileQuery
	if err := c.ShouldBindQuery(&fquery); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, appErr := fc.FileService.ListFiles(c, auth.GetUser(c), &fquery)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) GetFileByID(c *gin.Context) {
	res, appErr := fc.FileService.GetFileByID(c, c.Param("fileID"), auth.GetUser(c))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) RenameFile(c *gin.Context) {
	var payload schemas.Rename
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, appErr := fc.FileService.RenameFile(c, c.Param("fileID"), auth.GetUser(c), payload.NewName)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) DeleteFile(c *gin.Context) {
	res, appErr := fc.FileService.SoftDeleteFile(c, c.Param("fileID"), auth.GetUser(c))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) RestoreFile(c *gin.Context) {
	res, appErr := fc.FileService.RestoreFile(c, c.Param("fileID"), auth.GetUser(c))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) PermanentDeleteFile(c *gin.Context) {
	res, appErr := fc.FileService.PermanentlyDeleteFile(c, c.Param("fileID"), auth.GetUser(c))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) DownloadFile(c *gin.Context) {
	res, appErr := fc.FileService.GenerateDownloadURL(c, c.Param("fileID"), auth.GetUser(c))
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *Controller) SearchFiles(c *gin.Context) {
	var squery schemas.SearchQuery
	if err := c.ShouldBindQuery(&squery); err != nil {
		httputil.NewError(c, http.StatusBadRequest, err)
		return
	}

	res, appErr := fc.FileService.SearchFiles(c, auth.GetUser(c), &squery)
	if appErr != nil {
		httputil.NewError(c, appErr.Code, appErr.Error)
		return
	}

	c.JSON(http.StatusOK, res)
}
