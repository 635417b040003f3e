package controller

import "github.com/skydrive/skydrive/pkg/services"

type Controller struct {
	FileService   *services.FileService
	FolderService *services.FolderService
	ShareService  *services.ShareService
}

func NewController(file *services.FileService, folder *services.FolderService, share *services.ShareService) *Controller {
	return &Controller{
		FileService:   file,
		FolderService: folder,
		ShareService:  share,
	}
}
