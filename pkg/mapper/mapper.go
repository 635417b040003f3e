package mapper

import (
	"github.com/skydrive/skydrive/pkg/models"
	"github.com/skydrive/skydrive/pkg/schemas"
)

func ToFileOut(file models.File) *schemas.FileOut {
	return &schemas.FileOut{
		ID:        file.ID,
		Name:      file.Name,
		MimeType:  file.MimeType,
		SizeBytes: file.SizeBytes,
		FolderID:  file.FolderID,
		IsDeleted: file.IsDeleted,
		CreatedAt: file.CreatedAt,
	}
}

func ToFileOuts(files []models.File) []schemas.FileOut {
	out := make([]schemas.FileOut, 0, len(files))
	for _, f := range files {
		out = append(out, *ToFileOut(f))
	}
	return out
}

func ToFolderOut(folder models.Folder) *schemas.FolderOut {
	return &schemas.FolderOut{
		ID:        folder.ID,
		Name:      folder.Name,
		ParentID:  folder.ParentID,
		IsDeleted: folder.IsDeleted,
		CreatedAt: folder.CreatedAt,
	}
}

func ToFolderOuts(folders []models.Folder) []schemas.FolderOut {
	out := make([]schemas.FolderOut, 0, len(folders))
	for _, f := range folders {
		out = append(out, *ToFolderOut(f))
	}
	return out
}
