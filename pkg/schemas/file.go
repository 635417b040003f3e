package schemas

import "time"

type FileQuery struct {
	FolderID string `form:"folderId"`
	Trash    bool   `form:"trash"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type SearchQuery struct {
	Query string `form:"q"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

type Rename struct {
	NewName string `json:"newName" binding:"required"`
}

type FileOut struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mimeType"`
	SizeBytes int64     `json:"sizeBytes"`
	FolderID  *string   `json:"folderId,omitempty"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
}

type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"hasMore"`
}

type FileResponse struct {
	Files []FileOut `json:"files"`
	Meta  Meta      `json:"meta"`
}

type DownloadOut struct {
	URL string `json:"url"`
}

type Message struct {
	Message string `json:"message"`
}
