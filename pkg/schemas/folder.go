package schemas

import "time"

type CreateFolder struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parentId"`
}

type FolderQuery struct {
	ParentID string `form:"parentId"`
	Trash    bool   `form:"trash"`
}

type FolderOut struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId,omitempty"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
}

// Breadcrumb is one step of the path from the synthetic root down to the
// current folder. The root marker has a nil ID.
type Breadcrumb struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type FolderResponse struct {
	Folders     []FolderOut  `json:"folders"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
}
