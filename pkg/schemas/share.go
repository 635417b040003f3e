package schemas

import "time"

// SharePermission is a closed enumeration; new scopes are added as constants,
// free-form strings are rejected at binding time.
type SharePermission string

const (
	PermissionView SharePermission = "view"
)

type ShareIn struct {
	Permission SharePermission `json:"permission" binding:"required,oneof=view"`
	ExpiresAt  *time.Time      `json:"expiresAt"`
}

type ShareOut struct {
	Token    string `json:"token"`
	ShareURL string `json:"shareUrl"`
}

type ShareResolved struct {
	File        FileOut         `json:"file"`
	Permission  SharePermission `json:"permission"`
	DownloadURL string          `json:"downloadUrl"`
}

type ShareListItem struct {
	Token      string          `json:"token"`
	Permission SharePermission `json:"permission"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	File       FileOut         `json:"file"`
}
