package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type File struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	OwnerID     string    `gorm:"type:uuid;not null;index:idx_files_owner"`
	FolderID    *string   `gorm:"type:uuid;index"`
	Name        string    `gorm:"type:text;not null"`
	MimeType    string    `gorm:"type:text;not null"`
	SizeBytes   int64     `gorm:"type:bigint;not null"`
	StoragePath string    `gorm:"type:text;not null;uniqueIndex"`
	IsDeleted   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (f *File) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
