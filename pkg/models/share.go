package models

import "time"

type FileShare struct {
	Token      string     `gorm:"type:text;primaryKey"`
	FileID     string     `gorm:"type:uuid;not null;index"`
	CreatorID  string     `gorm:"type:uuid;not null;index"`
	Permission string     `gorm:"type:text;not null;default:view"`
	ExpiresAt  *time.Time
	CreatedAt  time.Time  `gorm:"not null"`
}
