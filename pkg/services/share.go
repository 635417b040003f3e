package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/skydrive/skydrive/internal/blob"
	"github.com/skydrive/skydrive/internal/cache"
	"github.com/skydrive/skydrive/internal/database"
	"github.com/skydrive/skydrive/pkg/mapper"
	"github.com/skydrive/skydrive/pkg/models"
	"github.com/skydrive/skydrive/pkg/schemas"
	"github.com/skydrive/skydrive/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrShareNotFound  = errors.New("share link not found")
	ErrShareExpired   = errors.New("share link expired")
	ErrSharedFileGone = errors.New("shared file no longer exists")
	ErrExpiryInPast   = errors.New("expiry must be in the future")
)

const shareTokenBytes = 24

type ShareService struct {
	db      *gorm.DB
	blob    blob.Store
	cache   cache.Cacher
	baseURL string
	logger  *zap.SugaredLogger
}

func NewShareService(db *gorm.DB, store blob.Store, cacher cache.Cacher, baseURL string, logger *zap.SugaredLogger) *ShareService {
	return &ShareService{
		db:      db,
		blob:    store,
		cache:   cacher,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

func generateShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (ss *ShareService) CreateShareLink(ctx context.Context, fileID, userID string, payload *schemas.ShareIn) (*schemas.ShareOut, *types.AppError) {
	var count int64
	if err := ss.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ? AND owner_id = ?", fileID, userID).
		Count(&count).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}
	if count == 0 {
		return nil, &types.AppError{Error: ErrFileAccess, Code: http.StatusNotFound}
	}

	if payload.ExpiresAt != nil && payload.ExpiresAt.Before(time.Now().UTC()) {
		return nil, &types.AppError{Error: ErrExpiryInPast, Code: http.StatusBadRequest}
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("failed to generate share token: %w", err)}
	}

	share := models.FileShare{
		Token:      token,
		FileID:     fileID,
		CreatorID:  userID,
		Permission: string(payload.Permission),
		ExpiresAt:  payload.ExpiresAt,
	}

	if err := ss.db.WithContext(ctx).Create(&share).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	return &schemas.ShareOut{
		Token:    token,
		ShareURL: fmt.Sprintf("%s/share/%s", ss.baseURL, token),
	}, nil
}

// ResolveShareLink is the public, unauthenticated path. It never consults
// caller identity: an unknown token and an expired one are the only gates.
// Rows outlive their expiry; an expired link answers Gone, not NotFound.
func (ss *ShareService) ResolveShareLink(ctx context.Context, token string) (*schemas.ShareResolved, *types.AppError) {
	share, err := cache.Fetch(ss.cache, cache.KeyShare(token), cacheTTL, func() (models.FileShare, error) {
		var s models.FileShare
		if dbErr := ss.db.WithContext(ctx).Where("token = ?", token).First(&s).Error; dbErr != nil {
			if database.IsRecordNotFoundErr(dbErr) {
				return s, ErrShareNotFound
			}
			return s, dbErr
		}
		return s, nil
	})
	if err != nil {
		if errors.Is(err, ErrShareNotFound) {
			return nil, &types.AppError{Error: ErrShareNotFound, Code: http.StatusNotFound}
		}
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	if share.ExpiresAt != nil && share.ExpiresAt.Before(time.Now().UTC()) {
		return nil, &types.AppError{Error: ErrShareExpired, Code: http.StatusGone}
	}

	var file models.File
	if err := ss.db.WithContext(ctx).Where("id = ?", share.FileID).First(&file).Error; err != nil {
		if database.IsRecordNotFoundErr(err) {
			return nil, &types.AppError{Error: ErrSharedFileGone, Code: http.StatusNotFound}
		}
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	url, err := ss.blob.SignedURL(ctx, file.StoragePath, downloadURLTTL)
	if err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("storage: %w", err)}
	}

	return &schemas.ShareResolved{
		File:        *mapper.ToFileOut(file),
		Permission:  schemas.SharePermission(share.Permission),
		DownloadURL: url,
	}, nil
}

// ListShareLinks returns the caller's share links joined with the referenced
// file rows, newest first.
func (ss *ShareService) ListShareLinks(ctx context.Context, userID string) ([]schemas.ShareListItem, *types.AppError) {
	var rows []struct {
		models.FileShare
		FileName      string
		MimeType      string
		SizeBytes     int64
		IsDeleted     bool
		FileCreatedAt time.Time
	}

	if err := ss.db.WithContext(ctx).Model(&models.FileShare{}).
		Select("file_shares.*", "f.name AS file_name", "f.mime_type", "f.size_bytes", "f.is_deleted", "f.created_at AS file_created_at").
		Joins("LEFT JOIN files f ON f.id = file_shares.file_id").
		Where("file_shares.creator_id = ?", userID).
		Order("file_shares.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	items := make([]schemas.ShareListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, schemas.ShareListItem{
			Token:      row.Token,
			Permission: schemas.SharePermission(row.Permission),
			ExpiresAt:  row.ExpiresAt,
			CreatedAt:  row.CreatedAt,
			File: schemas.FileOut{
				ID:        row.FileID,
				Name:      row.FileName,
				MimeType:  row.MimeType,
				SizeBytes: row.SizeBytes,
				IsDeleted: row.IsDeleted,
				CreatedAt: row.FileCreatedAt,
			},
		})
	}

	return items, nil
}
