package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

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
	// Missing rows and foreign rows answer identically so callers cannot
	// probe other accounts' ids.
	ErrFileAccess = errors.New("file not found or access denied")

	ErrEmptyFileName = errors.New("file name is required")
	ErrEmptyNewName  = errors.New("new name is required")
	ErrNoFileData    = errors.New("no file uploaded")
)

type FileService struct {
	db     *gorm.DB
	blob   blob.Store
	cache  cache.Cacher
	logger *zap.SugaredLogger
}

func NewFileService(db *gorm.DB, store blob.Store, cacher cache.Cacher, logger *zap.SugaredLogger) *FileService {
	return &FileService{db: db, blob: store, cache: cacher, logger: logger}
}

type UploadParams struct {
	OwnerID  string
	FolderID *string
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

// UploadFile writes the blob first and the metadata row second. There is no
// transaction spanning the two stores: when the insert fails the blob is
// removed best-effort and the insert error is the one surfaced.
func (fs *FileService) UploadFile(ctx context.Context, params *UploadParams) (*schemas.FileOut, *types.AppError) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, &types.AppError{Error: ErrEmptyFileName, Code: http.StatusBadRequest}
	}
	if params.Body == nil {
		return nil, &types.AppError{Error: ErrNoFileData, Code: http.StatusBadRequest}
	}

	if params.FolderID != nil {
		var count int64
		if err := fs.db.WithContext(ctx).Model(&models.Folder{}).
			Where("id = ? AND owner_id = ? AND is_deleted = ?", *params.FolderID, params.OwnerID, false).
			Count(&count).Error; err != nil {
			return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
		}
		if count == 0 {
			return nil, &types.AppError{Error: ErrFolderAccess, Code: http.StatusNotFound}
		}
	}

	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	key := newStorageKey(params.OwnerID, name)

	if err := fs.blob.Put(ctx, key, params.Body, params.Size, mimeType); err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("storage: %w", err)}
	}

	fileDB := models.File{
		OwnerID:     params.OwnerID,
		FolderID:    params.FolderID,
		Name:        name,
		MimeType:    mimeType,
		SizeBytes:   params.Size,
		StoragePath: key,
	}

	if err := fs.db.WithContext(ctx).Create(&fileDB).Error; err != nil {
		// Compensate on a context no longer tied to the request so a client
		// disconnect does not leave the blob orphaned.
		if rmErr := fs.blob.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
			fs.logger.Errorw("orphaned blob after failed metadata insert",
				"key", key, "err", rmErr)
		}
		if database.IsKeyConflictErr(err) {
			return nil, &types.AppError{Error: database.ErrKeyConflict, Code: http.StatusConflict}
		}
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	return mapper.ToFileOut(fileDB), nil
}

func (fs *FileService) listQuery(ctx context.Context, userID string, fquery *schemas.FileQuery) *gorm.DB {
	query := fs.db.WithContext(ctx).Model(&models.File{}).Where("owner_id = ?", userID)
	if fquery.Trash {
		return query.Where("is_deleted = ?", true)
	}
	query = query.Where("is_deleted = ?", false)
	if fquery.FolderID != "" {
		return query.Where("folder_id = ?", fquery.FolderID)
	}
	return query.Where("folder_id IS NULL")
}

func (fs *FileService) ListFiles(ctx context.Context, userID string, fquery *schemas.FileQuery) (*schemas.FileResponse, *types.AppError) {
	page, limit := normalizePage(fquery.Page, fquery.Limit)
	offset := (page - 1) * limit

	var total int64
	if err := fs.listQuery(ctx, userID, fquery).Count(&total).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	var files []models.File
	if err := fs.listQuery(ctx, userID, fquery).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&files).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	return &schemas.FileResponse{
		Files: mapper.ToFileOuts(files),
		Meta: schemas.Meta{
			Total:   total,
			Page:    page,
			Limit:   limit,
			HasMore: hasMore(offset, len(files), total),
		},
	}, nil
}

// SearchFiles matches the owner's non-trashed files by case-insensitive
// substring on name. An empty query returns everything.
func (fs *FileService) SearchFiles(ctx context.Context, userID string, squery *schemas.SearchQuery) (*schemas.FileResponse, *types.AppError) {
	page, limit := normalizePage(squery.Page, squery.Limit)
	offset := (page - 1) * limit

	build := func() *gorm.DB {
		query := fs.db.WithContext(ctx).Model(&models.File{}).
			Where("owner_id = ?", userID).
			Where("is_deleted = ?", false)
		if q := strings.TrimSpace(squery.Query); q != "" {
			query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
		return query
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	var files []models.File
	if err := build().Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&files).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	return &schemas.FileResponse{
		Files: mapper.ToFileOuts(files),
		Meta: schemas.Meta{
			Total:   total,
			Page:    page,
			Limit:   limit,
			HasMore: hasMore(offset, len(files), total),
		},
	}, nil
}

func (fs *FileService) getOwnedFile(ctx context.Context, fileID, userID string) (*models.File, *types.AppError) {
	var file models.File
	if err := fs.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", fileID, userID).
		First(&file).Error; err != nil {
		if database.IsRecordNotFoundErr(err) {
			return nil, &types.AppError{Error: ErrFileAccess, Code: http.StatusNotFound}
		}
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}
	return &file, nil
}

func (fs *FileService) GetFileByID(ctx context.Context, fileID, userID string) (*schemas.FileOut, *types.AppError) {
	file, err := cache.Fetch(fs.cache, cache.KeyFile(fileID), cacheTTL, func() (models.File, error) {
		var f models.File
		if dbErr := fs.db.WithContext(ctx).Where("id = ?", fileID).First(&f).Error; dbErr != nil {
			if database.IsRecordNotFoundErr(dbErr) {
				return f, database.ErrNotFound
			}
			return f, dbErr
		}
		return f, nil
	})
	if err != nil {
		if database.IsRecordNotFoundErr(err) {
			return nil, &types.AppError{Error: ErrFileAccess, Code: http.StatusNotFound}
		}
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}
	if file.OwnerID != userID {
		return nil, &types.AppError{Error: ErrFileAccess, Code: http.StatusNotFound}
	}
	return mapper.ToFileOut(file), nil
}

func (fs *FileService) RenameFile(ctx context.Context, fileID, userID, newName string) (*schemas.Message, *types.AppError) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, &types.AppError{Error: ErrEmptyNewName, Code: http.StatusBadRequest}
	}

	if _, appErr := fs.getOwnedFile(ctx, fileID, userID); appErr != nil {
		return nil, appErr
	}

	if err := fs.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ? AND owner_id = ?", fileID, userID).
		Update("name", newName).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	fs.cache.Delete(cache.KeyFile(fileID))

	return &schemas.Message{Message: "file renamed"}, nil
}

func (fs *FileService) setFileDeleted(ctx context.Context, fileID, userID string, deleted bool) *types.AppError {
	if _, appErr := fs.getOwnedFile(ctx, fileID, userID); appErr != nil {
		return appErr
	}

	// Idempotent: re-trashing or re-restoring is a no-op update.
	if err := fs.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ? AND owner_id = ?", fileID, userID).
		Update("is_deleted", deleted).Error; err != nil {
		return &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	fs.cache.Delete(cache.KeyFile(fileID))

	return nil
}

func (fs *FileService) SoftDeleteFile(ctx context.Context, fileID, userID string) (*schemas.Message, *types.AppError) {
	if appErr := fs.setFileDeleted(ctx, fileID, userID, true); appErr != nil {
		return nil, appErr
	}
	return &schemas.Message{Message: "file moved to trash"}, nil
}

func (fs *FileService) RestoreFile(ctx context.Context, fileID, userID string) (*schemas.Message, *types.AppError) {
	if appErr := fs.setFileDeleted(ctx, fileID, userID, false); appErr != nil {
		return nil, appErr
	}
	return &schemas.Message{Message: "file restored"}, nil
}

// PermanentlyDeleteFile removes the blob before the row. A failed blob
// removal keeps the row so the delete can be retried; the reverse order
// would leave a row pointing at nothing.
func (fs *FileService) PermanentlyDeleteFile(ctx context.Context, fileID, userID string) (*schemas.Message, *types.AppError) {
	file, appErr := fs.getOwnedFile(ctx, fileID, userID)
	if appErr != nil {
		return nil, appErr
	}

	if err := fs.blob.Remove(ctx, file.StoragePath); err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("storage: %w", err)}
	}

	if err := fs.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", fileID, userID).
		Delete(&models.File{}).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	fs.cache.Delete(cache.KeyFile(fileID))

	return &schemas.Message{Message: "file permanently deleted"}, nil
}

func (fs *FileService) GenerateDownloadURL(ctx context.Context, fileID, userID string) (*schemas.DownloadOut, *types.AppError) {
	file, appErr := fs.getOwnedFile(ctx, fileID, userID)
	if appErr != nil {
		return nil, appErr
	}

	url, err := fs.blob.SignedURL(ctx, file.StoragePath, downloadURLTTL)
	if err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("storage: %w", err)}
	}

	return &schemas.DownloadOut{URL: url}, nil
}
