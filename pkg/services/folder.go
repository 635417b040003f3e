package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/skydrive/skydrive/internal/database"
	"github.com/skydrive/skydrive/pkg/mapper"
	"github.com/skydrive/skydrive/pkg/models"
	"github.com/skydrive/skydrive/pkg/schemas"
	"github.com/skydrive/skydrive/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrFolderAccess    = errors.New("folder not found or access denied")
	ErrEmptyFolderName = errors.New("folder name is required")
	ErrFolderCycle     = errors.New("folder tree is corrupted: parent cycle detected")
)

type FolderService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewFolderService(db *gorm.DB, logger *zap.SugaredLogger) *FolderService {
	return &FolderService{db: db, logger: logger}
}

func (fs *FolderService) CreateFolder(ctx context.Context, userID string, payload *schemas.CreateFolder) (*schemas.FolderOut, *types.AppError) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, &types.AppError{Error: ErrEmptyFolderName, Code: http.StatusBadRequest}
	}

	if payload.ParentID != nil {
		var count int64
		if err := fs.db.WithContext(ctx).Model(&models.Folder{}).
			Where("id = ? AND owner_id = ? AND is_deleted = ?", *payload.ParentID, userID, false).
			Count(&count).Error; err != nil {
			return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
		}
		if count == 0 {
			return nil, &types.AppError{Error: ErrFolderAccess, Code: http.StatusNotFound}
		}
	}

	folder := models.Folder{
		OwnerID:  userID,
		ParentID: payload.ParentID,
		Name:     name,
	}

	if err := fs.db.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	return mapper.ToFolderOut(folder), nil
}

// ListFolders returns the children of parentId (root when empty) together
// with the breadcrumb path to the current folder. The trash view lists every
// trashed folder regardless of parent and collapses breadcrumbs to the root
// marker, since trash is flat rather than a tree.
func (fs *FolderService) ListFolders(ctx context.Context, userID string, fquery *schemas.FolderQuery) (*schemas.FolderResponse, *types.AppError) {
	query := fs.db.WithContext(ctx).Model(&models.Folder{}).Where("owner_id = ?", userID)

	if fquery.Trash {
		query = query.Where("is_deleted = ?", true)
	} else {
		query = query.Where("is_deleted = ?", false)
		if fquery.ParentID != "" {
			query = query.Where("parent_id = ?", fquery.ParentID)
		} else {
			query = query.Where("parent_id IS NULL")
		}
	}

	var folders []models.Folder
	if err := query.Order("created_at ASC").Find(&folders).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	breadcrumbs := []schemas.Breadcrumb{{ID: nil, Name: "root"}}
	if !fquery.Trash && fquery.ParentID != "" {
		var appErr *types.AppError
		breadcrumbs, appErr = fs.ResolveBreadcrumbs(ctx, fquery.ParentID, userID)
		if appErr != nil {
			return nil, appErr
		}
	}

	return &schemas.FolderResponse{
		Folders:     mapper.ToFolderOuts(folders),
		Breadcrumbs: breadcrumbs,
	}, nil
}

// ResolveBreadcrumbs walks parent links from folderID up to the root,
// prepending each hop. The walk is bounded by a visited set and a depth cap
// so a corrupted tree surfaces an error instead of hanging the request.
func (fs *FolderService) ResolveBreadcrumbs(ctx context.Context, folderID, userID string) ([]schemas.Breadcrumb, *types.AppError) {
	crumbs := []schemas.Breadcrumb{}
	visited := make(map[string]struct{})

	id := folderID
	for depth := 0; ; depth++ {
		if depth >= maxWalkDepth {
			return nil, &types.AppError{Error: ErrFolderCycle}
		}
		if _, seen := visited[id]; seen {
			return nil, &types.AppError{Error: ErrFolderCycle}
		}
		visited[id] = struct{}{}

		var folder models.Folder
		if err := fs.db.WithContext(ctx).
			Where("id = ? AND owner_id = ?", id, userID).
			First(&folder).Error; err != nil {
			if database.IsRecordNotFoundErr(err) {
				return nil, &types.AppError{Error: ErrFolderAccess, Code: http.StatusNotFound}
			}
			return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
		}

		hopID := folder.ID
		crumbs = append([]schemas.Breadcrumb{{ID: &hopID, Name: folder.Name}}, crumbs...)

		if folder.ParentID == nil {
			break
		}
		id = *folder.ParentID
	}

	return append([]schemas.Breadcrumb{{ID: nil, Name: "root"}}, crumbs...), nil
}

func (fs *FolderService) getOwnedFolder(ctx context.Context, folderID, userID string) (*models.Folder, *types.AppError) {
	var folder models.Folder
	if err := fs.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", folderID, userID).
		First(&folder).Error; err != nil {
		if database.IsRecordNotFoundErr(err) {
			return nil, &types.AppError{Error: ErrFolderAccess, Code: http.StatusNotFound}
		}
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}
	return &folder, nil
}

func (fs *FolderService) RenameFolder(ctx context.Context, folderID, userID, newName string) (*schemas.Message, *types.AppError) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, &types.AppError{Error: ErrEmptyNewName, Code: http.StatusBadRequest}
	}

	if _, appErr := fs.getOwnedFolder(ctx, folderID, userID); appErr != nil {
		return nil, appErr
	}

	if err := fs.db.WithContext(ctx).Model(&models.Folder{}).
		Where("id = ? AND owner_id = ?", folderID, userID).
		Update("name", newName).Error; err != nil {
		return nil, &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	return &schemas.Message{Message: "folder renamed"}, nil
}

func (fs *FolderService) setFolderDeleted(ctx context.Context, folderID, userID string, deleted bool) *types.AppError {
	if _, appErr := fs.getOwnedFolder(ctx, folderID, userID); appErr != nil {
		return appErr
	}

	// Trashing a folder does not cascade to descendants; they keep their own
	// state and remain individually listed in the trash view.
	if err := fs.db.WithContext(ctx).Model(&models.Folder{}).
		Where("id = ? AND owner_id = ?", folderID, userID).
		Update("is_deleted", deleted).Error; err != nil {
		return &types.AppError{Error: fmt.Errorf("metadata: %w", err)}
	}

	return nil
}

func (fs *FolderService) SoftDeleteFolder(ctx context.Context, folderID, userID string) (*schemas.Message, *types.AppError) {
	if appErr := fs.setFolderDeleted(ctx, folderID, userID, true); appErr != nil {
		return nil, appErr
	}
	return &schemas.Message{Message: "folder moved to trash"}, nil
}

func (fs *FolderService) RestoreFolder(ctx context.Context, folderID, userID string) (*schemas.Message, *types.AppError) {
	if appErr := fs.setFolderDeleted(ctx, folderID, userID, false); appErr != nil {
		return nil, appErr
	}
	return &schemas.Message{Message: "folder restored"}, nil
}
