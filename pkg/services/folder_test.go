package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/skydrive/skydrive/pkg/models"
	"github.com/skydrive/skydrive/pkg/schemas"
)

type FolderServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	srv *FolderService
}

func (s *FolderServiceSuite) SetupSuite() {
	s.db = newTestDB(s.T())
	s.srv = NewFolderService(s.db, testLogger())
}

func (s *FolderServiceSuite) SetupTest() {
	s.db.Where("id is not NULL").Delete(&models.Folder{})
}

func (s *FolderServiceSuite) create(owner, name string, parentID *string) *schemas.FolderOut {
	res, appErr := s.srv.CreateFolder(context.Background(), owner, &schemas.CreateFolder{
		Name:     name,
		ParentID: parentID,
	})
	s.Require().Nil(appErr)
	return res
}

func TestFolderServiceSuite(t *testing.T) {
	suite.Run(t, new(FolderServiceSuite))
}

func (s *FolderServiceSuite) TestCreateAndList() {
	top := s.create(testUserA, "docs", nil)
	child := s.create(testUserA, "taxes", &top.ID)
	s.create(testUserB, "docs", nil)

	res, appErr := s.srv.ListFolders(context.Background(), testUserA, &schemas.FolderQuery{})
	s.Require().Nil(appErr)
	s.Require().Len(res.Folders, 1)
	s.Equal(top.ID, res.Folders[0].ID)
	s.Require().Len(res.Breadcrumbs, 1)
	s.Nil(res.Breadcrumbs[0].ID)
	s.Equal("root", res.Breadcrumbs[0].Name)

	res, appErr = s.srv.ListFolders(context.Background(), testUserA, &schemas.FolderQuery{ParentID: top.ID})
	s.Require().Nil(appErr)
	s.Require().Len(res.Folders, 1)
	s.Equal(child.ID, res.Folders[0].ID)
}

func (s *FolderServiceSuite) TestCreate_EmptyName() {
	_, appErr := s.srv.CreateFolder(context.Background(), testUserA, &schemas.CreateFolder{Name: "  "})
	s.Require().NotNil(appErr)
	s.Equal(ErrEmptyFolderName, appErr.Error)
	s.Equal(http.StatusBadRequest, appErr.Code)
}

func (s *FolderServiceSuite) TestCreate_MissingParent() {
	missing := "99999999-9999-9999-9999-999999999999"
	_, appErr := s.srv.CreateFolder(context.Background(), testUserA, &schemas.CreateFolder{
		Name:     "orphan",
		ParentID: &missing,
	})
	s.Require().NotNil(appErr)
	s.Equal(ErrFolderAccess, appErr.Error)
	s.Equal(http.StatusNotFound, appErr.Code)
}

func (s *FolderServiceSuite) TestCreate_ForeignParent() {
	theirs := s.create(testUserB, "theirs", nil)
	_, appErr := s.srv.CreateFolder(context.Background(), testUserA, &schemas.CreateFolder{
		Name:     "intruder",
		ParentID: &theirs.ID,
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusNotFound, appErr.Code)
}

func (s *FolderServiceSuite) TestCreate_TrashedParent() {
	parent := s.create(testUserA, "old", nil)
	_, appErr := s.srv.SoftDeleteFolder(context.Background(), parent.ID, testUserA)
	s.Require().Nil(appErr)

	_, appErr = s.srv.CreateFolder(context.Background(), testUserA, &schemas.CreateFolder{
		Name:     "child",
		ParentID: &parent.ID,
	})
	s.Require().NotNil(appErr)
	s.Equal(http.StatusNotFound, appErr.Code)
}

func (s *FolderServiceSuite) TestBreadcrumbs() {
	a := s.create(testUserA, "a", nil)
	b := s.create(testUserA, "b", &a.ID)
	c := s.create(testUserA, "c", &b.ID)

	res, appErr := s.srv.ListFolders(context.Background(), testUserA, &schemas.FolderQuery{ParentID: c.ID})
	s.Require().Nil(appErr)
	s.Require().Len(res.Breadcrumbs, 4)

	s.Nil(res.Breadcrumbs[0].ID)
	s.Equal("root", res.Breadcrumbs[0].Name)
	s.Equal("a", res.Breadcrumbs[1].Name)
	s.Equal("b", res.Breadcrumbs[2].Name)
	s.Equal("c", res.Breadcrumbs[3].Name)
	s.Require().NotNil(res.Breadcrumbs[3].ID)
	s.Equal(c.ID, *res.Breadcrumbs[3].ID)
}

func (s *FolderServiceSuite) TestBreadcrumbs_NotOwner() {
	a := s.create(testUserA, "a", nil)

	_, appErr := s.srv.ResolveBreadcrumbs(context.Background(), a.ID, testUserB)
	s.Require().NotNil(appErr)
	s.Equal(ErrFolderAccess, appErr.Error)
	s.Equal(http.StatusNotFound, appErr.Code)
}

func (s *FolderServiceSuite) TestBreadcrumbs_Cycle() {
	a := s.create(testUserA, "a", nil)
	b := s.create(testUserA, "b", &a.ID)

	// corrupt the tree: a's parent points back at b
	s.Require().NoError(s.db.Model(&models.Folder{}).
		Where("id = ?", a.ID).Update("parent_id", b.ID).Error)

	_, appErr := s.srv.ResolveBreadcrumbs(context.Background(), b.ID, testUserA)
	s.Require().NotNil(appErr)
	s.Equal(ErrFolderCycle, appErr.Error)
}

func (s *FolderServiceSuite) TestTrashView() {
	a := s.create(testUserA, "a", nil)
	nested := s.create(testUserA, "nested", &a.ID)
	s.create(testUserA, "kept", nil)

	_, appErr := s.srv.SoftDeleteFolder(context.Background(), a.ID, testUserA)
	s.Require().Nil(appErr)
	_, appErr = s.srv.SoftDeleteFolder(context.Background(), nested.ID, testUserA)
	s.Require().Nil(appErr)

	// trash is flat: every trashed folder shows regardless of parent
	res, appErr := s.srv.ListFolders(context.Background(), testUserA, &schemas.FolderQuery{Trash: true})
	s.Require().Nil(appErr)
	s.Len(res.Folders, 2)
	s.Require().Len(res.Breadcrumbs, 1)
	s.Nil(res.Breadcrumbs[0].ID)
}

func (s *FolderServiceSuite) TestRenameFolder() {
	a := s.create(testUserA, "a", nil)

	_, appErr := s.srv.RenameFolder(context.Background(), a.ID, testUserA, " ")
	s.Require().NotNil(appErr)
	s.Equal(http.StatusBadRequest, appErr.Code)

	_, appErr = s.srv.RenameFolder(context.Background(), a.ID, testUserB, "mine now")
	s.Require().NotNil(appErr)
	s.Equal(http.StatusNotFound, appErr.Code)

	_, appErr = s.srv.RenameFolder(context.Background(), a.ID, testUserA, "renamed")
	s.Require().Nil(appErr)

	var folder models.Folder
	s.NoError(s.db.Where("id = ?", a.ID).First(&folder).Error)
	s.Equal("renamed", folder.Name)
}

func (s *FolderServiceSuite) TestSoftDeleteRestore_Idempotent() {
	a := s.create(testUserA, "a", nil)

	for i := 0; i < 2; i++ {
		_, appErr := s.srv.SoftDeleteFolder(context.Background(), a.ID, testUserA)
		s.Require().Nil(appErr)
	}

	var folder models.Folder
	s.NoError(s.db.Where("id = ?", a.ID).First(&folder).Error)
	s.True(folder.IsDeleted)

	for i := 0; i < 2; i++ {
		_, appErr := s.srv.RestoreFolder(context.Background(), a.ID, testUserA)
		s.Require().Nil(appErr)
	}

	s.NoError(s.db.Where("id = ?", a.ID).First(&folder).Error)
	s.False(folder.IsDeleted)
}

func (s *FolderServiceSuite) TestSoftDelete_NoCascade() {
	a := s.create(testUserA, "a", nil)
	child := s.create(testUserA, "child", &a.ID)

	_, appErr := s.srv.SoftDeleteFolder(context.Background(), a.ID, testUserA)
	s.Require().Nil(appErr)

	var folder models.Folder
	s.NoError(s.db.Where("id = ?", child.ID).First(&folder).Error)
	s.False(folder.IsDeleted)
}
