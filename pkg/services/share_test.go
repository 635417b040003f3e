package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/skydrive/skydrive/internal/cache"
	"github.com/skydrive/skydrive/pkg/models"
	"github.com/skydrive/skydrive/pkg/schemas"
)

type ShareServiceSuite struct {
	suite.Suite
	db    *gorm.DB
	blob  *fakeBlob
	srv   *ShareService
	files *FileService
}

func (s *ShareServiceSuite) SetupSuite() {
	s.db = newTestDB(s.T())
}

func (s *ShareServiceSuite) SetupTest() {
	s.db.Where("token is not NULL").Delete(&models.FileShare{})
	s.db.Where("id is not NULL").Delete(&models.File{})
	s.blob = newFakeBlob()
	cacher := newTestCache()
	s.srv = NewShareService(s.db, s.blob, cacher, "https://drive.example.com/", testLogger())
	s.files = NewFileService(s.db, s.blob, cacher, testLogger())
}

func (s *ShareServiceSuite) upload(owner, name string) *schemas.FileOut {
	res, appErr := s.files.UploadFile(context.Background(), &UploadParams{
		OwnerID:  owner,
		Name:     name,
		MimeType: "application/pdf",
		Size:     4,
		Body:     strings.NewReader("data"),
	})
	s.Require().Nil(appErr)
	return res
}

func (s *ShareServiceSuite) share(fileID, userID string, expiresAt *time.Time) *schemas.ShareOut {
	res, appErr := s.srv.CreateShareLink(context.Background(), fileID, userID, &schemas.ShareIn{
		Permission: schemas.PermissionView,
		ExpiresAt:  expiresAt,
	})
	s.Require().Nil(appErr)
	return res
}

func TestShareServiceSuite(t *testing.T) {
	suite.Run(t, new(ShareServiceSuite))
}

func (s *ShareServiceSuite) TestCreateAndResolve() {
	file := s.upload(testUserA, "a.pdf")
	out := s.share(file.ID, testUserA, nil)

	// 24 random bytes, hex encoded
	s.Len(out.Token, 48)
	s.Equal("https://drive.example.com/share/"+out.Token, out.ShareURL)

	res, appErr := s.srv.ResolveShareLink(context.Background(), out.Token)
	s.Require().Nil(appErr)
	s.Equal("a.pdf", res.File.Name)
	s.Equal(schemas.PermissionView, res.Permission)
	s.Contains(res.DownloadURL, "https://blobs.test/")
}

func (s *ShareServiceSuite) TestCreate_NotOwner() {
	file := s.upload(testUserA, "a.pdf")

	_, appErr := s.srv.CreateShareLink(context.Background(), file.ID, testUserB, &schemas.ShareIn{
		Permission: schemas.PermissionView,
	})
	s.Require().NotNil(appErr)
	s.Equal(ErrFileAccess, appErr.Error)
	s.Equal(http.StatusNotFound, appErr.Code)
}

func (s *ShareServiceSuite) TestCreate_PastExpiry() {
	file := s.upload(testUserA, "a.pdf")
	past := time.Now().UTC().Add(-time.Hour)

	_, appErr := s.srv.CreateShareLink(context.Background(), file.ID, testUserA, &schemas.ShareIn{
		Permission: schemas.PermissionView,
		ExpiresAt:  &past,
	})
	s.Require().NotNil(appErr)
	s.Equal(ErrExpiryInPast, appErr.Error)
	s.Equal(http.StatusBadRequest, appErr.Code)
}

func (s *ShareServiceSuite) TestCreate_FutureExpiryRoundTrip() {
	file := s.upload(testUserA, "a.pdf")
	future := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	out := s.share(file.ID, testUserA, &future)

	var row models.FileShare
	s.Require().NoError(s.db.Where("token = ?", out.Token).First(&row).Error)
	s.Require().NotNil(row.ExpiresAt)
	s.WithinDuration(future, *row.ExpiresAt, time.Second)

	res, appErr := s.srv.ResolveShareLink(context.Background(), out.Token)
	s.Require().Nil(appErr)
	s.Equal("a.pdf", res.File.Name)
}

func (s *ShareServiceSuite) TestResolve_Unknown() {
	_, appErr := s.srv.ResolveShareLink(context.Background(), "deadbeef")
	s.Require().NotNil(appErr)
	s.Equal(ErrShareNotFound, appErr.Error)
	s.Equal(http.StatusNotFound, appErr.Code)
}

func (s *ShareServiceSuite) TestResolve_Expired() {
	file := s.upload(testUserA, "a.pdf")
	future := time.Now().UTC().Add(time.Hour)
	out := s.share(file.ID, testUserA, &future)

	_, appErr := s.srv.ResolveShareLink(context.Background(), out.Token)
	s.Require().Nil(appErr)

	// rows outlive their expiry; flipping it answers Gone, not NotFound
	past := time.Now().UTC().Add(-time.Minute)
	s.Require().NoError(s.db.Model(&models.FileShare{}).
		Where("token = ?", out.Token).Update("expires_at", past).Error)
	s.srv.cache.Delete(cache.KeyShare(out.Token))

	_, appErr = s.srv.ResolveShareLink(context.Background(), out.Token)
	s.Require().NotNil(appErr)
	s.Equal(ErrShareExpired, appErr.Error)
	s.Equal(http.StatusGone, appErr.Code)
}

func (s *ShareServiceSuite) TestResolve_TrashedFileStillServes() {
	file := s.upload(testUserA, "a.pdf")
	out := s.share(file.ID, testUserA, nil)

	_, appErr := s.files.SoftDeleteFile(context.Background(), file.ID, testUserA)
	s.Require().Nil(appErr)

	res, appErr := s.srv.ResolveShareLink(context.Background(), out.Token)
	s.Require().Nil(appErr)
	s.Equal("a.pdf", res.File.Name)
}

func (s *ShareServiceSuite) TestResolve_PermanentDeleteBreaksLink() {
	file := s.upload(testUserA, "a.pdf")
	out := s.share(file.ID, testUserA, nil)

	_, appErr := s.files.PermanentlyDeleteFile(context.Background(), file.ID, testUserA)
	s.Require().Nil(appErr)

	_, appErr = s.srv.ResolveShareLink(context.Background(), out.Token)
	s.Require().NotNil(appErr)
	s.Equal(ErrSharedFileGone, appErr.Error)
	s.Equal(http.StatusNotFound, appErr.Code)
}

func (s *ShareServiceSuite) TestListShareLinks() {
	first := s.upload(testUserA, "first.pdf")
	second := s.upload(testUserA, "second.pdf")
	theirs := s.upload(testUserB, "theirs.pdf")

	outFirst := s.share(first.ID, testUserA, nil)
	outSecond := s.share(second.ID, testUserA, nil)
	s.share(theirs.ID, testUserB, nil)

	base := time.Now().UTC().Add(-time.Hour)
	s.Require().NoError(s.db.Model(&models.FileShare{}).
		Where("token = ?", outFirst.Token).Update("created_at", base).Error)
	s.Require().NoError(s.db.Model(&models.FileShare{}).
		Where("token = ?", outSecond.Token).Update("created_at", base.Add(time.Minute)).Error)

	items, appErr := s.srv.ListShareLinks(context.Background(), testUserA)
	s.Require().Nil(appErr)
	s.Require().Len(items, 2)

	// newest first, with the referenced file joined in
	s.Equal(outSecond.Token, items[0].Token)
	s.Equal("second.pdf", items[0].File.Name)
	s.Equal(outFirst.Token, items[1].Token)
	s.Equal("first.pdf", items[1].File.Name)
	s.Equal(schemas.PermissionView, items[0].Permission)
	s.False(items[0].File.CreatedAt.IsZero())
	s.False(items[1].File.CreatedAt.IsZero())
}
