package services

import (
	"fmt"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// TTL on presigned download URLs handed to clients.
	downloadURLTTL = 5 * time.Minute

	// Upper bound on the breadcrumb parent walk. A healthy tree never gets
	// close; hitting it means the persisted tree is corrupted.
	maxWalkDepth = 10000

	cacheTTL = 5 * time.Minute
)

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func hasMore(offset, returned int, total int64) bool {
	return int64(offset+returned) < total
}

// newStorageKey builds a per-owner, collision resistant blob key:
// {ownerId}/{unixMillis}-{name}.
func newStorageKey(ownerID, name string) string {
	return fmt.Sprintf("%s/%d-%s", ownerID, time.Now().UnixMilli(), name)
}
