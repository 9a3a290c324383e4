package photostore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Store keeps uploaded food photos so a recent analysis can be re-run
// with a corrected weight without asking for the photo again.
type Store interface {
	// Put stores the photo and returns its key.
	Put(ctx context.Context, userID int64, data []byte, mimeType string) (string, error)
	// Get returns the photo bytes, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the photo. Deleting a missing photo is not an error.
	Delete(ctx context.Context, key string) error
}

// keyPrefix namespaces photo objects in shared buckets.
const keyPrefix = "photos"

// newKey builds "photos/<userID>/<uuid>.<ext>".
func newKey(userID int64, mimeType string) string {
	ext := "jpg"
	if mimeType == "image/png" {
		ext = "png"
	}
	return fmt.Sprintf("%s/%d/%s.%s", keyPrefix, userID, uuid.NewString(), ext)
}

// OwnedBy reports whether the key belongs to the user. Keys embed the
// owner, so ownership is a prefix check.
func OwnedBy(key string, userID int64) bool {
	return strings.HasPrefix(key, fmt.Sprintf("%s/%d/", keyPrefix, userID))
}

// validKey rejects keys outside the photo prefix and path traversal.
func validKey(key string) bool {
	if !strings.HasPrefix(key, keyPrefix+"/") {
		return false
	}
	return !strings.Contains(key, "..")
}
