// Package upload stores submitted file bytes and hands back an opaque
// reference. The disk backend returns a relative path under the upload
// directory; the cloudinary backend returns a secure URL.
package upload

import (
	"context"
	"io"
)

// Uploader stores the bytes read from reader under a name derived from the
// original file name and returns an opaque reference to the stored object.
type Uploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}
