// Package assets abstracts the external media asset host.
//
// Uploaded files live outside the database; only their key, public URL, and
// resource type are recorded on the media row. The process must stay able to
// serve API traffic even when the asset host misbehaves, so every operation
// takes a context and returns an error the transport layer maps to a
// bad-gateway response.
package assets

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ResourceType is the asset host's coarse classification of an upload.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
	ResourceRaw   ResourceType = "raw"
)

// ResourceTypeForContentType classifies by MIME type prefix, the way the
// asset host's auto-detection does.
func ResourceTypeForContentType(contentType string) ResourceType {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return ResourceImage
	case strings.HasPrefix(ct, "video/"):
		return ResourceVideo
	default:
		return ResourceRaw
	}
}

// Asset is the host's durable record of an upload.
type Asset struct {
	// Key is the host-side identifier; deletes address the asset by it.
	Key string

	// URL is the public serving URL.
	URL string

	ResourceType ResourceType
}

// ErrHostUnavailable wraps transport failures talking to the asset host.
var ErrHostUnavailable = errors.New("asset host unavailable")

// Host stores and removes media binaries.
type Host interface {
	// Upload streams body to the host under key and returns the stored asset.
	Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (Asset, error)

	// Delete removes the asset. Deleting an unknown key is not an error.
	Delete(ctx context.Context, key string) error
}
