// Package media implements uploads: binaries go to the external asset host,
// metadata goes to Postgres, and attachments link media into galleries.
//
// Deletion is uploader-only and removes the asset host copy before the
// database row, so a failed host delete never leaves a dangling URL.
package media
