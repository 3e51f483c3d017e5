package media

import "errors"

var (
	// ErrNotFound is returned when the media row does not exist.
	ErrNotFound = errors.New("media not found")

	// ErrNotUploader is returned when someone other than the uploader
	// attempts a delete.
	ErrNotUploader = errors.New("not the media uploader")

	// ErrAlreadyInGallery is returned when attaching media to a gallery it
	// already belongs to.
	ErrAlreadyInGallery = errors.New("media already in gallery")

	// ErrInvalidInput is returned for empty IDs or missing upload bodies.
	ErrInvalidInput = errors.New("invalid media input")
)
