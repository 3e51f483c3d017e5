package gallery

import "errors"

// MemberLimit caps gallery membership.
const MemberLimit = 50

var (
	// ErrNotFound is returned when the gallery does not exist.
	ErrNotFound = errors.New("gallery not found")

	// ErrNotMember is returned when the acting user is not in the gallery.
	ErrNotMember = errors.New("not a gallery member")

	// ErrNotOwner is returned when a creator-only operation is attempted by
	// another member.
	ErrNotOwner = errors.New("not the gallery owner")

	// ErrAlreadyMember is returned when adding a username that is already in
	// the gallery.
	ErrAlreadyMember = errors.New("already a gallery member")

	// ErrMemberLimit is returned when the gallery is full.
	ErrMemberLimit = errors.New("gallery member limit reached")

	// ErrInvalidInput is returned for empty names or IDs.
	ErrInvalidInput = errors.New("invalid gallery input")
)
