package api

import (
	"time"

	"pichub/cmd/identity"
	"pichub/cmd/internal/gallery"
	"pichub/cmd/internal/media"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type createGalleryRequest struct {
	GalleryName string `json:"galleryName"`
}

type addMemberRequest struct {
	GalleryID string `json:"galleryId"`
	Username  string `json:"username"`
}

type addToGalleryRequest struct {
	MediaID string `json:"mediaId"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// profileResponse is the user projection with their uploads and the
// galleries they belong to.
type profileResponse struct {
	userResponse
	Uploads   []media.Media     `json:"uploads"`
	Galleries []gallery.Gallery `json:"galleries"`
}

type tokenResponse struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type loginResponse struct {
	User   userResponse  `json:"user"`
	Tokens tokenResponse `json:"tokens"`
}

type refreshResponse struct {
	Tokens tokenResponse `json:"tokens"`
}

type statusResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          userResponse `json:"user"`
}
