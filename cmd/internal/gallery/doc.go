// Package gallery implements shared photo galleries: creation, membership,
// member listing, image listing, and owner-only deletion.
//
// Membership is tracked as a username array on the gallery row, capped at 50
// members. The creator is always the first member and the only principal
// allowed to delete the gallery.
package gallery
