// Package model defines the media types shared by the viewer packages.
//
// # MediaEntry
//
// A MediaEntry is one playable file from the media folder:
//
//	entry, ok := model.NewMediaEntry("/srv/signage/media/lobby.jpg")
//	fmt.Println(entry.Kind) // image
//
// # Classification
//
// The kind of an entry is derived from its extension only, compared
// case-insensitively:
//   - image: .jpg, .jpeg, .png
//   - video: .mp4, .avi, .mov
//
// Files with any other extension are not media and are never played.
package model
