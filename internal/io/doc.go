// Package ioutils provides file system helpers shared by the viewer and
// the admin server.
//
// This package contains functions for:
//   - Saving uploaded streams to disk
//   - Atomic file replacement (write to a temp file, then rename)
//   - Filename sanitization for uploads
//   - Directory creation
//
// # File Operations
//
//	// Save an upload
//	n, err := ioutils.SaveFile(ctx, "/srv/media/lobby.jpg", part)
//
//	// Replace the config record without readers seeing a partial file
//	err := ioutils.WriteFileAtomic("/srv/config/config.json", data)
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("../../etc/passwd") // Returns "passwd"
package ioutils
