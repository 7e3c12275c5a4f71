// Package catalog enumerates the media folder and holds the snapshot the
// watcher and the playback loop share.
//
// # Scanning
//
//	cat, err := catalog.Scan("/srv/signage/media")
//	// cat is always usable; err only explains why it may be empty
//
// Scan is not recursive. Subdirectories, including the admin's archive
// folder, are skipped.
//
// # Shared State
//
// Shared is the only state crossing goroutines. The watcher replaces the
// snapshot and raises the dirty flag; the playback loop reads the snapshot
// and takes the flag. Neither side blocks the other.
package catalog
