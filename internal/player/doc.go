// Package player runs the playback loop.
//
// The Controller decides each tick what the screen shows: a black screen
// when requested, nothing while the playlist is empty, otherwise the next
// image or video. Images cross-fade in and are held for the configured
// duration. Videos play frame by frame until they end or the media set
// changes.
//
// Callers learn what happens through an Event callback and can poll the
// current position with Status.
package player
