// Package admin implements the HTTP interface used to manage a signage
// screen: listing, uploading, deleting and archiving media, and editing
// the configuration record the viewer reads every tick.
//
// The viewer never talks to this server. Both sides meet only through
// the media folder and the configuration file.
package admin
