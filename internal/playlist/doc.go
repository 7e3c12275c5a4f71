// Package playlist derives the play order from a catalog and the
// configuration record.
//
//	seq := playlist.NewSequencer(nil)
//	list := seq.Apply(cat, settings)
//	if !playlist.Equal(list, previous) {
//	    // restart from the first entry
//	}
//
// Filtering happens first (show_images, show_videos), then ordering:
// sequential keeps path order, random shuffles on every call.
package playlist
