package config

// Store loads the configuration record for the playback loop.
//
// Store never caches: every Load reads the file again so admin edits are
// picked up on the next tick.
type Store struct {
	// Path is the location of the JSON record.
	Path string

	// OnError receives read and parse failures. May be nil.
	OnError func(error)
}

// NewStore creates a Store for path.
func NewStore(path string, onError func(error)) *Store {
	return &Store{Path: path, OnError: onError}
}

// Load returns the current settings, falling back to defaults on any failure.
func (s *Store) Load() *Settings {
	settings, err := Load(s.Path)
	if err != nil && s.OnError != nil {
		s.OnError(err)
	}
	return settings
}
