package catalog

import "sync/atomic"

// Shared carries the dirty flag and the latest catalog snapshot between
// the watcher goroutine and the playback loop.
//
// Snapshots are replaced wholesale and never modified after Replace, so
// readers need no lock. The zero value is ready to use and holds an empty
// catalog with the flag lowered.
type Shared struct {
	dirty   atomic.Bool
	current atomic.Pointer[Catalog]
}

// NewShared returns a Shared seeded with an initial catalog.
func NewShared(initial Catalog) *Shared {
	s := &Shared{}
	s.Replace(initial)
	return s
}

// MarkDirty raises the dirty flag. Raising it again before it is taken
// has no further effect.
func (s *Shared) MarkDirty() {
	s.dirty.Store(true)
}

// Dirty reports whether the flag is raised without lowering it.
func (s *Shared) Dirty() bool {
	return s.dirty.Load()
}

// TakeDirty lowers the flag and reports whether it was raised.
func (s *Shared) TakeDirty() bool {
	return s.dirty.Swap(false)
}

// Replace publishes cat as the current snapshot.
//
// The caller must not modify cat afterwards.
func (s *Shared) Replace(cat Catalog) {
	if cat == nil {
		cat = Catalog{}
	}
	s.current.Store(&cat)
}

// Catalog returns the current snapshot. Callers must treat it as read-only.
func (s *Shared) Catalog() Catalog {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Catalog{}
}
