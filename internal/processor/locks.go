package processor

import (
	"sync"
	"sync/atomic"
)

// fileState serialises processing of one transcript. An event that arrives
// while the file is being processed marks it dirty and the holder runs again.
type fileState struct {
	mu    sync.Mutex
	dirty atomic.Bool
}

// acquire takes the file for processing. When another goroutine holds it the
// file is marked dirty and acquire reports false.
func (s *fileState) acquire() bool {
	if s.mu.TryLock() {
		s.dirty.Store(false)
		return true
	}
	s.dirty.Store(true)
	// The holder may have released between the TryLock and the Store.
	if s.mu.TryLock() {
		s.dirty.Store(false)
		return true
	}
	return false
}

// release gives the file up. It reports true when the file was marked dirty
// during the run and has been taken again, in which case the caller must
// process it once more and release again.
func (s *fileState) release() bool {
	s.mu.Unlock()
	if !s.dirty.Load() {
		return false
	}
	if s.mu.TryLock() {
		s.dirty.Store(false)
		return true
	}
	return false
}

// fileLocks hands out one fileState per transcript path.
type fileLocks struct {
	mu    sync.Mutex
	files map[string]*fileState
}

func newFileLocks() *fileLocks {
	return &fileLocks{files: make(map[string]*fileState)}
}

// get returns the state for path, creating it on first use.
func (f *fileLocks) get(path string) *fileState {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, ok := f.files[path]
	if !ok {
		state = &fileState{}
		f.files[path] = state
	}
	return state
}

// forget drops the state for a removed file. A holder keeps its own reference.
func (f *fileLocks) forget(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
}

func (f *fileLocks) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}
