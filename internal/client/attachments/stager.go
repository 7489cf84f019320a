package attachments

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/preview"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// Staged is one entry of the stager: a source file with its derived kind
// and display size.
type Staged struct {
	Source SourceFile
	Kind   models.Kind
	Size   string

	seq     uint64
	preview *preview.Handle
}

// Preview returns the entry's preview handle, nil if none was created.
func (s Staged) Preview() *preview.Handle {
	return s.preview
}

// Stager holds the files selected for the next message.
type Stager struct {
	mu       sync.Mutex
	previews *preview.Registry
	logger   logging.Logger
	staged   []*Staged
	nextSeq  uint64
}

func NewStager(previews *preview.Registry, logger logging.Logger) *Stager {
	return &Stager{previews: previews, logger: logger}
}

// AddFiles appends files in the given order. Duplicates are kept as
// distinct entries.
func (s *Stager) AddFiles(files ...SourceFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range files {
		s.nextSeq++
		s.staged = append(s.staged, &Staged{
			Source: f,
			Kind:   Classify(f.MimeType),
			Size:   HumanSize(f.Size),
			seq:    s.nextSeq,
		})
	}
}

// RemoveFile drops the entry at index and releases its preview.
// An out-of-range index is a no-op and reports false.
func (s *Stager) RemoveFile(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.staged) {
		s.mu.Unlock()
		return false
	}
	removed := s.staged[index]
	s.staged = append(s.staged[:index], s.staged[index+1:]...)
	s.mu.Unlock()

	s.release(removed)
	return true
}

func (s *Stager) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

// Staged returns a copy of the current entries in arrival order.
func (s *Stager) Staged() []Staged {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Staged, len(s.staged))
	for i, st := range s.staged {
		out[i] = *st
	}
	return out
}

// Preview returns the preview handle of the image at index, creating it on
// first use. Non-image entries and invalid indexes have no preview.
func (s *Stager) Preview(index int) (*preview.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.staged) {
		return nil, false
	}
	return s.previewLocked(s.staged[index])
}

// Snapshot is Staged with previews created for every image entry.
func (s *Stager) Snapshot() []Staged {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Staged, len(s.staged))
	for i, st := range s.staged {
		s.previewLocked(st)
		out[i] = *st
	}
	return out
}

func (s *Stager) previewLocked(st *Staged) (*preview.Handle, bool) {
	if st.Kind != models.KindImage {
		return nil, false
	}
	if st.preview == nil {
		st.preview = s.previews.Create(st.Source.Path)
	}
	return st.preview, true
}

// Commit removes the entries of snapshot that are still staged and releases
// their previews. Entries added after the snapshot was taken stay staged.
func (s *Stager) Commit(snapshot []Staged) {
	taken := make(map[uint64]struct{}, len(snapshot))
	for _, st := range snapshot {
		taken[st.seq] = struct{}{}
	}

	s.mu.Lock()
	var committed []*Staged
	kept := s.staged[:0]
	for _, st := range s.staged {
		if _, ok := taken[st.seq]; ok {
			committed = append(committed, st)
			continue
		}
		kept = append(kept, st)
	}
	clear(s.staged[len(kept):])
	s.staged = kept
	s.mu.Unlock()

	for _, st := range committed {
		s.release(st)
	}
}

// Clear empties the stager and releases every outstanding preview.
func (s *Stager) Clear() {
	s.mu.Lock()
	staged := s.staged
	s.staged = nil
	s.mu.Unlock()

	for _, st := range staged {
		s.release(st)
	}
}

func (s *Stager) release(st *Staged) {
	if st.preview == nil {
		return
	}
	if err := st.preview.Release(); err != nil {
		s.logger.Error(context.Background(), "preview release failed",
			"file", st.Source.Name, "error", err)
	}
}
