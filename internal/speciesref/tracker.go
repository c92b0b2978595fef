package speciesref

import (
	"os"
	"sync"
)

// Stage is the pipeline stage that produced an artifact.
type Stage int

const (
	// DecompressedFasta is a plain-text copy of a gzipped genome FASTA
	DecompressedFasta Stage = iota

	// DecompressedGTF is a plain-text copy of a gzipped annotation
	DecompressedGTF

	// TranscriptFasta is gffread's transcript sequences for one species
	TranscriptFasta

	// KmerTable is a FastK table or one of the files FastK writes beside it
	KmerTable
)

func (s Stage) String() string {
	switch s {
	case DecompressedFasta:
		return "decompressed FASTA"
	case DecompressedGTF:
		return "decompressed GTF"
	case TranscriptFasta:
		return "transcript FASTA"
	case KmerTable:
		return "k-mer table"
	}
	return "unknown"
}

// Artifact is a file produced by a stage for a single species.
type Artifact struct {
	// Path to the file
	Path string

	// Species is the index of the owning species
	Species int

	// Stage that wrote it
	Stage Stage

	// Temporary if the run owns the file and removes it before exiting
	Temporary bool
}

// Tracker records every artifact created during a run so that all the
// temporary ones can be removed, no matter which stage failed. It's safe
// for concurrent use by per-species stages.
type Tracker struct {
	mu sync.Mutex

	// artifacts in the order they were tracked
	artifacts []Artifact

	// tracked paths
	seen map[string]bool

	// temporary paths that have already been removed
	removed map[string]bool
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		seen:    make(map[string]bool),
		removed: make(map[string]bool),
	}
}

// Track records an artifact. It returns false if the path is already
// tracked and still on disk, in which case nothing changes. A released
// path may be tracked again by a later species.
func (t *Tracker) Track(a Artifact) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seen[a.Path] {
		if !t.removed[a.Path] {
			return false
		}
		for i := range t.artifacts {
			if t.artifacts[i].Path == a.Path {
				t.artifacts[i] = a
			}
		}
		delete(t.removed, a.Path)
		return true
	}
	t.seen[a.Path] = true
	t.artifacts = append(t.artifacts, a)
	return true
}

// Artifacts returns a copy of every tracked artifact, in tracking order.
func (t *Tracker) Artifacts() []Artifact {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]Artifact(nil), t.artifacts...)
}

// Pending returns the temporary artifacts that have yet to be removed.
func (t *Tracker) Pending() []Artifact {
	t.mu.Lock()
	defer t.mu.Unlock()

	var pending []Artifact
	for _, a := range t.artifacts {
		if a.Temporary && !t.removed[a.Path] {
			pending = append(pending, a)
		}
	}
	return pending
}

// Removed returns whether a tracked temporary has been deleted.
func (t *Tracker) Removed(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.removed[path]
}

// Release deletes a tracked temporary ahead of the final cleanup. Releasing
// an untracked, non-temporary or already removed path does nothing.
func (t *Tracker) Release(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.seen[path] || t.removed[path] {
		return nil
	}
	for _, a := range t.artifacts {
		if a.Path == path && !a.Temporary {
			return nil
		}
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fsErr(path, err)
	}
	t.removed[path] = true
	return nil
}
