// Package store persists named JSON collections, one file per collection,
// under a single root directory.
//
// Reads fail open: a missing, unreadable, or unparsable file resolves to the
// caller's default and is logged, never surfaced. Writes are best effort: the
// whole document replaces the file in one rename, a failure is logged and the
// caller proceeds. Two racing writers produce whichever complete document
// lands last; there is no partial state on disk.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Store reads and writes JSON collections beneath one root directory.
type Store struct {
	root string
	log  *zap.Logger
}

func New(root string, log *zap.Logger) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root %s: %w", root, err)
	}
	return &Store{
		root: root,
		log:  log.Named("store").With(zap.String("root", root)),
	}, nil
}

func (s *Store) Root() string { return s.root }

// Path returns the backing file for a collection.
func (s *Store) Path(collection string) string {
	return filepath.Join(s.root, collection)
}

// Load decodes a collection into def's type and returns it. Any failure
// resolves to def.
func Load[T any](s *Store, collection string, def T) T {
	raw, err := os.ReadFile(s.Path(collection))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("collection unreadable, using default",
				zap.String("collection", collection),
				zap.Error(err),
			)
		}
		return def
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Warn("collection unparsable, using default",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return def
	}
	return out
}

// Save serializes doc and replaces the collection file in full. The document
// is staged to a temp file and renamed so a reader or a racing writer never
// observes a torn file. Errors are logged, not returned; callers must not
// assume the write landed.
func Save[T any](s *Store, collection string, doc T) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.log.Error("collection not serializable",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return
	}

	tmp, err := os.CreateTemp(s.root, collection+".tmp-*")
	if err != nil {
		s.log.Error("collection write failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.log.Error("collection write failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		s.log.Error("collection write failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return
	}

	if err := os.Rename(tmpName, s.Path(collection)); err != nil {
		os.Remove(tmpName)
		s.log.Error("collection replace failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
	}
}
