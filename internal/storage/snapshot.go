package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/tuannm99/fallbackdb/internal/catalog"
	"github.com/tuannm99/fallbackdb/internal/record"
)

// FileSet stores catalog snapshots as three JSON documents inside Dir.
// Every document is replaced atomically: written to a temp file in the
// same directory, synced, then renamed over the previous version.
type FileSet struct {
	Fs  afero.Fs
	Dir string
}

// NewFileSet returns a FileSet on the OS filesystem when fs is nil.
func NewFileSet(fs afero.Fs, dir string) *FileSet {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileSet{Fs: fs, Dir: dir}
}

func (s *FileSet) path(name string) string {
	return filepath.Join(s.Dir, name)
}

type document struct {
	name string
	v    any
}

func documents(snap *catalog.Snapshot) []document {
	return []document{
		{TablesFile, &snap.Tables},
		{SchemasFile, &snap.Schemas},
		{SequencesFile, &snap.Sequences},
	}
}

// Load reads whatever snapshot documents exist. found reports whether at
// least one document was present. A missing document leaves its part of
// the snapshot nil; an undecodable one fails with ErrCorruptSnapshot.
func (s *FileSet) Load() (snap catalog.Snapshot, found bool, err error) {
	for _, doc := range documents(&snap) {
		path := s.path(doc.name)
		data, rerr := afero.ReadFile(s.Fs, path)
		if errors.Is(rerr, os.ErrNotExist) {
			continue
		}
		if rerr != nil {
			return catalog.Snapshot{}, found, &PersistenceError{Op: "read", Path: path, Err: rerr}
		}
		found = true
		if uerr := json.Unmarshal(data, doc.v); uerr != nil {
			return catalog.Snapshot{}, found, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, doc.name, uerr)
		}
	}
	return snap, found, nil
}

// Save encodes all documents first and writes nothing if any of them
// fails to encode. Write failures of individual documents are combined.
func (s *FileSet) Save(snap catalog.Snapshot) error {
	if snap.Tables == nil {
		snap.Tables = map[string][]record.Row{}
	}
	if snap.Schemas == nil {
		snap.Schemas = map[string]string{}
	}
	if snap.Sequences == nil {
		snap.Sequences = map[string]int64{}
	}

	docs := documents(&snap)
	encoded := make([][]byte, len(docs))
	for i, doc := range docs {
		data, err := json.MarshalIndent(doc.v, "", "  ")
		if err != nil {
			return &PersistenceError{Op: "encode", Path: s.path(doc.name), Err: err}
		}
		encoded[i] = append(data, '\n')
	}

	if err := s.Fs.MkdirAll(s.Dir, FileMode0755); err != nil {
		return &PersistenceError{Op: "mkdir", Path: s.Dir, Err: err}
	}

	var errs error
	for i, doc := range docs {
		errs = multierr.Append(errs, s.writeAtomic(doc.name, encoded[i]))
	}
	return errs
}

func (s *FileSet) writeAtomic(name string, data []byte) error {
	path := s.path(name)
	f, err := afero.TempFile(s.Fs, s.Dir, name+".tmp-*")
	if err != nil {
		return &PersistenceError{Op: "create", Path: path, Err: err}
	}
	tmp := f.Name()

	fail := func(op string, err error) error {
		_ = f.Close()
		_ = s.Fs.Remove(tmp)
		return &PersistenceError{Op: op, Path: path, Err: err}
	}

	if _, err := f.Write(data); err != nil {
		return fail("write", err)
	}
	if err := f.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := f.Close(); err != nil {
		_ = s.Fs.Remove(tmp)
		return &PersistenceError{Op: "close", Path: path, Err: err}
	}
	if err := s.Fs.Rename(tmp, path); err != nil {
		_ = s.Fs.Remove(tmp)
		return &PersistenceError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
