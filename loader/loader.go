package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupportedFile indicates a path whose extension the loader does
// not read.
var ErrUnsupportedFile = errors.New("unsupported document type")

// Document is one source document read from disk.
type Document struct {
	Source string // base file name, the registry and chunk key
	Path   string
	Text   string
	Mtime  time.Time
}

// DocumentLoader reads source documents.
type DocumentLoader interface {
	// LoadAll reads every supported document under dir, sorted by path.
	LoadAll(dir string) ([]Document, error)

	// Load reads a single document.
	Load(path string) (Document, error)
}

// extensions the filesystem loader reads as policy documents.
var supportedExtensions = map[string]bool{
	".md":  true,
	".txt": true,
}

// Filesystem loads documents from a local directory tree.
type Filesystem struct{}

var _ DocumentLoader = (*Filesystem)(nil)

// NewFilesystem creates a filesystem document loader.
func NewFilesystem() *Filesystem {
	return &Filesystem{}
}

// LoadAll walks dir and loads every supported file. Unreadable files
// fail the whole load; a sync must not silently skip documents.
func (l *Filesystem) LoadAll(dir string) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		doc, err := l.Load(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading documents from %s: %w", dir, err)
	}

	return docs, nil
}

// Load reads a single document from path.
func (l *Filesystem) Load(path string) (Document, error) {
	if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}

	return Document{
		Source: filepath.Base(path),
		Path:   path,
		Text:   string(data),
		Mtime:  info.ModTime(),
	}, nil
}
