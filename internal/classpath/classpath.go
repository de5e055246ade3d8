// Package classpath resolves class names against an ordered list of
// classpath entries, each either a directory of loose .class files or
// a .jar/.zip archive, the same two shapes the teacher's
// UserClassLoader/JmodClassLoader handled separately — generalized
// here into one Source so pkg/classloader never needs to know which
// kind of entry satisfied a lookup.
package classpath

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minijvm/minijvm/pkg/classfile"
)

// entry is one classpath element: a directory or an opened zip/jar
// archive, resolved lazily on first lookup.
type entry struct {
	dir string // non-empty for a directory entry

	archivePath string // non-empty for a jar/zip entry
	archive     *zip.ReadCloser
}

// Path is an ordered classpath: Open searches entries left to right
// and returns the first match (JVMS §5.3.1's intent, simplified to a
// single flat search order since this VM has no custom class loader
// hierarchy).
type Path struct {
	entries []*entry
	cache   map[string]*classfile.ClassFile
}

// New builds a Path from classpath entries in the given order. Each
// element is a directory or a path to a .jar/.zip file; nonexistent
// entries are kept (and simply never match), matching java's own
// classpath tolerance for stale entries.
func New(elements []string) *Path {
	p := &Path{cache: make(map[string]*classfile.ClassFile)}
	for _, e := range elements {
		if isArchive(e) {
			p.entries = append(p.entries, &entry{archivePath: e})
		} else {
			p.entries = append(p.entries, &entry{dir: e})
		}
	}
	return p
}

func isArchive(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jar" || ext == ".zip"
}

// Open implements classloader.Source: it resolves an internal
// (slash-separated) class name to a parsed ClassFile, first-match-wins
// across the ordered entries.
func (p *Path) Open(name string) (*classfile.ClassFile, error) {
	if cf, ok := p.cache[name]; ok {
		return cf, nil
	}

	relPath := name + ".class"
	for _, e := range p.entries {
		cf, err := e.open(relPath)
		if err != nil {
			continue
		}
		p.cache[name] = cf
		return cf, nil
	}
	return nil, fmt.Errorf("class not found on classpath: %s", name)
}

func (e *entry) open(relPath string) (*classfile.ClassFile, error) {
	if e.dir != "" {
		full := filepath.Join(e.dir, filepath.FromSlash(relPath))
		if _, err := os.Stat(full); err != nil {
			return nil, err
		}
		return classfile.ParseFile(full)
	}
	return e.openFromArchive(relPath)
}

func (e *entry) openFromArchive(relPath string) (*classfile.ClassFile, error) {
	if e.archive == nil {
		r, err := zip.OpenReader(e.archivePath)
		if err != nil {
			return nil, fmt.Errorf("classpath: opening %s: %w", e.archivePath, err)
		}
		e.archive = r
	}
	for _, f := range e.archive.File {
		if f.Name == relPath {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("classpath: opening %s in %s: %w", relPath, e.archivePath, err)
			}
			defer rc.Close()
			return classfile.Parse(rc)
		}
	}
	return nil, fmt.Errorf("classpath: %s not found in %s", relPath, e.archivePath)
}

// Close releases any open archive handles.
func (p *Path) Close() error {
	var firstErr error
	for _, e := range p.entries {
		if e.archive != nil {
			if err := e.archive.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
