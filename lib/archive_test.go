package worldback

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

type memEntry struct {
	name    string
	data    string
	mode    fs.FileMode
	hasMode bool
	err     error
}

func (e memEntry) Name() string {
	return e.name
}

func (e memEntry) Open() (io.ReadCloser, error) {
	if e.err != nil {
		return nil, e.err
	}
	return io.NopCloser(bytes.NewBufferString(e.data)), nil
}

func (e memEntry) Mode() (fs.FileMode, bool) {
	return e.mode, e.hasMode
}

type memArchive struct {
	entries []memEntry
	closed  bool
}

func (a *memArchive) Len() int {
	return len(a.entries)
}

func (a *memArchive) Entry(i int) Entry {
	return a.entries[i]
}

func (a *memArchive) Close() error {
	a.closed = true
	return nil
}

func newMemArchive(names ...string) *memArchive {
	a := &memArchive{}
	for _, name := range names {
		a.entries = append(a.entries, memEntry{name: name, data: "content of " + name})
	}
	return a
}

type fixedTimestamper string

func (t fixedTimestamper) Timestamp() (string, error) {
	return string(t), nil
}

type recordedPermissions struct {
	supported bool
	applied   map[string]fs.FileMode
}

func (p *recordedPermissions) Supported() bool {
	return p.supported
}

func (p *recordedPermissions) Apply(path string, mode fs.FileMode) error {
	if p.applied == nil {
		p.applied = make(map[string]fs.FileMode)
	}
	p.applied[path] = mode
	return nil
}

// Read a directory tree into a map of slash-separated relative path to content.
// Directories map to "/".
func readTree(t *testing.T, root string) map[string]string {
	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		if d.IsDir() {
			tree[filepath.ToSlash(rel)] = "/"
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("cannot read tree %s: %v", root, err)
	}
	return tree
}
