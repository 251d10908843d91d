package worldback

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var restoreLog = logrus.WithFields(logrus.Fields{
	"component": "restore",
})

// Moves an existing world aside and extracts an archive in its place
type Restorer struct {
	Timestamper Timestamper
	Permissions PermissionApplier
}

func NewRestorer(ts Timestamper, perms PermissionApplier) *Restorer {
	if perms == nil {
		perms = NoPermissions{}
	}
	return &Restorer{Timestamper: ts, Permissions: perms}
}

// Restore the entries of archive located under prefix into worldPath. If
// worldPath already exists, it is renamed to worldPath-<timestamp> first.
// Entries written before a failure are left on disk.
func (r *Restorer) Restore(worldPath string, archive Archive, prefix string) error {
	asidePath, err := r.MoveAside(worldPath)
	if err != nil {
		return err
	}
	if asidePath != "" {
		restoreLog.Infof("moved old world to: %s", asidePath)
	}

	return r.Extract(worldPath, archive, prefix)
}

// Rename worldPath to a timestamped sibling. Returns the new path, or an empty
// string if there was nothing to move.
func (r *Restorer) MoveAside(worldPath string) (string, error) {
	_, err := os.Stat(worldPath)
	if os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	suffix, err := r.Timestamper.Timestamp()
	if err != nil {
		return "", fmt.Errorf("%w: cannot compute backup name for %s: %w", ErrFilesystem, worldPath, err)
	}

	asidePath := worldPath + "-" + suffix
	restoreLog.Debugf("moving old world to: %s", asidePath)
	err = os.Rename(worldPath, asidePath)
	if err != nil {
		return "", fmt.Errorf("%w: unable to rename world folder: %w", ErrFilesystem, err)
	}

	return asidePath, nil
}

// Extract every entry whose name starts with prefix into worldPath, with the
// prefix stripped
func (r *Restorer) Extract(worldPath string, archive Archive, prefix string) error {
	for i := 0; i < archive.Len(); i++ {
		entry := archive.Entry(i)
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}

		name := strings.ReplaceAll(strings.TrimPrefix(entry.Name(), prefix), "\\", "/")
		target, err := destination(worldPath, name)
		if err != nil {
			return fmt.Errorf("%w: %w: %s", ErrArchiveRead, err, entry.Name())
		}

		restoreLog.Debugf("extracting %s to %s", entry.Name(), target)
		if name == "" || strings.HasSuffix(name, "/") {
			err = os.MkdirAll(target, 0777)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrFilesystem, err)
			}
		} else {
			err = extractFile(entry, target)
			if err != nil {
				return err
			}
		}

		if mode, ok := entry.Mode(); ok && r.Permissions.Supported() {
			err = r.Permissions.Apply(target, mode)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrFilesystem, err)
			}
		}
	}

	return nil
}

// Join a slash-separated relative name onto worldPath, refusing names that
// would land outside of it
func destination(worldPath, name string) (string, error) {
	name = strings.TrimRight(name, "/")
	if name == "" {
		return worldPath, nil
	}

	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", ErrUnsafeEntry
	}

	return filepath.Join(worldPath, rel), nil
}

type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

func extractFile(entry Entry, target string) error {
	err := os.MkdirAll(filepath.Dir(target), 0777)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	data, err := entry.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArchiveRead, entry.Name(), err)
	}
	defer data.Close()

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("%w: failed to open file %s: %w", ErrFilesystem, target, err)
	}
	defer f.Close()

	src := &trackedReader{r: data}
	_, err = io.Copy(f, src)
	if src.err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArchiveRead, entry.Name(), src.err)
	} else if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFilesystem, target, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFilesystem, target, err)
	}

	return nil
}
