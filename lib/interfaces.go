package worldback

import (
	"io"
	"io/fs"
)

// An entry of a backup archive
type Entry interface {
	// Forward-slash delimited path; directories end with a slash
	Name() string

	// Open the (decompressed) content of the entry
	Open() (io.ReadCloser, error)

	// Permission bits recorded by the archive, if any
	Mode() (fs.FileMode, bool)
}

// A randomly-indexable, read-only backup archive. Index order is the order in
// which entries are stored in the archive.
type Archive interface {
	Len() int
	Entry(i int) Entry
	Close() error
}

// Produces the suffix appended to a world directory when it is moved aside
type Timestamper interface {
	Timestamp() (string, error)
}

// Applies archive permission bits on the restored files, on platforms that support it
type PermissionApplier interface {
	Supported() bool
	Apply(path string, mode fs.FileMode) error
}
