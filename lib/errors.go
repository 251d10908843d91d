package worldback

import (
	"errors"
	"fmt"
)

var (
	ErrInputNotFound      = errors.New("input not found")
	ErrConfigRead         = errors.New("cannot read server properties")
	ErrArchiveRead        = errors.New("cannot read archive")
	ErrAmbiguousWorldRoot = errors.New("ambiguous world root")
	ErrFilesystem         = errors.New("filesystem failure")
	ErrUnsafeEntry        = errors.New("archive entry escapes world directory")
	ErrServerRunning      = errors.New("server is running")
	ErrPostCommand        = errors.New("post-restore command failed")
)

// Raised when more than one entry of an archive ends with the marker file
type AmbiguousRootError struct {
	First  string
	Second string
}

func (e *AmbiguousRootError) Error() string {
	return fmt.Sprintf("found duplicate %s, A: %q, B: %q", MarkerFile, e.First, e.Second)
}

func (e *AmbiguousRootError) Is(target error) bool {
	return target == ErrAmbiguousWorldRoot
}

// Kind of input reported by ErrInputNotFound
type InputKind int

const (
	InputInstance InputKind = iota
	InputArchive
)

// Raised when the instance directory or the archive file does not exist
type NotFoundError struct {
	Kind InputKind
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Kind == InputArchive {
		return fmt.Sprintf("backup %q does not exist", e.Path)
	}
	return fmt.Sprintf("instance path %q does not exist", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrInputNotFound
}

// Process exit code for an error returned by a restoration
func ExitCode(err error) int {
	var nf *NotFoundError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &nf):
		if nf.Kind == InputArchive {
			return 3
		}
		return 2
	case errors.Is(err, ErrAmbiguousWorldRoot):
		return 5
	case errors.Is(err, ErrServerRunning):
		return 6
	case errors.Is(err, ErrPostCommand):
		return 7
	case errors.Is(err, ErrConfigRead), errors.Is(err, ErrArchiveRead), errors.Is(err, ErrFilesystem):
		return 4
	default:
		return 1
	}
}
