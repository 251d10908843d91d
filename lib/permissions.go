package worldback

import (
	"io/fs"
	"os"
	"runtime"
)

type hostPermissions struct {
	goos string
}

// Permission applier for the running platform
func HostPermissions() PermissionApplier {
	return hostPermissions{goos: runtime.GOOS}
}

// Part of PermissionApplier interface
func (p hostPermissions) Supported() bool {
	return p.goos != "windows" && p.goos != "plan9"
}

// Part of PermissionApplier interface
func (p hostPermissions) Apply(path string, mode fs.FileMode) error {
	return os.Chmod(path, mode)
}

// Permission applier that never applies anything
type NoPermissions struct{}

func (NoPermissions) Supported() bool { return false }
func (NoPermissions) Apply(string, fs.FileMode) error { return nil }
