package archives

import (
	"github.com/sloonz/worldback/lib"

	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Permission bits restored from an archive
const restoredModeBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// Host systems (high byte of CreatorVersion) storing a Unix mode in the
// external attributes
const (
	creatorUnix   = 3
	creatorMacOSX = 19
)

type zipArchive struct {
	r *zip.Reader
	f *os.File

	// Decrypted copy of the backup, removed on Close
	tmpName string
}

type zipEntry struct {
	f *zip.File
}

func newZipArchive(f *os.File, tmpName string) (*zipArchive, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(f, st.Size())
	if err != nil {
		return nil, err
	}

	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	zr.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())

	return &zipArchive{r: zr, f: f, tmpName: tmpName}, nil
}

// Part of worldback.Archive interface
func (a *zipArchive) Len() int {
	return len(a.r.File)
}

// Part of worldback.Archive interface
func (a *zipArchive) Entry(i int) worldback.Entry {
	return zipEntry{f: a.r.File[i]}
}

// Part of worldback.Archive interface
func (a *zipArchive) Close() error {
	err := a.f.Close()
	if a.tmpName != "" {
		if rmErr := os.Remove(a.tmpName); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}
	return err
}

// Part of worldback.Entry interface
func (e zipEntry) Name() string {
	return e.f.Name
}

// Part of worldback.Entry interface
func (e zipEntry) Open() (io.ReadCloser, error) {
	return e.f.Open()
}

// Part of worldback.Entry interface
// Only Unix-origin entries carry a mode. MS-DOS attributes are not
// permissions.
func (e zipEntry) Mode() (fs.FileMode, bool) {
	creator := e.f.CreatorVersion >> 8
	if (creator != creatorUnix && creator != creatorMacOSX) || e.f.ExternalAttrs>>16 == 0 {
		return 0, false
	}
	return e.f.Mode() & restoredModeBits, true
}
