package archives

import (
	"github.com/sloonz/worldback/lib"

	"bufio"
	"errors"
	"fmt"
	"os"

	"filippo.io/age"
	"github.com/sirupsen/logrus"
)

var (
	ErrEncrypted = errors.New("archive is encrypted, a key is required")
	archivesLog  = logrus.WithFields(logrus.Fields{
		"component": "archives",
	})
)

// Open a zip backup archive. With identities, the file is age-decrypted into a
// temporary file first, which is removed when the archive is closed.
func Open(path string, identities []age.Identity) (worldback.Archive, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, &worldback.NotFoundError{Kind: worldback.InputArchive, Path: path}
	} else if err != nil {
		return nil, fmt.Errorf("%w: failed to open backup file %s: %w", worldback.ErrArchiveRead, path, err)
	}

	tmpName := ""
	if len(identities) > 0 {
		f.Close()
		archivesLog.Debugf("decrypting %s", path)
		f, err = decryptToTemp(path, identities)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", worldback.ErrArchiveRead, err)
		}
		tmpName = f.Name()
	} else if isAgeEncrypted(bufio.NewReader(f)) {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %w", worldback.ErrArchiveRead, path, ErrEncrypted)
	}

	a, err := newZipArchive(f, tmpName)
	if err != nil {
		f.Close()
		if tmpName != "" {
			os.Remove(tmpName)
		}
		return nil, fmt.Errorf("%w: failed to read zip file %s: %w", worldback.ErrArchiveRead, path, err)
	}

	return a, nil
}

// Archive opener for worldback.RestoreJob
func Opener(identities []age.Identity) worldback.ArchiveOpener {
	return func(path string) (worldback.Archive, error) {
		return Open(path, identities)
	}
}
