package worldback

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// File whose presence anchors the world root inside an archive
const MarkerFile = "level.dat"

var prefixLog = logrus.WithFields(logrus.Fields{
	"component": "prefix",
})

// Find the directory prefix under which the world is stored in the archive.
// Exactly zero or one entry may end with MarkerFile; zero gives an empty prefix.
func ResolvePrefix(archive Archive) (string, error) {
	prefix := ""
	found := false

	for i := 0; i < archive.Len(); i++ {
		name := archive.Entry(i).Name()
		if !strings.HasSuffix(name, MarkerFile) {
			continue
		}

		candidate := strings.TrimSuffix(name, MarkerFile)
		if found {
			return "", &AmbiguousRootError{First: prefix, Second: candidate}
		}

		prefix = candidate
		found = true
		prefixLog.Infof("found %s at: %s", MarkerFile, name)
	}

	if !found {
		prefixLog.Warnf("no %s in archive, restoring from archive root", MarkerFile)
	}

	return prefix, nil
}
