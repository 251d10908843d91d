package worldback

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magiconair/properties"
	"github.com/sirupsen/logrus"
)

const (
	PropertiesFile   = "server.properties"
	LevelNameKey     = "level-name"
	DefaultLevelName = "world"
)

var worldLog = logrus.WithFields(logrus.Fields{
	"component": "world",
})

// Read the server.properties file of an instance. A missing file is not an
// error: nil properties are returned.
func ReadServerProperties(instanceRoot string) (*properties.Properties, error) {
	propertiesPath := filepath.Join(instanceRoot, PropertiesFile)
	if _, err := os.Stat(propertiesPath); os.IsNotExist(err) {
		worldLog.Debugf("unable to find %s", propertiesPath)
		return nil, nil
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadFile(propertiesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigRead, propertiesPath, err)
	}

	worldLog.Debugf("found %s", propertiesPath)
	return props, nil
}

// Name of the world directory, from the level-name property or "world"
func LevelName(props *properties.Properties) string {
	if props != nil {
		if name, ok := props.Get(LevelNameKey); ok {
			return name
		}
		worldLog.Debugf("%s not found in %s, assuming '%s'", LevelNameKey, PropertiesFile, DefaultLevelName)
	}
	return DefaultLevelName
}

// Path of the world directory of an instance. Existence is not checked.
func LocateWorld(instanceRoot string, props *properties.Properties) string {
	return filepath.Join(instanceRoot, LevelName(props))
}
